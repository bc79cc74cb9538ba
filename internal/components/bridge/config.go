package bridge

import "time"

type Config struct {
	MetricsInterval time.Duration `yaml:"metrics_interval" json:"metrics_interval"`
	MetricsWindow   time.Duration `yaml:"metrics_window" json:"metrics_window"`
}

func (c *Config) applyDefaults() {
	if c.MetricsInterval <= 0 {
		c.MetricsInterval = 60 * time.Second
	}
	if c.MetricsWindow <= 0 {
		c.MetricsWindow = 24 * time.Hour
	}
}
