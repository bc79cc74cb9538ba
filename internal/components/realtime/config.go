package realtime

import "time"

// Config controls the websocket hub.
type Config struct {
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval" json:"heartbeat_interval"`
	WriteTimeout      time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ReadLimitBytes    int64         `yaml:"read_limit_bytes" json:"read_limit_bytes"`
	CheckOrigin       bool          `yaml:"check_origin" json:"check_origin"`
}

func (c *Config) applyDefaults() {
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = 30 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.ReadLimitBytes <= 0 {
		c.ReadLimitBytes = 1 << 20
	}
}
