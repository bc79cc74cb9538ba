package snapshotcache

import "time"

type Config struct {
	Enabled bool `yaml:"enabled" json:"enabled"`

	Addresses      []string `yaml:"addresses" json:"addresses"`
	Mode           string   `yaml:"mode" json:"mode"` // single|cluster|sentinel
	DB             int      `yaml:"db" json:"db"`
	Username       string   `yaml:"username" json:"username"`
	Password       string   `yaml:"password" json:"password"`
	SentinelMaster string   `yaml:"sentinel_master" json:"sentinel_master"`

	KeyPrefix string        `yaml:"key_prefix" json:"key_prefix"`
	TTL       time.Duration `yaml:"ttl" json:"ttl"`

	DialTimeout  time.Duration `yaml:"dial_timeout" json:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = "single"
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "trendtracker:snapshot"
	}
	if c.TTL <= 0 {
		c.TTL = 48 * time.Hour
	}
}
