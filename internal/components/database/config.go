package database

import "time"

// Config controls the storage connection manager. The DSN normally comes
// from the DATABASE_URL environment variable (merged by the config loader);
// a missing DSN is a fatal configuration error, never retried.
type Config struct {
	DSN string `yaml:"dsn" json:"dsn"`

	MaxAttempts    int           `yaml:"max_attempts" json:"max_attempts"`
	MinDelay       time.Duration `yaml:"min_delay" json:"min_delay"`
	MaxDelay       time.Duration `yaml:"max_delay" json:"max_delay"`
	HealthInterval time.Duration `yaml:"health_interval" json:"health_interval"`
	PingTimeout    time.Duration `yaml:"ping_timeout" json:"ping_timeout"`

	MaxOpenConns int           `yaml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLife  time.Duration `yaml:"conn_max_life" json:"conn_max_life"`

	LogLevel      string        `yaml:"log_level" json:"log_level"`
	SlowThreshold time.Duration `yaml:"slow_threshold" json:"slow_threshold"`
}

func (c *Config) applyDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 10
	}
	if c.MinDelay <= 0 {
		c.MinDelay = time.Second
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 30 * time.Second
	}
	if c.HealthInterval <= 0 {
		c.HealthInterval = 30 * time.Second
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = 5 * time.Second
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 50
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 10
	}
	if c.ConnMaxLife <= 0 {
		c.ConnMaxLife = time.Hour
	}
}
