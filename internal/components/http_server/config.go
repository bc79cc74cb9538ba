package http_server

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/orcaclubpro/trenddrop-sub002/internal/core"
)

// RouteRegisterFunc mounts extra routes before the server starts.
type RouteRegisterFunc func(r chi.Router, c *core.Container) error

type HTTPServerConfig struct {
	Enabled         bool          `yaml:"enabled" json:"enabled"`
	Address         string        `yaml:"address" json:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	GracefulTimeout time.Duration `yaml:"graceful_timeout" json:"graceful_timeout"`
	EnableHealth    bool          `yaml:"enable_health" json:"enable_health"`
	EnableTracing   bool          `yaml:"enable_tracing" json:"enable_tracing"`
	ServiceName     string        `yaml:"-" json:"-"` // injected from app_info
}
