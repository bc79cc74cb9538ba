// config/schema.go
package config

import (
	"github.com/orcaclubpro/trenddrop-sub002/internal/components/bridge"
	"github.com/orcaclubpro/trenddrop-sub002/internal/components/database"
	"github.com/orcaclubpro/trenddrop-sub002/internal/components/http_server"
	"github.com/orcaclubpro/trenddrop-sub002/internal/components/logging"
	"github.com/orcaclubpro/trenddrop-sub002/internal/components/prometheus"
	"github.com/orcaclubpro/trenddrop-sub002/internal/components/realtime"
	"github.com/orcaclubpro/trenddrop-sub002/internal/components/snapshotcache"
	"github.com/orcaclubpro/trenddrop-sub002/internal/components/telemetry"
)

// AppConfig 应用程序配置结构
type AppConfig struct {
	APPInfo       *APPInfo                      `yaml:"app_info" json:"app_info"`
	Logging       *logging.LoggingConfig        `yaml:"logging" json:"logging"`
	Database      *database.Config              `yaml:"database" json:"database"`
	Realtime      *realtime.Config              `yaml:"realtime" json:"realtime"`
	Bridge        *bridge.Config                `yaml:"bridge" json:"bridge"`
	HTTPServer    *http_server.HTTPServerConfig `yaml:"http_server" json:"http_server"`
	Prometheus    *prometheus.Config            `yaml:"prometheus" json:"prometheus"`
	Telemetry     *telemetry.Config             `yaml:"telemetry" json:"telemetry"`
	SnapshotCache *snapshotcache.Config         `yaml:"snapshot_cache" json:"snapshot_cache"`

	// Critical lists the components whose startup failure aborts the whole
	// boot. Defaults to database and realtime when empty.
	Critical []string `yaml:"critical" json:"critical"`
}

type APPInfo struct {
	APPName string `yaml:"app_name" json:"app_name"`
	ENV     string `yaml:"env" json:"env"`
}
