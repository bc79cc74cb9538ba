// config/loader.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/orcaclubpro/trenddrop-sub002/internal/components/database"
	"github.com/orcaclubpro/trenddrop-sub002/internal/components/http_server"
	"github.com/orcaclubpro/trenddrop-sub002/internal/consts"
)

// Loader 配置加载器
type Loader struct {
	env        string
	configPath string
}

// NewLoader 创建配置加载器
func NewLoader(env string, configPath string) *Loader {
	if env == "" {
		env = consts.ENV_DEVELOPMENT
	}
	if configPath == "" {
		configPath = consts.DEFAULT_CONFIG_PATH
	}
	return &Loader{env: env, configPath: configPath}
}

// LoadConfig 解析配置文件并合并环境变量
func (l *Loader) LoadConfig() (*AppConfig, error) {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	ext := strings.ToLower(filepath.Ext(l.configPath))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	l.mergeEnvVars(&cfg)
	return &cfg, nil
}

// mergeEnvVars 合并环境变量到配置中 (环境变量优先于文件)
func (l *Loader) mergeEnvVars(cfg *AppConfig) {
	if dsn := os.Getenv(consts.ENV_DATABASE_URL); dsn != "" {
		if cfg.Database == nil {
			cfg.Database = &database.Config{}
		}
		cfg.Database.DSN = dsn
	}
	if port := os.Getenv(consts.ENV_HTTP_PORT); port != "" {
		if cfg.HTTPServer == nil {
			cfg.HTTPServer = &http_server.HTTPServerConfig{Enabled: true}
		}
		cfg.HTTPServer.Address = ":" + strings.TrimPrefix(port, ":")
	}
}

// fileExists 检查文件是否存在
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
