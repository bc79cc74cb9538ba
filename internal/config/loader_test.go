package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalYAML = `
app_info:
  app_name: trendtracker
  env: test
database:
  dsn: "postgres://local/test"
realtime:
  read_limit_bytes: 1024
http_server:
  enabled: true
  address: ":8000"
`

func TestLoadYAMLConfig(t *testing.T) {
	path := writeConfig(t, "config.yaml", minimalYAML)
	cfg, err := NewLoader("test", path).LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.APPInfo == nil || cfg.APPInfo.APPName != "trendtracker" {
		t.Fatalf("app_info not parsed: %+v", cfg.APPInfo)
	}
	if cfg.Database == nil || cfg.Database.DSN != "postgres://local/test" {
		t.Fatalf("database not parsed: %+v", cfg.Database)
	}
	if cfg.Realtime == nil || cfg.Realtime.ReadLimitBytes != 1024 {
		t.Fatalf("realtime not parsed: %+v", cfg.Realtime)
	}
}

func TestEnvVarsOverrideFile(t *testing.T) {
	path := writeConfig(t, "config.yaml", minimalYAML)
	t.Setenv("DATABASE_URL", "postgres://env/override")
	t.Setenv("PORT", "9000")

	cfg, err := NewLoader("test", path).LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Database.DSN != "postgres://env/override" {
		t.Fatalf("DATABASE_URL not merged: %s", cfg.Database.DSN)
	}
	if cfg.HTTPServer.Address != ":9000" {
		t.Fatalf("PORT not merged: %s", cfg.HTTPServer.Address)
	}
}

func TestUnsupportedExtension(t *testing.T) {
	path := writeConfig(t, "config.toml", "whatever = true")
	if _, err := NewLoader("test", path).LoadConfig(); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestValidateAppConfig(t *testing.T) {
	v := NewValidator()
	if err := v.ValidateAppConfig(nil); err == nil {
		t.Fatalf("nil config must be rejected")
	}

	path := writeConfig(t, "config.yaml", minimalYAML)
	cfg, err := NewLoader("test", path).LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if err := v.ValidateAppConfig(cfg); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg.Database = nil
	if err := v.ValidateAppConfig(cfg); err == nil {
		t.Fatalf("missing database section must be rejected")
	}
}

func TestConfigManagerMissingFile(t *testing.T) {
	cm := NewConfigManager("test", filepath.Join(t.TempDir(), "absent.yaml"))
	if err := cm.LoadConfig(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
