package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_DefaultConfig(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
logging:
  level: "info"

content:
  type: "filesystem"
  filesystem:
    path: "/var/lib/dittocmis"

auth:
  allow_anonymous: true
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected normalized level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
	if !cfg.Server.HTTP.Enabled || cfg.Server.HTTP.Port != 8080 {
		t.Errorf("Expected HTTP binding enabled on 8080, got %+v", cfg.Server.HTTP)
	}
	if cfg.Repository.ID != "main" || cfg.Repository.RootPath != "/" {
		t.Errorf("Expected repository main at /, got %+v", cfg.Repository)
	}
	if cfg.Content.Filesystem["path"] != "/var/lib/dittocmis" {
		t.Errorf("Expected explicit filesystem path preserved, got %v", cfg.Content.Filesystem["path"])
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// defaults alone allow neither anonymous access nor any user
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Expected validation error without users or anonymous access")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "invalid.yaml", `
logging:
  level: INFO
  invalid yaml here [[[
`)

	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected error with invalid YAML, got nil")
	}
}

func TestLoad_TOML(t *testing.T) {
	configPath := writeConfig(t, "config.toml", `
[logging]
level = "WARN"
format = "json"

[repository]
id = "docs"
root_path = "/Sites"
providers = ["size"]

[[users]]
name = "alice"
password = "secret"
groups = ["editors"]
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load TOML config: %v", err)
	}

	if cfg.Logging.Level != "WARN" {
		t.Errorf("Expected level 'WARN', got %q", cfg.Logging.Level)
	}
	if cfg.Repository.ID != "docs" || cfg.Repository.Name != "docs" {
		t.Errorf("Expected repository docs named after its id, got %+v", cfg.Repository)
	}
	if len(cfg.Repository.Providers) != 1 {
		t.Errorf("Expected explicit provider list preserved, got %v", cfg.Repository.Providers)
	}
	if len(cfg.Users) != 1 || cfg.Users[0].Groups[0] != "editors" {
		t.Errorf("Expected one user in editors, got %+v", cfg.Users)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown store", "store:\n  type: postgres\nauth:\n  allow_anonymous: true\n"},
		{"relative root", "repository:\n  root_path: Sites\nauth:\n  allow_anonymous: true\n"},
		{"unknown provider", "repository:\n  providers: [colour]\nauth:\n  allow_anonymous: true\n"},
		{"telemetry without endpoint", "telemetry:\n  enabled: true\nauth:\n  allow_anonymous: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, "config.yaml", tt.content)); err == nil {
				t.Fatal("Expected validation error")
			}
		})
	}
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Store.Type != "memory" {
		t.Errorf("Expected default store type 'memory', got %q", cfg.Store.Type)
	}
	if cfg.Store.Memory["seed"] != true {
		t.Error("Expected the default config to seed the demo tree")
	}
	if cfg.Content.Type != "memory" {
		t.Errorf("Expected default content type 'memory', got %q", cfg.Content.Type)
	}
	if len(cfg.Users) != 1 || !cfg.Users[0].Admin {
		t.Errorf("Expected one admin user, got %+v", cfg.Users)
	}
	if cfg.Repository.TypeRefreshInterval != 5*time.Minute {
		t.Errorf("Expected default type refresh 5m, got %v", cfg.Repository.TypeRefreshInterval)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := GetDefaultConfigPath()

	if !filepath.IsAbs(path) {
		t.Errorf("Expected absolute path, got %q", path)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("Expected filename 'config.yaml', got %q", filepath.Base(path))
	}
}

func TestGetConfigDir(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	if dir := GetConfigDir(); dir != filepath.Join(xdg, "dittocmis") {
		t.Errorf("Expected %s/dittocmis, got %q", xdg, dir)
	}
}

func TestConfigExists(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if ConfigExists() {
		t.Fatal("Expected no config in an empty directory")
	}
	if _, err := InitConfig(false); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	if !ConfigExists() {
		t.Error("Expected config to exist after InitConfig")
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("DITTOCMIS_LOGGING_LEVEL", "ERROR")
	t.Setenv("DITTOCMIS_SERVER_HTTP_PORT", "9443")

	configPath := writeConfig(t, "config.yaml", `
logging:
  level: "INFO"

server:
  http:
    enabled: true
    port: 8080

auth:
  allow_anonymous: true
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "ERROR" {
		t.Errorf("Expected level 'ERROR' from env var, got %q", cfg.Logging.Level)
	}
	if cfg.Server.HTTP.Port != 9443 {
		t.Errorf("Expected port 9443 from env var, got %d", cfg.Server.HTTP.Port)
	}
}
