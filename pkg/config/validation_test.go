package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(GetDefaultConfig()); err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"log level", func(c *Config) { c.Logging.Level = "INVALID" }, "oneof"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "Format"},
		{"shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = 0 }, "ShutdownTimeout"},
		{"port range", func(c *Config) { c.Server.HTTP.Port = 70000 }, "Port"},
		{"negative timeout", func(c *Config) { c.Server.HTTP.ReadTimeout = -time.Second }, "ReadTimeout"},
		{"negative rate", func(c *Config) { c.Server.HTTP.RateLimit.RequestsPerSecond = -1 }, "RequestsPerSecond"},
		{"http disabled", func(c *Config) { c.Server.HTTP.Enabled = false }, "must be enabled"},
		{"repository id", func(c *Config) { c.Repository.ID = "a/b" }, "ID"},
		{"empty repository id", func(c *Config) { c.Repository.ID = "" }, "ID"},
		{"relative root", func(c *Config) { c.Repository.RootPath = "Sites" }, "RootPath"},
		{"unknown provider", func(c *Config) { c.Repository.Providers = []string{"colour"} }, "Providers"},
		{"store type", func(c *Config) { c.Store.Type = "postgres" }, "Store.Type"},
		{"content type", func(c *Config) { c.Content.Type = "ftp" }, "Content.Type"},
		{"user without password", func(c *Config) { c.Users[0].Password = "" }, "Password"},
		{"duplicate user", func(c *Config) { c.Users = append(c.Users, c.Users[0]) }, "duplicate user"},
		{"empty group name", func(c *Config) { c.Users[0].Groups = []string{""} }, "Groups"},
		{"metrics port clash", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Port = c.Server.HTTP.Port
		}, "metrics.port"},
		{"no way in", func(c *Config) {
			c.Auth.AllowAnonymous = false
			c.Users = nil
		}, "at least one user"},
		{"telemetry endpoint", func(c *Config) { c.Telemetry.Enabled = true }, "Endpoint"},
		{"sample ratio", func(c *Config) { c.Telemetry.SampleRatio = 2 }, "SampleRatio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error mentioning %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_LogLevelNormalization(t *testing.T) {
	for _, level := range []string{"debug", "Info", "WARN", "error"} {
		cfg := GetDefaultConfig()
		cfg.Logging.Level = level
		ApplyDefaults(cfg)

		if err := Validate(cfg); err != nil {
			t.Errorf("level %q: unexpected error: %v", level, err)
		}
		if cfg.Logging.Level != strings.ToUpper(level) {
			t.Errorf("level %q: expected normalization to %q, got %q", level, strings.ToUpper(level), cfg.Logging.Level)
		}
	}
}

func TestValidate_AnonymousWithoutUsers(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Users = nil

	if err := Validate(cfg); err != nil {
		t.Errorf("Anonymous access without users should be valid: %v", err)
	}
}
