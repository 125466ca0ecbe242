package config

import (
	"strings"
	"time"

	"github.com/marmos91/dittocmis/pkg/provider"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Zero values are replaced; explicit values are preserved. Store-specific
// option defaults are handled by the store implementations.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyRepositoryDefaults(&cfg.Repository)
	applyStoreDefaults(&cfg.Store)
	applyContentDefaults(&cfg.Content)
	applyAuthDefaults(&cfg.Auth)
	applyMetricsDefaults(&cfg.Metrics)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyGCDefaults(&cfg.GC)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}

	// A config without an explicit port has not configured the binding at
	// all: enable it so a bare config still serves something.
	if !cfg.HTTP.Enabled && cfg.HTTP.Port == 0 {
		cfg.HTTP.Enabled = true
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 30 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 5 * time.Minute
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 2 * time.Minute
	}
	if cfg.HTTP.RateLimit.RequestsPerSecond > 0 && cfg.HTTP.RateLimit.Burst == 0 {
		cfg.HTTP.RateLimit.Burst = max(int(cfg.HTTP.RateLimit.RequestsPerSecond), 1)
	}
}

func applyRepositoryDefaults(cfg *RepositoryConfig) {
	if cfg.ID == "" {
		cfg.ID = "main"
	}
	if cfg.Name == "" {
		cfg.Name = cfg.ID
	}
	if cfg.RootPath == "" {
		cfg.RootPath = "/"
	}
	if cfg.TypeRefreshInterval == 0 {
		cfg.TypeRefreshInterval = 5 * time.Minute
	}
	if cfg.Providers == nil {
		cfg.Providers = []string{provider.NameSize, provider.NameDetectedMimeType, ProviderTitle}
	}
}

func applyStoreDefaults(cfg *StoreConfig) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}
	if cfg.Memory == nil {
		cfg.Memory = make(map[string]any)
	}
	if cfg.Badger == nil {
		cfg.Badger = make(map[string]any)
	}

	// Apply defaults for all store types (for config file generation)
	if _, ok := cfg.Badger["db_path"]; !ok {
		cfg.Badger["db_path"] = "/tmp/dittocmis-resources"
	}
}

func applyContentDefaults(cfg *ContentConfig) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}
	if cfg.Filesystem == nil {
		cfg.Filesystem = make(map[string]any)
	}
	if cfg.Memory == nil {
		cfg.Memory = make(map[string]any)
	}
	if cfg.S3 == nil {
		cfg.S3 = make(map[string]any)
	}

	if _, ok := cfg.Filesystem["path"]; !ok {
		cfg.Filesystem["path"] = "/tmp/dittocmis-content"
	}
}

func applyAuthDefaults(cfg *AuthConfig) {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "dittocmis"
	}
	if cfg.SampleRatio == 0 {
		cfg.SampleRatio = 1
	}
}

func applyGCDefaults(cfg *GCConfig) {
	if cfg.Interval == 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 1000
	}
}

// GetDefaultConfig returns a Config with all default values applied and a
// seeded demo tree in the memory store.
//
// Used to generate sample configuration files and in tests.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Store: StoreConfig{
			Memory: map[string]any{"seed": true},
		},
		Auth: AuthConfig{
			AllowAnonymous: true,
		},
		Users: []UserConfig{
			{Name: "admin", Password: "admin", DisplayName: "Administrator", Admin: true},
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
