package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{Logging: LoggingConfig{Level: "debug"}}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected normalized log level 'DEBUG', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_Server(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
	if !cfg.Server.HTTP.Enabled {
		t.Error("Expected HTTP binding enabled when unconfigured")
	}
	if cfg.Server.HTTP.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.HTTP.Port)
	}
	if cfg.Server.HTTP.RateLimit.RequestsPerSecond != 0 {
		t.Error("Expected rate limiting disabled by default")
	}
}

func TestApplyDefaults_HTTPDisabled(t *testing.T) {
	cfg := &Config{Server: ServerConfig{HTTP: HTTPConfig{Enabled: false, Port: 8081}}}
	ApplyDefaults(cfg)

	if cfg.Server.HTTP.Enabled {
		t.Error("An explicitly configured binding should stay disabled")
	}
}

func TestApplyDefaults_RateLimitBurst(t *testing.T) {
	tests := []struct {
		rps   float64
		burst int
		want  int
	}{
		{rps: 20, want: 20},
		{rps: 0.5, want: 1},
		{rps: 20, burst: 100, want: 100},
	}

	for _, tt := range tests {
		cfg := &Config{Server: ServerConfig{HTTP: HTTPConfig{RateLimit: RateLimitConfig{RequestsPerSecond: tt.rps, Burst: tt.burst}}}}
		ApplyDefaults(cfg)
		if cfg.Server.HTTP.RateLimit.Burst != tt.want {
			t.Errorf("rps=%v burst=%d: expected burst %d, got %d", tt.rps, tt.burst, tt.want, cfg.Server.HTTP.RateLimit.Burst)
		}
	}
}

func TestApplyDefaults_Repository(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	r := cfg.Repository
	if r.ID != "main" || r.Name != "main" {
		t.Errorf("Expected repository 'main', got id=%q name=%q", r.ID, r.Name)
	}
	if r.RootPath != "/" {
		t.Errorf("Expected root path '/', got %q", r.RootPath)
	}
	if len(r.Providers) != 3 {
		t.Errorf("Expected all builtin providers, got %v", r.Providers)
	}
}

func TestApplyDefaults_EmptyProviderListIsKept(t *testing.T) {
	cfg := &Config{Repository: RepositoryConfig{Providers: []string{}}}
	ApplyDefaults(cfg)

	if len(cfg.Repository.Providers) != 0 {
		t.Errorf("An explicit empty provider list should be kept, got %v", cfg.Repository.Providers)
	}
}

func TestApplyDefaults_Stores(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Store.Type != "memory" {
		t.Errorf("Expected default store type 'memory', got %q", cfg.Store.Type)
	}
	if cfg.Store.Badger["db_path"] != "/tmp/dittocmis-resources" {
		t.Errorf("Expected default badger db_path, got %v", cfg.Store.Badger["db_path"])
	}
	if cfg.Content.Type != "memory" {
		t.Errorf("Expected default content type 'memory', got %q", cfg.Content.Type)
	}
	if cfg.Content.Filesystem["path"] != "/tmp/dittocmis-content" {
		t.Errorf("Expected default filesystem path, got %v", cfg.Content.Filesystem["path"])
	}
	if cfg.Content.S3 == nil {
		t.Error("Expected S3 map to be initialized")
	}
}

func TestApplyDefaults_GC(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.GC.Enabled {
		t.Error("Expected garbage collection to be disabled by default")
	}
	if cfg.GC.Interval != 24*time.Hour {
		t.Errorf("Expected default GC interval 24h, got %v", cfg.GC.Interval)
	}
	if cfg.GC.BatchSize != 1000 {
		t.Errorf("Expected default GC batch size 1000, got %d", cfg.GC.BatchSize)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Server:     ServerConfig{ShutdownTimeout: time.Minute, HTTP: HTTPConfig{Enabled: true, Port: 9000}},
		Repository: RepositoryConfig{ID: "docs", Name: "Documents", RootPath: "/Sites", TypeRefreshInterval: time.Hour},
		Store:      StoreConfig{Type: "badger", Badger: map[string]any{"db_path": "/data"}},
		Auth:       AuthConfig{CacheTTL: time.Second},
		Metrics:    MetricsConfig{Port: 9100},
		Telemetry:  TelemetryConfig{ServiceName: "cmis", SampleRatio: 0.25},
	}
	ApplyDefaults(cfg)

	if cfg.Server.ShutdownTimeout != time.Minute || cfg.Server.HTTP.Port != 9000 {
		t.Errorf("Server settings overwritten: %+v", cfg.Server)
	}
	if cfg.Repository.Name != "Documents" || cfg.Repository.TypeRefreshInterval != time.Hour {
		t.Errorf("Repository settings overwritten: %+v", cfg.Repository)
	}
	if cfg.Store.Badger["db_path"] != "/data" {
		t.Errorf("Badger path overwritten: %v", cfg.Store.Badger["db_path"])
	}
	if cfg.Auth.CacheTTL != time.Second {
		t.Errorf("Cache TTL overwritten: %v", cfg.Auth.CacheTTL)
	}
	if cfg.Metrics.Port != 9100 {
		t.Errorf("Metrics port overwritten: %d", cfg.Metrics.Port)
	}
	if cfg.Telemetry.ServiceName != "cmis" || cfg.Telemetry.SampleRatio != 0.25 {
		t.Errorf("Telemetry settings overwritten: %+v", cfg.Telemetry)
	}
}
