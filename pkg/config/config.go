package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete DittoCMIS configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (DITTOCMIS_*)
//  2. Configuration file (YAML or TOML)
//  3. Default values
//
// Store Configuration Pattern:
// Each store implementation defines its own configuration type. The Config
// struct carries type-specific option maps (e.g. content.filesystem,
// store.badger) and only the section matching the selected type is decoded.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Server contains the HTTP binding and shutdown settings
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Repository describes the repository exposed to clients
	Repository RepositoryConfig `mapstructure:"repository" yaml:"repository"`

	// Store selects the resource store holding folders and documents
	Store StoreConfig `mapstructure:"store" yaml:"store"`

	// Content selects the store holding document bodies
	Content ContentConfig `mapstructure:"content" yaml:"content"`

	// Auth controls credential checking
	Auth AuthConfig `mapstructure:"auth" yaml:"auth"`

	// Users are registered in the resource store at startup
	Users []UserConfig `mapstructure:"users" yaml:"users" validate:"dive"`

	// Metrics controls the Prometheus endpoint
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Telemetry controls OpenTelemetry tracing
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// GC controls removal of orphaned document bodies
	GC GCConfig `mapstructure:"gc" yaml:"gc"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" yaml:"output" validate:"required"`
}

// ServerConfig contains server-wide settings.
type ServerConfig struct {
	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"required,gt=0"`

	// HTTP configures the CMIS browser binding
	HTTP HTTPConfig `mapstructure:"http" yaml:"http"`
}

// HTTPConfig configures the CMIS browser binding.
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	Port int `mapstructure:"port" yaml:"port" validate:"min=0,max=65535"`

	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" validate:"gte=0"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout" validate:"gte=0"`

	// RateLimit throttles requests per client address
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	// RequestsPerSecond is the refill rate. Zero disables rate limiting.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second" validate:"gte=0"`

	// Burst is the bucket size
	Burst int `mapstructure:"burst" yaml:"burst" validate:"gte=0"`
}

// RepositoryConfig describes the repository exposed to clients.
type RepositoryConfig struct {
	// ID is the repository id clients address (first path segment over HTTP)
	ID string `mapstructure:"id" yaml:"id" validate:"required,excludesall=/"`

	Name        string `mapstructure:"name" yaml:"name"`
	Description string `mapstructure:"description" yaml:"description"`

	// RootPath is the store folder shown as the repository root
	RootPath string `mapstructure:"root_path" yaml:"root_path" validate:"required,startswith=/"`

	// TypeRefreshInterval is how long the type hierarchy is cached before
	// it is rebuilt from the store. Zero disables refreshing.
	TypeRefreshInterval time.Duration `mapstructure:"type_refresh_interval" yaml:"type_refresh_interval" validate:"gte=0"`

	// Providers lists the dynamic properties added to every type
	// Valid values: size, detected-mimetype, title
	Providers []string `mapstructure:"providers" yaml:"providers" validate:"dive,oneof=size detected-mimetype title"`
}

// StoreConfig specifies the resource store.
//
// The Type field determines which store implementation is used.
// Only the corresponding type-specific configuration section is used.
type StoreConfig struct {
	// Type specifies which resource store implementation to use
	// Valid values: memory, badger
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=memory badger"`

	// Memory contains memory-specific configuration
	// Only used when Type = "memory"
	Memory map[string]any `mapstructure:"memory" yaml:"memory"`

	// Badger contains BadgerDB-specific configuration
	// Only used when Type = "badger"
	Badger map[string]any `mapstructure:"badger" yaml:"badger"`
}

// ContentConfig specifies the content store.
type ContentConfig struct {
	// Type specifies which content store implementation to use
	// Valid values: memory, filesystem, s3
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=memory filesystem s3"`

	Filesystem map[string]any `mapstructure:"filesystem" yaml:"filesystem"`
	Memory     map[string]any `mapstructure:"memory" yaml:"memory"`
	S3         map[string]any `mapstructure:"s3" yaml:"s3"`
}

// AuthConfig controls credential checking.
type AuthConfig struct {
	// AllowAnonymous accepts calls without credentials as the anonymous
	// principal
	AllowAnonymous bool `mapstructure:"allow_anonymous" yaml:"allow_anonymous"`

	// CacheTTL is how long a verified login is remembered. Zero disables
	// caching.
	CacheTTL time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl" validate:"gte=0"`
}

// UserConfig is one user account.
type UserConfig struct {
	Name        string `mapstructure:"name" yaml:"name" validate:"required"`
	Password    string `mapstructure:"password" yaml:"password" validate:"required"`
	DisplayName string `mapstructure:"display_name" yaml:"display_name,omitempty"`

	// Groups are group names; missing groups are created
	Groups []string `mapstructure:"groups" yaml:"groups,omitempty" validate:"dive,required"`

	// Roles are matched by ROLE_<name> access control entries
	Roles []string `mapstructure:"roles" yaml:"roles,omitempty" validate:"dive,required"`

	Admin bool `mapstructure:"admin" yaml:"admin,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" yaml:"port" validate:"min=0,max=65535"`
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP/HTTP collector address (host:port)
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint" validate:"required_if=Enabled true"`

	// Insecure disables TLS towards the collector
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	ServiceName string `mapstructure:"service_name" yaml:"service_name"`

	// SampleRatio is the fraction of traces kept, between 0 and 1
	SampleRatio float64 `mapstructure:"sample_ratio" yaml:"sample_ratio" validate:"gte=0,lte=1"`
}

// GCConfig controls the content garbage collector.
type GCConfig struct {
	// Enabled runs the collector in the background while serving
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	Interval time.Duration `mapstructure:"interval" yaml:"interval" validate:"gte=0"`

	// BatchSize is the number of orphans deleted per request
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size" validate:"gte=0"`

	// DryRun logs orphans without deleting them
	DryRun bool `mapstructure:"dry_run" yaml:"dry_run"`
}

// Load loads configuration from file, environment, and defaults.
//
// An empty configPath searches the default location. A missing file is not
// an error: defaults are used.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Example: DITTOCMIS_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("DITTOCMIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns $XDG_CONFIG_HOME/dittocmis, ~/.config/dittocmis, or
// "." when no home directory is known.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "dittocmis")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "dittocmis")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// ConfigExists checks if a config file exists at the default location.
func ConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
