package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// Log level normalization is handled in ApplyDefaults; validation accepts
// both cases.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

// validateCustomRules performs validation that cannot be expressed in tags.
func validateCustomRules(cfg *Config) error {
	names := make(map[string]bool)
	for i, user := range cfg.Users {
		if names[user.Name] {
			return fmt.Errorf("users[%d]: duplicate user name %q", i, user.Name)
		}
		names[user.Name] = true
	}

	if !cfg.Server.HTTP.Enabled {
		return fmt.Errorf("server.http: the HTTP binding must be enabled")
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Port == cfg.Server.HTTP.Port {
		return fmt.Errorf("metrics.port: %d is already used by server.http", cfg.Metrics.Port)
	}

	if !cfg.Auth.AllowAnonymous && len(cfg.Users) == 0 {
		return fmt.Errorf("users: at least one user is required when auth.allow_anonymous is false")
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
