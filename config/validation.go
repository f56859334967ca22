package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the configuration is usable. Provider credentials
// are deliberately not required at boot: a missing token surfaces as a
// configuration error on the first chat call instead.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.ServerPort == "" {
		errors = append(errors, "server port is required")
	}
	if cfg.DataDir == "" {
		errors = append(errors, "data directory is required")
	}
	if cfg.JWTSecret == "" {
		errors = append(errors, "JWT secret is required")
	}

	switch cfg.AIProvider {
	case "auto", "huggingface", "hf", "github":
	default:
		errors = append(errors, fmt.Sprintf("unknown AI_PROVIDER %q (expected auto, huggingface or github)", cfg.AIProvider))
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}
