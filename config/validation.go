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

// ValidationErrors collects every problem found in one pass
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n")
}

// secretsRequired lists environments where credentials may not fall back to defaults
var secretsRequired = map[Environment]bool{
	CI:         true,
	Production: true,
}

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if cfg.ServerPort == "" {
		add("SERVER_PORT", "is required")
	}

	switch cfg.DBDriver {
	case "postgres":
		for field, val := range map[string]string{
			"DB_HOST": cfg.DBHost,
			"DB_PORT": cfg.DBPort,
			"DB_USER": cfg.DBUser,
			"DB_NAME": cfg.DBName,
		} {
			if val == "" {
				add(field, "is required for postgres")
			}
		}
		if secretsRequired[cfg.Environment] && cfg.DBPassword == "" {
			add("DB_PASSWORD", "is required")
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			add("SQLITE_PATH", "is required for sqlite")
		}
		if cfg.Environment == Production {
			add("DB_DRIVER", "sqlite is not supported in production")
		}
	default:
		add("DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver))
	}

	if cfg.JWTSecret == "" {
		add("JWT_SECRET", "is required")
	}
	if cfg.JWTExpiry <= 0 {
		add("JWT_EXPIRE_MINUTES", "must be positive")
	}

	if cfg.RateLimitEnabled {
		if cfg.RateLimitTimes <= 0 {
			add("RATE_LIMIT_TIMES", "must be positive")
		}
		if cfg.RateLimitWindow <= 0 {
			add("RATE_LIMIT_SECONDS", "must be positive")
		}
	}

	if cfg.DefaultUserID == 0 && cfg.AllowAnonymousShoppingList {
		add("DEFAULT_USER_ID", "must be set when anonymous shopping lists are allowed")
	}

	switch cfg.LLMProvider {
	case "chat":
		if cfg.LLMBaseURL == "" {
			add("LLM_BASE_URL", "is required for the chat provider")
		}
	case "gemini":
		if cfg.LLMAPIKey == "" {
			add("LLM_API_KEY", "is required for the gemini provider")
		}
	default:
		add("LLM_PROVIDER", fmt.Sprintf("unsupported provider %q", cfg.LLMProvider))
	}

	if cfg.OTelSampleRatio < 0 || cfg.OTelSampleRatio > 1 {
		add("OTEL_SAMPLER_RATIO", "must be between 0 and 1")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
