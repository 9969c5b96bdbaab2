package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment
	Version     string
	LogMode     string

	// Server configuration
	ServerPort  string
	ServerHost  string
	CORSOrigins []string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string
	JWTExpiry time.Duration

	// Rate limiting
	RateLimitEnabled bool
	RateLimitTimes   int
	RateLimitWindow  time.Duration

	// Shopping list principal fallback for unauthenticated callers
	DefaultUserID              uint
	AllowAnonymousShoppingList bool

	// LLM provider
	LLMProvider string
	LLMBaseURL  string
	LLMAPIKey   string
	LLMModel    string
	LLMTimeout  time.Duration

	// Recipe image storage
	S3Bucket  string
	AWSRegion string

	// Tracing
	OTelEnabled     bool
	OTelEndpoint    string
	OTelSampleRatio float64
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{Environment: env}

	switch env {
	case CI:
		if err := loadCIConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load CI configuration: %w", err)
		}
	case Development, Test:
		if err := loadDevConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load development configuration: %w", err)
		}
	case Production:
		if err := loadProdConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load production configuration: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadCIConfig reads plain environment variables; credentials come from the TEST_* secrets
func loadCIConfig(cfg *Config) error {
	loadCommon(cfg, os.Getenv)

	cfg.DBPassword = os.Getenv("TEST_DB_PASSWORD")
	if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
		return fmt.Errorf("TEST_DB_PASSWORD environment variable is required in CI environment")
	}
	if secret := os.Getenv("TEST_JWT_SECRET"); secret != "" {
		cfg.JWTSecret = secret
	}
	if pw := os.Getenv("TEST_REDIS_PASSWORD"); pw != "" {
		cfg.RedisPassword = pw
	}
	if url := os.Getenv("TEST_REDIS_URL"); url != "" {
		cfg.RedisURL = url
	}
	return nil
}

// loadDevConfig loads .env, then environment variables, then Docker secrets for anything still unset
func loadDevConfig(cfg *Config) error {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	loadCommon(cfg, func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return readSecret(strings.ToLower(key))
	})

	if cfg.DBDriver == "" {
		cfg.DBDriver = "sqlite"
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "development-secret"
	}
	return nil
}

// loadProdConfig prefers Docker secrets and falls back to environment variables
func loadProdConfig(cfg *Config) error {
	loadCommon(cfg, func(key string) string {
		if v := readSecret(strings.ToLower(key)); v != "" {
			return v
		}
		return os.Getenv(key)
	})
	return nil
}

func loadCommon(cfg *Config, get func(string) string) {
	cfg.Version = withDefault(get("APP_VERSION"), "1.0.0")
	cfg.LogMode = withDefault(get("LOG_MODE"), string(cfg.Environment))

	cfg.ServerPort = withDefault(get("SERVER_PORT"), "8000")
	cfg.ServerHost = withDefault(get("SERVER_HOST"), "0.0.0.0")
	cfg.CORSOrigins = splitList(withDefault(get("CORS_ORIGINS"), "http://localhost:3000,http://localhost:5173,http://localhost:8081"))

	cfg.DBDriver = strings.ToLower(get("DB_DRIVER"))
	if cfg.DBDriver == "" && cfg.Environment != Development && cfg.Environment != Test {
		cfg.DBDriver = "postgres"
	}
	cfg.DBHost = withDefault(get("DB_HOST"), "localhost")
	cfg.DBPort = withDefault(get("DB_PORT"), "5432")
	cfg.DBUser = withDefault(get("DB_USER"), "postgres")
	cfg.DBPassword = get("DB_PASSWORD")
	cfg.DBName = withDefault(get("DB_NAME"), "recipewizard")
	cfg.DBSSLMode = withDefault(get("DB_SSL_MODE"), "disable")
	cfg.SQLitePath = withDefault(get("SQLITE_PATH"), "recipewizard.db")

	cfg.RedisHost = get("REDIS_HOST")
	cfg.RedisPort = withDefault(get("REDIS_PORT"), "6379")
	cfg.RedisPassword = get("REDIS_PASSWORD")
	cfg.RedisDB = 0 // This is a constant, not a secret
	cfg.RedisURL = get("REDIS_URL")

	cfg.JWTSecret = get("JWT_SECRET")
	cfg.JWTExpiry = time.Duration(intOr(get("JWT_EXPIRE_MINUTES"), 60*24)) * time.Minute

	cfg.RateLimitEnabled = boolOr(get("ENABLE_RATE_LIMIT"), true)
	cfg.RateLimitTimes = intOr(get("RATE_LIMIT_TIMES"), 10)
	cfg.RateLimitWindow = time.Duration(intOr(get("RATE_LIMIT_SECONDS"), 60)) * time.Second

	cfg.DefaultUserID = uint(intOr(get("DEFAULT_USER_ID"), 1))
	cfg.AllowAnonymousShoppingList = boolOr(get("ALLOW_ANONYMOUS_SHOPPING_LIST"), true)

	cfg.LLMProvider = strings.ToLower(withDefault(get("LLM_PROVIDER"), "chat"))
	cfg.LLMBaseURL = withDefault(get("LLM_BASE_URL"), "http://localhost:11434/v1/chat/completions")
	cfg.LLMAPIKey = get("LLM_API_KEY")
	cfg.LLMModel = withDefault(get("LLM_MODEL"), "llama3.2")
	cfg.LLMTimeout = time.Duration(intOr(get("LLM_TIMEOUT_SECONDS"), 120)) * time.Second

	cfg.S3Bucket = get("S3_BUCKET_NAME")
	cfg.AWSRegion = withDefault(get("AWS_REGION"), "us-east-1")

	cfg.OTelEnabled = boolOr(get("OTEL_ENABLED"), false)
	cfg.OTelEndpoint = get("OTEL_EXPORTER_OTLP_ENDPOINT")
	cfg.OTelSampleRatio = floatOr(get("OTEL_SAMPLER_RATIO"), 0.1)
}

// RedisEnabled reports whether any Redis connection details were supplied
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// Addr is the host:port the HTTP server listens on
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func withDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func intOr(v string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func floatOr(v string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

func boolOr(v string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
