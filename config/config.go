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

	// Server configuration
	ServerPort string
	ServerHost string
	// PublicURL is used when building absolute pagination links behind a proxy.
	PublicURL string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	MigrationsDir string
	AutoMigrate   bool

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	CORSAllowedOrigins []string
	FrontendURL        string

	// Listing
	DefaultPageSize int
	MaxPageSize     int

	// Images
	ImageStorage    string
	S3BucketName    string
	AWSRegion       string
	MediaRoot       string
	MediaURL        string
	DefaultImageURL string

	// Email
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	EmailFrom     string
	EmailFromName string

	// Limits
	RecipeCreateLimit  int
	RecipeCreateWindow time.Duration
	LoginRatePerMinute int
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	env := GetEnvironment()
	src := newSource(env)
	cfg := &Config{Environment: env}

	if err := load(cfg, src); err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func load(cfg *Config, src *source) error {
	cfg.ServerPort = src.get("SERVER_PORT", "server_port", "8000")
	cfg.ServerHost = src.get("SERVER_HOST", "server_host", "0.0.0.0")
	cfg.PublicURL = strings.TrimRight(src.get("PUBLIC_URL", "public_url", ""), "/")

	cfg.DBDriver = strings.ToLower(src.get("DB_DRIVER", "db_driver", "postgres"))
	cfg.DBHost = src.get("DB_HOST", "db_host", "localhost")
	cfg.DBPort = src.get("DB_PORT", "db_port", "5432")
	cfg.DBUser = src.get("DB_USER", "db_user", "postgres")
	cfg.DBPassword = src.get("DB_PASSWORD", "db_password", "postgres")
	cfg.DBName = src.get("DB_NAME", "db_name", "cookbook")
	cfg.DBSSLMode = src.get("DB_SSL_MODE", "db_ssl_mode", "disable")
	cfg.SQLitePath = src.get("SQLITE_PATH", "sqlite_path", "cookbook.db")
	cfg.MigrationsDir = src.get("MIGRATIONS_DIR", "migrations_dir", "migrations")

	cfg.RedisHost = src.get("REDIS_HOST", "redis_host", "")
	cfg.RedisPort = src.get("REDIS_PORT", "redis_port", "6379")
	cfg.RedisPassword = src.get("REDIS_PASSWORD", "redis_password", "")
	cfg.RedisURL = src.get("REDIS_URL", "redis_url", "")
	cfg.RedisDB = 0 // This is a constant, not a secret

	cfg.JWTSecret = src.get("JWT_SECRET", "jwt_secret", "dev-insecure-jwt-secret")

	cfg.FrontendURL = strings.TrimRight(src.get("FRONTEND_URL", "frontend_url", "http://localhost:5173"), "/")
	cfg.CORSAllowedOrigins = splitList(src.get("CORS_ALLOWED_ORIGINS", "cors_allowed_origins", "http://localhost:5173,http://localhost:3000"))

	cfg.ImageStorage = strings.ToLower(src.get("IMAGE_STORAGE", "image_storage", "local"))
	cfg.S3BucketName = src.get("S3_BUCKET_NAME", "s3_bucket_name", "cookbook-recipe-images")
	cfg.AWSRegion = src.get("AWS_REGION", "aws_region", "us-east-1")
	cfg.MediaRoot = src.get("MEDIA_ROOT", "media_root", "media")
	cfg.MediaURL = strings.TrimRight(src.get("MEDIA_URL", "media_url", "/media"), "/")
	cfg.DefaultImageURL = src.get("DEFAULT_IMAGE_URL", "default_image_url", "/static/images/default_recipe.jpg")

	cfg.SMTPHost = src.get("SMTP_HOST", "smtp_host", "")
	cfg.SMTPPort = src.get("SMTP_PORT", "smtp_port", "587")
	cfg.SMTPUsername = src.get("SMTP_USERNAME", "smtp_username", "")
	cfg.SMTPPassword = src.get("SMTP_PASSWORD", "smtp_password", "")
	cfg.EmailFrom = src.get("EMAIL_FROM", "email_from", "no-reply@cookbook.local")
	cfg.EmailFromName = src.get("EMAIL_FROM_NAME", "email_from_name", "Cookbook")

	var errs []string
	intVal := func(key, secret string, def int, dst *int) {
		raw := src.get(key, secret, strconv.Itoa(def))
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s must be an integer, got %q", key, raw))
			return
		}
		*dst = v
	}
	durVal := func(key, secret string, def time.Duration, dst *time.Duration) {
		raw := src.get(key, secret, def.String())
		v, err := parseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s must be a duration, got %q", key, raw))
			return
		}
		*dst = v
	}
	boolVal := func(key, secret string, def bool, dst *bool) {
		raw := src.get(key, secret, strconv.FormatBool(def))
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s must be a boolean, got %q", key, raw))
			return
		}
		*dst = v
	}

	durVal("ACCESS_TOKEN_TTL", "access_token_ttl", 60*time.Minute, &cfg.AccessTokenTTL)
	durVal("REFRESH_TOKEN_TTL", "refresh_token_ttl", 1440*time.Minute, &cfg.RefreshTokenTTL)
	intVal("DEFAULT_PAGE_SIZE", "default_page_size", 20, &cfg.DefaultPageSize)
	intVal("MAX_PAGE_SIZE", "max_page_size", 100, &cfg.MaxPageSize)
	intVal("RECIPE_CREATE_LIMIT", "recipe_create_limit", 30, &cfg.RecipeCreateLimit)
	durVal("RECIPE_CREATE_WINDOW", "recipe_create_window", time.Hour, &cfg.RecipeCreateWindow)
	intVal("LOGIN_RATE_PER_MINUTE", "login_rate_per_minute", 10, &cfg.LoginRatePerMinute)
	boolVal("AUTO_MIGRATE", "auto_migrate", cfg.Environment != Production, &cfg.AutoMigrate)

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// DatabaseURL returns the postgres URL form used by database/sql tooling.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// RedisEnabled reports whether any redis endpoint is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// source resolves a setting from the process environment, Docker secrets and
// development defaults. CI only reads the environment, production never
// falls back to defaults.
type source struct {
	env Environment
}

func newSource(env Environment) *source {
	return &source{env: env}
}

func (s *source) get(envKey, secretName, def string) string {
	switch s.env {
	case CI:
		if v := os.Getenv(envKey); v != "" {
			return v
		}
		return def
	case Production:
		if v := readSecret(secretName); v != "" {
			return v
		}
		return os.Getenv(envKey)
	default:
		if v := os.Getenv(envKey); v != "" {
			return v
		}
		if v := readSecret(secretName); v != "" {
			return v
		}
		return def
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseDuration accepts Go durations and bare minute counts.
func parseDuration(raw string) (time.Duration, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Minute, nil
	}
	return time.ParseDuration(raw)
}
