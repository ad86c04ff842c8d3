package config

import (
	"fmt"
	"strings"
)

// ConfigRequirements defines required settings for each environment
type ConfigRequirements struct {
	RequiredSecrets []string
}

var (
	// Environment-specific requirements. Development and test run on defaults.
	requirements = map[Environment]ConfigRequirements{
		Production: {
			RequiredSecrets: []string{
				"db_password",
				"jwt_secret",
			},
		},
	}
)

// ValidateConfig checks if the configuration meets the requirements for the current environment.
// Every problem is reported, not only the first one.
func ValidateConfig(cfg *Config) error {
	var errors []string

	for _, secret := range requirements[cfg.Environment].RequiredSecrets {
		if readSecret(secret) == "" {
			errors = append(errors, fmt.Sprintf("required secret %s is not set", secret))
		}
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" || cfg.DBName == "" {
			errors = append(errors, "DB_HOST and DB_NAME are required for the postgres driver")
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			errors = append(errors, "SQLITE_PATH is required for the sqlite driver")
		}
		if cfg.Environment == Production {
			errors = append(errors, "the sqlite driver is not allowed in production")
		}
	default:
		errors = append(errors, fmt.Sprintf("unsupported DB_DRIVER %q", cfg.DBDriver))
	}

	if cfg.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET is required")
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		errors = append(errors, "token lifetimes must be positive")
	} else if cfg.RefreshTokenTTL <= cfg.AccessTokenTTL {
		errors = append(errors, "REFRESH_TOKEN_TTL must be longer than ACCESS_TOKEN_TTL")
	}

	if cfg.DefaultPageSize < 1 {
		errors = append(errors, "DEFAULT_PAGE_SIZE must be at least 1")
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		errors = append(errors, "MAX_PAGE_SIZE must not be smaller than DEFAULT_PAGE_SIZE")
	}

	switch cfg.ImageStorage {
	case "local":
		if cfg.MediaRoot == "" {
			errors = append(errors, "MEDIA_ROOT is required for local image storage")
		}
	case "s3":
		if cfg.S3BucketName == "" {
			errors = append(errors, "S3_BUCKET_NAME is required for s3 image storage")
		}
	default:
		errors = append(errors, fmt.Sprintf("unsupported IMAGE_STORAGE %q", cfg.ImageStorage))
	}

	if cfg.RecipeCreateLimit < 1 || cfg.RecipeCreateWindow <= 0 {
		errors = append(errors, "recipe creation limit and window must be positive")
	}
	if cfg.LoginRatePerMinute < 1 {
		errors = append(errors, "LOGIN_RATE_PER_MINUTE must be at least 1")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
