package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("CI", "")
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "recipes")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("ACCESS_TOKEN_TTL", "15")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "recipes", cfg.DBName)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfigWithDefaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("CI", "")
	t.Setenv("SECRETS_DIR", t.TempDir())
	for _, key := range []string{"DB_HOST", "DB_NAME", "JWT_SECRET", "REDIS_URL", "REDIS_HOST", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "DEFAULT_PAGE_SIZE", "MAX_PAGE_SIZE"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "cookbook", cfg.DBName)
	assert.Equal(t, 60*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 20, cfg.DefaultPageSize)
	assert.Equal(t, 100, cfg.MaxPageSize)
	assert.False(t, cfg.RedisEnabled())
	assert.True(t, cfg.AutoMigrate)
}

func TestLoadConfigReadsSecrets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("from-secret\n"), 0o600))
	t.Setenv("ENV", "development")
	t.Setenv("CI", "")
	t.Setenv("SECRETS_DIR", dir)
	t.Setenv("JWT_SECRET", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret", cfg.JWTSecret)
}

func TestValidateConfigReportsEveryProblem(t *testing.T) {
	t.Setenv("SECRETS_DIR", t.TempDir())
	cfg := &Config{
		Environment:     Production,
		DBDriver:        "sqlite",
		SQLitePath:      "x.db",
		DefaultPageSize: 0,
		MaxPageSize:     10,
		ImageStorage:    "ftp",
	}

	err := ValidateConfig(cfg)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "required secret db_password is not set")
	assert.Contains(t, msg, "required secret jwt_secret is not set")
	assert.Contains(t, msg, "sqlite driver is not allowed in production")
	assert.Contains(t, msg, "JWT_SECRET is required")
	assert.Contains(t, msg, "DEFAULT_PAGE_SIZE must be at least 1")
	assert.Contains(t, msg, `unsupported IMAGE_STORAGE "ftp"`)
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("CI", "true")
	assert.Equal(t, CI, GetEnvironment())

	t.Setenv("CI", "")
	t.Setenv("ENV", "production")
	assert.True(t, IsProduction())

	t.Setenv("ENV", "whatever")
	assert.True(t, IsDevelopment())
}
