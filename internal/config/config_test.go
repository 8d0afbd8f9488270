package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetenv clears keys for the test and restores them afterwards.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	unsetenv(t, "CONFIG_PATH", "APP_PORT", "JWT_REFRESH_EXPIRATION_TIME", "RETRY_ATTEMPTS")
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("JWT_SECRET_KEY", "jwt-secret")
	t.Setenv("APP_TIMEZONE", "Asia/Makassar")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("JWT_ACCESS_EXPIRATION_TIME", "15m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.AllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiration)
	assert.Equal(t, 168*time.Hour, cfg.JWT.RefreshExpiration)
	assert.Equal(t, uint(3), cfg.Retry.Attempts)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Makassar", loc.String())
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	unsetenv(t, "CONFIG_PATH", "DB_PASSWORD", "JWT_SECRET_KEY", "APP_TIMEZONE", "APP_PORT")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DB_PASSWORD=from-file\nJWT_SECRET_KEY=k\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Database.Password)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  port: 9090
  timezone: UTC
database:
  password: yaml-pass
jwt:
  secret: yaml-secret
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	unsetenv(t, "DB_PASSWORD", "JWT_SECRET_KEY", "APP_TIMEZONE", "APP_PORT", "LOG_LEVEL")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "yaml-pass", cfg.Database.Password)
	assert.Equal(t, "info", cfg.App.LogLevel)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			App:      AppConfig{Timezone: "UTC", LogLevel: "debug"},
			Database: DatabaseConfig{Password: "p"},
			JWT:      JWTConfig{Secret: "s", AccessExpiration: time.Hour, RefreshExpiration: time.Hour},
		}
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())
	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing db password", func(c *Config) { c.Database.Password = "" }, "DB_PASSWORD"},
		{"missing jwt secret", func(c *Config) { c.JWT.Secret = "" }, "JWT_SECRET_KEY"},
		{"bad timezone", func(c *Config) { c.App.Timezone = "Mars/Olympus" }, "APP_TIMEZONE"},
		{"bad log level", func(c *Config) { c.App.LogLevel = "loud" }, "LOG_LEVEL"},
		{"zero access ttl", func(c *Config) { c.JWT.AccessExpiration = 0 }, "expirations"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseURL_EscapesPassword(t *testing.T) {
	cfg := Config{Database: DatabaseConfig{
		Host: "db", Port: 5432, User: "app", Password: "p@ss/word", Name: "siteops", SSLMode: "require",
	}}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/siteops?sslmode=require", cfg.DatabaseURL())
}
