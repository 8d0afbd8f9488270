package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	JWT        JWTConfig        `yaml:"jwt"`
	Storage    StorageConfig    `yaml:"storage"`
	Attendance AttendanceConfig `yaml:"attendance"`
	Retry      RetryConfig      `yaml:"retry"`
	Cache      CacheConfig      `yaml:"cache"`
}

// AppConfig holds application configuration
type AppConfig struct {
	Name            string        `yaml:"name" env:"APP_NAME" env-default:"siteops"`
	Version         string        `yaml:"version" env:"APP_VERSION" env-default:"v1.0.0"`
	Port            int           `yaml:"port" env:"APP_PORT" env-default:"8080"`
	Env             string        `yaml:"env" env:"APP_ENV" env-default:"development"`
	LogLevel        string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Timezone        string        `yaml:"timezone" env:"APP_TIMEZONE" env-default:"Asia/Jakarta"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"APP_SHUTDOWN_TIMEOUT" env-default:"15s"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Name     string `yaml:"name" env:"DB_NAME" env-default:"siteops"`
	SSLMode  string `yaml:"ssl_mode" env:"DB_SSL_MODE" env-default:"disable"`
	MaxConns int32  `yaml:"max_conns" env:"DB_MAX_CONNS" env-default:"10"`
	Migrate  bool   `yaml:"migrate" env:"DB_MIGRATE" env-default:"true"`
}

// RedisConfig backs the distributed locks. An empty Addr falls back to in-process locks.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string        `yaml:"secret" env:"JWT_SECRET_KEY"`
	AccessExpiration  time.Duration `yaml:"access_expiration" env:"JWT_ACCESS_EXPIRATION_TIME" env-default:"1h"`
	RefreshExpiration time.Duration `yaml:"refresh_expiration" env:"JWT_REFRESH_EXPIRATION_TIME" env-default:"168h"`
	BcryptCost        int           `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
}

type StorageConfig struct {
	BasePath string `yaml:"base_path" env:"STORAGE_BASE_PATH" env-default:"./storage"`
	BaseURL  string `yaml:"base_url" env:"STORAGE_BASE_URL" env-default:"/files"`
}

type AttendanceConfig struct {
	StatsConcurrency int           `yaml:"stats_concurrency" env:"ATTENDANCE_STATS_CONCURRENCY" env-default:"8"`
	CronLockTTL      time.Duration `yaml:"cron_lock_ttl" env:"ATTENDANCE_CRON_LOCK_TTL" env-default:"10m"`
}

// RetryConfig bounds retries around record fetches.
type RetryConfig struct {
	Attempts uint          `yaml:"attempts" env:"RETRY_ATTEMPTS" env-default:"3"`
	Delay    time.Duration `yaml:"delay" env:"RETRY_DELAY" env-default:"100ms"`
	MaxDelay time.Duration `yaml:"max_delay" env:"RETRY_MAX_DELAY" env-default:"2s"`
}

type CacheConfig struct {
	MaxSize int           `yaml:"max_size" env:"CACHE_MAX_SIZE" env-default:"1000"`
	TTL     time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"5m"`
}

// Load reads .env (when present), then an optional YAML file named by CONFIG_PATH,
// then the environment, which wins over both.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.JWT.AccessExpiration <= 0 || c.JWT.RefreshExpiration <= 0 {
		return fmt.Errorf("JWT expirations must be positive")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("APP_TIMEZONE %q: %w", c.App.Timezone, err)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// Location is the timezone every calendar day is computed in.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.App.Timezone)
}

func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.App.LogLevel))); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL %q: %w", c.App.LogLevel, err)
	}
	return level, nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     c.Database.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.Database.SSLMode),
	}
	return u.String()
}
