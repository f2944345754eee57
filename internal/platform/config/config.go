// Package config loads runtime settings for the blog API.
//
// Values are resolved in three layers: built-in defaults, an optional YAML file
// (path taken from CONFIG_FILE), then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// EnvProduction is the APP_ENV value that enables production checks.
	EnvProduction = "production"

	// DevJWTSecret is only accepted outside production.
	DevJWTSecret = "dev-secret-change-me"

	// DriverPostgres and DriverSQLite are the supported database drivers.
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the root configuration structure.
type Config struct {
	Env      string         `yaml:"env"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            string        `yaml:"port"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig contains connection and migration settings.
type DatabaseConfig struct {
	Driver        string        `yaml:"driver"`
	Host          string        `yaml:"host"`
	Port          string        `yaml:"port"`
	User          string        `yaml:"user"`
	Password      string        `yaml:"password"`
	Name          string        `yaml:"name"`
	SSLMode       string        `yaml:"sslmode"`
	SQLitePath    string        `yaml:"sqlite_path"`
	RunMigrations bool          `yaml:"run_migrations"`
	ConnectWait   time.Duration `yaml:"connect_wait"`
	// OpTimeout bounds every single persistence call made by the usecases.
	OpTimeout time.Duration `yaml:"op_timeout"`
}

// RedisConfig contains Redis connection settings. Redis is optional.
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Enabled reports whether a Redis host has been configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// AuthConfig contains token and password hashing settings.
type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret"`
	TokenExpiration time.Duration `yaml:"token_expiration"`
	BcryptCost      int           `yaml:"bcrypt_cost"`
	RateLimit       int           `yaml:"rate_limit"`
	RateWindow      time.Duration `yaml:"rate_window"`
}

// CacheConfig contains read-cache settings.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a development configuration backed by a local sqlite file.
func Default() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			Port:            "5000",
			AllowedOrigins:  []string{"http://localhost:3000"},
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:        DriverSQLite,
			Host:          "localhost",
			Port:          "5432",
			User:          "postgres",
			Name:          "blog",
			SSLMode:       "disable",
			SQLitePath:    "./blog.db",
			RunMigrations: true,
			ConnectWait:   60 * time.Second,
			OpTimeout:     3 * time.Second,
		},
		Redis: RedisConfig{
			Port: "6379",
		},
		Auth: AuthConfig{
			JWTSecret:       DevJWTSecret,
			TokenExpiration: 24 * time.Hour,
			BcryptCost:      10,
			RateLimit:       20,
			RateWindow:      time.Minute,
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Validate checks settings that would otherwise fail at runtime.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.Driver != DriverPostgres && c.Database.Driver != DriverSQLite {
		errs = append(errs, fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret must be set"))
	}
	if c.IsProduction() && c.Auth.JWTSecret == DevJWTSecret {
		errs = append(errs, errors.New("auth.jwt_secret must be changed in production"))
	}
	if c.Auth.TokenExpiration <= 0 {
		errs = append(errs, errors.New("auth.token_expiration must be positive"))
	}
	// bcrypt.MinCost..bcrypt.MaxCost
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost must be between 4 and 31, got %d", c.Auth.BcryptCost))
	}
	if c.Database.OpTimeout <= 0 {
		errs = append(errs, errors.New("database.op_timeout must be positive"))
	}

	return errors.Join(errs...)
}

func applyEnv(c *Config) error {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	envString("APP_ENV", &c.Env)

	envString("PORT", &c.Server.Port)
	envList("ALLOWED_ORIGINS", &c.Server.AllowedOrigins)
	collect(envDuration("SERVER_READ_TIMEOUT", &c.Server.ReadTimeout))
	collect(envDuration("SERVER_WRITE_TIMEOUT", &c.Server.WriteTimeout))
	collect(envDuration("SERVER_SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout))

	envString("DB_DRIVER", &c.Database.Driver)
	envString("DB_HOST", &c.Database.Host)
	envString("DB_PORT", &c.Database.Port)
	envString("DB_USER", &c.Database.User)
	envString("DB_PASSWORD", &c.Database.Password)
	envString("DB_NAME", &c.Database.Name)
	envString("DB_SSLMODE", &c.Database.SSLMode)
	envString("SQLITE_PATH", &c.Database.SQLitePath)
	collect(envBool("RUN_MIGRATIONS", &c.Database.RunMigrations))
	collect(envDuration("DB_CONNECT_WAIT", &c.Database.ConnectWait))
	collect(envDuration("DB_OP_TIMEOUT", &c.Database.OpTimeout))

	envString("REDIS_HOST", &c.Redis.Host)
	envString("REDIS_PORT", &c.Redis.Port)
	envString("REDIS_PASSWORD", &c.Redis.Password)
	collect(envInt("REDIS_DB", &c.Redis.DB))

	envString("JWT_SECRET", &c.Auth.JWTSecret)
	collect(envDuration("JWT_EXPIRATION", &c.Auth.TokenExpiration))
	collect(envInt("BCRYPT_COST", &c.Auth.BcryptCost))
	collect(envInt("AUTH_RATE_LIMIT", &c.Auth.RateLimit))
	collect(envDuration("AUTH_RATE_WINDOW", &c.Auth.RateWindow))

	collect(envDuration("CACHE_TTL", &c.Cache.TTL))

	envString("LOG_LEVEL", &c.Logging.Level)
	envString("LOG_FORMAT", &c.Logging.Format)

	return errors.Join(errs...)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envList(key string, dst *[]string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	*dst = out
}

func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, v)
	}
	*dst = n
	return nil
}

func envBool(key string, dst *bool) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	*dst = b
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q", key, v)
	}
	*dst = d
	return nil
}
