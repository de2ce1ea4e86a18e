package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	Env     string `envconfig:"APP_ENV" default:"development"`
	Port    int    `envconfig:"APP_PORT" default:"8080"`
	Store   string `envconfig:"STORE_DRIVER" default:"postgres"`
	DB      DBConfig
	Redis   RedisConfig
	Limiter RateLimiterConfig
	CORS    CORSConfig
	JWT     JWTConfig
	Cache   CacheConfig
}

// database configuration
type DBConfig struct {
	DSN             string        `envconfig:"DATABASE_URL"`
	MaxConns        int32         `envconfig:"DB_MAX_CONNS" default:"25"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	Migrate         bool          `envconfig:"DB_MIGRATE" default:"true"`
}

// RedisConfig enables the cross-node chat relay when Addr is set.
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	Channel  string `envconfig:"REDIS_CHAT_CHANNEL" default:"skillhire:chat"`
}

// rate limiting configuration
type RateLimiterConfig struct {
	RPS     float64 `envconfig:"RATE_LIMIT_RPS" default:"10"`
	Burst   int     `envconfig:"RATE_LIMIT_BURST" default:"20"`
	Enabled bool    `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// CORS configuration
type CORSConfig struct {
	TrustedOrigins []string `envconfig:"CORS_TRUSTED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

// JWT configuration
type JWTConfig struct {
	Secret string        `envconfig:"JWT_SECRET" required:"true"`
	TTL    time.Duration `envconfig:"JWT_TTL" default:"168h"` // 7 days
}

type CacheConfig struct {
	UserTTL time.Duration `envconfig:"USER_CACHE_TTL" default:"1m"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Env] {
		return fmt.Errorf("invalid environment: %s (must be one of: development, staging, production, test)", c.Env)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be between 1 and 65535)", c.Port)
	}
	switch c.Store {
	case StoreDriverPostgres:
		if c.DB.DSN == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=%s", StoreDriverPostgres)
		}
		if c.DB.MaxConns < 1 {
			return fmt.Errorf("DB_MAX_CONNS must be at least 1")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("invalid STORE_DRIVER: %s (must be %s or %s)", c.Store, StoreDriverPostgres, StoreDriverMemory)
	}
	if c.Limiter.RPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be non-negative")
	}
	if c.Limiter.Burst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.Cache.UserTTL < 0 {
		return fmt.Errorf("USER_CACHE_TTL must be non-negative")
	}
	if len(c.GetCORSOrigins()) == 0 {
		return fmt.Errorf("at least one trusted origin must be specified")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// RelayEnabled reports whether chat fan-out goes through Redis.
func (c *Config) RelayEnabled() bool {
	return c.Redis.Addr != ""
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// GetCORSOrigins returns the list of trusted CORS origins
func (c *Config) GetCORSOrigins() []string {
	origins := make([]string, 0, len(c.CORS.TrustedOrigins))
	for _, origin := range c.CORS.TrustedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{Env=%s, Port=%d, Store=%s, DB.MaxConns=%d, Redis=%t, "+
		"Limiter.RPS=%.2f, Limiter.Burst=%d, Limiter.Enabled=%t, CORS.Origins=%d, JWT.TTL=%s, Cache.UserTTL=%s}",
		c.Env, c.Port, c.Store, c.DB.MaxConns, c.RelayEnabled(),
		c.Limiter.RPS, c.Limiter.Burst, c.Limiter.Enabled, len(c.CORS.TrustedOrigins), c.JWT.TTL, c.Cache.UserTTL)
}
