package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// IsDevelopment reports whether the server runs in development mode
func (s ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
	SSLMode  string
}

// DSN builds a postgres connection URL for the pgx driver
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   d.Host + ":" + d.Port,
		Path:   "/" + d.Database,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	q.Set("search_path", d.Schema)
	u.RawQuery = q.Encode()
	return u.String()
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns the host:port pair of the redis server
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// Rate limiter backends
const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
	RateLimitBackendOff    = "off"
)

type RateLimitConfig struct {
	Backend  string
	Requests int
	Window   time.Duration
}

// Load reads configuration from a local .env file and the process environment.
// Environment variables take precedence over the file.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: no .env file loaded: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_ACCESS_TOKEN_EXPIRATION", "24h")
	v.SetDefault("RATE_LIMIT_BACKEND", RateLimitBackendMemory)
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Env:            v.GetString("SERVER_ENV"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Database: v.GetString("DB_DATABASE"),
			Schema:   v.GetString("DB_SCHEMA"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       v.GetString("JWT_SECRET_KEY"),
			AccessExpiry: v.GetDuration("JWT_ACCESS_TOKEN_EXPIRATION"),
		},
		RateLimit: RateLimitConfig{
			Backend:  strings.ToLower(v.GetString("RATE_LIMIT_BACKEND")),
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   v.GetDuration("RATE_LIMIT_WINDOW"),
		},
	}
}

// Validate reports configuration that would prevent the API from serving safely
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.JWT.Secret) == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}
	if c.JWT.AccessExpiry <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_TOKEN_EXPIRATION must be positive"))
	}

	switch c.RateLimit.Backend {
	case RateLimitBackendMemory, RateLimitBackendRedis:
		if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive"))
		}
	case RateLimitBackendOff:
	default:
		errs = append(errs, fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", c.RateLimit.Backend))
	}

	return errors.Join(errs...)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
