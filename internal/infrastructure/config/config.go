package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const minBcryptCost = 10

// Config is built once at startup and passed to every component that needs it.
type Config struct {
	Port     string `env:"PORT,      default=5000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth      AuthConfig
	HTTP      HTTPConfig
	RateLimit RateLimitConfig
	Mongo     MongoConfig
	Redis     RedisConfig
}

type AuthConfig struct {
	JWTSecret  string `env:"JWT_SECRET, required"`
	Issuer     string `env:"JWT_ISSUER,  default=payments-portal"`
	BcryptCost int    `env:"BCRYPT_COST, default=12"`
}

type HTTPConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS, default=http://localhost:3000"`
	TLSCertFile    string   `env:"TLS_CERT_FILE"`
	TLSKeyFile     string   `env:"TLS_KEY_FILE"`
	BodyLimit      string   `env:"HTTP_BODY_LIMIT, default=64K"`
}

type RateLimitConfig struct {
	Max    int           `env:"RATE_LIMIT_MAX,    default=100"`
	Window time.Duration `env:"RATE_LIMIT_WINDOW, default=25m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=payments_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// TLSEnabled reports whether both certificate and key are configured.
func (c *Config) TLSEnabled() bool {
	return c.HTTP.TLSCertFile != "" && c.HTTP.TLSKeyFile != ""
}

// Validate rejects settings the service must not start with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.Auth.BcryptCost < minBcryptCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be at least %d", minBcryptCost))
	}
	if (c.HTTP.TLSCertFile == "") != (c.HTTP.TLSKeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together"))
	}
	if c.IsProduction() && !c.TLSEnabled() {
		errs = append(errs, errors.New("TLS is required in production"))
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive"))
	}
	return errors.Join(errs...)
}

// Load reads an optional .env file, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
