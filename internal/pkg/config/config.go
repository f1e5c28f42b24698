package config

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	minProductionSecretLen = 32
)

var (
	ErrMissingSecret = errors.New("config: JWT_SECRET is required in production")
	ErrWeakSecret    = fmt.Errorf("config: JWT_SECRET must be at least %d bytes in production", minProductionSecretLen)
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	CORSOrigins    []string      `env:"CORS_ORIGINS,    default=http://localhost:5173"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL, default=1h"`
	LoginWorkers   int           `env:"LOGIN_WORKERS,   default=4"`

	Mongo MongoConfig
	Redis RedisConfig
	Seed  SeedConfig

	// GeneratedSecret is set when Validate had to invent a development secret.
	GeneratedSecret bool
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=vreta_crm"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// SeedConfig holds the bootstrap administrator; there is no built-in default.
type SeedConfig struct {
	AdminUsername string `env:"SEED_ADMIN_USERNAME"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD"`
	AdminEmail    string `env:"SEED_ADMIN_EMAIL"`
	AdminFullName string `env:"SEED_ADMIN_FULL_NAME, default=System Administrator"`
}

// Load reads an optional .env file, then the environment, and validates the
// result. A missing .env file is not an error.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom processes configuration from an arbitrary lookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool { return c.Env == EnvProduction }

// Validate refuses to start production without a real signing secret. Outside
// production a missing secret is replaced with a random one for this process.
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.JWTSecret == "" {
			return ErrMissingSecret
		}
		if len(c.JWTSecret) < minProductionSecretLen {
			return ErrWeakSecret
		}
		return nil
	}
	if c.JWTSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return fmt.Errorf("config: generate development secret: %w", err)
		}
		c.JWTSecret = secret
		c.GeneratedSecret = true
	}
	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, minProductionSecretLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
