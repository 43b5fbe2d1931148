package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Store drivers.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port        string `env:"PORT,         default=8080"`
	Env         string `env:"ENV,          default=development"`
	LogLevel    string `env:"LOG_LEVEL,    default=info"`
	JWTSecret   string `env:"JWT_SECRET"`
	FrontendURL string `env:"FRONTEND_URL, default=*"`

	// PasswordHasher selects the digest algorithm for new passwords.
	PasswordHasher string `env:"PASSWORD_HASHER, default=bcrypt"`
	StoreDriver    string `env:"STORE_DRIVER,    default=mongo"`

	CourseCacheTTL time.Duration `env:"COURSE_CACHE_TTL, default=5m"`
	CleanupWorkers int           `env:"CLEANUP_WORKERS,  default=4"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI         string        `env:"MONGO_URI,           default=mongodb://localhost:27017"`
	Database    string        `env:"MONGO_DB,            default=lms"`
	AppName     string        `env:"MONGO_APP_NAME,      default=lms-api"`
	Timeout     time.Duration `env:"MONGO_TIMEOUT,       default=10s"`
	MaxPoolSize uint64        `env:"MONGO_MAX_POOL_SIZE, default=100"`
	MinPoolSize uint64        `env:"MONGO_MIN_POOL_SIZE, default=0"`
}

// RedisConfig is optional: an empty address disables the course cache.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,      default=0"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT, default=5s"`
}

// IsDevelopment reports whether the service runs outside production.
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("config: STORE_DRIVER must be %q or %q, got %q", DriverMongo, DriverMemory, c.StoreDriver)
	}
	switch c.PasswordHasher {
	case "bcrypt", "argon2id":
	default:
		return fmt.Errorf("config: PASSWORD_HASHER must be bcrypt or argon2id, got %q", c.PasswordHasher)
	}
	if c.Mongo.MinPoolSize > c.Mongo.MaxPoolSize && c.Mongo.MaxPoolSize > 0 {
		return fmt.Errorf("config: MONGO_MIN_POOL_SIZE (%d) exceeds MONGO_MAX_POOL_SIZE (%d)", c.Mongo.MinPoolSize, c.Mongo.MaxPoolSize)
	}
	if c.CleanupWorkers < 1 {
		return fmt.Errorf("config: CLEANUP_WORKERS must be positive, got %d", c.CleanupWorkers)
	}
	return nil
}
