package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/pflag"
)

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development" validate:"oneof=development staging production test"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	// VerifierWorkers sizes the bcrypt pool. Zero means one per CPU.
	VerifierWorkers int `env:"VERIFIER_WORKERS, default=0" validate:"gte=0"`

	Session  SessionConfig
	Blob     BlobConfig
	Postgres PostgresConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET, required"             validate:"min=32"`
	Backend      string        `env:"SESSION_BACKEND, default=redis"       validate:"oneof=redis memory"`
	TTL          time.Duration `env:"SESSION_TTL, default=24h"             validate:"gt=0"`
	MaxAge       time.Duration `env:"SESSION_MAX_AGE, default=168h"        validate:"gt=0"`
	CookieName   string        `env:"SESSION_COOKIE, default=cogere_session" validate:"required"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE, default=false"`
}

type BlobConfig struct {
	Backend     string `env:"BLOB_BACKEND, default=filesystem" validate:"oneof=filesystem gridfs memory"`
	DataFolder  string `env:"DATA_FOLDER, default=./data"`
	Compression string `env:"BLOB_COMPRESSION, default=none"   validate:"oneof=none lz4 zstd"`
	Bucket      string `env:"GRIDFS_BUCKET, default=blobs"`
	MaxUpload   int64  `env:"MAX_UPLOAD_BYTES, default=67108864" validate:"gt=0"`
}

type PostgresConfig struct {
	URL      string `env:"DATABASE_URL, required"        validate:"required"`
	MaxConns int32  `env:"DATABASE_MAX_CONNS, default=10" validate:"gte=0"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=cogere"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// UsesMongo reports whether any configured component needs MongoDB.
func (c *Config) UsesMongo() bool {
	return c.Blob.Backend == "gridfs"
}

// UsesRedis reports whether sessions live in Redis.
func (c *Config) UsesRedis() bool {
	return c.Session.Backend == "redis"
}

// RegisterFlags binds command-line overrides for the most commonly tuned
// settings. Flag defaults are the values already loaded from the environment,
// so flags only change what the operator passes explicitly.
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Port, "port", c.Port, "HTTP listen port")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "minimum log level: trace, debug, info, warn, error")
	fs.BoolVar(&c.LogPretty, "log-pretty", c.LogPretty, "human-friendly console logs")
	fs.StringVar(&c.Blob.Backend, "blob-backend", c.Blob.Backend, "blob backend: filesystem, gridfs or memory")
	fs.StringVar(&c.Blob.DataFolder, "data-folder", c.Blob.DataFolder, "root directory of the filesystem blob backend")
	fs.StringVar(&c.Blob.Compression, "blob-compression", c.Blob.Compression, "blob compression: none, lz4 or zstd")
	fs.StringVar(&c.Session.Backend, "session-backend", c.Session.Backend, "session backend: redis or memory")
	fs.IntVar(&c.VerifierWorkers, "verifier-workers", c.VerifierWorkers, "credential verification workers (0 = one per CPU)")
}

// Validate checks the loaded values against their validate tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// LoadFrom reads configuration through l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}
