package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=5000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	AccessTokenSecret string        `env:"ACCESS_TOKEN_SECRET, required"`
	AccessTokenTTL    time.Duration `env:"ACCESS_TOKEN_TTL,    default=1h"`

	StoreDriver       string `env:"STORE_DRIVER,                 default=mongo"`
	StrictTransitions bool   `env:"AGREEMENT_STRICT_TRANSITIONS, default=false"`
	AuditWorkers      int    `env:"AUDIT_WORKERS,                default=4"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`
	CORSOrigins     []string      `env:"CORS_ORIGINS,     default=*"`

	// BootstrapAdmin is seeded as an admin identity when STORE_DRIVER=memory.
	BootstrapAdmin string `env:"BOOTSTRAP_ADMIN_EMAIL"`

	Mongo  MongoConfig
	Redis  RedisConfig
	Stripe StripeConfig
}

type MongoConfig struct {
	URI          string `env:"MONGO_URI"`
	User         string `env:"DB_USER"`
	Password     string `env:"DB_PASSWORD"`
	Cluster      string `env:"DB_CLUSTER"`
	Database     string `env:"MONGO_DB,           default=buildingManagementDB"`
	Transactions bool   `env:"MONGO_TRANSACTIONS, default=true"`
}

// RedisConfig leaves Addr empty by default; without it idempotency keys are ignored.
type RedisConfig struct {
	Addr      string `env:"REDIS_ADDR"`
	Password  string `env:"REDIS_PASSWORD"`
	DB        int    `env:"REDIS_DB, default=0"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX, default=idem"`
}

// StripeConfig leaves SecretKey empty by default; without it payment intents are disabled.
type StripeConfig struct {
	SecretKey string `env:"STRIPE_SECRET_KEY"`
	Currency  string `env:"STRIPE_CURRENCY, default=usd"`
}

// ConnectionURI returns MONGO_URI when set. Otherwise it builds an Atlas SRV
// string from DB_USER, DB_PASSWORD and DB_CLUSTER, falling back to a local server.
func (m MongoConfig) ConnectionURI() string {
	if m.URI != "" {
		return m.URI
	}
	if m.Cluster == "" {
		return "mongodb://localhost:27017"
	}

	u := url.URL{
		Scheme:   "mongodb+srv",
		Host:     m.Cluster,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority",
	}
	if m.User != "" {
		u.User = url.UserPassword(m.User, m.Password)
	}
	return u.String()
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through l.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case StoreMongo, StoreMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMongo, StoreMemory, c.StoreDriver)
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	return nil
}
