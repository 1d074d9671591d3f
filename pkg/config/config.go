package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Cart         CartConfig
	FeatureFlags FeatureFlagsConfig
	CORS         CORSConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Maintenance  MaintenanceConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"RAWMART_APP_ENV" required:"true"`
	Port         string `envconfig:"RAWMART_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"RAWMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RAWMART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

type DBConfig struct {
	DSN    string `envconfig:"RAWMART_DB_DSN"`
	Driver string `envconfig:"RAWMART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RAWMART_DB_HOST"`
	LegacyPort     int    `envconfig:"RAWMART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RAWMART_DB_USER"`
	LegacyPassword string `envconfig:"RAWMART_DB_PASSWORD"`
	LegacyName     string `envconfig:"RAWMART_DB_NAME"`
	LegacySSLMode  string `envconfig:"RAWMART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RAWMART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RAWMART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RAWMART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RAWMART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"RAWMART_DB_SLOW_QUERY" default:"200ms"`
}

// IsSQLite reports whether the database runs on the embedded sqlite dialect.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"RAWMART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"RAWMART_REDIS_ADDR"`
	Password     string        `envconfig:"RAWMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"RAWMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RAWMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RAWMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RAWMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RAWMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RAWMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

const (
	CartBackendSQL    = "sql"
	CartBackendRedis  = "redis"
	CartBackendMemory = "memory"
)

// CartConfig selects where session carts live and how hard clients may hit them.
type CartConfig struct {
	Backend         string        `envconfig:"RAWMART_CART_BACKEND" default:"sql"`
	TTL             time.Duration `envconfig:"RAWMART_CART_TTL" default:"720h"`
	MaxLineQuantity int           `envconfig:"RAWMART_CART_MAX_LINE_QUANTITY" default:"10000"`
	RateLimitWindow time.Duration `envconfig:"RAWMART_CART_RATE_LIMIT_WINDOW" default:"1m"`
	RateLimit       int           `envconfig:"RAWMART_CART_RATE_LIMIT" default:"120"`
}

func (c CartConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case CartBackendSQL, CartBackendRedis, CartBackendMemory:
	default:
		return fmt.Errorf("%s must be one of sql, redis, memory (got %q)", EnvCartBackend, c.Backend)
	}
	if c.MaxLineQuantity <= 0 {
		return fmt.Errorf("%s must be positive", EnvCartMaxLineQuantity)
	}
	return nil
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"RAWMART_AUTO_MIGRATE" default:"false"`
	SeedCatalog bool `envconfig:"RAWMART_SEED_CATALOG" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"RAWMART_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"RAWMART_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"RAWMART_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"RAWMART_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic  string `envconfig:"RAWMART_PUBSUB_ORDERS_TOPIC" default:"rawmart-order-events"`
	CreateTopics bool   `envconfig:"RAWMART_PUBSUB_CREATE_TOPICS" default:"false"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"RAWMART_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"RAWMART_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"RAWMART_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// MaintenanceConfig drives the maintenance worker.
type MaintenanceConfig struct {
	Interval            time.Duration `envconfig:"RAWMART_MAINTENANCE_INTERVAL" default:"1h"`
	OutboxRetentionDays int           `envconfig:"RAWMART_OUTBOX_RETENTION_DAYS" default:"30"`
}

// StorefrontConfig drives the terminal storefront client.
type StorefrontConfig struct {
	APIURL      string        `envconfig:"RAWMART_STOREFRONT_API_URL" default:"http://localhost:8080/api/v1"`
	Timeout     time.Duration `envconfig:"RAWMART_STOREFRONT_TIMEOUT" default:"10s"`
	SessionFile string        `envconfig:"RAWMART_STOREFRONT_SESSION_FILE" default:".rawmart/session.json"`
	LogLevel    string        `envconfig:"RAWMART_LOG_LEVEL" default:"warn"`
}

// LoadStorefront reads only the client-side settings; it never requires server variables.
func LoadStorefront() (*StorefrontConfig, error) {
	var cfg StorefrontConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing storefront config: %w", err)
	}
	if _, err := url.ParseRequestURI(cfg.APIURL); err != nil {
		return nil, fmt.Errorf("%s is not a valid url: %w", EnvStorefrontAPIURL, err)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("%s must be positive", EnvStorefrontTimeout)
	}
	return &cfg, nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:rawmart.db?cache=shared"
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
