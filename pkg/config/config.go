package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "WIDGETC"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "WIDGETC_DB_DSN"
	EnvDBHost = "WIDGETC_DB_HOST"
	EnvDBUser = "WIDGETC_DB_USER"
	EnvDBName = "WIDGETC_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Quote        QuoteConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WIDGETC_APP_ENV" required:"true"`
	Port         string `envconfig:"WIDGETC_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WIDGETC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WIDGETC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"WIDGETC_DB_DSN"`
	Driver string `envconfig:"WIDGETC_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WIDGETC_DB_HOST"`
	LegacyPort     int    `envconfig:"WIDGETC_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WIDGETC_DB_USER"`
	LegacyPassword string `envconfig:"WIDGETC_DB_PASSWORD"`
	LegacyName     string `envconfig:"WIDGETC_DB_NAME"`
	LegacySSLMode  string `envconfig:"WIDGETC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WIDGETC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WIDGETC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WIDGETC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WIDGETC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WIDGETC_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WIDGETC_REDIS_ADDR"`
	Password     string        `envconfig:"WIDGETC_REDIS_PASSWORD"`
	DB           int           `envconfig:"WIDGETC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WIDGETC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WIDGETC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WIDGETC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WIDGETC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WIDGETC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"WIDGETC_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"WIDGETC_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"WIDGETC_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"WIDGETC_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"WIDGETC_PUBSUB_ORDERS_TOPIC" default:"wc-order-events"`
	ProductionTopic    string `envconfig:"WIDGETC_PUBSUB_PRODUCTION_TOPIC" default:"wc-production-dispatch"`
	OrdersSubscription string `envconfig:"WIDGETC_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"WIDGETC_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"WIDGETC_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"WIDGETC_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// QuoteConfig carries tunables of the quote/order pipeline. The price match
// tolerance is expressed in currency units and compared strictly less-than.
type QuoteConfig struct {
	PriceMatchTolerance float64 `envconfig:"WIDGETC_PRICE_MATCH_TOLERANCE" default:"1"`
	OrderCodeRetries    int     `envconfig:"WIDGETC_ORDER_CODE_RETRIES" default:"3"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
