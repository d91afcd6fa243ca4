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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Checkout     CheckoutConfig
	Cron         CronConfig
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
	Env          string `envconfig:"BOOKMART_APP_ENV" required:"true"`
	Port         string `envconfig:"BOOKMART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BOOKMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BOOKMART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"BOOKMART_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"BOOKMART_DB_DSN"`
	Driver string `envconfig:"BOOKMART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BOOKMART_DB_HOST"`
	LegacyPort     int    `envconfig:"BOOKMART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BOOKMART_DB_USER"`
	LegacyPassword string `envconfig:"BOOKMART_DB_PASSWORD"`
	LegacyName     string `envconfig:"BOOKMART_DB_NAME"`
	LegacySSLMode  string `envconfig:"BOOKMART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BOOKMART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BOOKMART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BOOKMART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BOOKMART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BOOKMART_REDIS_URL"`
	Address      string        `envconfig:"BOOKMART_REDIS_ADDR"`
	Password     string        `envconfig:"BOOKMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOOKMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BOOKMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BOOKMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BOOKMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOOKMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BOOKMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BOOKMART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BOOKMART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BOOKMART_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BOOKMART_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BOOKMART_AUTO_MIGRATE" default:"false"`
}

type CheckoutConfig struct {
	OrderNumberMaxRetries int           `envconfig:"BOOKMART_ORDER_NUMBER_MAX_RETRIES" default:"5"`
	IdempotencyTTL        time.Duration `envconfig:"BOOKMART_CHECKOUT_IDEMPOTENCY_TTL" default:"168h"`
}

type CronConfig struct {
	Interval              time.Duration `envconfig:"BOOKMART_CRON_INTERVAL" default:"1h"`
	CancelUnpaidAfter     time.Duration `envconfig:"BOOKMART_CRON_CANCEL_UNPAID_AFTER" default:"240h"`
	NotificationRetention time.Duration `envconfig:"BOOKMART_CRON_NOTIFICATION_RETENTION" default:"720h"`
	LockTTL               time.Duration `envconfig:"BOOKMART_CRON_LOCK_TTL" default:"2h"`
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
