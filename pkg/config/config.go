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
	Cart         CartConfig
	Checkout     CheckoutConfig
	Slots        SlotsConfig
	Cron         CronConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.Slots.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CRUMB_APP_ENV" required:"true"`
	Port         string `envconfig:"CRUMB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CRUMB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CRUMB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CRUMB_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN string `envconfig:"CRUMB_DB_DSN"`

	LegacyHost     string `envconfig:"CRUMB_DB_HOST"`
	LegacyPort     int    `envconfig:"CRUMB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CRUMB_DB_USER"`
	LegacyPassword string `envconfig:"CRUMB_DB_PASSWORD"`
	LegacyName     string `envconfig:"CRUMB_DB_NAME"`
	LegacySSLMode  string `envconfig:"CRUMB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CRUMB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CRUMB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CRUMB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CRUMB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CRUMB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CRUMB_REDIS_ADDR"`
	Password     string        `envconfig:"CRUMB_REDIS_PASSWORD"`
	DB           int           `envconfig:"CRUMB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CRUMB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CRUMB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CRUMB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CRUMB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CRUMB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CartConfig controls the session cart kept in Redis.
type CartConfig struct {
	SessionTTL    time.Duration `envconfig:"CRUMB_CART_SESSION_TTL" default:"72h"`
	SessionHeader string        `envconfig:"CRUMB_CART_SESSION_HEADER" default:"X-Cart-Session"`
	MaxLineItems  int           `envconfig:"CRUMB_CART_MAX_LINE_ITEMS" default:"50"`
}

// CheckoutConfig throttles order placement per client.
type CheckoutConfig struct {
	RateLimitWindow  time.Duration `envconfig:"CRUMB_CHECKOUT_RATE_LIMIT_WINDOW" default:"1m"`
	RateLimitPerIP   int           `envconfig:"CRUMB_CHECKOUT_RATE_LIMIT_PER_IP" default:"10"`
	RateLimitPerCart int           `envconfig:"CRUMB_CHECKOUT_RATE_LIMIT_PER_CART" default:"3"`
}

// SlotsConfig carries platform-wide pickup slot defaults.
type SlotsConfig struct {
	MinDurationMinutes int    `envconfig:"CRUMB_SLOTS_MIN_DURATION_MINUTES" default:"15"`
	Timezone           string `envconfig:"CRUMB_SLOTS_TIMEZONE" default:"Europe/Paris"`
}

// Location resolves the configured slot timezone.
func (s SlotsConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(s.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading slots timezone %q: %w", name, err)
	}
	return loc, nil
}

type CronConfig struct {
	Interval time.Duration `envconfig:"CRUMB_CRON_INTERVAL" default:"6h"`
	LockTTL  time.Duration `envconfig:"CRUMB_CRON_LOCK_TTL" default:"1h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CRUMB_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CRUMB_AUTO_MIGRATE" default:"false"`
	SlotSeeding bool `envconfig:"CRUMB_FEATURE_SLOT_SEEDING" default:"true"`
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
