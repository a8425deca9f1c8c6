package config

const EnvPrefix = "CRUMB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "CRUMB_APP_ENV"
	EnvPort     = "CRUMB_APP_PORT"
	EnvLogLevel = "CRUMB_LOG_LEVEL"

	EnvDBDSN  = "CRUMB_DB_DSN"
	EnvDBHost = "CRUMB_DB_HOST"
	EnvDBUser = "CRUMB_DB_USER"
	EnvDBName = "CRUMB_DB_NAME"

	EnvRedisURL = "CRUMB_REDIS_URL"

	EnvCartSessionTTL = "CRUMB_CART_SESSION_TTL"

	EnvSlotsMinDurationMinutes = "CRUMB_SLOTS_MIN_DURATION_MINUTES"
	EnvSlotsTimezone           = "CRUMB_SLOTS_TIMEZONE"

	EnvCronInterval = "CRUMB_CRON_INTERVAL"

	EnvCORSAllowedOrigins = "CRUMB_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
