package config

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "CARTSYNC"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv     = "CARTSYNC_APP_ENV"
	EnvPort       = "CARTSYNC_APP_PORT"
	EnvDBDSN      = "CARTSYNC_DB_DSN"
	EnvDBHost     = "CARTSYNC_DB_HOST"
	EnvDBUser     = "CARTSYNC_DB_USER"
	EnvDBName     = "CARTSYNC_DB_NAME"
	EnvRedisURL   = "CARTSYNC_REDIS_URL"
	EnvJWTSecret  = "CARTSYNC_JWT_SECRET"
	EnvJWTIssuer  = "CARTSYNC_JWT_ISSUER"
	EnvJWTExpMins = "CARTSYNC_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
