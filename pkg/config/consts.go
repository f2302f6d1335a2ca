package config

// EnvPrefix is passed to envconfig; individual fields carry their full
// variable names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv     = "SEMPREBELLA_APP_ENV"
	EnvPort       = "SEMPREBELLA_APP_PORT"
	EnvDBDSN      = "SEMPREBELLA_DB_DSN"
	EnvDBHost     = "SEMPREBELLA_DB_HOST"
	EnvDBUser     = "SEMPREBELLA_DB_USER"
	EnvDBName     = "SEMPREBELLA_DB_NAME"
	EnvRedisURL   = "SEMPREBELLA_REDIS_URL"
	EnvJWTSecret  = "SEMPREBELLA_JWT_SECRET"
	EnvJWTIssuer  = "SEMPREBELLA_JWT_ISSUER"
	EnvJWTExpMins = "SEMPREBELLA_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
