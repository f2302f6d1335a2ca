package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Session       SessionConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Webhook       WebhookConfig
	MercadoPago   MercadoPagoConfig
	ViaCEP        ViaCEPConfig
	Checkout      CheckoutConfig
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
	Env          string `envconfig:"SEMPREBELLA_APP_ENV" required:"true"`
	Port         string `envconfig:"SEMPREBELLA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SEMPREBELLA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SEMPREBELLA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SEMPREBELLA_DB_DSN"`
	Driver string `envconfig:"SEMPREBELLA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SEMPREBELLA_DB_HOST"`
	LegacyPort     int    `envconfig:"SEMPREBELLA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SEMPREBELLA_DB_USER"`
	LegacyPassword string `envconfig:"SEMPREBELLA_DB_PASSWORD"`
	LegacyName     string `envconfig:"SEMPREBELLA_DB_NAME"`
	LegacySSLMode  string `envconfig:"SEMPREBELLA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SEMPREBELLA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SEMPREBELLA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SEMPREBELLA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SEMPREBELLA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SEMPREBELLA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SEMPREBELLA_REDIS_ADDR"`
	Password     string        `envconfig:"SEMPREBELLA_REDIS_PASSWORD"`
	DB           int           `envconfig:"SEMPREBELLA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SEMPREBELLA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SEMPREBELLA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SEMPREBELLA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SEMPREBELLA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SEMPREBELLA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SEMPREBELLA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SEMPREBELLA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SEMPREBELLA_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SEMPREBELLA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SEMPREBELLA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SEMPREBELLA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SEMPREBELLA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SEMPREBELLA_ARGON_KEY_LEN" default:"32"`
}

// SessionConfig tunes the Redis-backed sessions. IdleTimeout is a sliding
// window refreshed on every authenticated request; a session that sees no
// traffic for that long is rejected on the next token check.
type SessionConfig struct {
	IdleTimeoutMinutes int `envconfig:"SEMPREBELLA_SESSION_IDLE_TIMEOUT_MINUTES" default:"120"`
	AdminCacheMinutes  int `envconfig:"SEMPREBELLA_ADMIN_STATUS_CACHE_MINUTES" default:"5"`
}

// IdleTimeout returns the sliding session TTL.
func (s SessionConfig) IdleTimeout() time.Duration {
	if s.IdleTimeoutMinutes <= 0 {
		return 2 * time.Hour
	}
	return time.Duration(s.IdleTimeoutMinutes) * time.Minute
}

// AdminCacheTTL returns how long a resolved admin status may be reused.
func (s SessionConfig) AdminCacheTTL() time.Duration {
	if s.AdminCacheMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(s.AdminCacheMinutes) * time.Minute
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SEMPREBELLA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SEMPREBELLA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SEMPREBELLA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SEMPREBELLA_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SEMPREBELLA_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SEMPREBELLA_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SEMPREBELLA_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SEMPREBELLA_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"SEMPREBELLA_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SEMPREBELLA_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"SEMPREBELLA_GCS_BUCKET_NAME" default:"loja-imagens"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"SEMPREBELLA_PUBSUB_ORDERS_TOPIC" default:"sb-order-events"`
	OrdersSubscription string `envconfig:"SEMPREBELLA_PUBSUB_ORDERS_SUBSCRIPTION" default:"sb-order-events-webhook"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SEMPREBELLA_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SEMPREBELLA_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SEMPREBELLA_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type WebhookConfig struct {
	OrderURL string        `envconfig:"SEMPREBELLA_WEBHOOK_ORDER_URL"`
	Secret   string        `envconfig:"SEMPREBELLA_WEBHOOK_SECRET"`
	Timeout  time.Duration `envconfig:"SEMPREBELLA_WEBHOOK_TIMEOUT" default:"10s"`
}

type MercadoPagoConfig struct {
	AccessToken string        `envconfig:"SEMPREBELLA_MERCADOPAGO_ACCESS_TOKEN"`
	BaseURL     string        `envconfig:"SEMPREBELLA_MERCADOPAGO_BASE_URL" default:"https://api.mercadopago.com"`
	Timeout     time.Duration `envconfig:"SEMPREBELLA_MERCADOPAGO_TIMEOUT" default:"10s"`
	BackURL     string        `envconfig:"SEMPREBELLA_MERCADOPAGO_BACK_URL"`
}

type ViaCEPConfig struct {
	BaseURL string        `envconfig:"SEMPREBELLA_VIACEP_BASE_URL" default:"https://viacep.com.br"`
	Timeout time.Duration `envconfig:"SEMPREBELLA_VIACEP_TIMEOUT" default:"5s"`
}

type CheckoutConfig struct {
	OrderNumberPrefix string `envconfig:"SEMPREBELLA_ORDER_NUMBER_PREFIX" default:"SB"`
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
