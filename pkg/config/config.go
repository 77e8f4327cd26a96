package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "TRADEWIND"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names referenced outside the envconfig tags.
const (
	EnvAppEnv        = "TRADEWIND_APP_ENV"
	EnvPort          = "TRADEWIND_APP_PORT"
	EnvDBDSN         = "TRADEWIND_DB_DSN"
	EnvDBHost        = "TRADEWIND_DB_HOST"
	EnvDBUser        = "TRADEWIND_DB_USER"
	EnvDBName        = "TRADEWIND_DB_NAME"
	EnvRedisURL      = "TRADEWIND_REDIS_URL"
	EnvJWTSecret     = "TRADEWIND_JWT_SECRET"
	EnvJWTIssuer     = "TRADEWIND_JWT_ISSUER"
	EnvJWTExpMins    = "TRADEWIND_JWT_EXPIRATION_MINUTES"
	EnvStripeAPIKey  = "TRADEWIND_STRIPE_API_KEY"
	EnvStripeSecret  = "TRADEWIND_STRIPE_WEBHOOK_SECRET"
	EnvCheckoutHost  = "TRADEWIND_CHECKOUT_HOST_URL"
	EnvCORSOrigins   = "TRADEWIND_CORS_ORIGINS"
	EnvFeatureSQLite = "TRADEWIND_USE_SQLITE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Stripe        StripeConfig
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects required variables that are present but empty. envconfig's
// required tag only checks that the variable exists, so an exported empty
// string slips through Process.
func (c *Config) validate() error {
	required := []struct {
		env   string
		value string
	}{
		{EnvAppEnv, c.App.Env},
		{EnvPort, c.App.Port},
		{EnvRedisURL, c.Redis.URL},
		{EnvJWTSecret, c.JWT.Secret},
		{EnvJWTIssuer, c.JWT.Issuer},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("required key %s missing value", r.env)
		}
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"TRADEWIND_APP_ENV" required:"true"`
	Port         string `envconfig:"TRADEWIND_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TRADEWIND_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TRADEWIND_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TRADEWIND_DB_DSN"`
	Driver string `envconfig:"TRADEWIND_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TRADEWIND_DB_HOST"`
	LegacyPort     int    `envconfig:"TRADEWIND_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TRADEWIND_DB_USER"`
	LegacyPassword string `envconfig:"TRADEWIND_DB_PASSWORD"`
	LegacyName     string `envconfig:"TRADEWIND_DB_NAME"`
	LegacySSLMode  string `envconfig:"TRADEWIND_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TRADEWIND_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TRADEWIND_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TRADEWIND_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TRADEWIND_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TRADEWIND_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TRADEWIND_REDIS_ADDR"`
	Password     string        `envconfig:"TRADEWIND_REDIS_PASSWORD"`
	DB           int           `envconfig:"TRADEWIND_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TRADEWIND_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TRADEWIND_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TRADEWIND_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TRADEWIND_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TRADEWIND_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"TRADEWIND_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"TRADEWIND_JWT_ISSUER" required:"true"`
	// Tokens live for seven days unless overridden.
	ExpirationMinutes int `envconfig:"TRADEWIND_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// Expiration returns the configured token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TRADEWIND_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TRADEWIND_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TRADEWIND_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TRADEWIND_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TRADEWIND_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"TRADEWIND_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit    int           `envconfig:"TRADEWIND_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow  time.Duration `envconfig:"TRADEWIND_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterIPLimit int           `envconfig:"TRADEWIND_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type StripeConfig struct {
	APIKey        string `envconfig:"TRADEWIND_STRIPE_API_KEY"`
	WebhookSecret string `envconfig:"TRADEWIND_STRIPE_WEBHOOK_SECRET"`
	Env           string `envconfig:"TRADEWIND_STRIPE_ENV" default:"test"`
	// HostURL is the public base URL used to build success/cancel redirects.
	HostURL  string `envconfig:"TRADEWIND_CHECKOUT_HOST_URL" default:"http://localhost:3000"`
	Currency string `envconfig:"TRADEWIND_CHECKOUT_CURRENCY" default:"usd"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// SuccessURL is the redirect target for completed checkout sessions. Stripe
// substitutes the {CHECKOUT_SESSION_ID} placeholder.
func (s StripeConfig) SuccessURL() string {
	return strings.TrimRight(s.HostURL, "/") + "/payment-success?session_id={CHECKOUT_SESSION_ID}"
}

// CancelURL is the redirect target for abandoned checkout sessions.
func (s StripeConfig) CancelURL() string {
	return strings.TrimRight(s.HostURL, "/") + "/payment-cancel"
}

type CORSConfig struct {
	Origins []string `envconfig:"TRADEWIND_CORS_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TRADEWIND_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TRADEWIND_AUTO_MIGRATE" default:"false"`
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
