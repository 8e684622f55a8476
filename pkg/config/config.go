package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Service   ServiceConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Admin     AdminConfig
	Razorpay  RazorpayConfig
	Paytm     PaytmConfig
	PhonePe   PhonePeConfig
	Notify    NotifyConfig
	Reconcile ReconcileConfig
	Flags     FeatureFlagsConfig
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
	Env          string `envconfig:"ACADEMY_APP_ENV" required:"true"`
	Port         string `envconfig:"ACADEMY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ACADEMY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ACADEMY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ACADEMY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ACADEMY_DB_DSN"`
	Driver string `envconfig:"ACADEMY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ACADEMY_DB_HOST"`
	LegacyPort     int    `envconfig:"ACADEMY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ACADEMY_DB_USER"`
	LegacyPassword string `envconfig:"ACADEMY_DB_PASSWORD"`
	LegacyName     string `envconfig:"ACADEMY_DB_NAME"`
	LegacySSLMode  string `envconfig:"ACADEMY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ACADEMY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ACADEMY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ACADEMY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ACADEMY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ACADEMY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ACADEMY_REDIS_ADDR"`
	Password     string        `envconfig:"ACADEMY_REDIS_PASSWORD"`
	DB           int           `envconfig:"ACADEMY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ACADEMY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ACADEMY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ACADEMY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ACADEMY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ACADEMY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ACADEMY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ACADEMY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ACADEMY_JWT_EXPIRATION_MINUTES" default:"60"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// AdminConfig gates the operator endpoints behind a shared secret.
type AdminConfig struct {
	EnrollmentSecret string `envconfig:"ACADEMY_ENROLLMENT_SECRET" required:"true"`
}

type RazorpayConfig struct {
	WebhookSecret string `envconfig:"ACADEMY_RAZORPAY_WEBHOOK_SECRET"`
}

type PaytmConfig struct {
	MerchantKey string `envconfig:"ACADEMY_PAYTM_MERCHANT_KEY"`
}

type PhonePeConfig struct {
	SaltKey   string `envconfig:"ACADEMY_PHONEPE_SALT_KEY"`
	SaltIndex string `envconfig:"ACADEMY_PHONEPE_SALT_INDEX" default:"1"`
	// AllowUnsigned tolerates a missing X-Verify header. Sandbox only; the
	// default rejects unsigned callbacks in every environment.
	AllowUnsigned bool `envconfig:"ACADEMY_PHONEPE_ALLOW_UNSIGNED" default:"false"`
}

type NotifyConfig struct {
	IntakeURL string        `envconfig:"ACADEMY_NOTIFY_INTAKE_URL"`
	Timeout   time.Duration `envconfig:"ACADEMY_NOTIFY_TIMEOUT" default:"10s"`
}

type ReconcileConfig struct {
	Interval  time.Duration `envconfig:"ACADEMY_RECONCILE_INTERVAL" default:"1h"`
	BatchSize int           `envconfig:"ACADEMY_RECONCILE_BATCH_SIZE" default:"200"`
	Reprocess bool          `envconfig:"ACADEMY_RECONCILE_REPROCESS" default:"false"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ACADEMY_AUTO_MIGRATE" default:"false"`
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
