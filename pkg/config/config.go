package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "vally"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "VALLY_DB_DSN"
	EnvDBHost = "VALLY_DB_HOST"
	EnvDBUser = "VALLY_DB_USER"
	EnvDBName = "VALLY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	ImageKit      ImageKitConfig
	WhatsApp      WhatsAppConfig
	CORS          CORSConfig
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
	Env          string `envconfig:"VALLY_APP_ENV" required:"true"`
	Port         string `envconfig:"VALLY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VALLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VALLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VALLY_DB_DSN"`
	Driver string `envconfig:"VALLY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VALLY_DB_HOST"`
	LegacyPort     int    `envconfig:"VALLY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VALLY_DB_USER"`
	LegacyPassword string `envconfig:"VALLY_DB_PASSWORD"`
	LegacyName     string `envconfig:"VALLY_DB_NAME"`
	LegacySSLMode  string `envconfig:"VALLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VALLY_DB_MAX_OPEN_CONNS" default:"15"`
	MaxIdleConns    int           `envconfig:"VALLY_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"VALLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VALLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VALLY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VALLY_REDIS_ADDR"`
	Password     string        `envconfig:"VALLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"VALLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VALLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VALLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VALLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VALLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VALLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"VALLY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"VALLY_JWT_ISSUER" default:"vally"`
	ExpirationMinutes int    `envconfig:"VALLY_JWT_EXPIRATION_MINUTES" default:"43200"`
}

// SessionTTL returns the session lifetime derived from the token expiry.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"VALLY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"VALLY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"VALLY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"VALLY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"VALLY_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"VALLY_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"VALLY_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"VALLY_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"VALLY_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"VALLY_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"VALLY_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"VALLY_AUTO_MIGRATE" default:"false"`
}

type ImageKitConfig struct {
	URLEndpoint string        `envconfig:"VALLY_IMAGEKIT_URL_ENDPOINT" required:"true"`
	PublicKey   string        `envconfig:"VALLY_IMAGEKIT_PUBLIC_KEY"`
	PrivateKey  string        `envconfig:"VALLY_IMAGEKIT_PRIVATE_KEY" required:"true"`
	UploadURL   string        `envconfig:"VALLY_IMAGEKIT_UPLOAD_URL" default:"https://upload.imagekit.io/api/v1/files/upload"`
	APIURL      string        `envconfig:"VALLY_IMAGEKIT_API_URL" default:"https://api.imagekit.io/v1/files"`
	Timeout     time.Duration `envconfig:"VALLY_IMAGEKIT_TIMEOUT" default:"15s"`
}

type WhatsAppConfig struct {
	BusinessNumber string `envconfig:"VALLY_WHATSAPP_NUMBER" required:"true"`
	SiteName       string `envconfig:"VALLY_SITE_NAME" default:"Vally"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"VALLY_CORS_ALLOWED_ORIGINS" default:"*"`
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
