package config

import (
	"log/slog"
	"time"

	"github.com/joho/godotenv"
)

const defaultSessionSecret = "dev-session-secret-change-me"

type Config struct {
	Port      int
	LogLevel  string
	Store     StoreConfig
	Session   SessionConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Mail      MailConfig
	OTP       OTPConfig
	Upload    UploadConfig
	NATSURL   string
	Sentry    SentryConfig
	RateLimit RateLimitConfig
}

// StoreConfig selects the credential store backend. Driver is one of
// "mongo", "postgres" or "sqlite".
type StoreConfig struct {
	Driver              string
	MongoURI            string
	MongoDatabase       string
	MongoConnectTimeout time.Duration
	DatabaseURL         string
}

type SessionConfig struct {
	Secret       string
	CookieName   string
	CookieSecure bool
	TTL          time.Duration
	Dir          string
}

type RedisConfig struct {
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a redis endpoint was configured at all.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Host != ""
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// MailConfig holds the outbound mail account. Provider is one of "smtp",
// "sendgrid" or "resend".
type MailConfig struct {
	Provider        string
	SMTPEmail       string
	SMTPAppPassword string
	SMTPHost        string
	SMTPPort        int
	APIKey          string
	Timeout         time.Duration
}

type OTPConfig struct {
	Expiry       time.Duration
	EnforceMatch bool
}

type UploadConfig struct {
	Backend        string
	Dir            string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

type SentryConfig struct {
	DSN         string
	Environment string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// Load reads the process configuration from the environment. A .env file in
// the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnvAsInt("PORT", 3000),
		LogLevel: getEnvAsString("LOG_LEVEL", "info"),
		Store: StoreConfig{
			Driver:              getEnvAsString("STORE_DRIVER", "mongo"),
			MongoURI:            getEnvAsString("MONGO_URI", "mongodb://localhost:27017"),
			MongoDatabase:       getEnvAsString("MONGO_DATABASE", "accounts"),
			MongoConnectTimeout: getEnvAsDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
			DatabaseURL:         getEnvAsString("DATABASE_URL", "accounts.db"),
		},
		Session: SessionConfig{
			Secret:       getEnvAsString("SESSION_SECRET", ""),
			CookieName:   getEnvAsString("SESSION_COOKIE_NAME", "account.sid"),
			CookieSecure: getEnvAsBool("SESSION_COOKIE_SECURE", false),
			TTL:          getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			Dir:          getEnvAsString("SESSION_DIR", ""),
		},
		Redis: RedisConfig{
			URL:      getEnvAsString("REDIS_URL", ""),
			Host:     getEnvAsString("REDIS_HOST", ""),
			Port:     getEnvAsString("REDIS_PORT", "6379"),
			Password: getEnvAsString("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnvAsString("JWT_SECRET", "your_secret_key"),
			TTL:    getEnvAsDuration("JWT_TTL", time.Hour),
		},
		Mail: MailConfig{
			Provider:        getEnvAsString("MAIL_PROVIDER", "smtp"),
			SMTPEmail:       getEnvAsString("SMTP_EMAIL", ""),
			SMTPAppPassword: getEnvAsString("SMTP_APP_PASSWORD", ""),
			SMTPHost:        getEnvAsString("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:        getEnvAsInt("SMTP_PORT", 587),
			APIKey:          getEnvAsString("EMAIL_API_KEY", ""),
			Timeout:         getEnvAsDuration("MAIL_TIMEOUT", 10*time.Second),
		},
		OTP: OTPConfig{
			Expiry:       getEnvAsDuration("OTP_EXPIRY", time.Hour),
			EnforceMatch: getEnvAsBool("OTP_ENFORCE_MATCH", false),
		},
		Upload: UploadConfig{
			Backend:        getEnvAsString("UPLOAD_BACKEND", "fs"),
			Dir:            getEnvAsString("UPLOAD_DIR", "uploads"),
			MinioEndpoint:  getEnvAsString("MINIO_ENDPOINT", "localhost:9000"),
			MinioAccessKey: getEnvAsString("MINIO_ACCESS_KEY", "minioadmin"),
			MinioSecretKey: getEnvAsString("MINIO_SECRET_KEY", "minioadmin"),
			MinioBucket:    getEnvAsString("MINIO_BUCKET", "uploads"),
			MinioUseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
		},
		NATSURL: getEnvAsString("NATS_URL", ""),
		Sentry: SentryConfig{
			DSN:         getEnvAsString("SENTRY_DSN", ""),
			Environment: getEnvAsString("SENTRY_ENVIRONMENT", "development"),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvAsFloat("RATE_LIMIT_RPS", 0),
			Burst: getEnvAsInt("RATE_LIMIT_BURST", 100),
		},
	}

	if cfg.Session.Secret == "" {
		slog.Warn("SESSION_SECRET not set, using development secret")
		cfg.Session.Secret = defaultSessionSecret
	}

	return cfg
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
