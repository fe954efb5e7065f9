package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the service reads from the environment.
type Config struct {
	Port           string
	AppEnv         string
	LogLevel       string
	AppURL         string
	RequestTimeout time.Duration

	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	DatabaseURL   string

	AccessTokenSecret    string
	RefreshTokenSecret   string
	AccessTokenTTL       time.Duration
	RefreshTokenTTL      time.Duration
	VerificationTokenTTL time.Duration

	StripeAPIKey                   string
	Currency                       string
	CheckoutExpireOrphanedSessions bool

	MailProvider     string
	PostmarkAPIToken string
	SendgridAPIKey   string
	EmailSender      string
	VerificationURL  string

	RedisURL        string
	ProductCacheTTL time.Duration

	EventsDriver     string
	KafkaBrokers     string
	KafkaTopic       string
	RabbitMQURL      string
	RabbitMQExchange string

	SeedFile      string
	AdminEmail    string
	AdminPassword string
}

// Load reads a .env file if present and builds a Config from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, proceeding with environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:          getenv("PORT", "8000"),
		AppEnv:        getenv("APP_ENV", "development"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		AppURL:        strings.TrimRight(getenv("APP_URL", "http://localhost:8000"), "/"),
		StoreDriver:   strings.ToLower(getenv("STORE_DRIVER", "mongo")),
		MongoURI:      getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getenv("MONGO_DATABASE", "ecommerce"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),

		AccessTokenSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),

		StripeAPIKey: os.Getenv("STRIPE_API_KEY"),
		Currency:     strings.ToLower(getenv("CURRENCY", "ngn")),

		MailProvider:     strings.ToLower(getenv("MAIL_PROVIDER", "log")),
		PostmarkAPIToken: os.Getenv("POSTMARK_API_TOKEN"),
		SendgridAPIKey:   os.Getenv("SENDGRID_API_KEY"),
		EmailSender:      getenv("EMAIL_SENDER", "no-reply@minishop.io"),

		RedisURL: os.Getenv("REDIS_URL"),

		EventsDriver:     strings.ToLower(getenv("EVENTS_DRIVER", "none")),
		KafkaBrokers:     os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:       getenv("KAFKA_TOPIC", "minishop.orders"),
		RabbitMQURL:      os.Getenv("RABBITMQ_URL"),
		RabbitMQExchange: getenv("RABBITMQ_EXCHANGE", "minishop.events"),

		SeedFile:      os.Getenv("SEED_FILE"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
	cfg.VerificationURL = getenv("VERIFICATION_URL", cfg.AppURL+"/api/v1/auth/verify")

	var err error
	if cfg.RequestTimeout, err = durationEnv("REQUEST_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.AccessTokenTTL, err = durationEnv("ACCESS_TOKEN_EXPIRE_AT", "1d"); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenTTL, err = durationEnv("REFRESH_TOKEN_EXPIRE_AT", "7d"); err != nil {
		return nil, err
	}
	if cfg.VerificationTokenTTL, err = durationEnv("VERIFICATION_TOKEN_TTL", "10m"); err != nil {
		return nil, err
	}
	if cfg.ProductCacheTTL, err = durationEnv("PRODUCT_CACHE_TTL", "5m"); err != nil {
		return nil, err
	}
	if cfg.CheckoutExpireOrphanedSessions, err = boolEnv("CHECKOUT_EXPIRE_ORPHANED_SESSIONS", false); err != nil {
		return nil, err
	}

	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return nil, fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set")
	}
	switch cfg.StoreDriver {
	case "mongo":
	case "postgres", "mysql", "sqlite":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL must be set for store driver %q", cfg.StoreDriver)
		}
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func durationEnv(key, def string) (time.Duration, error) {
	d, err := ParseDuration(getenv(key, def))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// ParseDuration accepts time.ParseDuration syntax plus a whole-day suffix,
// e.g. "7d".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
