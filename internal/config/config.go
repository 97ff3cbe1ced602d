package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const defaultJWTSecret = "change-me-jwt-secret"

type Config struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	DatabaseURL string `envconfig:"DATABASE_URL" default:"travel.db"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"change-me-jwt-secret"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	ReminderEnabled       bool          `envconfig:"REMINDER_ENABLED" default:"true"`
	ReminderInterval      time.Duration `envconfig:"REMINDER_INTERVAL" default:"10m"`
	ReminderRunOnStart    bool          `envconfig:"REMINDER_RUN_ON_START" default:"true"`
	ReminderSourceTimeout time.Duration `envconfig:"REMINDER_SOURCE_TIMEOUT" default:"30s"`
	ReminderLockTTL       time.Duration `envconfig:"REMINDER_LOCK_TTL" default:"5m"`
	// IANA zone name; empty means the server's local zone.
	ReminderTimezone    string `envconfig:"REMINDER_TZ"`
	ReminderDigestEmail string `envconfig:"REMINDER_DIGEST_EMAIL"`

	RedisURL       string `envconfig:"REDIS_URL"`
	RabbitURL      string `envconfig:"RABBIT_URL"`
	RabbitExchange string `envconfig:"RABBIT_EXCHANGE" default:"travel.events"`
	OTelEndpoint   string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	SMTPHost       string `envconfig:"SMTP_HOST"`
	SMTPPort       int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername   string `envconfig:"SMTP_USERNAME"`
	SMTPPassword   string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom       string `envconfig:"SMTP_FROM" default:"no-reply@travel.local"`
	SMTPFromName   string `envconfig:"SMTP_FROM_NAME" default:"Travel Agency"`
	SMTPEncryption string `envconfig:"SMTP_ENCRYPTION" default:"STARTTLS"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("config: loaded .env")
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("config: env=%s http_addr=%s reminder_interval=%s redis=%t rabbit=%t smtp=%t",
		cfg.AppEnv, cfg.HTTPAddr, cfg.ReminderInterval, cfg.RedisURL != "", cfg.RabbitURL != "", cfg.SMTPHost != "")

	return cfg, nil
}

// Location resolves the zone used to decide what "tomorrow" means.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.ReminderTimezone)
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_TZ value %q: %w", name, err)
	}
	return loc, nil
}

func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.ReminderInterval <= 0 {
		return fmt.Errorf("REMINDER_INTERVAL must be > 0")
	}
	if cfg.ReminderSourceTimeout <= 0 {
		return fmt.Errorf("REMINDER_SOURCE_TIMEOUT must be > 0")
	}
	if cfg.ReminderLockTTL < cfg.ReminderSourceTimeout {
		return fmt.Errorf("REMINDER_LOCK_TTL must be >= REMINDER_SOURCE_TIMEOUT")
	}
	if _, err := cfg.Location(); err != nil {
		return err
	}

	enc := strings.ToUpper(strings.TrimSpace(cfg.SMTPEncryption))
	if enc != "NONE" && enc != "STARTTLS" && enc != "SSL/TLS" {
		return fmt.Errorf("SMTP_ENCRYPTION must be one of: NONE, STARTTLS, SSL/TLS")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}
