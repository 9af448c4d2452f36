package infra

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends for the league document.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreS3       = "s3"
)

const (
	insecureAdminToken = "admin123"
	insecureJWTSecret  = "change-me-in-production"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Server
	Host          string `env:"HOST" envDefault:"0.0.0.0"`
	Port          int    `env:"PORT" envDefault:"8080"`
	DefaultSeason string `env:"DEFAULT_SEASON" envDefault:"2026-S1"`

	// Admin / sessions
	AdminToken      string        `env:"ADMIN_TOKEN" envDefault:"admin123"`
	JWTSecret       string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTPlayerExpiry time.Duration `env:"JWT_PLAYER_EXPIRY" envDefault:"720h"`

	// Document storage
	StoreBackend string `env:"STORE_BACKEND" envDefault:"file"`
	DataFile     string `env:"DATA_FILE" envDefault:"data/store.json"`

	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5432"`
	PGUser      string `env:"PGUSER" envDefault:"league"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"league"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"league"`

	// Object storage (S3 / R2 / MinIO)
	S3Bucket          string `env:"S3_BUCKET"`
	S3Key             string `env:"S3_KEY" envDefault:"league/store.json"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3Region          string `env:"S3_REGION" envDefault:"auto"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`

	// Kafka
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaTopic   string `env:"KAFKA_TOPIC" envDefault:"league.events"`

	// WhatsApp Cloud API
	WhatsAppPhoneID      string `env:"WHATSAPP_PHONE_ID"`
	WhatsAppAccessToken  string `env:"WHATSAPP_ACCESS_TOKEN"`
	WhatsAppTemplateName string `env:"WHATSAPP_TEMPLATE_NAME" envDefault:"verification_code"`

	// Onboarding
	ExposeTACCode bool          `env:"EXPOSE_TAC_CODE" envDefault:"true"`
	TACRateLimit  int           `env:"TAC_RATE_LIMIT" envDefault:"5"`
	TACRateWindow time.Duration `env:"TAC_RATE_WINDOW" envDefault:"10m"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadConfig reads an optional .env file and parses environment variables into a Config.
// Variables already present in the environment win over the file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	return cfg, nil
}

// Validate checks for insecure or inconsistent configuration.
// Set ALLOW_INSECURE_DEFAULTS=true to bypass the secret checks (local dev only).
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreFile, StorePostgres:
	case StoreS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORE_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want file, postgres or s3)", c.StoreBackend)
	}
	if c.TACRateLimit <= 0 {
		return fmt.Errorf("TAC_RATE_LIMIT must be positive, got %d", c.TACRateLimit)
	}

	if c.AllowInsecureDefaults {
		return nil
	}
	if c.AdminToken == insecureAdminToken {
		return fmt.Errorf("ADMIN_TOKEN is set to the insecure default; set a strong token or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if c.JWTSecret == insecureJWTSecret {
		return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// WhatsAppConfigured reports whether real TAC delivery is possible.
func (c *Config) WhatsAppConfigured() bool {
	return c.WhatsAppPhoneID != "" && c.WhatsAppAccessToken != ""
}
