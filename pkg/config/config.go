package config

import (
	"fmt"
	"log"
	"net"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	pkgvalidator "github.com/johnquangdev/webhook-relay/pkg/validator"
)

// Config holds application configuration
type Config struct {
	Server  ServerConfig
	Webhook WebhookConfig
	Notify  NotifyConfig
	Data    DataConfig
	TLS     TLSConfig
	Redis   RedisConfig
	Storage StorageConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Port            string        `envconfig:"PORT" default:"443" validate:"required,numeric"`
	Environment     string        `envconfig:"ENVIRONMENT" default:"production" validate:"oneof=development staging production"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	BodyLimit       string        `envconfig:"BODY_LIMIT" default:"5M"`
	RateLimit       float64       `envconfig:"RATE_LIMIT" default:"0" validate:"gte=0"`
}

// WebhookConfig holds inbound authentication settings. Empty secrets disable
// the corresponding check.
type WebhookConfig struct {
	BasePath     string `envconfig:"WEBHOOK_BASE_PATH" default:"/webhooks" validate:"startswith=/"`
	SharedSecret string `envconfig:"WEBHOOK_SECRET"`
	GitHubSecret string `envconfig:"GITHUB_WEBHOOK_SECRET"`
	KrispSecret  string `envconfig:"KRISP_WEBHOOK_SECRET"`
}

// NotifyConfig holds the downstream wake endpoint settings
type NotifyConfig struct {
	BaseURL    string        `envconfig:"OPENCLAW_URL" default:"http://127.0.0.1:18789" validate:"required,url"`
	Token      string        `envconfig:"OPENCLAW_TOKEN"`
	Timeout    time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"5s" validate:"gt=0"`
	MaxRetries int           `envconfig:"NOTIFY_MAX_RETRIES" default:"0" validate:"gte=0,lte=5"`
}

// DataConfig holds on-disk locations
type DataConfig struct {
	LogDir     string `envconfig:"LOG_DIR" default:"logs" validate:"required"`
	MeetingDir string `envconfig:"KRISP_DATA_DIR" default:"data/krisp" validate:"required"`
}

// TLSConfig holds TLS material, each value either inline PEM or a file path
type TLSConfig struct {
	Cert string `envconfig:"TLS_CERT"`
	Key  string `envconfig:"TLS_KEY"`
	CA   string `envconfig:"TLS_CA"`
}

// RedisConfig enables the cross-process meeting lock when Addr is set
type RedisConfig struct {
	Addr     string        `envconfig:"REDIS_ADDR" validate:"omitempty,hostname_port"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	LockTTL  time.Duration `envconfig:"LOCK_TTL" default:"30s" validate:"gt=0"`
}

// StorageConfig holds the optional object-storage mirror configuration
type StorageConfig struct {
	Enabled         bool   `envconfig:"STORAGE_ENABLED" default:"false"`
	Endpoint        string `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000" validate:"required_if=Enabled true"`
	AccessKeyID     string `envconfig:"STORAGE_ACCESS_KEY" validate:"required_if=Enabled true"`
	SecretAccessKey string `envconfig:"STORAGE_SECRET_KEY" validate:"required_if=Enabled true"`
	BucketName      string `envconfig:"STORAGE_BUCKET" default:"webhook-relay" validate:"required_if=Enabled true"`
	UseSSL          bool   `envconfig:"STORAGE_USE_SSL" default:"false"`
}

// Load loads configuration from a .env file (if present) and the environment
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	return FromEnv()
}

// FromEnv builds a Config from the process environment only
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := pkgvalidator.New().Validate(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if (c.TLS.Cert == "") != (c.TLS.Key == "") {
		return fmt.Errorf("invalid configuration: TLS_CERT and TLS_KEY must be set together")
	}
	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// TLSEnabled reports whether the server should terminate TLS itself
func (c *Config) TLSEnabled() bool {
	return c.TLS.Cert != "" && c.TLS.Key != ""
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}
