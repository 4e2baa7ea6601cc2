// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// sections groups prefixed environment variables under a nested key,
// e.g. S3_BUCKET -> s3.bucket.
var sections = []string{"s3", "sendgrid", "log", "github"}

// Config is the runtime configuration of the API server and CLI.
type Config struct {
	Port              int           `koanf:"port"`
	DatabaseURL       string        `koanf:"database_url"`
	FrontendBaseURL   string        `koanf:"frontend_base_url"`
	UploadDir         string        `koanf:"upload_dir"`
	UploadConcurrency int           `koanf:"upload_concurrency"`
	MaxUploadMB       int           `koanf:"max_upload_mb"`
	ClerkSecretKey    string        `koanf:"clerk_secret_key"`
	RabbitMQURL       string        `koanf:"rabbitmq_url"`
	AuthRequired      bool          `koanf:"auth_required"`
	SignupCodeTTL     time.Duration `koanf:"signup_code_ttl"`

	Log      LogConfig      `koanf:"log"`
	S3       S3Config       `koanf:"s3"`
	SendGrid SendGridConfig `koanf:"sendgrid"`
	GitHub   GitHubConfig   `koanf:"github"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// S3Config configures the S3-compatible resume blob store.
// An empty Bucket selects the local filesystem store.
type S3Config struct {
	Bucket    string `koanf:"bucket"`
	Endpoint  string `koanf:"endpoint"`
	Region    string `koanf:"region"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
}

// SendGridConfig configures outbound mail. An empty APIKey selects the log sink.
type SendGridConfig struct {
	APIKey    string `koanf:"api_key"`
	FromEmail string `koanf:"from_email"`
}

// GitHubConfig configures profile enrichment for resume analysis.
type GitHubConfig struct {
	Token   string `koanf:"token"`
	Enabled bool   `koanf:"enabled"`
}

// Env loads the process environment into a koanf instance.
// Keys are lowercased; known prefixes become nested sections.
func Env() (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	return k, nil
}

func envKey(s string) string {
	lower := strings.ToLower(s)
	for _, section := range sections {
		if rest, ok := strings.CutPrefix(lower, section+"_"); ok && rest != "" {
			return section + "." + rest
		}
	}
	return lower
}

// Load reads the configuration from the environment, applies defaults and validates it.
func Load() (*Config, error) {
	k, err := Env()
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.FrontendBaseURL == "" {
		c.FrontendBaseURL = "http://localhost:5173"
	}
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.UploadConcurrency == 0 {
		c.UploadConcurrency = 4
	}
	if c.MaxUploadMB == 0 {
		c.MaxUploadMB = 20
	}
	if c.SignupCodeTTL == 0 {
		c.SignupCodeTTL = 10 * time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.S3.Region == "" {
		c.S3.Region = "auto"
	}
}

// Validate checks value ranges. Required-ness of DATABASE_URL is enforced by the serve command.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.UploadConcurrency < 1 {
		return fmt.Errorf("UPLOAD_CONCURRENCY must be at least 1, got: %d", c.UploadConcurrency)
	}
	if c.MaxUploadMB < 1 {
		return fmt.Errorf("MAX_UPLOAD_MB must be at least 1, got: %d", c.MaxUploadMB)
	}
	if c.SignupCodeTTL < 0 {
		return fmt.Errorf("SIGNUP_CODE_TTL cannot be negative")
	}
	if c.SendGrid.APIKey != "" && c.SendGrid.FromEmail == "" {
		return fmt.Errorf("SENDGRID_FROM_EMAIL is required when SENDGRID_API_KEY is set")
	}
	if c.S3.Bucket != "" && (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
		return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY must be set together")
	}
	return nil
}

// MaxUploadBytes is the request body limit for multipart uploads.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// FrontendURL returns FrontendBaseURL without a trailing slash.
func (c *Config) FrontendURL() string {
	return strings.TrimRight(c.FrontendBaseURL, "/")
}
