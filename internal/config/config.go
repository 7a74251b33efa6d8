package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"resume-formatter/internal/logger"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is built once at process start and handed to the components that
// need it.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logger   logger.Config  `yaml:"logger"`
	Payment  PaymentConfig  `yaml:"payment"`
	Renderer RendererConfig `yaml:"renderer"`
	Storage  StorageConfig  `yaml:"storage"`
	Mail     MailConfig     `yaml:"mail"`
}

type ServerConfig struct {
	Address     string `yaml:"address"`
	BodyLimitMB int    `yaml:"body_limit_mb"`
	// DownloadPrefix is prepended to artifact names in download links.
	DownloadPrefix string `yaml:"download_prefix"`
}

// PaymentConfig holds gateway credentials and the default order.
type PaymentConfig struct {
	KeyID         string `yaml:"key_id"`
	KeySecret     string `yaml:"key_secret"`
	WebhookSecret string `yaml:"webhook_secret"`
	Amount        int64  `yaml:"amount"` // smallest currency unit
	Currency      string `yaml:"currency"`
}

type RendererConfig struct {
	ChromePath     string  `yaml:"chrome_path"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	MarginInches   float64 `yaml:"margin_inches"`
}

// StorageConfig selects the artifact store backend: local, minio or postgres.
type StorageConfig struct {
	Backend  string         `yaml:"backend"`
	LocalDir string         `yaml:"local_dir"`
	MinIO    MinIOConfig    `yaml:"minio"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type MinIOConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UseSSL          bool   `yaml:"use_ssl"`
	Bucket          string `yaml:"bucket"`
	Location        string `yaml:"location"`
	ExpireDays      int    `yaml:"expire_days"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type MailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Address = ":3000"
	cfg.Server.BodyLimitMB = 1
	cfg.Server.DownloadPrefix = "/download/"
	cfg.Logger = logger.Config{Level: "info", Format: "json"}
	cfg.Payment.Amount = 9900
	cfg.Payment.Currency = "INR"
	cfg.Renderer.TimeoutSeconds = 60
	cfg.Renderer.MarginInches = 0.4
	cfg.Storage.Backend = "local"
	cfg.Storage.LocalDir = "resume-data/generated"
	cfg.Storage.MinIO.Bucket = "resumes"
	cfg.Mail.Port = 587
	return cfg
}

// Load reads the YAML file at path on top of Default and applies
// environment overrides. An empty path or a missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			logger.Warn().Str("path", path).Msg("config file not found, using defaults")
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Address = ":" + v
	}
	if v := os.Getenv("RAZORPAY_KEY_ID"); v != "" {
		cfg.Payment.KeyID = v
	}
	if v := os.Getenv("RAZORPAY_KEY_SECRET"); v != "" {
		cfg.Payment.KeySecret = v
	}
	if v := os.Getenv("RAZORPAY_WEBHOOK_SECRET"); v != "" {
		cfg.Payment.WebhookSecret = v
	}
	if v := os.Getenv("CHROME_PATH"); v != "" {
		cfg.Renderer.ChromePath = v
	}
	if v := os.Getenv("ARTIFACTS_DATABASE_URL"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Mail.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Mail.Port = p
		}
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		cfg.Mail.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Mail.Password = v
	}
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "local":
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("storage.local_dir is required for the local backend")
		}
	case "minio":
		if c.Storage.MinIO.Endpoint == "" || c.Storage.MinIO.Bucket == "" {
			return fmt.Errorf("storage.minio.endpoint and storage.minio.bucket are required")
		}
	case "postgres":
		if c.Storage.Postgres.DSN == "" {
			return fmt.Errorf("storage.postgres.dsn (or ARTIFACTS_DATABASE_URL) is required")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Mail.Enabled && (c.Mail.Host == "" || c.Mail.From == "") {
		return fmt.Errorf("mail.host and mail.from are required when mail is enabled")
	}
	if c.Payment.Amount <= 0 {
		return fmt.Errorf("payment.amount must be positive")
	}
	return nil
}

// RenderTimeout is the renderer timeout as a duration.
func (c *Config) RenderTimeout() time.Duration {
	if c.Renderer.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Renderer.TimeoutSeconds) * time.Second
}

// LoadEnvFile exports the variables of a dotenv file that are not already
// set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
