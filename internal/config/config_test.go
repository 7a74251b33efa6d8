package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAMLOverDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":8081"
payment:
  key_id: "rzp_test_1"
  amount: 4900
storage:
  backend: minio
  minio:
    endpoint: "localhost:9000"
    bucket: "cv"
    expire_days: 7
logger:
  level: debug
  format: pretty
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.Server.Address)
	assert.Equal(t, "rzp_test_1", cfg.Payment.KeyID)
	assert.Equal(t, int64(4900), cfg.Payment.Amount)
	assert.Equal(t, "INR", cfg.Payment.Currency, "unset keys keep their defaults")
	assert.Equal(t, "minio", cfg.Storage.Backend)
	assert.Equal(t, 7, cfg.Storage.MinIO.ExpireDays)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "/download/", cfg.Server.DownloadPrefix)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Address, cfg.Server.Address)
	assert.Equal(t, "local", cfg.Storage.Backend)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("RAZORPAY_KEY_SECRET", "s3cret")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "whsec")
	t.Setenv("CHROME_PATH", "/usr/bin/chromium")
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Address)
	assert.Equal(t, "s3cret", cfg.Payment.KeySecret)
	assert.Equal(t, "whsec", cfg.Payment.WebhookSecret)
	assert.Equal(t, "/usr/bin/chromium", cfg.Renderer.ChromePath)
	assert.Equal(t, 2525, cfg.Mail.Port)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unterminated")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{name: "defaults", mutate: func(*Config) {}, ok: true},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "s3" }},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Storage.Backend = "postgres" }},
		{name: "postgres with dsn", mutate: func(c *Config) {
			c.Storage.Backend = "postgres"
			c.Storage.Postgres.DSN = "postgres://localhost/artifacts"
		}, ok: true},
		{name: "mail without host", mutate: func(c *Config) { c.Mail.Enabled = true }},
		{name: "zero amount", mutate: func(c *Config) { c.Payment.Amount = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRenderTimeout(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 60*time.Second, cfg.RenderTimeout())
	cfg.Renderer.TimeoutSeconds = 5
	assert.Equal(t, 5*time.Second, cfg.RenderTimeout())
}

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RAZORPAY_KEY_ID=rzp_from_file\nPORT=8088\n"), 0o600))
	t.Setenv("RAZORPAY_KEY_ID", "")
	t.Setenv("PORT", "9000")
	require.NoError(t, os.Unsetenv("RAZORPAY_KEY_ID"))

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "rzp_from_file", os.Getenv("RAZORPAY_KEY_ID"))
	assert.Equal(t, "9000", os.Getenv("PORT"), "existing variables win")
}
