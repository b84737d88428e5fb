package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 60*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, []string{"mailgun", "sendgrid"}, cfg.Delivery.Providers)
	assert.Equal(t, ',', cfg.Delivery.Delimiter())
	assert.Equal(t, 30*time.Second, cfg.Delivery.HTTPTimeout)
	assert.Equal(t, "https://api.mailgun.net/v3", cfg.Delivery.Endpoints().Mailgun)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_REQUEST_TIMEOUT", "15")
	t.Setenv("DELIVERY_PROVIDERS", " SendGrid , resend ")
	t.Setenv("ADDRESS_DELIMITER", ";")
	t.Setenv("PROVIDER_HTTP_TIMEOUT", "2s")
	t.Setenv("LOG_ADD_SOURCE", "yes")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, 15*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, []string{"sendgrid", "resend"}, cfg.Delivery.Providers)
	assert.Equal(t, ';', cfg.Delivery.Delimiter())
	assert.Equal(t, 2*time.Second, cfg.Delivery.HTTPTimeout)
	assert.True(t, cfg.Log.AddSource)
}

func TestLoadDotEnvFiles(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.staging"), []byte("SERVER_PORT=7001\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SERVER_PORT=7002\nAPP_VERSION=1.2.3\n"), 0o600))
	t.Setenv("ENV", "staging")
	t.Setenv("SERVER_PORT", "")
	os.Unsetenv("SERVER_PORT")
	t.Setenv("APP_VERSION", "")
	os.Unsetenv("APP_VERSION")

	cfg := Load()
	assert.Equal(t, "7001", cfg.Server.Port)
	assert.Equal(t, "1.2.3", cfg.Version)
}

func TestValidateRejects(t *testing.T) {
	tests := map[string]func(*Config){
		"no providers":         func(c *Config) { c.Delivery.Providers = nil },
		"three providers":      func(c *Config) { c.Delivery.Providers = []string{"mailgun", "sendgrid", "resend"} },
		"duplicate provider":   func(c *Config) { c.Delivery.Providers = []string{"mailgun", "mailgun"} },
		"unknown provider":     func(c *Config) { c.Delivery.Providers = []string{"postmark"} },
		"long delimiter":       func(c *Config) { c.Delivery.AddressDelimiter = ";;" },
		"bad port":             func(c *Config) { c.Server.Port = "http" },
		"zero request timeout": func(c *Config) { c.Server.RequestTimeout = 0 },
		"bad mailgun url":      func(c *Config) { c.Delivery.MailgunBaseURL = "not a url" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			cfg := Load()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
