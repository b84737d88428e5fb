// Package config loads the service configuration from the environment.
// Provider credentials are deliberately absent here: adapters read them per
// send so a missing credential surfaces as a delivery status, not a startup
// failure.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/welldanyogia/mail-dispatch/internal/logger"
	"github.com/welldanyogia/mail-dispatch/internal/provider"
)

// Config holds all application configuration
type Config struct {
	Version  string
	Server   ServerConfig
	Delivery DeliveryConfig
	Log      logger.Config
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `validate:"required"`
	Port           string        `validate:"required,numeric"`
	RequestTimeout time.Duration `validate:"gt=0"`
	AllowedOrigins []string      `validate:"min=1"`
}

// DeliveryConfig holds the provider chain and parser settings
type DeliveryConfig struct {
	// Providers is the ordered chain; the first entry is the primary.
	Providers        []string      `validate:"min=1,max=2,unique,dive,oneof=mailgun sendgrid resend"`
	AddressDelimiter string        `validate:"len=1"`
	HTTPTimeout      time.Duration `validate:"gt=0"`
	MailgunBaseURL   string        `validate:"required,url"`
	SendGridURL      string        `validate:"required,url"`
	ResendBaseURL    string        `validate:"required,url"`
}

var validate = validator.New()

// Load reads configuration from environment variables after loading
// .env.<ENV> and .env. Variables already set in the process win.
func Load() *Config {
	if env := os.Getenv("ENV"); env != "" {
		_ = godotenv.Load(".env." + env)
	}
	_ = godotenv.Load()

	return &Config{
		Version: getEnv("APP_VERSION", "dev"),
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnv("SERVER_PORT", "8080"),
			RequestTimeout: getDurationEnv("SERVER_REQUEST_TIMEOUT", 60*time.Second),
			AllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Delivery: DeliveryConfig{
			Providers:        getListEnv("DELIVERY_PROVIDERS", []string{provider.NameMailgun, provider.NameSendGrid}),
			AddressDelimiter: getEnv("ADDRESS_DELIMITER", ","),
			HTTPTimeout:      getDurationEnv("PROVIDER_HTTP_TIMEOUT", provider.DefaultTimeout),
			MailgunBaseURL:   getEnv("MAILGUN_API_BASE", provider.DefaultMailgunBaseURL),
			SendGridURL:      getEnv("SENDGRID_API_URL", provider.DefaultSendGridURL),
			ResendBaseURL:    getEnv("RESEND_API_BASE", provider.DefaultResendBaseURL),
		},
		Log: logger.Config{
			Level:     getEnv("LOG_LEVEL", "info"),
			Format:    getEnv("LOG_FORMAT", "json"),
			Output:    getEnv("LOG_OUTPUT", "stdout"),
			AddSource: getBoolEnv("LOG_ADD_SOURCE", false),
		},
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if err := validate.Struct(c.Server); err != nil {
		return fmt.Errorf("config: server: %w", err)
	}
	if err := validate.Struct(c.Delivery); err != nil {
		return fmt.Errorf("config: delivery: %w", err)
	}
	return nil
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// Delimiter returns the address list delimiter as a rune
func (d DeliveryConfig) Delimiter() rune {
	for _, r := range d.AddressDelimiter {
		return r
	}
	return ','
}

// Endpoints returns the provider base URLs
func (d DeliveryConfig) Endpoints() provider.Endpoints {
	return provider.Endpoints{
		Mailgun:  d.MailgunBaseURL,
		SendGrid: d.SendGridURL,
		Resend:   d.ResendBaseURL,
	}
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv accepts Go duration strings or a whole number of seconds
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

// getListEnv splits a comma separated variable, dropping blank entries
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getBoolEnv(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultValue
}
