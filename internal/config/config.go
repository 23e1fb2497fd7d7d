package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full configuration surface. Values come from environment
// variables first, with an optional config.yaml for local development.
type Config struct {
	AppPort       string `mapstructure:"APP_PORT"`
	PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogPretty     bool   `mapstructure:"LOG_PRETTY"`

	DatabaseDSN   string `mapstructure:"DATABASE_DSN"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	JWTIssuer        string `mapstructure:"JWT_ISSUER"`
	JWTAudience      string `mapstructure:"JWT_AUDIENCE"`
	JWTSigningKey    string `mapstructure:"JWT_SIGNING_KEY"`
	TokenLifetimeMin int    `mapstructure:"TOKEN_LIFETIME_MIN"`

	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	CallbackPath       string `mapstructure:"OAUTH_CALLBACK_PATH"`

	PasswordMinLength int `mapstructure:"PASSWORD_MIN_LENGTH"`

	OMDbAPIKey  string `mapstructure:"OMDB_API_KEY"`
	OMDbBaseURL string `mapstructure:"OMDB_BASE_URL"`
	CacheTTLMin int    `mapstructure:"CACHE_TTL_MIN"`
}

// TokenLifetime returns the configured session token lifetime.
func (c Config) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMin) * time.Minute
}

// CacheTTL returns the configured metadata cache lifetime.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMin) * time.Minute
}

// GoogleRedirectURL is the absolute callback URL registered with Google.
func (c Config) GoogleRedirectURL() string {
	return strings.TrimSuffix(c.PublicBaseURL, "/") + c.CallbackPath
}

// Load reads configuration and validates it. Misconfiguration is fatal
// at startup, never a lazy per-request failure.
func Load() (Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("JWT_ISSUER", "moviepx")
	v.SetDefault("JWT_AUDIENCE", "moviepx-clients")
	v.SetDefault("TOKEN_LIFETIME_MIN", 60)
	v.SetDefault("OAUTH_CALLBACK_PATH", "/google-callback")
	v.SetDefault("PASSWORD_MIN_LENGTH", 12)
	v.SetDefault("OMDB_BASE_URL", "https://www.omdbapi.com/")
	v.SetDefault("CACHE_TTL_MIN", 60)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports every missing required setting at once.
func (c Config) Validate() error {
	var errs []error

	required := []struct {
		name  string
		value string
	}{
		{"JWT_SIGNING_KEY", c.JWTSigningKey},
		{"GOOGLE_CLIENT_ID", c.GoogleClientID},
		{"GOOGLE_CLIENT_SECRET", c.GoogleClientSecret},
		{"DATABASE_DSN", c.DatabaseDSN},
		{"REDIS_ADDR", c.RedisAddr},
		{"OMDB_API_KEY", c.OMDbAPIKey},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("config: %s is required", r.name))
		}
	}

	if c.TokenLifetimeMin <= 0 {
		errs = append(errs, errors.New("config: TOKEN_LIFETIME_MIN must be positive"))
	}
	if !strings.HasPrefix(c.CallbackPath, "/") {
		errs = append(errs, errors.New("config: OAUTH_CALLBACK_PATH must start with /"))
	}

	return errors.Join(errs...)
}
