package client

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Deployment environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the environment-driven client configuration. Variables carry the
// prefix SURVEY_, e.g. SURVEY_BASE_URL=https://survey.example.com .
type Config struct {
	BaseURL     string        `envconfig:"BASE_URL"`
	Timeout     time.Duration `envconfig:"TIMEOUT"     default:"30s"`
	MaxRetries  int           `envconfig:"MAX_RETRIES" default:"3"`
	Environment string        `envconfig:"ENVIRONMENT" default:"development"`
	Debug       bool          `envconfig:"DEBUG"       default:"false"`
	Locale      string        `envconfig:"LOCALE"      default:"ja"`

	// Token seeds the session-scoped store; TokenFile names the durable
	// store, consulted first.
	Token     string `envconfig:"TOKEN"`
	TokenFile string `envconfig:"TOKEN_FILE"`
}

// LoadConfig reads SURVEY_* variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("SURVEY", &cfg); err != nil {
		return Config{}, fmt.Errorf("load client config: %w", err)
	}
	return cfg, nil
}

// Options converts cfg into constructor options.
func (cfg Config) Options() []Option {
	opts := []Option{
		WithEnvironment(cfg.Environment),
		WithLocale(cfg.Locale),
		WithRetryPolicy(cfg.MaxRetries, nil),
		WithDebugLogging(cfg.Debug),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, WithHTTPTimeout(cfg.Timeout))
	}

	session := NewMemoryCredentials(cfg.Token)
	if cfg.TokenFile != "" {
		opts = append(opts, WithCredentials(NewChainCredentials(NewFileCredentials(cfg.TokenFile), session)))
	} else {
		opts = append(opts, WithCredentials(session))
	}
	return opts
}

// NewFromEnv builds a client from SURVEY_* variables. opts are applied after
// the environment and take precedence.
func NewFromEnv(opts ...Option) (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return New(cfg.BaseURL, append(cfg.Options(), opts...)...)
}
