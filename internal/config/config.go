package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"codeberg.org/snonux/cargo-check-i18n/internal"
)

// Viper keys
const (
	KeyLanguage            = "language"
	KeyAPIURL              = "api_url"
	KeyAPIKey              = "api_key"
	KeyModel               = "model"
	KeyTemperature         = "temperature"
	KeyRateLimit           = "rate_limit"
	KeyRequestBodyTemplate = "request_body_template"
	KeyResponsePath        = "response_path"
	KeyTimeout             = "timeout"
	KeyBreakerFailures     = "breaker_failures"
)

// Defaults
const (
	DefaultLanguage     = "zh-CN"
	DefaultAPIURL       = "https://api.openai.com/v1/chat/completions"
	DefaultModel        = "gpt-4o-mini"
	DefaultTemperature  = 0.2
	DefaultRateLimit    = 8
	DefaultResponsePath = "choices.0.message.content"
	DefaultTimeout      = 30 * time.Second
)

var (
	// ErrNotFound is returned when no configuration file exists yet
	ErrNotFound = errors.New("configuration file not found")

	// ErrMissingAPIKey is returned when api_key is empty
	ErrMissingAPIKey = errors.New("api_key is not configured")
)

// Config is read once per run and never modified afterwards
type Config struct {
	Language            string
	APIURL              string
	APIKey              string
	Model               string
	Temperature         float64
	RateLimit           int
	RequestBodyTemplate string
	ResponsePath        string
	Timeout             time.Duration

	// BreakerFailures consecutive endpoint failures open a circuit breaker
	// that skips requests for a while. 0 disables the breaker, so every
	// miss reaches the endpoint.
	BreakerFailures int
}

// SetDefaults registers default values on a viper instance
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLanguage, DefaultLanguage)
	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyModel, DefaultModel)
	v.SetDefault(KeyTemperature, DefaultTemperature)
	v.SetDefault(KeyRateLimit, DefaultRateLimit)
	v.SetDefault(KeyResponsePath, DefaultResponsePath)
	v.SetDefault(KeyTimeout, int(DefaultTimeout/time.Second))
}

// FromViper builds the snapshot from an initialised viper instance
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Language:            v.GetString(KeyLanguage),
		APIURL:              v.GetString(KeyAPIURL),
		APIKey:              v.GetString(KeyAPIKey),
		Model:               v.GetString(KeyModel),
		Temperature:         v.GetFloat64(KeyTemperature),
		RateLimit:           v.GetInt(KeyRateLimit),
		RequestBodyTemplate: v.GetString(KeyRequestBodyTemplate),
		ResponsePath:        v.GetString(KeyResponsePath),
		Timeout:             time.Duration(v.GetInt(KeyTimeout)) * time.Second,
		BreakerFailures:     v.GetInt(KeyBreakerFailures),
	}

	// OPENAI_API_KEY is honoured when nothing else provides a key
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	cfg.normalize()
	return cfg
}

// Default returns a configuration populated with default values only
func Default() *Config {
	return &Config{
		Language:     DefaultLanguage,
		APIURL:       DefaultAPIURL,
		Model:        DefaultModel,
		Temperature:  DefaultTemperature,
		RateLimit:    DefaultRateLimit,
		ResponsePath: DefaultResponsePath,
		Timeout:      DefaultTimeout,
	}
}

func (c *Config) normalize() {
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.RateLimit < 1 {
		c.RateLimit = 1
	}
	if c.ResponsePath == "" {
		c.ResponsePath = DefaultResponsePath
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.BreakerFailures < 0 {
		c.BreakerFailures = 0
	}
}

// Validate checks the settings required to talk to the endpoint
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.APIURL == "" {
		return fmt.Errorf("api_url is not configured")
	}
	return nil
}

// DefaultPath returns the per-user config file location
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, internal.ToolName, "config.toml")
}

// Exists reports whether a configuration file is present at path
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
