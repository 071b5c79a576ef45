package licensechain

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultBaseURL is the hosted LicenseChain API.
	DefaultBaseURL = "https://api.licensechain.app"

	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of attempts made for retryable failures.
	DefaultMaxRetries = 3

	// DefaultPlatform is sent as X-Platform.
	DefaultPlatform = "go-sdk"

	// Version is the SDK version reported in User-Agent.
	Version = "1.0.0"

	// DefaultUserAgent is sent as User-Agent.
	DefaultUserAgent = "LicenseChain-Go-SDK/" + Version

	// APIVersion is sent as X-API-Version.
	APIVersion = "1.0"

	// EnvPrefix prefixes every variable read by ConfigFromEnv.
	EnvPrefix = "LICENSECHAIN"
)

// HTTPDoer sends HTTP requests. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures a Client. It is copied into the Client by New and never
// modified afterwards.
type Config struct {
	// APIKey authenticates every request. Required.
	APIKey string `envconfig:"API_KEY"`

	// BaseURL is the API root. Defaults to DefaultBaseURL.
	BaseURL string `envconfig:"BASE_URL" default:"https://api.licensechain.app"`

	// Timeout bounds each attempt separately. Defaults to 30s.
	Timeout time.Duration `envconfig:"TIMEOUT" default:"30s"`

	// MaxRetries is the total number of attempts for retryable failures.
	// Zero means DefaultMaxRetries.
	MaxRetries int `envconfig:"MAX_RETRIES" default:"3"`

	// Platform is sent as X-Platform. Defaults to "go-sdk".
	Platform string `envconfig:"PLATFORM" default:"go-sdk"`

	// UserAgent is sent as User-Agent. Defaults to DefaultUserAgent.
	UserAgent string `envconfig:"USER_AGENT" default:"LicenseChain-Go-SDK/1.0.0"`

	// HTTPClient sends the requests. If nil, a plain *http.Client is used;
	// attempt timeouts come from Timeout, not from the client.
	HTTPClient HTTPDoer `ignored:"true"`

	// Logger is an optional logger. If nil, logging is disabled.
	Logger Logger `ignored:"true"`

	// Metrics is an optional metrics collector. If nil, metrics are dropped.
	Metrics Metrics `ignored:"true"`

	// TracerProvider creates the pipeline tracer. If nil, the global provider is used.
	TracerProvider trace.TracerProvider `ignored:"true"`
}

// DefaultConfig returns a Config with every default filled in and the given key.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:     apiKey,
		BaseURL:    DefaultBaseURL,
		Timeout:    DefaultTimeout,
		MaxRetries: DefaultMaxRetries,
		Platform:   DefaultPlatform,
		UserAgent:  DefaultUserAgent,
	}
}

// ConfigFromEnv reads LICENSECHAIN_API_KEY, LICENSECHAIN_BASE_URL,
// LICENSECHAIN_TIMEOUT, LICENSECHAIN_MAX_RETRIES, LICENSECHAIN_PLATFORM and
// LICENSECHAIN_USER_AGENT. Unset variables take their defaults. The result is
// not validated; pass it to New.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config from env: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration after defaults are applied.
func (c Config) Validate() error {
	cfg := c.withDefaults()

	if strings.TrimSpace(cfg.APIKey) == "" {
		return &Error{Kind: KindInvalidAPIKey}
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &Error{Kind: KindInvalidURL, Message: cfg.BaseURL, Err: err}
	}

	if cfg.MaxRetries < 0 {
		return newValidationError(fmt.Sprintf("max retries must not be negative, got %d", cfg.MaxRetries), nil)
	}
	if cfg.Timeout < 0 {
		return newValidationError(fmt.Sprintf("timeout must not be negative, got %s", cfg.Timeout), nil)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.Platform == "" {
		c.Platform = DefaultPlatform
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}
