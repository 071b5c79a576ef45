// Package licensechain is a client for the LicenseChain licensing API.
//
// A Client wraps the REST endpoints for licenses, users, products and
// webhooks. Every call goes through one request pipeline that adds the
// authentication and SDK headers, retries transient failures with
// exponential backoff and turns responses into typed values or *Error.
//
//	client, err := licensechain.New(licensechain.DefaultConfig(os.Getenv("LICENSECHAIN_API_KEY")))
//	if err != nil {
//		return err
//	}
//	valid, err := client.ValidateLicense(ctx, key)
//
// Custom endpoints can be called with Execute:
//
//	status, err := licensechain.Execute[licensechain.Status](ctx, client, licensechain.Request{
//		Method: http.MethodGet,
//		Path:   "/ping",
//	})
package licensechain

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/licensechain/licensechain-go/pkg/licensechain"

// Client is safe for concurrent use. Its configuration is fixed at construction.
type Client struct {
	cfg     Config
	http    HTTPDoer
	logger  Logger
	metrics Metrics
	tracer  trace.Tracer

	// sleep waits between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New validates cfg, applies defaults and returns a Client.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = &NoopLogger{}
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = &NoopMetrics{}
	}

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &Client{
		cfg:     cfg,
		http:    httpClient,
		logger:  logger,
		metrics: metrics,
		tracer:  tp.Tracer(tracerName, trace.WithInstrumentationVersion(Version)),
		sleep:   sleepContext,
	}, nil
}

// Config returns a copy of the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
