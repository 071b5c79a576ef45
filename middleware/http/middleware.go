// Package http provides net/http middleware for LicenseChain license checks
// and webhook delivery.
package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/licensechain/licensechain-go/internal/httputil"
	"github.com/licensechain/licensechain-go/pkg/gate"
	"github.com/licensechain/licensechain-go/pkg/webhook"
)

// DefaultHeader carries the caller's license key unless configured otherwise.
const DefaultHeader = "X-License-Key"

// KeyExtractor extracts the license key from an HTTP request
// Return empty string if no key was presented
type KeyExtractor func(r *http.Request) string

// Config holds middleware configuration
type Config struct {
	// Gate validates license keys (required)
	Gate *gate.Gate

	// GetLicenseKey extracts the key from the request
	// Default: FromHeader(DefaultHeader)
	GetLicenseKey KeyExtractor

	// OnMissing is called when no key is presented
	// If nil, returns 401 Unauthorized
	OnMissing func(w http.ResponseWriter, r *http.Request)

	// OnDenied is called when the key is not valid
	// If nil, returns 403 Forbidden
	OnDenied func(w http.ResponseWriter, r *http.Request)

	// OnError is called when the key could not be validated
	// If nil, returns 503 Service Unavailable
	OnError func(w http.ResponseWriter, r *http.Request, err error)
}

// RequireLicense creates an HTTP middleware that only lets requests with a
// valid license key through. The accepted key is stored in the request
// context, see LicenseKey.
func RequireLicense(cfg Config) func(http.Handler) http.Handler {
	if cfg.Gate == nil {
		panic("licensechain/http: Config.Gate is required")
	}
	if cfg.GetLicenseKey == nil {
		cfg.GetLicenseKey = FromHeader(DefaultHeader)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := cfg.GetLicenseKey(r)
			decision, err := cfg.Gate.Check(r.Context(), key)
			if err != nil {
				if cfg.OnError != nil {
					cfg.OnError(w, r, err)
				} else {
					defaultError(w)
				}
				return
			}

			switch decision {
			case gate.DecisionAllowed:
				next.ServeHTTP(w, r.WithContext(WithLicenseKey(r.Context(), key)))
			case gate.DecisionMissing:
				if cfg.OnMissing != nil {
					cfg.OnMissing(w, r)
				} else {
					defaultMissing(w)
				}
			default:
				if cfg.OnDenied != nil {
					cfg.OnDenied(w, r)
				} else {
					defaultDenied(w)
				}
			}
		})
	}
}

// WebhookConfig holds webhook receiver configuration
type WebhookConfig struct {
	// Verifier checks and dispatches deliveries (required)
	Verifier *webhook.Verifier

	// MaxBodyBytes limits the delivery size
	// Default: webhook.MaxBodyBytes
	MaxBodyBytes int64

	// RequestsPerSecond limits deliveries per client IP; 0 disables limiting
	RequestsPerSecond float64

	// Burst is the number of deliveries a client may send at once
	// Default: 10
	Burst int

	// TrustedProxies lists proxy addresses or CIDR prefixes whose
	// X-Forwarded-For header identifies the client. Without them the
	// limiter keys on the connection's remote address.
	TrustedProxies []string
}

// Webhook creates an HTTP handler that receives LicenseChain deliveries and
// answers with a JSON body. Status codes follow webhook.StatusCode.
func Webhook(cfg WebhookConfig) http.Handler {
	if cfg.Verifier == nil {
		panic("licensechain/http: WebhookConfig.Verifier is required")
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = webhook.MaxBodyBytes
	}

	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			_ = httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.ErrorBody{Error: "Method Not Allowed"})
			return
		}

		body, err := httputil.ReadBodyStrict(w, r, cfg.MaxBodyBytes)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, httputil.ErrPayloadTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			_ = httputil.WriteJSON(w, status, httputil.ErrorBody{Error: http.StatusText(status), Message: err.Error()})
			return
		}

		if err := cfg.Verifier.ProcessPayload(r.Context(), body); err != nil {
			status := webhook.StatusCode(err)
			_ = httputil.WriteJSON(w, status, webhookErrorBody(status, err))
			return
		}
		_ = httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.RequestsPerSecond > 0 {
		if cfg.Burst <= 0 {
			cfg.Burst = 10
		}
		limiter := httputil.NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst)
		if err := limiter.TrustProxies(cfg.TrustedProxies...); err != nil {
			panic("licensechain/http: " + err.Error())
		}
		h = limiter.Middleware(h)
	}
	return h
}

func webhookErrorBody(status int, err error) httputil.ErrorBody {
	body := httputil.ErrorBody{Error: http.StatusText(status)}
	if status < http.StatusInternalServerError {
		body.Message = err.Error()
	}
	return body
}

// Default error handlers

func defaultMissing(w http.ResponseWriter) {
	_ = httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorBody{Error: "License key required"})
}

func defaultDenied(w http.ResponseWriter) {
	_ = httputil.WriteJSON(w, http.StatusForbidden, httputil.ErrorBody{Error: "Invalid license key"})
}

func defaultError(w http.ResponseWriter) {
	_ = httputil.WriteJSON(w, http.StatusServiceUnavailable, httputil.ErrorBody{Error: "License validation unavailable"})
}

// ContextKey is a type for context keys
type ContextKey string

const (
	// LicenseKeyKey is the context key for the accepted license key
	LicenseKeyKey ContextKey = "licensechain:licenseKey"
)

// WithLicenseKey adds a license key to ctx
func WithLicenseKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, LicenseKeyKey, key)
}

// LicenseKey returns the license key accepted by RequireLicense, if any
func LicenseKey(ctx context.Context) string {
	key, _ := ctx.Value(LicenseKeyKey).(string)
	return key
}

// FromContext returns a KeyExtractor that gets the key from request context
func FromContext(key ContextKey) KeyExtractor {
	return func(r *http.Request) string {
		if licenseKey, ok := r.Context().Value(key).(string); ok {
			return licenseKey
		}
		return ""
	}
}

// FromHeader returns a KeyExtractor that gets the key from a header
func FromHeader(headerName string) KeyExtractor {
	return func(r *http.Request) string {
		return r.Header.Get(headerName)
	}
}

// FromQuery returns a KeyExtractor that gets the key from a query parameter
func FromQuery(name string) KeyExtractor {
	return func(r *http.Request) string {
		return r.URL.Query().Get(name)
	}
}

// HandlerFunc is RequireLicense for http.HandlerFunc
func HandlerFunc(cfg Config) func(http.HandlerFunc) http.HandlerFunc {
	middleware := RequireLicense(cfg)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return middleware(next).ServeHTTP
	}
}
