// Package gin provides Gin middleware for LicenseChain license checks and
// webhook delivery.
package gin

import (
	"errors"
	"net/http"

	gongin "github.com/gin-gonic/gin"

	"github.com/licensechain/licensechain-go/internal/httputil"
	"github.com/licensechain/licensechain-go/pkg/gate"
	"github.com/licensechain/licensechain-go/pkg/webhook"
)

const (
	// DefaultHeader carries the caller's license key unless configured otherwise.
	DefaultHeader = "X-License-Key"

	// LicenseKeyContextKey is where RequireLicense stores the accepted key (c.Get).
	LicenseKeyContextKey = "licensechain.licenseKey"
)

// KeyExtractor extracts the license key from a Gin context
// Return empty string if no key was presented
type KeyExtractor func(c *gongin.Context) string

// Config holds middleware configuration
type Config struct {
	// Gate validates license keys (required)
	Gate *gate.Gate

	// GetLicenseKey extracts the key from context
	// Default: FromHeader(DefaultHeader)
	GetLicenseKey KeyExtractor

	// OnMissing is called when no key is presented
	// If nil, returns 401 Unauthorized
	OnMissing func(c *gongin.Context)

	// OnDenied is called when the key is not valid
	// If nil, returns 403 Forbidden
	OnDenied func(c *gongin.Context)

	// OnError is called when the key could not be validated
	// If nil, returns 503 Service Unavailable
	OnError func(c *gongin.Context, err error)
}

// RequireLicense creates a Gin middleware that aborts requests without a
// valid license key.
func RequireLicense(cfg Config) gongin.HandlerFunc {
	// Validate required configuration at startup (fail fast)
	if cfg.Gate == nil {
		panic("licensechain/gin: Config.Gate is required")
	}
	if cfg.GetLicenseKey == nil {
		cfg.GetLicenseKey = FromHeader(DefaultHeader)
	}

	return func(c *gongin.Context) {
		key := cfg.GetLicenseKey(c)
		decision, err := cfg.Gate.Check(c.Request.Context(), key)
		if err != nil {
			if cfg.OnError != nil {
				cfg.OnError(c, err)
			} else {
				c.JSON(http.StatusServiceUnavailable, gongin.H{"error": "License validation unavailable"})
			}
			c.Abort()
			return
		}

		switch decision {
		case gate.DecisionAllowed:
			c.Set(LicenseKeyContextKey, key)
			c.Next()
		case gate.DecisionMissing:
			if cfg.OnMissing != nil {
				cfg.OnMissing(c)
			} else {
				c.JSON(http.StatusUnauthorized, gongin.H{"error": "License key required"})
			}
			c.Abort()
		default:
			if cfg.OnDenied != nil {
				cfg.OnDenied(c)
			} else {
				c.JSON(http.StatusForbidden, gongin.H{"error": "Invalid license key"})
			}
			c.Abort()
		}
	}
}

// Webhook creates a Gin handler that receives LicenseChain deliveries.
// Register it on a POST route.
func Webhook(verifier *webhook.Verifier) gongin.HandlerFunc {
	if verifier == nil {
		panic("licensechain/gin: webhook verifier is required")
	}

	return func(c *gongin.Context) {
		body, err := httputil.ReadBodyStrict(c.Writer, c.Request, webhook.MaxBodyBytes)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, httputil.ErrPayloadTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			c.AbortWithStatusJSON(status, gongin.H{"error": http.StatusText(status), "message": err.Error()})
			return
		}

		if err := verifier.ProcessPayload(c.Request.Context(), body); err != nil {
			status := webhook.StatusCode(err)
			resp := gongin.H{"error": http.StatusText(status)}
			if status < http.StatusInternalServerError {
				resp["message"] = err.Error()
			}
			c.AbortWithStatusJSON(status, resp)
			return
		}
		c.JSON(http.StatusOK, gongin.H{"status": "ok"})
	}
}

// Convenience extractors

// FromContext returns a KeyExtractor that gets the key from Gin context values
// set by an earlier middleware via c.Set(key, "...").
func FromContext(key string) KeyExtractor {
	return func(c *gongin.Context) string {
		if val, exists := c.Get(key); exists {
			if str, ok := val.(string); ok {
				return str
			}
		}
		return ""
	}
}

// FromHeader returns a KeyExtractor that gets the key from a header
func FromHeader(headerName string) KeyExtractor {
	return func(c *gongin.Context) string {
		return c.GetHeader(headerName)
	}
}

// FromQuery returns a KeyExtractor that gets the key from a query parameter
func FromQuery(queryName string) KeyExtractor {
	return func(c *gongin.Context) string {
		return c.Query(queryName)
	}
}
