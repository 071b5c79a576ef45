// Package echo provides Echo middleware for LicenseChain license checks and
// webhook delivery.
package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

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

// KeyExtractor extracts the license key from an Echo context
// Return empty string if no key was presented
type KeyExtractor func(c echo.Context) string

// Config holds middleware configuration
type Config struct {
	// Gate validates license keys (required)
	Gate *gate.Gate

	// GetLicenseKey extracts the key from context
	// Default: FromHeader(DefaultHeader)
	GetLicenseKey KeyExtractor

	// OnMissing is called when no key is presented
	// If nil, returns 401 Unauthorized
	OnMissing func(c echo.Context) error

	// OnDenied is called when the key is not valid
	// If nil, returns 403 Forbidden
	OnDenied func(c echo.Context) error

	// OnError is called when the key could not be validated
	// If nil, returns 503 Service Unavailable
	OnError func(c echo.Context, err error) error
}

// RequireLicense creates an Echo middleware that rejects requests without a
// valid license key.
func RequireLicense(cfg Config) echo.MiddlewareFunc {
	// Validate required configuration at startup (fail fast)
	if cfg.Gate == nil {
		panic("licensechain/echo: Config.Gate is required")
	}
	if cfg.GetLicenseKey == nil {
		cfg.GetLicenseKey = FromHeader(DefaultHeader)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := cfg.GetLicenseKey(c)
			decision, err := cfg.Gate.Check(c.Request().Context(), key)
			if err != nil {
				if cfg.OnError != nil {
					return cfg.OnError(c, err)
				}
				return c.JSON(http.StatusServiceUnavailable, httputil.ErrorBody{Error: "License validation unavailable"})
			}

			switch decision {
			case gate.DecisionAllowed:
				c.Set(LicenseKeyContextKey, key)
				return next(c)
			case gate.DecisionMissing:
				if cfg.OnMissing != nil {
					return cfg.OnMissing(c)
				}
				return c.JSON(http.StatusUnauthorized, httputil.ErrorBody{Error: "License key required"})
			default:
				if cfg.OnDenied != nil {
					return cfg.OnDenied(c)
				}
				return c.JSON(http.StatusForbidden, httputil.ErrorBody{Error: "Invalid license key"})
			}
		}
	}
}

// Webhook creates an Echo handler that receives LicenseChain deliveries.
// Register it on a POST route.
func Webhook(verifier *webhook.Verifier) echo.HandlerFunc {
	if verifier == nil {
		panic("licensechain/echo: webhook verifier is required")
	}

	return func(c echo.Context) error {
		body, err := httputil.ReadBodyStrict(c.Response(), c.Request(), webhook.MaxBodyBytes)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, httputil.ErrPayloadTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			return c.JSON(status, httputil.ErrorBody{Error: http.StatusText(status), Message: err.Error()})
		}

		if err := verifier.ProcessPayload(c.Request().Context(), body); err != nil {
			status := webhook.StatusCode(err)
			resp := httputil.ErrorBody{Error: http.StatusText(status)}
			if status < http.StatusInternalServerError {
				resp.Message = err.Error()
			}
			return c.JSON(status, resp)
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Convenience extractors

// FromContext returns a KeyExtractor that gets the key from Echo context values
// set by an earlier middleware via c.Set(key, "...").
func FromContext(key string) KeyExtractor {
	return func(c echo.Context) string {
		if str, ok := c.Get(key).(string); ok {
			return str
		}
		return ""
	}
}

// FromHeader returns a KeyExtractor that gets the key from a header
func FromHeader(headerName string) KeyExtractor {
	return func(c echo.Context) string {
		return c.Request().Header.Get(headerName)
	}
}

// FromQuery returns a KeyExtractor that gets the key from a query parameter
func FromQuery(name string) KeyExtractor {
	return func(c echo.Context) string {
		return c.QueryParam(name)
	}
}
