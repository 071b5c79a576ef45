// Package fiber provides Fiber middleware for LicenseChain license checks and
// webhook delivery.
package fiber

import (
	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"

	"github.com/licensechain/licensechain-go/internal/httputil"
	"github.com/licensechain/licensechain-go/pkg/gate"
	"github.com/licensechain/licensechain-go/pkg/webhook"
)

const (
	// DefaultHeader carries the caller's license key unless configured otherwise.
	DefaultHeader = "X-License-Key"

	// LicenseKeyLocalsKey is where RequireLicense stores the accepted key (c.Locals).
	LicenseKeyLocalsKey = "licensechain.licenseKey"
)

// KeyExtractor extracts the license key from a Fiber context
// Return empty string if no key was presented
type KeyExtractor func(c *fiber.Ctx) string

// Config holds middleware configuration
type Config struct {
	// Gate validates license keys (required)
	Gate *gate.Gate

	// GetLicenseKey extracts the key from context
	// Default: FromHeader(DefaultHeader)
	GetLicenseKey KeyExtractor

	// OnMissing is called when no key is presented
	// If nil, returns 401 Unauthorized
	OnMissing func(c *fiber.Ctx) error

	// OnDenied is called when the key is not valid
	// If nil, returns 403 Forbidden
	OnDenied func(c *fiber.Ctx) error

	// OnError is called when the key could not be validated
	// If nil, returns 503 Service Unavailable
	OnError func(c *fiber.Ctx, err error) error
}

// RequireLicense creates a Fiber middleware that rejects requests without a
// valid license key.
func RequireLicense(cfg Config) fiber.Handler {
	// Validate required configuration at startup (fail fast)
	if cfg.Gate == nil {
		panic("licensechain/fiber: Config.Gate is required")
	}
	if cfg.GetLicenseKey == nil {
		cfg.GetLicenseKey = FromHeader(DefaultHeader)
	}

	return func(c *fiber.Ctx) error {
		// Fiber runs on fasthttp; the request context lives in c.UserContext().
		key := cfg.GetLicenseKey(c)
		decision, err := cfg.Gate.Check(c.UserContext(), key)
		if err != nil {
			if cfg.OnError != nil {
				return cfg.OnError(c, err)
			}
			return c.Status(fiber.StatusServiceUnavailable).JSON(httputil.ErrorBody{Error: "License validation unavailable"})
		}

		switch decision {
		case gate.DecisionAllowed:
			c.Locals(LicenseKeyLocalsKey, key)
			return c.Next()
		case gate.DecisionMissing:
			if cfg.OnMissing != nil {
				return cfg.OnMissing(c)
			}
			return c.Status(fiber.StatusUnauthorized).JSON(httputil.ErrorBody{Error: "License key required"})
		default:
			if cfg.OnDenied != nil {
				return cfg.OnDenied(c)
			}
			return c.Status(fiber.StatusForbidden).JSON(httputil.ErrorBody{Error: "Invalid license key"})
		}
	}
}

// Webhook creates a Fiber handler that receives LicenseChain deliveries.
// Register it on a POST route.
func Webhook(verifier *webhook.Verifier) fiber.Handler {
	if verifier == nil {
		panic("licensechain/fiber: webhook verifier is required")
	}

	return func(c *fiber.Ctx) error {
		body := c.Body()
		switch {
		case len(body) == 0:
			return c.Status(fiber.StatusBadRequest).JSON(httputil.ErrorBody{
				Error:   fiberutils.StatusMessage(fiber.StatusBadRequest),
				Message: httputil.ErrEmptyBody.Error(),
			})
		case len(body) > webhook.MaxBodyBytes:
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(httputil.ErrorBody{
				Error:   fiberutils.StatusMessage(fiber.StatusRequestEntityTooLarge),
				Message: httputil.ErrPayloadTooLarge.Error(),
			})
		}

		// fasthttp reuses the body buffer after the handler returns.
		payload := append([]byte(nil), body...)
		if err := verifier.ProcessPayload(c.UserContext(), payload); err != nil {
			status := webhook.StatusCode(err)
			resp := httputil.ErrorBody{Error: fiberutils.StatusMessage(status)}
			if status < fiber.StatusInternalServerError {
				resp.Message = err.Error()
			}
			return c.Status(status).JSON(resp)
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}

// Convenience extractors

// FromLocals returns a KeyExtractor that gets the key from c.Locals, set by
// an earlier middleware.
func FromLocals(key string) KeyExtractor {
	return func(c *fiber.Ctx) string {
		if str, ok := c.Locals(key).(string); ok {
			return str
		}
		return ""
	}
}

// FromContext is FromLocals under the name the other middlewares use.
func FromContext(key string) KeyExtractor {
	return FromLocals(key)
}

// FromHeader returns a KeyExtractor that gets the key from a header
func FromHeader(headerName string) KeyExtractor {
	return func(c *fiber.Ctx) string {
		return c.Get(headerName)
	}
}

// FromQuery returns a KeyExtractor that gets the key from a query parameter
func FromQuery(name string) KeyExtractor {
	return func(c *fiber.Ctx) string {
		return c.Query(name)
	}
}
