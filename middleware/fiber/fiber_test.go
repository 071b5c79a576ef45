package fiber

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/licensechain/licensechain-go/pkg/gate"
	"github.com/licensechain/licensechain-go/pkg/licensechain"
	"github.com/licensechain/licensechain-go/pkg/webhook"
)

type stubValidator struct {
	valid map[string]bool
	err   error
}

func (s *stubValidator) ValidateLicense(_ context.Context, key string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.valid[key], nil
}

func setupApp(cfg Config) *fiber.App {
	app := fiber.New()
	app.Use(RequireLicense(cfg))
	app.Get("/api/test", func(c *fiber.Ctx) error {
		key, _ := c.Locals(LicenseKeyLocalsKey).(string)
		return c.SendString("key=" + key)
	})
	return app
}

func TestRequireLicense(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		v      *stubValidator
		status int
	}{
		{"allowed", "good", &stubValidator{valid: map[string]bool{"good": true}}, http.StatusOK},
		{"missing", "", &stubValidator{}, http.StatusUnauthorized},
		{"denied", "bad", &stubValidator{}, http.StatusForbidden},
		{"unavailable", "good", &stubValidator{err: errors.New("connection refused")}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupApp(Config{Gate: &gate.Gate{Validator: tt.v}})

			req := httptest.NewRequest("GET", "/api/test", http.NoBody)
			if tt.key != "" {
				req.Header.Set(DefaultHeader, tt.key)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, resp.StatusCode)
			}
			if tt.status == http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				if string(body) != "key=good" {
					t.Errorf("Expected accepted key in locals, got %q", string(body))
				}
			}
		})
	}
}

func TestRequireLicense_Extractors(t *testing.T) {
	v := &stubValidator{valid: map[string]bool{"q": true, "loc": true}}

	app := setupApp(Config{Gate: &gate.Gate{Validator: v}, GetLicenseKey: FromQuery("license")})
	resp, err := app.Test(httptest.NewRequest("GET", "/api/test?license=q", http.NoBody))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("FromQuery: expected status 200, got %d", resp.StatusCode)
	}

	app = fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("authLicense", "loc")
		return c.Next()
	})
	app.Use(RequireLicense(Config{Gate: &gate.Gate{Validator: v}, GetLicenseKey: FromContext("authLicense")}))
	app.Get("/api/test", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	resp, err = app.Test(httptest.NewRequest("GET", "/api/test", http.NoBody))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("FromLocals: expected status 204, got %d", resp.StatusCode)
	}
}

func TestRequireLicense_PanicsWithoutGate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for missing Gate")
		}
	}()
	RequireLicense(Config{})
}

func TestWebhook(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	var handled []string
	verifier, err := webhook.NewVerifier("secret",
		webhook.WithClock(func() time.Time { return now }),
		webhook.WithHandler(webhook.EventPaymentFailed, func(_ context.Context, e webhook.Event) error {
			handled = append(handled, e.ID)
			return nil
		}),
	)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	app := fiber.New()
	app.Post("/webhooks", Webhook(verifier))

	post := func(body string) int {
		req := httptest.NewRequest("POST", "/webhooks", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()
		return resp.StatusCode
	}

	b, _ := json.Marshal(map[string]any{
		"id":        "evt_42",
		"type":      webhook.EventPaymentFailed,
		"timestamp": now.Format(time.RFC3339),
		"signature": webhook.Sign(`{"amount":5}`, "secret"),
		"data":      map[string]any{"amount": 5},
	})

	if status := post(string(b)); status != http.StatusOK {
		t.Errorf("Expected status 200, got %d", status)
	}
	if len(handled) != 1 || handled[0] != "evt_42" {
		t.Errorf("Expected one handled event, got %v", handled)
	}
	if status := post(""); status != http.StatusBadRequest {
		t.Errorf("Expected status 400 for empty body, got %d", status)
	}
	if status := post(`{"type":"payment.failed"}`); status != http.StatusBadRequest {
		t.Errorf("Expected status 400 for missing signature, got %d", status)
	}
}

func TestWebhook_HandlerAPIError(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	verifier, err := webhook.NewVerifier("secret",
		webhook.WithClock(func() time.Time { return now }),
		webhook.WithHandler(webhook.EventLicenseRevoked, func(context.Context, webhook.Event) error {
			return &licensechain.Error{Kind: licensechain.KindHTTP, StatusCode: http.StatusUnauthorized, Message: "invalid api key"}
		}),
	)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	b, _ := json.Marshal(map[string]any{
		"type":      webhook.EventLicenseRevoked,
		"timestamp": now.Format(time.RFC3339),
		"signature": webhook.Sign("{}", "secret"),
	})

	app := fiber.New()
	app.Post("/webhooks", Webhook(verifier))

	resp, err := app.Test(httptest.NewRequest("POST", "/webhooks", strings.NewReader(string(b))))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", resp.StatusCode)
	}
}
