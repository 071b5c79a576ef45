package gin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gongin "github.com/gin-gonic/gin"

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

func setupRouter(cfg Config) *gongin.Engine {
	gongin.SetMode(gongin.TestMode)
	r := gongin.New()
	r.Use(RequireLicense(cfg))
	r.GET("/api/test", func(c *gongin.Context) {
		c.String(http.StatusOK, "key=%s", c.GetString(LicenseKeyContextKey))
	})
	return r
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
			r := setupRouter(Config{Gate: &gate.Gate{Validator: tt.v}})

			req := httptest.NewRequest("GET", "/api/test", http.NoBody)
			if tt.key != "" {
				req.Header.Set(DefaultHeader, tt.key)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
			if tt.status == http.StatusOK && w.Body.String() != "key=good" {
				t.Errorf("Expected accepted key in context, got %q", w.Body.String())
			}
		})
	}
}

func TestRequireLicense_FromQuery(t *testing.T) {
	r := setupRouter(Config{
		Gate:          &gate.Gate{Validator: &stubValidator{valid: map[string]bool{"q": true}}},
		GetLicenseKey: FromQuery("license"),
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/test?license=q", http.NoBody))
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestRequireLicense_FromContext(t *testing.T) {
	gongin.SetMode(gongin.TestMode)
	r := gongin.New()
	r.Use(func(c *gongin.Context) {
		c.Set("authLicense", "ctx-key")
		c.Next()
	})
	r.Use(RequireLicense(Config{
		Gate:          &gate.Gate{Validator: &stubValidator{valid: map[string]bool{"ctx-key": true}}},
		GetLicenseKey: FromContext("authLicense"),
	}))
	r.GET("/api/test", func(c *gongin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/test", http.NoBody))
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
}

func TestRequireLicense_CustomDenied(t *testing.T) {
	r := setupRouter(Config{
		Gate: &gate.Gate{Validator: &stubValidator{}},
		OnDenied: func(c *gongin.Context) {
			c.JSON(http.StatusPaymentRequired, gongin.H{"error": "upgrade"})
		},
	})

	req := httptest.NewRequest("GET", "/api/test", http.NoBody)
	req.Header.Set(DefaultHeader, "expired")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusPaymentRequired {
		t.Errorf("Expected status 402, got %d", w.Code)
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
	gongin.SetMode(gongin.TestMode)
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	verifier, err := webhook.NewVerifier("secret", webhook.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	r := gongin.New()
	r.POST("/webhooks", Webhook(verifier))

	send := func(signature string) *httptest.ResponseRecorder {
		b, _ := json.Marshal(map[string]any{
			"type":      webhook.EventLicenseRevoked,
			"timestamp": now.Format(time.RFC3339),
			"signature": signature,
		})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/webhooks", strings.NewReader(string(b))))
		return w
	}

	if w := send(webhook.Sign("{}", "secret")); w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if w := send("forged"); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/webhooks", http.NoBody))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for empty body, got %d", w.Code)
	}
}

func TestWebhook_HandlerAPIError(t *testing.T) {
	gongin.SetMode(gongin.TestMode)
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

	r := gongin.New()
	r.POST("/webhooks", Webhook(verifier))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/webhooks", strings.NewReader(string(b))))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}
