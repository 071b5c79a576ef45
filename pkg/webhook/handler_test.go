package webhook_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licensechain/licensechain-go/pkg/licensechain"
	"github.com/licensechain/licensechain-go/pkg/webhook"
)

func postDelivery(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/licensechain", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func encode(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestHandler(t *testing.T) {
	v := newVerifier(t, webhook.WithHandler(webhook.EventLicenseExpired, func(context.Context, webhook.Event) error {
		return errors.New("store unavailable")
	}))
	h := v.Handler()

	t.Run("accepts signed delivery", func(t *testing.T) {
		rec := postDelivery(t, h, encode(t, delivery(t, webhook.EventLicenseCreated, map[string]any{"id": "lic_1"}, fixedNow)))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", rec.Body.String())
	})

	t.Run("bad signature", func(t *testing.T) {
		event := delivery(t, webhook.EventLicenseCreated, nil, fixedNow)
		event["signature"] = "deadbeef"
		assert.Equal(t, http.StatusUnauthorized, postDelivery(t, h, encode(t, event)).Code)
	})

	t.Run("stale delivery", func(t *testing.T) {
		event := delivery(t, webhook.EventLicenseCreated, nil, fixedNow.Add(-time.Hour))
		assert.Equal(t, http.StatusBadRequest, postDelivery(t, h, encode(t, event)).Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, postDelivery(t, h, `{"type":`).Code)
	})

	t.Run("empty body", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, postDelivery(t, h, "").Code)
	})

	t.Run("oversized body", func(t *testing.T) {
		body := `{"pad":"` + strings.Repeat("x", webhook.MaxBodyBytes) + `"}`
		assert.Equal(t, http.StatusRequestEntityTooLarge, postDelivery(t, h, body).Code)
	})

	t.Run("handler failure", func(t *testing.T) {
		rec := postDelivery(t, h, encode(t, delivery(t, webhook.EventLicenseExpired, nil, fixedNow)))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("handler API error is not echoed", func(t *testing.T) {
		h := newVerifier(t, webhook.WithHandler(webhook.EventLicenseRevoked, func(context.Context, webhook.Event) error {
			return &licensechain.Error{Kind: licensechain.KindHTTP, StatusCode: http.StatusUnauthorized, Message: "invalid api key"}
		})).Handler()

		rec := postDelivery(t, h, encode(t, delivery(t, webhook.EventLicenseRevoked, nil, fixedNow)))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhooks/licensechain", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
	})
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusOK, webhook.StatusCode(nil))
	assert.Equal(t, http.StatusBadRequest, webhook.StatusCode(&licensechain.Error{Kind: licensechain.KindValidation}))
	assert.Equal(t, http.StatusUnauthorized, webhook.StatusCode(&licensechain.Error{Kind: licensechain.KindAuthentication}))
	assert.Equal(t, http.StatusInternalServerError, webhook.StatusCode(errors.New("boom")))
}
