// Package webhook verifies and dispatches LicenseChain webhook deliveries.
//
// A delivery is a JSON object:
//
//	{
//	  "id": "evt_123",
//	  "type": "license.revoked",
//	  "timestamp": "2024-01-15T10:30:00Z",
//	  "signature": "<hex HMAC-SHA256 of the canonical data>",
//	  "data": {...}
//	}
//
// The signature covers the canonical JSON form of "data" (see Canonicalize).
// The timestamp must lie within the tolerance window around the current time.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/licensechain/licensechain-go/pkg/licensechain"
	"github.com/licensechain/licensechain-go/pkg/utils"
)

// DefaultTolerance is the accepted clock distance for delivery timestamps.
const DefaultTolerance = 300 * time.Second

// Verifier checks webhook signatures and timestamps and dispatches events.
// It is immutable after NewVerifier and safe for concurrent use.
type Verifier struct {
	secret    string
	tolerance time.Duration
	now       func() time.Time
	handlers  map[string]Handler
	replay    ReplayGuard
	logger    licensechain.Logger
	metrics   Metrics
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithTolerance sets the accepted distance between a delivery timestamp and now.
func WithTolerance(d time.Duration) Option {
	return func(v *Verifier) { v.tolerance = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

// WithLogger sets the logger used by the built-in handlers and for rejected deliveries.
func WithLogger(logger licensechain.Logger) Option {
	return func(v *Verifier) { v.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(metrics Metrics) Option {
	return func(v *Verifier) { v.metrics = metrics }
}

// WithHandler registers h for eventType, replacing the built-in handler.
// Custom event types not in KnownEventTypes may be registered too.
func WithHandler(eventType string, h Handler) Option {
	return func(v *Verifier) { v.handlers[eventType] = h }
}

// WithReplayGuard rejects a second delivery with the same signature while
// it is still inside the tolerance window.
func WithReplayGuard(guard ReplayGuard) Option {
	return func(v *Verifier) { v.replay = guard }
}

// NewVerifier creates a Verifier for secret.
func NewVerifier(secret string, opts ...Option) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, &licensechain.Error{Kind: licensechain.KindValidation, Message: "webhook secret is required"}
	}

	v := &Verifier{
		secret:    secret,
		tolerance: DefaultTolerance,
		now:       time.Now,
		handlers:  make(map[string]Handler),
		logger:    &licensechain.NoopLogger{},
		metrics:   &NoopMetrics{},
	}
	for _, opt := range opts {
		opt(v)
	}

	if v.tolerance < 0 {
		return nil, &licensechain.Error{Kind: licensechain.KindValidation, Message: "webhook tolerance must not be negative"}
	}
	for eventType, h := range v.handlers {
		if h == nil {
			return nil, &licensechain.Error{Kind: licensechain.KindValidation, Message: "nil handler for " + eventType}
		}
	}
	return v, nil
}

// Sign returns the hex HMAC-SHA256 signature of payload under secret.
func Sign(payload, secret string) string {
	return utils.CreateWebhookSignature(payload, secret)
}

// VerifySignature reports whether signature is the hex HMAC-SHA256 of payload.
// The comparison runs in constant time.
func (v *Verifier) VerifySignature(payload, signature string) bool {
	return utils.VerifyWebhookSignature(payload, signature, v.secret)
}

// VerifyTimestamp checks that timestamp is an RFC 3339 time no further than
// the tolerance from now. A timestamp exactly at the boundary is accepted.
func (v *Verifier) VerifyTimestamp(timestamp string) error {
	ts, err := utils.ParseTimestamp(timestamp)
	if err != nil {
		return &licensechain.Error{Kind: licensechain.KindValidation, Message: "Invalid timestamp format", Err: err}
	}

	diff := v.now().Sub(ts)
	if diff > v.tolerance {
		return &licensechain.Error{
			Kind:    licensechain.KindValidation,
			Message: fmt.Sprintf("Webhook timestamp too old: %d seconds", int64(math.Round(diff.Seconds()))),
		}
	}
	if -diff > v.tolerance {
		return &licensechain.Error{
			Kind:    licensechain.KindValidation,
			Message: fmt.Sprintf("Webhook timestamp outside tolerance: %d seconds in the future", int64(math.Round(-diff.Seconds()))),
		}
	}
	return nil
}

// VerifyWebhook checks the timestamp and then the signature. A stale
// timestamp yields a validation error even when the signature is valid; a bad
// signature yields an authentication error.
func (v *Verifier) VerifyWebhook(payload, signature, timestamp string) error {
	if err := v.VerifyTimestamp(timestamp); err != nil {
		return err
	}
	if !v.VerifySignature(payload, signature) {
		return &licensechain.Error{Kind: licensechain.KindAuthentication, Message: "Invalid webhook signature"}
	}
	return nil
}

// Canonicalize renders data the way deliveries are signed: compact JSON with
// object keys sorted and no HTML escaping.
func Canonicalize(data any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// ProcessPayload decodes a raw delivery body and processes it. Numbers are
// kept in their original textual form so the canonical payload matches what
// the sender signed.
func (v *Verifier) ProcessPayload(ctx context.Context, body []byte) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var event map[string]any
	if err := dec.Decode(&event); err != nil {
		return &licensechain.Error{Kind: licensechain.KindValidation, Message: "Invalid event data", Err: err}
	}
	if dec.More() {
		return &licensechain.Error{Kind: licensechain.KindValidation, Message: "Invalid event data: multiple JSON values"}
	}
	if event == nil {
		return &licensechain.Error{Kind: licensechain.KindValidation, Message: "Invalid event data: not an object"}
	}
	return v.ProcessEvent(ctx, event)
}

// ProcessEvent verifies a decoded delivery and dispatches it on its "type".
// Unknown types are logged and ignored.
func (v *Verifier) ProcessEvent(ctx context.Context, event map[string]any) error {
	start := v.now()

	data, err := eventData(event)
	if err != nil {
		return v.reject("validation", err)
	}
	payload, err := Canonicalize(data)
	if err != nil {
		return v.reject("validation", &licensechain.Error{Kind: licensechain.KindValidation, Message: "Invalid event data", Err: err})
	}

	signature, ok := event["signature"].(string)
	if !ok {
		return v.reject("validation", &licensechain.Error{Kind: licensechain.KindValidation, Message: "Missing signature"})
	}
	timestamp, ok := event["timestamp"].(string)
	if !ok {
		return v.reject("validation", &licensechain.Error{Kind: licensechain.KindValidation, Message: "Missing timestamp"})
	}

	if err := v.VerifyWebhook(payload, signature, timestamp); err != nil {
		kind := "validation"
		if errors.Is(err, licensechain.ErrAuthentication) {
			kind = "authentication"
		}
		return v.reject(kind, err)
	}

	eventType, _ := event["type"].(string)

	if v.replay != nil {
		fresh, err := v.replay.Remember(ctx, signature, 2*v.tolerance)
		if err != nil {
			v.metrics.RecordWebhookError("internal")
			return fmt.Errorf("replay guard: %w", err)
		}
		if !fresh {
			v.logger.Info("duplicate webhook delivery ignored", licensechain.Field{Key: "type", Value: eventType})
			v.metrics.RecordWebhookEvent(eventType, "duplicate")
			return nil
		}
	}

	handler, ok := v.handlers[eventType]
	if !ok {
		if !IsKnownEventType(eventType) {
			v.logger.Warn("Unknown webhook event type", licensechain.Field{Key: "type", Value: eventType})
			v.metrics.RecordWebhookEvent(eventType, "ignored")
			return nil
		}
		handler = v.builtinHandler
	}

	ts, _ := utils.ParseTimestamp(timestamp)
	evt := Event{
		ID:        eventID(event, data),
		Type:      eventType,
		Timestamp: ts,
		Data:      data,
		Raw:       event,
	}

	if err := handler(ctx, evt); err != nil {
		v.metrics.RecordWebhookError("handler")
		v.metrics.RecordWebhookEvent(eventType, "error")
		herr := &handlerError{eventType: eventType, id: evt.ID, err: err}
		if v.replay != nil {
			// Release the signature so the sender's retry is handled again,
			// also when the request context is already gone.
			if ferr := v.replay.Forget(context.WithoutCancel(ctx), signature); ferr != nil {
				v.logger.Error("failed to release webhook signature",
					licensechain.Field{Key: "type", Value: eventType},
					licensechain.Field{Key: "error", Value: ferr},
				)
				return errors.Join(herr, fmt.Errorf("replay guard: %w", ferr))
			}
		}
		return herr
	}

	v.metrics.RecordWebhookEvent(eventType, "success")
	v.metrics.RecordWebhookProcessingDuration(eventType, v.now().Sub(start))
	return nil
}

// handlerError marks a failure returned by an event handler. Whatever the
// handler's error matches, the delivery itself was valid.
type handlerError struct {
	eventType string
	id        string
	err       error
}

func (e *handlerError) Error() string {
	return fmt.Sprintf("handle %s event %s: %v", e.eventType, e.id, e.err)
}

func (e *handlerError) Unwrap() error { return e.err }

// builtinHandler logs the event, the default for known types.
func (v *Verifier) builtinHandler(_ context.Context, event Event) error {
	v.logger.Info(knownEvents[event.Type]+": "+event.ID,
		licensechain.Field{Key: "type", Value: event.Type},
		licensechain.Field{Key: "id", Value: event.ID},
	)
	return nil
}

func (v *Verifier) reject(errorType string, err error) error {
	v.metrics.RecordWebhookError(errorType)
	v.logger.Warn("webhook delivery rejected",
		licensechain.Field{Key: "reason", Value: errorType},
		licensechain.Field{Key: "error", Value: err},
	)
	return err
}

// eventData returns the "data" object, {} when absent or null.
func eventData(event map[string]any) (map[string]any, error) {
	raw, ok := event["data"]
	if !ok || raw == nil {
		return map[string]any{}, nil
	}
	data, ok := raw.(map[string]any)
	if !ok {
		return nil, &licensechain.Error{Kind: licensechain.KindValidation, Message: "Invalid event data: data must be an object"}
	}
	return data, nil
}

func eventID(event, data map[string]any) string {
	if id, ok := event["id"].(string); ok && id != "" {
		return id
	}
	if id, ok := data["id"].(string); ok && id != "" {
		return id
	}
	return "unknown"
}
