package licensechain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Request describes one logical API call.
type Request struct {
	Method string
	// Path is appended to the base URL, e.g. "/licenses/abc".
	Path string
	// Route labels metrics and spans, e.g. "/licenses/{id}". Defaults to Path.
	Route string
	// Query values are rendered with fmt.Sprint. Nil values are skipped.
	Query map[string]any
	// Body is encoded as JSON when non-nil.
	Body any
}

// Execute runs req through the request pipeline and decodes a 2xx response
// into T. An empty 2xx body decodes as {}.
//
// Transport failures and undecodable 2xx bodies are retried up to
// MaxRetries attempts in total, sleeping 2^i seconds after failed attempt i.
// Any non-2xx response is returned at once as a KindHTTP error.
func Execute[T any](ctx context.Context, c *Client, req Request) (T, error) {
	route := req.Route
	if route == "" {
		route = req.Path
	}

	ctx, span := c.tracer.Start(ctx, "licensechain "+req.Method+" "+route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("licensechain.route", route),
		),
	)
	defer span.End()

	out, attempts, err := execute[T](ctx, c, req, route)
	span.SetAttributes(attribute.Int("licensechain.attempts", attempts))

	if err != nil {
		var lcErr *Error
		if errors.As(err, &lcErr) {
			span.SetAttributes(attribute.String("licensechain.error_kind", string(lcErr.Kind)))
			if lcErr.StatusCode != 0 {
				span.SetAttributes(attribute.Int("http.response.status_code", lcErr.StatusCode))
			}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		c.logger.Error("licensechain request failed",
			Field{"method", req.Method},
			Field{"route", route},
			Field{"attempts", attempts},
			Field{"error", err},
		)
		return out, err
	}

	span.SetStatus(codes.Ok, "")
	return out, nil
}

func execute[T any](ctx context.Context, c *Client, req Request, route string) (T, int, error) {
	var zero T

	target, err := c.buildURL(req.Path, req.Query)
	if err != nil {
		return zero, 0, err
	}

	var body []byte
	if req.Body != nil {
		body, err = json.Marshal(req.Body)
		if err != nil {
			return zero, 0, newValidationError("request body could not be encoded as JSON", err)
		}
	}

	var lastErr *Error
	attempts := 0
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, attempts, newNetworkError(ctxErr)
		}

		attempts++
		start := time.Now()
		out, status, attemptErr := doAttempt[T](ctx, c, req.Method, target, body)
		c.metrics.RecordRequest(req.Method, route, status, time.Since(start))

		if attemptErr == nil {
			return out, attempts, nil
		}
		if !attemptErr.Retryable() {
			return zero, attempts, attemptErr
		}
		// The caller gave up; the attempt error only echoes that.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, attempts, newNetworkError(ctxErr)
		}
		lastErr = attemptErr

		if attempt+1 < c.cfg.MaxRetries {
			delay := backoff(attempt)
			c.metrics.RecordRetry(req.Method, route, attempts)
			c.logger.Debug("retrying licensechain request",
				Field{"method", req.Method},
				Field{"route", route},
				Field{"attempt", attempts},
				Field{"delay", delay},
				Field{"error", attemptErr},
			)
			if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
				return zero, attempts, newNetworkError(sleepErr)
			}
		}
	}

	if lastErr == nil {
		return zero, attempts, &Error{Kind: KindUnknown}
	}
	return zero, attempts, lastErr
}

// doAttempt performs one HTTP exchange under its own timeout. status is 0
// when no response was received.
func doAttempt[T any](ctx context.Context, c *Client, method, target string, body []byte) (T, int, *Error) {
	var zero T

	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, method, target, reader)
	if err != nil {
		return zero, 0, &Error{Kind: KindInvalidURL, Message: target, Err: err}
	}
	c.setHeaders(httpReq)

	res, err := c.http.Do(httpReq)
	if err != nil {
		return zero, 0, newNetworkError(err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return zero, res.StatusCode, newNetworkError(fmt.Errorf("read response body: %w", err))
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return zero, res.StatusCode, newHTTPError(res.StatusCode, errorMessage(data))
	}

	out, err := decodeBody[T](data)
	if err != nil {
		return zero, res.StatusCode, &Error{Kind: KindInvalidResponse, Err: err}
	}
	return out, res.StatusCode, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Version", APIVersion)
	req.Header.Set("X-Platform", c.cfg.Platform)
	req.Header.Set("User-Agent", c.cfg.UserAgent)
}

// buildURL joins the base URL and path and appends query in sorted key order.
func (c *Client) buildURL(path string, query map[string]any) (string, error) {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	raw := c.cfg.BaseURL + path

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", &Error{Kind: KindInvalidURL, Message: raw, Err: err}
	}

	if len(query) > 0 {
		values := u.Query()
		for key, value := range query {
			if value == nil {
				continue
			}
			values.Set(key, fmt.Sprint(value))
		}
		u.RawQuery = values.Encode()
	}
	return u.String(), nil
}

// backoff returns the delay after failed attempt i (zero-based): 1s, 2s, 4s, ...
func backoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

// decodeBody decodes a 2xx body into T, treating an empty body as {}.
func decodeBody[T any](data []byte) (T, error) {
	var out T
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return out, errors.New("unexpected data after JSON value")
	}
	return out, nil
}

// errorMessage extracts the "error" string of an error body.
func errorMessage(data []byte) string {
	var body struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return unknownHTTPMessage
	}
	if msg, ok := body.Error.(string); ok && msg != "" {
		return msg
	}
	return unknownHTTPMessage
}
