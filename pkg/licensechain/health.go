package licensechain

import (
	"context"
	"net/http"
)

// Ping checks that the API is reachable and the key is accepted.
func (c *Client) Ping(ctx context.Context) (Status, error) {
	return Execute[Status](ctx, c, Request{Method: http.MethodGet, Path: "/ping"})
}

// Health returns the service health report.
func (c *Client) Health(ctx context.Context) (Status, error) {
	return Execute[Status](ctx, c, Request{Method: http.MethodGet, Path: "/health"})
}
