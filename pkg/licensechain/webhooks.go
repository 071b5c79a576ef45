package licensechain

import (
	"context"
	"net/http"
	"net/url"
)

// CreateWebhook registers an endpoint for the given event types.
func (c *Client) CreateWebhook(ctx context.Context, req CreateWebhookRequest) (*Webhook, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	hook, err := Execute[Webhook](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/webhooks",
		Body:   req,
	})
	if err != nil {
		return nil, err
	}
	return &hook, nil
}

func (c *Client) GetWebhook(ctx context.Context, webhookID string) (*Webhook, error) {
	hook, err := Execute[Webhook](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/webhooks/" + url.PathEscape(webhookID),
		Route:  "/webhooks/{id}",
	})
	if err != nil {
		return nil, err
	}
	return &hook, nil
}

func (c *Client) UpdateWebhook(ctx context.Context, webhookID string, req UpdateWebhookRequest) (*Webhook, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	hook, err := Execute[Webhook](ctx, c, Request{
		Method: http.MethodPut,
		Path:   "/webhooks/" + url.PathEscape(webhookID),
		Route:  "/webhooks/{id}",
		Body:   req,
	})
	if err != nil {
		return nil, err
	}
	return &hook, nil
}

func (c *Client) DeleteWebhook(ctx context.Context, webhookID string) error {
	_, err := Execute[struct{}](ctx, c, Request{
		Method: http.MethodDelete,
		Path:   "/webhooks/" + url.PathEscape(webhookID),
		Route:  "/webhooks/{id}",
	})
	return err
}

// ListWebhooks returns every registered webhook.
func (c *Client) ListWebhooks(ctx context.Context) ([]Webhook, error) {
	res, err := Execute[dataEnvelope[[]Webhook]](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/webhooks",
	})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}
