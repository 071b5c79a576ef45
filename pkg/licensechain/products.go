package licensechain

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// CreateProduct creates a product. The currency is sent upper-cased.
func (c *Client) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	req.Currency = strings.ToUpper(req.Currency)

	product, err := Execute[Product](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/products",
		Body:   req,
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) GetProduct(ctx context.Context, productID string) (*Product, error) {
	product, err := Execute[Product](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/products/" + url.PathEscape(productID),
		Route:  "/products/{id}",
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, productID string, req UpdateProductRequest) (*Product, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Currency != nil {
		upper := strings.ToUpper(*req.Currency)
		req.Currency = &upper
	}

	product, err := Execute[Product](ctx, c, Request{
		Method: http.MethodPut,
		Path:   "/products/" + url.PathEscape(productID),
		Route:  "/products/{id}",
		Body:   req,
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	_, err := Execute[struct{}](ctx, c, Request{
		Method: http.MethodDelete,
		Path:   "/products/" + url.PathEscape(productID),
		Route:  "/products/{id}",
	})
	return err
}

func (c *Client) ListProducts(ctx context.Context, opts ListOptions) (*ProductListResponse, error) {
	list, err := Execute[ProductListResponse](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/products",
		Query:  opts.query(),
	})
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// GetProductStats returns product totals. A response without "data" yields zero stats.
func (c *Client) GetProductStats(ctx context.Context) (*ProductStats, error) {
	res, err := Execute[dataEnvelope[ProductStats]](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/products/stats",
	})
	if err != nil {
		return nil, err
	}
	return &res.Data, nil
}
