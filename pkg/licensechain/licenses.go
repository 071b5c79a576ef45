package licensechain

import (
	"context"
	"net/http"
	"net/url"
)

// CreateLicense issues a license for a user and product.
func (c *Client) CreateLicense(ctx context.Context, req CreateLicenseRequest) (*License, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	license, err := Execute[License](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/licenses",
		Body:   req,
	})
	if err != nil {
		return nil, err
	}
	return &license, nil
}

// GetLicense fetches a license by ID.
func (c *Client) GetLicense(ctx context.Context, licenseID string) (*License, error) {
	license, err := Execute[License](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/licenses/" + url.PathEscape(licenseID),
		Route:  "/licenses/{id}",
	})
	if err != nil {
		return nil, err
	}
	return &license, nil
}

// UpdateLicense changes the non-nil fields of req.
func (c *Client) UpdateLicense(ctx context.Context, licenseID string, req UpdateLicenseRequest) (*License, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	license, err := Execute[License](ctx, c, Request{
		Method: http.MethodPut,
		Path:   "/licenses/" + url.PathEscape(licenseID),
		Route:  "/licenses/{id}",
		Body:   req,
	})
	if err != nil {
		return nil, err
	}
	return &license, nil
}

// RevokeLicense revokes a license. The response body is ignored.
func (c *Client) RevokeLicense(ctx context.Context, licenseID string) error {
	_, err := Execute[struct{}](ctx, c, Request{
		Method: http.MethodDelete,
		Path:   "/licenses/" + url.PathEscape(licenseID),
		Route:  "/licenses/{id}",
	})
	return err
}

// ValidateLicense asks the API whether key is a valid license key. A
// response without "valid" counts as invalid.
func (c *Client) ValidateLicense(ctx context.Context, key string) (bool, error) {
	res, err := Execute[verifyLicenseResponse](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/licenses/verify",
		Body:   verifyLicenseRequest{Key: key},
	})
	if err != nil {
		return false, err
	}
	return res.Valid, nil
}

// ListUserLicenses returns one page of the licenses owned by userID.
func (c *Client) ListUserLicenses(ctx context.Context, userID string, opts ListOptions) (*LicenseListResponse, error) {
	query := opts.query()
	query["user_id"] = userID

	list, err := Execute[LicenseListResponse](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/licenses",
		Query:  query,
	})
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// GetLicenseStats returns license totals. A response without "data" yields zero stats.
func (c *Client) GetLicenseStats(ctx context.Context) (*LicenseStats, error) {
	res, err := Execute[dataEnvelope[LicenseStats]](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/licenses/stats",
	})
	if err != nil {
		return nil, err
	}
	return &res.Data, nil
}
