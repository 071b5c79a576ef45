package licensechain

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	user, err := Execute[User](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/users",
		Body:   req,
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	user, err := Execute[User](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/users/" + url.PathEscape(userID),
		Route:  "/users/{id}",
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateUser(ctx context.Context, userID string, req UpdateUserRequest) (*User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	user, err := Execute[User](ctx, c, Request{
		Method: http.MethodPut,
		Path:   "/users/" + url.PathEscape(userID),
		Route:  "/users/{id}",
		Body:   req,
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	_, err := Execute[struct{}](ctx, c, Request{
		Method: http.MethodDelete,
		Path:   "/users/" + url.PathEscape(userID),
		Route:  "/users/{id}",
	})
	return err
}

func (c *Client) ListUsers(ctx context.Context, opts ListOptions) (*UserListResponse, error) {
	list, err := Execute[UserListResponse](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/users",
		Query:  opts.query(),
	})
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// GetUserStats returns user totals. A response without "data" yields zero stats.
func (c *Client) GetUserStats(ctx context.Context) (*UserStats, error) {
	res, err := Execute[dataEnvelope[UserStats]](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/users/stats",
	})
	if err != nil {
		return nil, err
	}
	return &res.Data, nil
}
