package licensechain

import "time"

// License status values reported by the API.
const (
	LicenseStatusActive    = "active"
	LicenseStatusExpired   = "expired"
	LicenseStatusRevoked   = "revoked"
	LicenseStatusSuspended = "suspended"
)

// License is a license issued to a user for a product.
type License struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	ProductID  string     `json:"product_id"`
	LicenseKey string     `json:"license_key"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Metadata   Metadata   `json:"metadata,omitempty"`
}

// CreateLicenseRequest is the body of POST /licenses.
type CreateLicenseRequest struct {
	UserID    string   `json:"user_id" validate:"required"`
	ProductID string   `json:"product_id" validate:"required"`
	Metadata  Metadata `json:"metadata,omitempty"`
}

// UpdateLicenseRequest is the body of PUT /licenses/{id}. Nil fields are not sent.
type UpdateLicenseRequest struct {
	Status    *string    `json:"status,omitempty" validate:"omitempty,oneof=active expired revoked suspended"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Metadata  Metadata   `json:"metadata,omitempty"`
}

// LicenseListResponse is one page of licenses.
type LicenseListResponse struct {
	Data  []License `json:"data"`
	Total int       `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

// LicenseStats aggregates licenses by status.
type LicenseStats struct {
	Total   int     `json:"total"`
	Active  int     `json:"active"`
	Expired int     `json:"expired"`
	Revoked int     `json:"revoked"`
	Revenue float64 `json:"revenue"`
}

// User is an account holding licenses.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Metadata  Metadata  `json:"metadata,omitempty"`
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Email    string   `json:"email" validate:"required,lc_email"`
	Name     string   `json:"name" validate:"required"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// UpdateUserRequest is the body of PUT /users/{id}. Nil fields are not sent.
type UpdateUserRequest struct {
	Email    *string  `json:"email,omitempty" validate:"omitempty,lc_email"`
	Name     *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// UserListResponse is one page of users.
type UserListResponse struct {
	Data  []User `json:"data"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

// UserStats aggregates users by activity.
type UserStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// Product is something licenses are sold for.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Metadata    Metadata  `json:"metadata,omitempty"`
}

// CreateProductRequest is the body of POST /products.
type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description *string  `json:"description,omitempty"`
	Price       float64  `json:"price" validate:"lc_amount"`
	Currency    string   `json:"currency" validate:"required,lc_currency"`
	Metadata    Metadata `json:"metadata,omitempty"`
}

// UpdateProductRequest is the body of PUT /products/{id}. Nil fields are not sent.
type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,lc_amount"`
	Currency    *string  `json:"currency,omitempty" validate:"omitempty,lc_currency"`
	Metadata    Metadata `json:"metadata,omitempty"`
}

// ProductListResponse is one page of products.
type ProductListResponse struct {
	Data  []Product `json:"data"`
	Total int       `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

// ProductStats aggregates products and their revenue.
type ProductStats struct {
	Total   int     `json:"total"`
	Active  int     `json:"active"`
	Revenue float64 `json:"revenue"`
}

// Webhook is a registered delivery endpoint.
type Webhook struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Events    []string  `json:"events"`
	Secret    *string   `json:"secret,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateWebhookRequest is the body of POST /webhooks.
type CreateWebhookRequest struct {
	URL    string   `json:"url" validate:"required,lc_url"`
	Events []string `json:"events" validate:"required,min=1,dive,required"`
	Secret *string  `json:"secret,omitempty"`
}

// UpdateWebhookRequest is the body of PUT /webhooks/{id}. Nil fields are not sent.
type UpdateWebhookRequest struct {
	URL    *string  `json:"url,omitempty" validate:"omitempty,lc_url"`
	Events []string `json:"events,omitempty" validate:"omitempty,dive,required"`
	Secret *string  `json:"secret,omitempty"`
}

// Status is the free-form body returned by /ping and /health.
type Status map[string]Value

// ListOptions selects a page of a list endpoint. Zero values mean page 1
// and 10 items per page.
type ListOptions struct {
	Page  int
	Limit int
}

const (
	defaultPage  = 1
	defaultLimit = 10
)

func (o ListOptions) query() map[string]any {
	page, limit := o.Page, o.Limit
	if page <= 0 {
		page = defaultPage
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return map[string]any{"page": page, "limit": limit}
}

// dataEnvelope is the {"data": ...} wrapper used by the stats and webhook list endpoints.
type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

type verifyLicenseRequest struct {
	Key string `json:"key"`
}

type verifyLicenseResponse struct {
	Valid bool `json:"valid"`
}
