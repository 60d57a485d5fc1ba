package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shelfmateapp/shelfmate/internal/domain"
)

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	ProviderUserID string `json:"providerUserId"`
	DisplayName    string `json:"displayName"`
	Email          string `json:"email"`
}

// GetUser fetches the profile keyed by the identity provider's user id.
func (c *Client) GetUser(ctx context.Context, localAuthID string) (*domain.UserProfile, error) {
	var p domain.UserProfile
	if err := c.do(ctx, "getUser", http.MethodGet, "/users/"+url.PathEscape(localAuthID), nil, &p); err != nil {
		return nil, err
	}
	if p.LocalAuthID == "" {
		p.LocalAuthID = localAuthID
	}
	return &p, nil
}

// CreateUser creates the backend profile for a freshly registered account.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*domain.UserProfile, error) {
	var p domain.UserProfile
	if err := c.do(ctx, "createUser", http.MethodPost, "/users", req, &p); err != nil {
		return nil, err
	}
	if p.LocalAuthID == "" {
		p.LocalAuthID = req.ProviderUserID
	}
	return &p, nil
}

// UpdateUser sends a partial update. Only non-nil patch fields are serialized.
func (c *Client) UpdateUser(ctx context.Context, backendID string, patch domain.ProfilePatch) error {
	return c.do(ctx, "updateUser", http.MethodPatch, "/users/"+url.PathEscape(backendID), patch, nil)
}

// DeleteUser permanently deletes the account.
func (c *Client) DeleteUser(ctx context.Context, backendID string) error {
	return c.do(ctx, "deleteUser", http.MethodDelete, "/users/"+url.PathEscape(backendID), nil, nil)
}
