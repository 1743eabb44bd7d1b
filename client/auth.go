package client

import (
	"context"
	"net/http"

	"github.com/NeurArk/ai-contract-guardian/model"
)

// Credentials is the email/password pair used for both registration and
// login. The backend accepts a JSON body for both endpoints.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the payload returned by POST /auth/login.
type LoginResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	TokenType    string      `json:"token_type"`
	User         *model.User `json:"user,omitempty"`
}

// Register creates a new account. The response never echoes the
// password back.
func (c *Client) Register(ctx context.Context, creds Credentials) (*model.User, error) {
	var user model.User
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", creds, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me fetches the profile of the authenticated user.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
