package remote

import (
	"context"
	"net/http"
	"time"

	"github.com/spec-kit/store-dashboard/internal/domain"
	"github.com/spec-kit/store-dashboard/internal/session"
)

// Token is the credential block returned by the login endpoint.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	ExpiresIn int64     `json:"expiresIn"`
}

// Credential converts the API token into a session credential.
func (t Token) Credential() session.Credential {
	return session.Credential{
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
		ExpiresIn: time.Duration(t.ExpiresIn) * time.Second,
	}
}

// LoginResponse is the body of POST /auth/login.
type LoginResponse struct {
	Token Token       `json:"token"`
	User  domain.User `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userEnvelope struct {
	User domain.User `json:"user"`
}

// RegisterUserRequest is the body of POST /users.
type RegisterUserRequest struct {
	Name                 string         `json:"name"`
	Email                string         `json:"email"`
	Phone                string         `json:"phone"`
	Password             string         `json:"password"`
	PasswordConfirmation string         `json:"password_confirmation"`
	Address              domain.Address `json:"address"`
}

// Login exchanges email and password for a credential and identity.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the current credential on the server.
func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, http.MethodDelete, "/auth/logout", nil, nil)
}

// Me resolves the current credential to an identity.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var out userEnvelope
	if err := c.Do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// RegisterUser creates a new account.
func (c *Client) RegisterUser(ctx context.Context, req RegisterUserRequest) error {
	return c.Do(ctx, http.MethodPost, "/users", req, nil)
}
