package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"veggi-storefront/internal/domain"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Avatar   string `json:"avatar,omitempty"`
}

type authResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    *domain.User `json:"user"`
	Message string       `json:"message"`
}

// Login authenticates and returns the backend session token.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	var out authResponse
	res, err := c.call(ctx, http.MethodPost, c.apiBase, "/auth/login", "", creds, &out)
	if err != nil {
		return "", err
	}
	if !out.Success {
		return "", &APIError{Status: http.StatusUnauthorized, Message: out.Message}
	}
	return sessionToken(out.Token, res), nil
}

// Register creates an account and returns the backend session token.
func (c *Client) Register(ctx context.Context, in Registration) (string, error) {
	var out authResponse
	res, err := c.call(ctx, http.MethodPost, c.apiBase, "/auth/register", "", in, &out)
	if err != nil {
		return "", err
	}
	return sessionToken(out.Token, res), nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.call(ctx, http.MethodPost, c.apiBase, "/auth/logout", token, nil, nil)
	return err
}

// Me returns the user bound to token.
func (c *Client) Me(ctx context.Context, token string) (*domain.User, error) {
	var out authResponse
	if _, err := c.call(ctx, http.MethodGet, c.apiBase, "/auth/me", token, nil, &out); err != nil {
		return nil, err
	}
	if !out.Success || out.User == nil {
		return nil, domain.ErrUnauthorized
	}
	if out.User.ID == "" {
		return nil, errors.New("auth: user without id")
	}
	return out.User, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	_, err := c.call(ctx, http.MethodPost, c.apiBase, "/auth/forgot-password", "", map[string]string{"email": email}, nil)
	return err
}

func (c *Client) ResetPassword(ctx context.Context, resetToken, password, confirmPassword string) error {
	body := map[string]string{"password": password, "confirmPassword": confirmPassword}
	_, err := c.call(ctx, http.MethodPut, c.apiBase, "/auth/reset-password/"+url.PathEscape(resetToken), "", body, nil)
	return err
}

// sessionToken prefers the token in the body and falls back to the cookie.
func sessionToken(fromBody string, res *response) string {
	if fromBody != "" || res == nil {
		return fromBody
	}
	for _, ck := range (&http.Response{Header: res.header}).Cookies() {
		if ck.Name == "token" {
			return ck.Value
		}
	}
	return ""
}
