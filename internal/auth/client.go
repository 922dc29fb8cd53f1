// Package auth manages the signed-in session against the hosted auth
// endpoint.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/namatovu-christine/alumni-sync/internal/errs"
)

// Credentials is what the hosted auth endpoint returns on success.
type Credentials struct {
	IDToken   string `json:"idToken"`
	UserID    string `json:"userId"`
	ExpiresAt int64  `json:"expiresAt"`
}

// API is the hosted auth endpoint surface.
type API interface {
	// SignIn exchanges email/password for a signed ID token.
	SignIn(ctx context.Context, email, password string) (Credentials, error)
	// Register creates an account and signs it in.
	Register(ctx context.Context, email, password, fullName string) (Credentials, error)
}

// Client implements API over the hosted auth REST endpoint.
type Client struct {
	client *resty.Client
}

var _ API = (*Client)(nil)

// NewClient creates an auth Client against baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &Client{client: c}
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

func (c *Client) post(ctx context.Context, path string, body any) (Credentials, error) {
	resp, err := c.client.R().SetContext(ctx).SetBody(body).Post(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("auth request: %w", err)
	}
	switch resp.StatusCode() {
	case http.StatusOK, http.StatusCreated:
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusBadRequest:
		return Credentials{}, errs.ErrUnauthorized
	case http.StatusTooManyRequests:
		return Credentials{}, errs.ErrRateLimited
	default:
		return Credentials{}, fmt.Errorf("auth status %d: %s", resp.StatusCode(), resp.String())
	}

	var creds Credentials
	if err := json.Unmarshal(resp.Body(), &creds); err != nil {
		return Credentials{}, fmt.Errorf("decode auth response: %w", err)
	}
	return creds, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (Credentials, error) {
	return c.post(ctx, "/v1/auth/sign_in", signInRequest{Email: email, Password: password})
}

func (c *Client) Register(ctx context.Context, email, password, fullName string) (Credentials, error) {
	return c.post(ctx, "/v1/auth/accounts", registerRequest{Email: email, Password: password, FullName: fullName})
}
