// Package docstore implements remote.Source against the hosted alumni
// document store's REST API.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/namatovu-christine/alumni-sync/internal/errs"
	"github.com/namatovu-christine/alumni-sync/internal/remote"
)

// TokenFunc returns the bearer token for the current session, or an empty
// string when no session is active.
type TokenFunc func() string

// Client talks to the hosted document store over HTTP.
type Client struct {
	client *resty.Client
	token  TokenFunc
}

var _ remote.Source = (*Client)(nil)

// New creates a Client against baseURL. token is consulted on every request.
func New(baseURL string, timeout time.Duration, token TokenFunc) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &Client{client: c, token: token}
}

type listResponse struct {
	Documents []remote.Document `json:"documents"`
}

func (c *Client) req(ctx context.Context) *resty.Request {
	r := c.client.R().SetContext(ctx)
	if t := c.token(); t != "" {
		r.SetAuthToken(t)
	}
	return r
}

func checkStatus(resp *resty.Response) error {
	switch resp.StatusCode() {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return errs.ErrUnauthorized
	case http.StatusNotFound:
		return errs.ErrNotFound
	case http.StatusTooManyRequests:
		return errs.ErrRateLimited
	default:
		return fmt.Errorf("docstore status %d: %s", resp.StatusCode(), resp.String())
	}
}

func (c *Client) list(ctx context.Context, path string, params map[string]string) ([]remote.Document, error) {
	resp, err := c.req(ctx).SetQueryParams(params).Get(path)
	if err != nil {
		return nil, fmt.Errorf("docstore request: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var lr listResponse
	if err := json.Unmarshal(resp.Body(), &lr); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}
	return lr.Documents, nil
}

func (c *Client) ListUsers(ctx context.Context, updatedAfter int64) ([]remote.Document, error) {
	return c.list(ctx, "/v1/"+remote.CollectionUsers, map[string]string{
		"updatedAfter": strconv.FormatInt(updatedAfter, 10),
	})
}

func (c *Client) ListJobPostings(ctx context.Context, updatedAfter int64, activeOnly bool) ([]remote.Document, error) {
	return c.list(ctx, "/v1/"+remote.CollectionJobs, map[string]string{
		"updatedAfter": strconv.FormatInt(updatedAfter, 10),
		"active":       strconv.FormatBool(activeOnly),
	})
}

func (c *Client) ListEvents(ctx context.Context, updatedAfter int64, activeOnly bool) ([]remote.Document, error) {
	return c.list(ctx, "/v1/"+remote.CollectionEvents, map[string]string{
		"updatedAfter": strconv.FormatInt(updatedAfter, 10),
		"active":       strconv.FormatBool(activeOnly),
	})
}

func (c *Client) ListChatThreads(ctx context.Context, participantID string) ([]remote.Document, error) {
	return c.list(ctx, "/v1/"+remote.CollectionChats, map[string]string{
		"participant": participantID,
	})
}

func (c *Client) ListChatMessages(ctx context.Context, chatID string, after int64) ([]remote.Document, error) {
	path := fmt.Sprintf("/v1/%s/%s/%s", remote.CollectionChats, chatID, remote.CollectionMessages)
	return c.list(ctx, path, map[string]string{
		"after": strconv.FormatInt(after, 10),
	})
}

func (c *Client) PutDocument(ctx context.Context, collection, id string, fields json.RawMessage) error {
	resp, err := c.req(ctx).
		SetBody(fields).
		Put(fmt.Sprintf("/v1/%s/%s", collection, id))
	if err != nil {
		return fmt.Errorf("docstore put %s/%s: %w", collection, id, err)
	}
	return checkStatus(resp)
}

// Online reports whether the document store answers at all. Any HTTP
// status counts as reachable; only transport failures mean offline.
func (c *Client) Online(ctx context.Context) bool {
	_, err := c.client.R().SetContext(ctx).Get("/v1/health")
	return err == nil
}

type deviceTokenRequest struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

func (c *Client) RegisterDeviceToken(ctx context.Context, userID, token string) error {
	resp, err := c.req(ctx).
		SetBody(deviceTokenRequest{UserID: userID, Token: token}).
		Post("/v1/device_tokens")
	if err != nil {
		return fmt.Errorf("docstore register token: %w", err)
	}
	return checkStatus(resp)
}
