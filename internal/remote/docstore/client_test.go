package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/namatovu-christine/alumni-sync/internal/errs"
)

func staticToken(t string) TokenFunc {
	return func() string { return t }
}

func TestClientListUsers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/users", r.URL.Path)
		require.Equal(t, "150", r.URL.Query().Get("updatedAfter"))
		require.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{"documents":[
			{"id":"u1","updatedAt":200,"fields":{"fullName":"Grace Auma"}},
			{"id":"u2","updatedAt":250,"fields":{"fullName":"Peter Okello"}}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, staticToken("tok123"))

	docs, err := c.ListUsers(context.Background(), 150)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "u1", docs[0].ID)
	require.Equal(t, int64(200), docs[0].UpdatedAt)
}

func TestClientListJobPostingsActiveFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/job_postings", r.URL.Path)
		require.Equal(t, "true", r.URL.Query().Get("active"))
		_, _ = w.Write([]byte(`{"documents":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, staticToken(""))

	docs, err := c.ListJobPostings(context.Background(), 0, true)
	require.NoError(t, err)
	require.Empty(t, docs)
}

func TestClientListChatMessagesPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chats/chat-9/messages", r.URL.Path)
		require.Equal(t, "42", r.URL.Query().Get("after"))
		_, _ = w.Write([]byte(`{"documents":[{"id":"m1","updatedAt":50,"fields":{"content":"hi"}}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, staticToken("tok"))

	docs, err := c.ListChatMessages(context.Background(), "chat-9", 42)
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestClientStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, errs.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, errs.ErrUnauthorized},
		{"not found", http.StatusNotFound, errs.ErrNotFound},
		{"rate limited", http.StatusTooManyRequests, errs.ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := New(srv.URL, time.Second, staticToken("tok"))

			_, err := c.ListUsers(context.Background(), 0)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClientPutDocument(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/v1/job_postings/j1", r.URL.Path)
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, staticToken("tok"))

	fields := json.RawMessage(`{"title":"Backend Engineer"}`)
	err := c.PutDocument(context.Background(), "job_postings", "j1", fields)
	require.NoError(t, err)
	require.JSONEq(t, string(fields), string(gotBody))
}

func TestClientRegisterDeviceToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/device_tokens", r.URL.Path)

		var req deviceTokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "u1", req.UserID)
		require.Equal(t, "fcm-token", req.Token)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, staticToken("tok"))

	require.NoError(t, c.RegisterDeviceToken(context.Background(), "u1", "fcm-token"))
}

func TestClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, staticToken("tok"))

	_, err := c.ListEvents(context.Background(), 0, false)
	require.Error(t, err)
	require.False(t, errors.Is(err, errs.ErrUnauthorized))
}
