// Package remote defines the contract with the portal's hosted document store.
package remote

import (
	"context"
	"encoding/json"
)

// Document is one remote record: server-assigned id, server-stamped
// modification time (epoch milliseconds) and the raw field payload.
type Document struct {
	ID        string          `json:"id"`
	UpdatedAt int64           `json:"updatedAt"`
	Fields    json.RawMessage `json:"fields"`
}

// Source is the remote document store consumed by the sync layer and the
// optimistic write path. List calls return documents modified strictly
// after the given watermark, ordered ascending by modification time.
type Source interface {
	// ListUsers fetches profile documents modified after updatedAfter.
	ListUsers(ctx context.Context, updatedAfter int64) ([]Document, error)
	// ListJobPostings fetches posting documents; activeOnly restricts
	// results to postings still flagged active.
	ListJobPostings(ctx context.Context, updatedAfter int64, activeOnly bool) ([]Document, error)
	// ListEvents fetches event documents, optionally active only.
	ListEvents(ctx context.Context, updatedAfter int64, activeOnly bool) ([]Document, error)
	// ListChatThreads fetches the chat documents whose participants
	// include the given user.
	ListChatThreads(ctx context.Context, participantID string) ([]Document, error)
	// ListChatMessages fetches one thread's messages sent after the watermark.
	ListChatMessages(ctx context.Context, chatID string, after int64) ([]Document, error)

	// PutDocument creates or replaces a document in a collection.
	PutDocument(ctx context.Context, collection, id string, fields json.RawMessage) error
	// RegisterDeviceToken registers a push delivery token for the user.
	RegisterDeviceToken(ctx context.Context, userID, token string) error
}

// Collection names owned by the hosted store.
const (
	CollectionUsers    = "users"
	CollectionJobs     = "job_postings"
	CollectionEvents   = "alumni_events"
	CollectionChats    = "chats"
	CollectionMessages = "messages"
)
