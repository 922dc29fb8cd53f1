// Package cache defines access-object interfaces over the local cache store,
// implemented by concrete backends.
package cache

import (
	"context"

	"github.com/namatovu-christine/alumni-sync/internal/model"
)

// UserCache provides query/update access to cached alumni profiles.
type UserCache interface {
	// GetByID loads a profile by user id.
	GetByID(ctx context.Context, userID string) (*model.User, error)
	// GetAll returns all cached profiles ordered by full name.
	GetAll(ctx context.Context) ([]model.User, error)
	// Search returns profiles whose name, company, job title or location
	// contains the substring, case-insensitively.
	Search(ctx context.Context, query string) ([]model.User, error)
	// Mentors returns cached profiles flagged as mentors.
	Mentors(ctx context.Context) ([]model.User, error)
	// UpsertBatch inserts or fully replaces profiles by id in one transaction.
	UpsertBatch(ctx context.Context, users []model.User) error
	// UpdateSyncStatus updates only the sync metadata of one row.
	UpdateSyncStatus(ctx context.Context, userID string, status model.SyncStatus, at int64) error
	// DeleteByID removes one profile; absent id is a no-op.
	DeleteByID(ctx context.Context, userID string) error
	// DeleteAll clears the table.
	DeleteAll(ctx context.Context) error
}

// JobCache provides query/update access to cached job postings.
type JobCache interface {
	GetByID(ctx context.Context, jobID string) (*model.JobPosting, error)
	// GetAll returns postings ordered by posted time, newest first.
	GetAll(ctx context.Context) ([]model.JobPosting, error)
	// Search matches position, company and description.
	Search(ctx context.Context, query string) ([]model.JobPosting, error)
	// FilterByType returns postings of one employment type, newest first.
	FilterByType(ctx context.Context, jobType string) ([]model.JobPosting, error)
	UpsertBatch(ctx context.Context, jobs []model.JobPosting) error
	UpdateSyncStatus(ctx context.Context, jobID string, status model.SyncStatus, at int64) error
	DeleteByID(ctx context.Context, jobID string) error
	DeleteAll(ctx context.Context) error
	// DeleteExpired prunes postings whose application deadline passed before now.
	DeleteExpired(ctx context.Context, now int64) (int64, error)
}

// EventCache provides query/update access to cached events.
type EventCache interface {
	GetByID(ctx context.Context, eventID string) (*model.Event, error)
	// GetAll returns events ordered by start time, soonest first.
	GetAll(ctx context.Context) ([]model.Event, error)
	// Search matches title, description and venue.
	Search(ctx context.Context, query string) ([]model.Event, error)
	// Upcoming returns events starting at or after now, soonest first.
	Upcoming(ctx context.Context, now int64) ([]model.Event, error)
	UpsertBatch(ctx context.Context, events []model.Event) error
	UpdateSyncStatus(ctx context.Context, eventID string, status model.SyncStatus, at int64) error
	DeleteByID(ctx context.Context, eventID string) error
	DeleteAll(ctx context.Context) error
	// DeleteExpired prunes events that ended before now.
	DeleteExpired(ctx context.Context, now int64) (int64, error)
}

// MessageCache provides query/update access to cached chat messages.
type MessageCache interface {
	GetByID(ctx context.Context, messageID string) (*model.ChatMessage, error)
	// ForChat returns a thread's messages ordered by timestamp ascending.
	ForChat(ctx context.Context, chatID string) ([]model.ChatMessage, error)
	// Search matches content and sender name.
	Search(ctx context.Context, query string) ([]model.ChatMessage, error)
	UpsertBatch(ctx context.Context, msgs []model.ChatMessage) error
	UpdateSyncStatus(ctx context.Context, messageID string, status model.SyncStatus, at int64) error
	// MarkRead updates only the read flag and read timestamp.
	MarkRead(ctx context.Context, messageID string, readAt int64) error
	DeleteByID(ctx context.Context, messageID string) error
	DeleteAll(ctx context.Context) error
}

// SyncStateStore persists the per-collection last-sync watermark that gates
// incremental fetches. Watermarks are epoch milliseconds and never regress.
type SyncStateStore interface {
	// LastSync returns the stored watermark for name, 0 if never synced.
	LastSync(ctx context.Context, name string) (int64, error)
	// SetLastSync advances the watermark; older values are ignored.
	SetLastSync(ctx context.Context, name string, epoch int64) error
}
