// Package sync keeps the local cache in step with the hosted document store.
// The Executor runs one delta pass per data type; the Orchestrator decides
// when passes run.
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/namatovu-christine/alumni-sync/internal/cache"
	"github.com/namatovu-christine/alumni-sync/internal/convert"
	"github.com/namatovu-christine/alumni-sync/internal/errs"
	"github.com/namatovu-christine/alumni-sync/internal/model"
	"github.com/namatovu-christine/alumni-sync/internal/remote"
)

// Watermark keys in sync_state. Chat threads get one key each,
// "chat_messages_<chatID>".
const (
	KeyUsers  = "users"
	KeyJobs   = "job_postings"
	KeyEvents = "events"
	KeyChat   = "chat_messages"
)

const chatKeyPrefix = KeyChat + "_"

// ChatWatermarkKey returns the sync_state key for one chat thread.
func ChatWatermarkKey(chatID string) string {
	return chatKeyPrefix + chatID
}

// DefaultChatTimeout bounds the concurrent per-thread message passes.
const DefaultChatTimeout = 60 * time.Second

// UserIDFunc reports the signed-in user, or errs.ErrNoSession.
type UserIDFunc func() (string, error)

// Executor fetches remote changes and upserts them into the cache.
type Executor struct {
	src      remote.Source
	users    cache.UserCache
	jobs     cache.JobCache
	events   cache.EventCache
	messages cache.MessageCache
	state    cache.SyncStateStore

	userID      UserIDFunc
	chatTimeout time.Duration
	now         func() time.Time
	log         *zap.Logger
}

// ExecutorOption tweaks an Executor.
type ExecutorOption func(*Executor)

// WithChatTimeout overrides the chat pass deadline.
func WithChatTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.chatTimeout = d }
}

// WithClock overrides the time source. Tests use it to pin watermarks.
func WithClock(now func() time.Time) ExecutorOption {
	return func(e *Executor) { e.now = now }
}

// NewExecutor wires an Executor over the remote source and cache stores.
func NewExecutor(src remote.Source, users cache.UserCache, jobs cache.JobCache,
	events cache.EventCache, messages cache.MessageCache, state cache.SyncStateStore,
	userID UserIDFunc, log *zap.Logger, opts ...ExecutorOption) *Executor {

	e := &Executor{
		src:         src,
		users:       users,
		jobs:        jobs,
		events:      events,
		messages:    messages,
		state:       state,
		userID:      userID,
		chatTimeout: DefaultChatTimeout,
		now:         time.Now,
		log:         log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// runPass is the delta pipeline shared by every data type: read the
// watermark, fetch strictly-newer documents, decode, batch-upsert, advance
// the watermark to the pass start. Records that fail to decode are skipped
// without failing the pass. The watermark only moves when at least one
// record was converted, so an empty or fully-skipped pass re-covers the same
// window next time.
func runPass[T any](ctx context.Context, e *Executor, key string, start int64,
	fetch func(ctx context.Context, after int64) ([]remote.Document, error),
	decode func(remote.Document) (T, error),
	upsert func(ctx context.Context, batch []T) error,
) (int, error) {

	after, err := e.state.LastSync(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("read watermark %s: %w", key, err)
	}

	docs, err := fetch(ctx, after)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", key, err)
	}

	batch := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := decode(d)
		if err != nil {
			e.log.Warn("skipping record",
				zap.String("pass", key),
				zap.String("id", d.ID),
				zap.Error(err))
			continue
		}
		batch = append(batch, v)
	}

	if len(batch) == 0 {
		return 0, nil
	}

	if err := upsert(ctx, batch); err != nil {
		return 0, fmt.Errorf("upsert %s: %w", key, err)
	}
	if err := e.state.SetLastSync(ctx, key, start); err != nil {
		return 0, fmt.Errorf("advance watermark %s: %w", key, err)
	}
	return len(batch), nil
}

// SyncUsers pulls user profiles changed since the last user pass.
func (e *Executor) SyncUsers(ctx context.Context) error {
	start := model.Millis(e.now())

	n, err := runPass(ctx, e, KeyUsers, start,
		e.src.ListUsers,
		func(d remote.Document) (model.User, error) {
			u, err := convert.DecodeUser(d)
			if err != nil {
				return model.User{}, err
			}
			u.SyncStatus = model.SyncSynced
			u.LastSync = start
			return u, nil
		},
		e.users.UpsertBatch,
	)
	if err != nil {
		return err
	}
	e.log.Info("user pass complete", zap.Int("upserted", n))
	return nil
}

// SyncJobs pulls active job postings changed since the last job pass and
// prunes postings whose application deadline has passed.
func (e *Executor) SyncJobs(ctx context.Context) error {
	start := model.Millis(e.now())

	n, err := runPass(ctx, e, KeyJobs, start,
		func(ctx context.Context, after int64) ([]remote.Document, error) {
			return e.src.ListJobPostings(ctx, after, true)
		},
		func(d remote.Document) (model.JobPosting, error) {
			j, err := convert.DecodeJobPosting(d)
			if err != nil {
				return model.JobPosting{}, err
			}
			j.SyncStatus = model.SyncSynced
			j.LastSync = start
			return j, nil
		},
		e.jobs.UpsertBatch,
	)
	if err != nil {
		return err
	}

	pruned, err := e.jobs.DeleteExpired(ctx, start)
	if err != nil {
		return fmt.Errorf("prune expired jobs: %w", err)
	}
	e.log.Info("job pass complete", zap.Int("upserted", n), zap.Int64("pruned", pruned))
	return nil
}

// SyncEvents pulls events changed since the last event pass and prunes
// events that have already ended.
func (e *Executor) SyncEvents(ctx context.Context) error {
	start := model.Millis(e.now())

	n, err := runPass(ctx, e, KeyEvents, start,
		func(ctx context.Context, after int64) ([]remote.Document, error) {
			return e.src.ListEvents(ctx, after, true)
		},
		func(d remote.Document) (model.Event, error) {
			ev, err := convert.DecodeEvent(d)
			if err != nil {
				return model.Event{}, err
			}
			ev.SyncStatus = model.SyncSynced
			ev.LastSync = start
			return ev, nil
		},
		e.events.UpsertBatch,
	)
	if err != nil {
		return err
	}

	pruned, err := e.events.DeleteExpired(ctx, start)
	if err != nil {
		return fmt.Errorf("prune expired events: %w", err)
	}
	e.log.Info("event pass complete", zap.Int("upserted", n), zap.Int64("pruned", pruned))
	return nil
}

// SyncChatMessages enumerates the signed-in user's chat threads and runs one
// message pass per thread concurrently, bounded by the chat timeout. A
// failing thread does not stop its siblings, but any thread failure fails
// the overall pass; threads that committed stay committed.
func (e *Executor) SyncChatMessages(ctx context.Context) error {
	uid, err := e.userID()
	if err != nil {
		return err
	}

	docs, err := e.src.ListChatThreads(ctx, uid)
	if err != nil {
		return fmt.Errorf("list chat threads: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.chatTimeout)
	defer cancel()

	var g errgroup.Group
	for _, d := range docs {
		th, err := convert.DecodeChatThread(d)
		if err != nil {
			e.log.Warn("skipping chat thread", zap.String("id", d.ID), zap.Error(err))
			continue
		}
		chatID := th.ChatID
		g.Go(func() error {
			return e.syncThread(ctx, chatID)
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("chat pass: %w", errs.ErrSyncTimeout)
		}
		return fmt.Errorf("chat pass: %w", err)
	}
	e.log.Info("chat pass complete", zap.Int("threads", len(docs)))
	return nil
}

func (e *Executor) syncThread(ctx context.Context, chatID string) error {
	start := model.Millis(e.now())

	_, err := runPass(ctx, e, ChatWatermarkKey(chatID), start,
		func(ctx context.Context, after int64) ([]remote.Document, error) {
			return e.src.ListChatMessages(ctx, chatID, after)
		},
		func(d remote.Document) (model.ChatMessage, error) {
			m, err := convert.DecodeChatMessage(d, chatID)
			if err != nil {
				return model.ChatMessage{}, err
			}
			m.SyncStatus = model.SyncSynced
			m.LastSync = start
			return m, nil
		},
		e.messages.UpsertBatch,
	)
	return err
}

// SyncAll runs every pass in order. Each pass runs even when an earlier one
// failed; the combined error is returned.
func (e *Executor) SyncAll(ctx context.Context) error {
	var pass []error
	pass = append(pass, e.SyncUsers(ctx))
	pass = append(pass, e.SyncJobs(ctx))
	pass = append(pass, e.SyncEvents(ctx))

	if err := e.SyncChatMessages(ctx); err != nil && !errors.Is(err, errs.ErrNoSession) {
		pass = append(pass, err)
	}
	return errors.Join(pass...)
}

// SyncType runs the pass for one data type name as exposed on the admin
// surface. Unknown names return errs.ErrNotFound.
func (e *Executor) SyncType(ctx context.Context, name string) error {
	switch name {
	case KeyUsers:
		return e.SyncUsers(ctx)
	case KeyJobs:
		return e.SyncJobs(ctx)
	case KeyEvents:
		return e.SyncEvents(ctx)
	case KeyChat:
		return e.SyncChatMessages(ctx)
	default:
		return fmt.Errorf("sync type %q: %w", name, errs.ErrNotFound)
	}
}
