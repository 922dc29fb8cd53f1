// Package chat subscribes to the realtime message feed so incoming messages
// land in the cache without waiting for the next sync pass.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/namatovu-christine/alumni-sync/internal/cache"
	"github.com/namatovu-christine/alumni-sync/internal/convert"
	"github.com/namatovu-christine/alumni-sync/internal/model"
	"github.com/namatovu-christine/alumni-sync/internal/remote"
)

// TokenFunc returns the active bearer token, empty when signed out.
type TokenFunc func() string

// Reconnect backoff bounds.
const (
	reconnectMin = time.Second
	reconnectMax = time.Minute
)

// Listener maintains a websocket subscription to the realtime feed and
// upserts delivered messages into the message cache.
type Listener struct {
	url      string
	token    TokenFunc
	messages cache.MessageCache
	log      *zap.Logger

	minDelay time.Duration
	maxDelay time.Duration
}

// NewListener constructs a Listener against the realtime feed URL.
func NewListener(url string, token TokenFunc, messages cache.MessageCache, log *zap.Logger) *Listener {
	return &Listener{url: url, token: token, messages: messages, log: log,
		minDelay: reconnectMin, maxDelay: reconnectMax}
}

// event is one frame on the realtime feed.
type event struct {
	ChatID   string          `json:"chatId"`
	Document remote.Document `json:"document"`
}

// Run connects and re-connects with backoff until ctx is cancelled. Without
// a session it idles and retries, picking the subscription up after sign-in.
func (l *Listener) Run(ctx context.Context) error {
	delay := l.minDelay
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if l.token() == "" {
			if err := sleep(ctx, delay); err != nil {
				return err
			}
			continue
		}

		started := time.Now()
		err := l.listen(ctx)
		if errors.Is(err, context.Canceled) {
			return err
		}
		delay = l.nextDelay(delay, time.Since(started))
		l.log.Warn("realtime feed disconnected", zap.Error(err), zap.Duration("retry_in", delay))

		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// nextDelay escalates the reconnect delay, starting over once a session
// stayed up long enough to count as healthy. Sessions that drop right away
// keep escalating so a flapping feed is not redialed hot.
func (l *Listener) nextDelay(cur, connectedFor time.Duration) time.Duration {
	if connectedFor >= l.maxDelay {
		return l.minDelay
	}
	cur *= 2
	if cur > l.maxDelay {
		cur = l.maxDelay
	}
	return cur
}

func (l *Listener) listen(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, l.url, &websocket.DialOptions{
		HTTPHeader: map[string][]string{
			"Authorization": {"Bearer " + l.token()},
		},
	})
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	l.log.Info("realtime feed connected")
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		l.deliver(ctx, data)
	}
}

func (l *Listener) deliver(ctx context.Context, data []byte) {
	var ev event
	if err := json.Unmarshal(data, &ev); err != nil {
		l.log.Warn("bad realtime frame", zap.Error(err))
		return
	}

	msg, err := convert.DecodeChatMessage(ev.Document, ev.ChatID)
	if err != nil {
		l.log.Warn("bad realtime message", zap.String("id", ev.Document.ID), zap.Error(err))
		return
	}
	msg.SyncStatus = model.SyncSynced
	msg.LastSync = model.Millis(time.Now())

	if err := l.messages.UpsertBatch(ctx, []model.ChatMessage{msg}); err != nil {
		l.log.Error("store realtime message", zap.String("id", msg.MessageID), zap.Error(err))
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
