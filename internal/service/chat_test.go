package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/namatovu-christine/alumni-sync/internal/cache"
	"github.com/namatovu-christine/alumni-sync/internal/model"
	"github.com/namatovu-christine/alumni-sync/internal/remote"
)

type fakeMessageCache struct {
	cache.MessageCache

	byID     map[string]*model.ChatMessage
	upserted []model.ChatMessage
	status   map[string]model.SyncStatus
	readID   string
	readAt   int64
}

func (f *fakeMessageCache) GetByID(_ context.Context, messageID string) (*model.ChatMessage, error) {
	m, ok := f.byID[messageID]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *m
	return &cp, nil
}
func (f *fakeMessageCache) UpsertBatch(_ context.Context, msgs []model.ChatMessage) error {
	f.upserted = append(f.upserted, msgs...)
	return nil
}
func (f *fakeMessageCache) UpdateSyncStatus(_ context.Context, messageID string, status model.SyncStatus, _ int64) error {
	if f.status == nil {
		f.status = make(map[string]model.SyncStatus)
	}
	f.status[messageID] = status
	return nil
}
func (f *fakeMessageCache) MarkRead(_ context.Context, messageID string, readAt int64) error {
	f.readID, f.readAt = messageID, readAt
	return nil
}

func newChat(msgs *fakeMessageCache, push *fakePusher, session Session, syncer *fakeSyncer) *ChatServiceImpl {
	s := NewChatService(msgs, push, session, syncer, zap.NewNop())
	s.now = func() time.Time { return time.UnixMilli(60_000) }
	return s
}

func TestSend_OptimisticSuccess(t *testing.T) {
	t.Parallel()
	msgs := &fakeMessageCache{}
	push := &fakePusher{}
	s := newChat(msgs, push, signedIn("u1"), &fakeSyncer{})

	sent, err := s.Send(context.Background(), "c1", "hello")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sent.MessageID == "" || sent.ChatID != "c1" || sent.SenderID != "u1" {
		t.Fatalf("message identity wrong: %+v", sent)
	}
	if sent.Timestamp != 60_000 || sent.MessageType != "text" {
		t.Fatalf("message metadata wrong: %+v", sent)
	}
	if len(msgs.upserted) != 1 || msgs.upserted[0].SyncStatus != model.SyncPending {
		t.Fatalf("local write must be pending before the push")
	}
	if push.putCollection != remote.CollectionMessages {
		t.Fatalf("push collection %s", push.putCollection)
	}
	if msgs.status[sent.MessageID] != model.SyncSynced {
		t.Fatalf("confirmed message must be marked synced")
	}
}

func TestSend_RemoteFailureLeavesPending(t *testing.T) {
	t.Parallel()
	msgs := &fakeMessageCache{}
	push := &fakePusher{putErr: errors.New("remote down")}
	syncer := &fakeSyncer{}
	s := newChat(msgs, push, signedIn("u1"), syncer)

	sent, err := s.Send(context.Background(), "c1", "hello")
	if err != nil {
		t.Fatalf("optimistic send must not surface a push failure: %v", err)
	}
	if sent.SyncStatus != model.SyncPending {
		t.Fatalf("message must stay pending")
	}
	if len(syncer.forced) != 1 || syncer.forced[0] != "chat_messages" {
		t.Fatalf("a chat sync should be requested, got %v", syncer.forced)
	}
}

func TestSend_Validation(t *testing.T) {
	t.Parallel()
	s := newChat(&fakeMessageCache{}, &fakePusher{}, signedIn("u1"), &fakeSyncer{})

	if _, err := s.Send(context.Background(), "", "hello"); err == nil {
		t.Fatalf("want error on empty chat id")
	}
	if _, err := s.Send(context.Background(), "c1", ""); err == nil {
		t.Fatalf("want error on empty content")
	}
}

func TestMarkRead(t *testing.T) {
	t.Parallel()
	msgs := &fakeMessageCache{byID: map[string]*model.ChatMessage{
		"m1": {MessageID: "m1", ChatID: "c1", Content: "hi"},
	}}
	push := &fakePusher{}
	s := newChat(msgs, push, signedIn("u1"), &fakeSyncer{})

	if err := s.MarkRead(context.Background(), "m1"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if msgs.readID != "m1" || msgs.readAt != 60_000 {
		t.Fatalf("local read flag not updated: id=%s at=%d", msgs.readID, msgs.readAt)
	}
	if push.putID != "m1" {
		t.Fatalf("read receipt not pushed")
	}
}

func TestMarkRead_AlreadyRead(t *testing.T) {
	t.Parallel()
	msgs := &fakeMessageCache{byID: map[string]*model.ChatMessage{
		"m1": {MessageID: "m1", ReadStatus: true},
	}}
	push := &fakePusher{}
	s := newChat(msgs, push, signedIn("u1"), &fakeSyncer{})

	if err := s.MarkRead(context.Background(), "m1"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if msgs.readID != "" || push.putID != "" {
		t.Fatalf("already-read message must be a no-op")
	}
}
