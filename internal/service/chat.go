package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/namatovu-christine/alumni-sync/internal/cache"
	"github.com/namatovu-christine/alumni-sync/internal/model"
	"github.com/namatovu-christine/alumni-sync/internal/remote"
	syncer "github.com/namatovu-christine/alumni-sync/internal/sync"
)

// ChatService defines one-to-one chat operations.
type ChatService interface {
	// History returns a thread's cached messages, oldest first.
	History(ctx context.Context, chatID string) ([]model.ChatMessage, error)
	// Send stores a message locally and pushes it to the remote store.
	Send(ctx context.Context, chatID, content string) (model.ChatMessage, error)
	// MarkRead flags a message read locally and remotely.
	MarkRead(ctx context.Context, messageID string) error
	// SearchMessages matches message content and sender name.
	SearchMessages(ctx context.Context, query string) ([]model.ChatMessage, error)
}

type ChatServiceImpl struct {
	messages cache.MessageCache
	src      remote.Source
	session  Session
	syncer   SyncRequester
	now      func() time.Time
	log      *zap.Logger
}

// NewChatService constructs ChatService with required dependencies.
func NewChatService(messages cache.MessageCache, src remote.Source, session Session,
	syncer SyncRequester, log *zap.Logger) *ChatServiceImpl {
	return &ChatServiceImpl{messages: messages, src: src, session: session,
		syncer: syncer, now: time.Now, log: log}
}

func (s *ChatServiceImpl) History(ctx context.Context, chatID string) ([]model.ChatMessage, error) {
	if chatID == "" {
		return nil, errors.New("empty chat id")
	}
	return s.messages.ForChat(ctx, chatID)
}

func (s *ChatServiceImpl) Send(ctx context.Context, chatID, content string) (model.ChatMessage, error) {
	if chatID == "" || content == "" {
		return model.ChatMessage{}, errors.New("empty chat id/content")
	}
	uid, err := s.session.CurrentUserID()
	if err != nil {
		return model.ChatMessage{}, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return model.ChatMessage{}, err
	}
	msg := model.ChatMessage{
		MessageID:   id.String(),
		ChatID:      chatID,
		SenderID:    uid,
		Content:     content,
		MessageType: "text",
		Timestamp:   model.Millis(s.now()),
		SyncStatus:  model.SyncPending,
	}

	if err := s.messages.UpsertBatch(ctx, []model.ChatMessage{msg}); err != nil {
		return model.ChatMessage{}, err
	}

	if err := pushDocument(ctx, s.src, remote.CollectionMessages, msg.MessageID, msg); err != nil {
		s.log.Warn("message push failed, left pending",
			zap.String("message_id", msg.MessageID), zap.Error(err))
		s.syncer.RequestForce(syncer.KeyChat)
		return msg, nil
	}

	if err := s.messages.UpdateSyncStatus(ctx, msg.MessageID, model.SyncSynced, msg.Timestamp); err != nil {
		return model.ChatMessage{}, err
	}
	msg.SyncStatus = model.SyncSynced
	msg.LastSync = msg.Timestamp
	return msg, nil
}

func (s *ChatServiceImpl) MarkRead(ctx context.Context, messageID string) error {
	if messageID == "" {
		return errors.New("empty message id")
	}
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.ReadStatus {
		return nil
	}

	readAt := model.Millis(s.now())
	if err := s.messages.MarkRead(ctx, messageID, readAt); err != nil {
		return err
	}

	msg.ReadStatus = true
	msg.ReadTimestamp = readAt
	if err := pushDocument(ctx, s.src, remote.CollectionMessages, messageID, msg); err != nil {
		s.log.Warn("read receipt push failed",
			zap.String("message_id", messageID), zap.Error(err))
		s.syncer.RequestForce(syncer.KeyChat)
	}
	return nil
}

func (s *ChatServiceImpl) SearchMessages(ctx context.Context, query string) ([]model.ChatMessage, error) {
	if query == "" {
		return nil, errors.New("empty query")
	}
	return s.messages.Search(ctx, query)
}
