package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/namatovu-christine/alumni-sync/internal/errs"
	"github.com/namatovu-christine/alumni-sync/internal/model"
)

// MessageCache implements cache.MessageCache using PostgreSQL.
type MessageCache struct{ db *DB }

// NewMessageCache constructs a chat message access object.
func NewMessageCache(db *DB) *MessageCache { return &MessageCache{db: db} }

const messageColumns = `message_id, chat_id, sender_id, sender_name, content, message_type,
file_url, file_name, file_size, ts, read_status, read_timestamp,
reply_to_message_id, is_edited, edit_timestamp, is_deleted, delete_timestamp,
sync_status, last_sync`

func scanMessage(s scanner) (model.ChatMessage, error) {
	var m model.ChatMessage
	err := s.Scan(
		&m.MessageID, &m.ChatID, &m.SenderID, &m.SenderName, &m.Content, &m.MessageType,
		&m.FileURL, &m.FileName, &m.FileSize, &m.Timestamp, &m.ReadStatus, &m.ReadTimestamp,
		&m.ReplyToMessageID, &m.IsEdited, &m.EditTimestamp, &m.IsDeleted, &m.DeleteTimestamp,
		&m.SyncStatus, &m.LastSync,
	)
	if err != nil {
		return model.ChatMessage{}, err
	}
	return m, nil
}

func collectMessages(rows pgx.Rows) ([]model.ChatMessage, error) {
	defer rows.Close()
	var out []model.ChatMessage
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetByID selects a message by id.
func (c *MessageCache) GetByID(ctx context.Context, messageID string) (*model.ChatMessage, error) {
	q := `SELECT ` + messageColumns + ` FROM chat_messages WHERE message_id=$1`
	m, err := scanMessage(c.db.Pool.QueryRow(ctx, q, messageID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ForChat returns a thread's messages ordered by timestamp ascending.
func (c *MessageCache) ForChat(ctx context.Context, chatID string) ([]model.ChatMessage, error) {
	q := `SELECT ` + messageColumns + ` FROM chat_messages WHERE chat_id=$1 ORDER BY ts ASC`
	rows, err := c.db.Pool.Query(ctx, q, chatID)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

// Search matches content and sender name case-insensitively.
func (c *MessageCache) Search(ctx context.Context, query string) ([]model.ChatMessage, error) {
	q := `SELECT ` + messageColumns + ` FROM chat_messages
WHERE content ILIKE '%'||$1||'%'
   OR sender_name ILIKE '%'||$1||'%'
ORDER BY ts ASC`
	rows, err := c.db.Pool.Query(ctx, q, query)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

// UpsertBatch inserts or fully replaces messages by id in one transaction.
func (c *MessageCache) UpsertBatch(ctx context.Context, msgs []model.ChatMessage) (err error) {
	if len(msgs) == 0 {
		return nil
	}
	tx, err := c.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const q = `
INSERT INTO chat_messages (` + messageColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
ON CONFLICT (message_id) DO UPDATE SET
  chat_id=EXCLUDED.chat_id, sender_id=EXCLUDED.sender_id,
  sender_name=EXCLUDED.sender_name, content=EXCLUDED.content,
  message_type=EXCLUDED.message_type, file_url=EXCLUDED.file_url,
  file_name=EXCLUDED.file_name, file_size=EXCLUDED.file_size, ts=EXCLUDED.ts,
  read_status=EXCLUDED.read_status, read_timestamp=EXCLUDED.read_timestamp,
  reply_to_message_id=EXCLUDED.reply_to_message_id, is_edited=EXCLUDED.is_edited,
  edit_timestamp=EXCLUDED.edit_timestamp, is_deleted=EXCLUDED.is_deleted,
  delete_timestamp=EXCLUDED.delete_timestamp,
  sync_status=EXCLUDED.sync_status, last_sync=EXCLUDED.last_sync`

	for i, m := range msgs {
		if m.MessageID == "" {
			return fmt.Errorf("message[%d]: empty id", i)
		}
		_, err = tx.Exec(ctx, q,
			m.MessageID, m.ChatID, m.SenderID, m.SenderName, m.Content, m.MessageType,
			m.FileURL, m.FileName, m.FileSize, m.Timestamp, m.ReadStatus, m.ReadTimestamp,
			m.ReplyToMessageID, m.IsEdited, m.EditTimestamp, m.IsDeleted, m.DeleteTimestamp,
			m.SyncStatus, m.LastSync,
		)
		if err != nil {
			return fmt.Errorf("message[%d]: %w", i, err)
		}
	}
	return nil
}

// UpdateSyncStatus updates only the sync metadata of one row.
func (c *MessageCache) UpdateSyncStatus(ctx context.Context, messageID string, status model.SyncStatus, at int64) error {
	const q = `UPDATE chat_messages SET sync_status=$2, last_sync=$3 WHERE message_id=$1`
	_, err := c.db.Pool.Exec(ctx, q, messageID, status, at)
	return err
}

// MarkRead updates only the read flag and read timestamp.
func (c *MessageCache) MarkRead(ctx context.Context, messageID string, readAt int64) error {
	const q = `UPDATE chat_messages SET read_status=true, read_timestamp=$2 WHERE message_id=$1`
	_, err := c.db.Pool.Exec(ctx, q, messageID, readAt)
	return err
}

// DeleteByID removes one message; absent id is a no-op.
func (c *MessageCache) DeleteByID(ctx context.Context, messageID string) error {
	_, err := c.db.Pool.Exec(ctx, `DELETE FROM chat_messages WHERE message_id=$1`, messageID)
	return err
}

// DeleteAll clears the table.
func (c *MessageCache) DeleteAll(ctx context.Context) error {
	_, err := c.db.Pool.Exec(ctx, `DELETE FROM chat_messages`)
	return err
}
