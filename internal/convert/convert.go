// Package convert maps remote documents to domain models and back, and owns
// the delimited-text encoding of list fields used by the cache store.
package convert

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/namatovu-christine/alumni-sync/internal/model"
	"github.com/namatovu-christine/alumni-sync/internal/remote"
)

// listSep delimits list fields (skills, tags, requirements) inside a single
// cache column. Split/Join live here so no other layer hardcodes the format.
const listSep = ","

// DefaultCurrency substitutes for events that omit a currency code.
const DefaultCurrency = "USD"

// JoinList flattens items into one delimited cache column value.
func JoinList(items []string) string {
	return strings.Join(items, listSep)
}

// SplitList parses a delimited cache column back into a list, dropping
// empty segments and surrounding whitespace.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, listSep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// DecodeUser maps a remote users document into a domain profile.
// The document id wins over any id embedded in the payload.
func DecodeUser(doc remote.Document) (model.User, error) {
	var u model.User
	if err := json.Unmarshal(doc.Fields, &u); err != nil {
		return model.User{}, fmt.Errorf("decode user %s: %w", doc.ID, err)
	}
	u.UserID = doc.ID
	if u.UpdatedAt == 0 {
		u.UpdatedAt = doc.UpdatedAt
	}
	return u, nil
}

// DecodeJobPosting maps a remote job_postings document into a domain posting.
func DecodeJobPosting(doc remote.Document) (model.JobPosting, error) {
	var j model.JobPosting
	if err := json.Unmarshal(doc.Fields, &j); err != nil {
		return model.JobPosting{}, fmt.Errorf("decode job posting %s: %w", doc.ID, err)
	}
	j.JobID = doc.ID
	if j.UpdatedAt == 0 {
		j.UpdatedAt = doc.UpdatedAt
	}
	return j, nil
}

// DecodeEvent maps a remote alumni_events document into a domain event.
// A missing currency code defaults to DefaultCurrency.
func DecodeEvent(doc remote.Document) (model.Event, error) {
	var e model.Event
	if err := json.Unmarshal(doc.Fields, &e); err != nil {
		return model.Event{}, fmt.Errorf("decode event %s: %w", doc.ID, err)
	}
	e.EventID = doc.ID
	if e.UpdatedAt == 0 {
		e.UpdatedAt = doc.UpdatedAt
	}
	if e.Currency == "" {
		e.Currency = DefaultCurrency
	}
	return e, nil
}

// DecodeChatMessage maps a remote message document into a domain message.
// chatID identifies the enclosing thread (messages are a subcollection, the
// payload may omit it).
func DecodeChatMessage(doc remote.Document, chatID string) (model.ChatMessage, error) {
	var m model.ChatMessage
	if err := json.Unmarshal(doc.Fields, &m); err != nil {
		return model.ChatMessage{}, fmt.Errorf("decode message %s: %w", doc.ID, err)
	}
	m.MessageID = doc.ID
	if m.ChatID == "" {
		m.ChatID = chatID
	}
	if m.Timestamp == 0 {
		m.Timestamp = doc.UpdatedAt
	}
	return m, nil
}

// DecodeChatThread maps a remote chats document into a thread descriptor.
func DecodeChatThread(doc remote.Document) (model.ChatThread, error) {
	var t model.ChatThread
	if err := json.Unmarshal(doc.Fields, &t); err != nil {
		return model.ChatThread{}, fmt.Errorf("decode chat %s: %w", doc.ID, err)
	}
	t.ChatID = doc.ID
	return t, nil
}

// EncodeFields marshals a domain value into a remote document payload.
// Sync metadata is excluded from marshaling by the model's struct tags, so
// local bookkeeping can never leak into the remote store.
func EncodeFields(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	return b, nil
}
