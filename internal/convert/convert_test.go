package convert

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/namatovu-christine/alumni-sync/internal/model"
	"github.com/namatovu-christine/alumni-sync/internal/remote"
)

func TestSplitList(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"go", []string{"go"}},
		{"go,sql", []string{"go", "sql"}},
		{" go , sql ", []string{"go", "sql"}},
		{"go,,sql,", []string{"go", "sql"}},
		{",,", nil},
	}
	for _, tt := range tests {
		got := SplitList(tt.in)
		if len(got) != len(tt.want) {
			t.Fatalf("SplitList(%q) = %v, want %v", tt.in, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("SplitList(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	}
}

func TestJoinSplitRoundTrip(t *testing.T) {
	t.Parallel()
	in := []string{"go", "sql", "distributed systems"}
	got := SplitList(JoinList(in))
	if len(got) != 3 || got[2] != "distributed systems" {
		t.Fatalf("round trip: %v", got)
	}
}

func TestDecodeUser_DocumentIDWins(t *testing.T) {
	t.Parallel()
	doc := remote.Document{
		ID:        "u1",
		UpdatedAt: 5000,
		Fields:    json.RawMessage(`{"userId":"spoofed","fullName":"Grace Auma"}`),
	}
	u, err := DecodeUser(doc)
	if err != nil {
		t.Fatalf("DecodeUser: %v", err)
	}
	if u.UserID != "u1" {
		t.Fatalf("document id must win, got %q", u.UserID)
	}
	if u.UpdatedAt != 5000 {
		t.Fatalf("updatedAt should fall back to the document stamp, got %d", u.UpdatedAt)
	}
}

func TestDecodeUser_BadPayload(t *testing.T) {
	t.Parallel()
	_, err := DecodeUser(remote.Document{ID: "u1", Fields: json.RawMessage(`{"fullName":`)})
	if err == nil || !strings.Contains(err.Error(), "u1") {
		t.Fatalf("error should name the document, got %v", err)
	}
}

func TestDecodeEvent_CurrencyDefault(t *testing.T) {
	t.Parallel()
	e, err := DecodeEvent(remote.Document{
		ID:     "e1",
		Fields: json.RawMessage(`{"title":"Homecoming","isPaid":true,"price":50000}`),
	})
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if e.Currency != DefaultCurrency {
		t.Fatalf("missing currency should default, got %q", e.Currency)
	}

	e, err = DecodeEvent(remote.Document{
		ID:     "e2",
		Fields: json.RawMessage(`{"title":"Gala","currency":"UGX"}`),
	})
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if e.Currency != "UGX" {
		t.Fatalf("explicit currency must be kept, got %q", e.Currency)
	}
}

func TestDecodeChatMessage_ThreadAndTimestampFallback(t *testing.T) {
	t.Parallel()
	m, err := DecodeChatMessage(remote.Document{
		ID:        "m1",
		UpdatedAt: 9000,
		Fields:    json.RawMessage(`{"senderId":"u2","content":"hi"}`),
	}, "c1")
	if err != nil {
		t.Fatalf("DecodeChatMessage: %v", err)
	}
	if m.ChatID != "c1" {
		t.Fatalf("thread id fallback, got %q", m.ChatID)
	}
	if m.Timestamp != 9000 {
		t.Fatalf("timestamp fallback, got %d", m.Timestamp)
	}
}

func TestEncodeFields_ExcludesSyncMetadata(t *testing.T) {
	t.Parallel()
	b, err := EncodeFields(model.User{
		UserID:     "u1",
		FullName:   "Grace Auma",
		SyncStatus: model.SyncPending,
		LastSync:   123,
	})
	if err != nil {
		t.Fatalf("EncodeFields: %v", err)
	}
	s := string(b)
	if strings.Contains(s, "pending") || strings.Contains(s, "123") {
		t.Fatalf("sync metadata leaked: %s", s)
	}
	if !strings.Contains(s, `"fullName":"Grace Auma"`) {
		t.Fatalf("payload incomplete: %s", s)
	}
}
