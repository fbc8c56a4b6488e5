package conversation_test

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/magonotec/magonotec-api/internal/model/chat"
	"github.com/magonotec/magonotec-api/internal/service/conversation"
	"github.com/magonotec/magonotec-api/internal/storage"
)

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()

	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("storage.New err: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadOnFreshStorage(t *testing.T) {
	store := conversation.NewStore(openTestDB(t))

	if store.Load() {
		t.Fatal("Load on fresh storage should return false")
	}
}

func TestLoadOnMalformedData(t *testing.T) {
	db := openTestDB(t)
	if err := db.Set(conversation.StorageKey, "{not json]"); err != nil {
		t.Fatalf("Set err: %v", err)
	}

	store := conversation.NewStore(db)
	if store.Load() {
		t.Fatal("Load on malformed data should return false")
	}
}

func TestSeedDefault(t *testing.T) {
	store := conversation.NewStore(openTestDB(t))
	store.SeedDefault()

	messages := store.Messages()
	if len(messages) != 2 {
		t.Fatalf("expected 2 seeded messages, got %d", len(messages))
	}
	for i, msg := range messages {
		if msg.Role != chat.RoleAI {
			t.Fatalf("seed %d role = %q, want %q", i, msg.Role, chat.RoleAI)
		}
		if msg.ID == "" || msg.Timestamp == "" {
			t.Fatalf("seed %d is missing id or timestamp", i)
		}
	}

	// The second greeting has two sentences, so formatting inserts a blank line.
	if !strings.Contains(messages[1].Text, "\n\n") {
		t.Fatalf("second seed should be sentence-formatted: %q", messages[1].Text)
	}
}

func TestPersistLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	store := conversation.NewStore(db)
	store.SeedDefault()

	at := time.Date(2025, 12, 7, 1, 23, 0, 0, time.Local)
	store.Append(chat.New(chat.RoleUser, "プリンターが動かないの", at))
	store.Append(chat.New(chat.RoleAI, "そうなんだね。\n\n一緒に見ていこうか。", at))

	want := store.Messages()

	restored := conversation.NewStore(db)
	if !restored.Load() {
		t.Fatal("Load after Persist should return true")
	}
	if got := restored.Messages(); !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestClear(t *testing.T) {
	db := openTestDB(t)
	store := conversation.NewStore(db)
	store.SeedDefault()

	for i := 0; i < 3; i++ {
		store.Append(chat.New(chat.RoleUser, "こんにちは", time.Now()))
	}
	if store.Len() != 5 {
		t.Fatalf("expected 5 messages before clear, got %d", store.Len())
	}

	store.Clear()

	if store.Len() != 2 {
		t.Fatalf("expected 2 seeded messages after clear, got %d", store.Len())
	}
	if _, ok, _ := db.Get(conversation.StorageKey); ok {
		t.Fatal("storage key still holds data after Clear")
	}
}
