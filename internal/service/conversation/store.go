package conversation

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/magonotec/magonotec-api/internal/format"
	"github.com/magonotec/magonotec-api/internal/model/chat"
	"github.com/magonotec/magonotec-api/internal/storage"
)

// StorageKey holds the full conversation log as a JSON array.
const StorageKey = "magonotec_chat_history"

// Opening messages shown to a first-time user.
const (
	seedGreeting1 = "こんにちは！まごのTECだよ。"
	seedGreeting2 = "スマホやネットのことで、なにか困ってない？なんでも気軽に聞いてね。"
)

// Store owns the ordered conversation log. Appends are serialized; the
// in-memory slice stays authoritative even when persistence fails.
type Store struct {
	mu       sync.RWMutex
	db       *storage.DB
	messages []chat.Message
	now      func() time.Time
}

// NewStore creates a store backed by db. The log is empty until Load or
// SeedDefault runs.
func NewStore(db *storage.DB) *Store {
	return &Store{
		db:  db,
		now: time.Now,
	}
}

// Load restores a previously persisted log. Absent or malformed data counts
// as "nothing to restore": it is logged and Load returns false.
func (s *Store) Load() bool {
	raw, ok, err := s.db.Get(StorageKey)
	if err != nil {
		log.Printf("[store] failed to read persisted history: %v", err)
		return false
	}
	if !ok {
		return false
	}

	var restored []chat.Message
	if err := json.Unmarshal([]byte(raw), &restored); err != nil {
		log.Printf("[store] persisted history is malformed, starting fresh: %v", err)
		return false
	}
	if len(restored) == 0 {
		return false
	}

	s.mu.Lock()
	s.messages = restored
	s.mu.Unlock()

	log.Printf("[store] restored %d messages", len(restored))
	return true
}

// SeedDefault replaces the log with the two opening greetings.
func (s *Store) SeedDefault() {
	at := s.now()
	seeded := []chat.Message{
		chat.New(chat.RoleAI, format.ForSenior(seedGreeting1), at),
		chat.New(chat.RoleAI, format.ForSenior(seedGreeting2), at),
	}

	s.mu.Lock()
	s.messages = seeded
	s.mu.Unlock()
}

// Append adds msg to the end of the log and persists the result.
func (s *Store) Append(msg chat.Message) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()

	s.Persist()
}

// Persist serializes the full log. Failures are logged and swallowed; the
// in-memory log remains the source of truth for the session.
func (s *Store) Persist() {
	s.mu.RLock()
	raw, err := json.Marshal(s.messages)
	s.mu.RUnlock()

	if err != nil {
		log.Printf("[store] failed to encode history: %v", err)
		return
	}
	if err := s.db.Set(StorageKey, string(raw)); err != nil {
		log.Printf("[store] failed to persist history: %v", err)
	}
}

// Clear erases the persisted log and re-seeds the opening greetings. The
// seeds are not persisted; storage fills again on the next append.
func (s *Store) Clear() {
	if err := s.db.Remove(StorageKey); err != nil {
		log.Printf("[store] failed to remove persisted history: %v", err)
	}
	s.SeedDefault()
}

// Messages returns a copied snapshot of the log in display order.
func (s *Store) Messages() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]chat.Message, len(s.messages))
	copy(copied, s.messages)
	return copied
}

// Len reports the number of messages in the log.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}
