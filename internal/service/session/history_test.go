package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/magonotec/magonotec-api/internal/service/conversation"
	"github.com/magonotec/magonotec-api/internal/service/reply"
	"github.com/magonotec/magonotec-api/internal/storage"
)

// A greeting appended between the user-message append and the reply request
// must never displace the user message as the final history entry: the
// history sent upstream excludes the current message, not the greeting.
func TestGreetingDuringSendStaysOutOfHistory(t *testing.T) {
	type historyItem struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type chatRequest struct {
		Message string        `json:"message"`
		History []historyItem `json:"history"`
	}

	var leaked atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		for _, item := range req.History {
			if item.Content == req.Message {
				leaked.Add(1)
			}
		}
		json.NewEncoder(w).Encode(map[string]string{"reply": "わかったよ。"})
	}))
	defer srv.Close()

	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("storage.New err: %v", err)
	}
	defer db.Close()

	ctrl := NewController(db, conversation.NewStore(db), reply.NewClient(srv.URL, 5*time.Second), time.Hour)
	defer ctrl.Close()

	// Race one greeting against each send. Every user text is unique, so a
	// hit on the message field in any request's history is a leak of the
	// current message.
	for i := 0; i < 200; i++ {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctrl.appendGreeting("おはようございます☀️")
		}()

		if _, _, _, err := ctrl.OnUserSend(context.Background(), fmt.Sprintf("相談ごと%d", i)); err != nil {
			t.Fatalf("send %d err: %v", i, err)
		}
		wg.Wait()
	}

	if n := leaked.Load(); n != 0 {
		t.Fatalf("current user message appeared in history %d times", n)
	}
}
