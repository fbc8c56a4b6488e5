// Package session orchestrates the conversation lifecycle: user sends,
// greeting scheduling, settings and the event stream the UI subscribes to.
package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/magonotec/magonotec-api/internal/model/chat"
	"github.com/magonotec/magonotec-api/internal/model/settings"
	"github.com/magonotec/magonotec-api/internal/service/conversation"
	"github.com/magonotec/magonotec-api/internal/service/greeting"
	"github.com/magonotec/magonotec-api/internal/service/reply"
	"github.com/magonotec/magonotec-api/internal/storage"
)

var (
	// ErrEmptyMessage rejects a send with neither text nor attachment.
	ErrEmptyMessage = errors.New("message text and attachment are both empty")
	// ErrReplyInFlight rejects a send while the previous reply is pending.
	ErrReplyInFlight = errors.New("a reply request is already in flight")
)

// Attachment markers shown in the user's bubble.
const (
	imageOnlyMarker = "（画像を送信しました）"
	imageWithText   = "（画像を添付）"
)

// Event types pushed to UI subscribers.
const (
	EventMessageAppended = "message_appended"
	EventReplyPending    = "reply_pending"
	EventReplyFailed     = "reply_failed"
	EventHistoryCleared  = "history_cleared"
	EventSettingsChanged = "settings_changed"
)

// Mascot presentation states derived from the reply lifecycle.
const (
	MascotNormal   = "normal"
	MascotThinking = "thinking"
	MascotRelieved = "relieved"
	MascotWorried  = "worried"
)

// Event is a state-change notification for the UI layer.
type Event struct {
	Type     string             `json:"type"`
	Message  *chat.Message      `json:"message,omitempty"`
	Mascot   string             `json:"mascot,omitempty"`
	Settings *settings.Settings `json:"settings,omitempty"`
}

// Controller owns all per-session mutable state. One mutex serializes user
// sends and autonomous greetings so the log's append order is a total order.
type Controller struct {
	mu            sync.Mutex
	db            *storage.DB
	store         *conversation.Store
	replies       *reply.Client
	sched         *greeting.Scheduler
	prefs         settings.Settings
	pendingImage  string
	lastUserAt    time.Time
	hasLastUser   bool
	replyInFlight bool
	now           func() time.Time

	subMu       sync.Mutex
	subscribers map[chan Event]struct{}
}

// NewController restores the conversation (seeding defaults on a fresh
// store), loads settings and prepares the greeting scheduler.
func NewController(db *storage.DB, store *conversation.Store, replies *reply.Client, checkInterval time.Duration) *Controller {
	c := &Controller{
		db:          db,
		store:       store,
		replies:     replies,
		now:         time.Now,
		subscribers: make(map[chan Event]struct{}),
	}

	if !store.Load() {
		store.SeedDefault()
	}
	c.prefs = c.loadSettings()

	c.sched = greeting.NewScheduler(&greeting.Checker{
		DB:                db,
		AutoGreeting:      c.autoGreetingEnabled,
		LastUserMessageAt: c.lastUserMessageAt,
		Append:            c.appendGreeting,
	}, checkInterval)

	return c
}

// OnUserSend runs the full send lifecycle: validate, append the user
// message, request exactly one reply, append the result. The second message
// returned is the AI reply; failed is true when it is the fixed fallback.
func (c *Controller) OnUserSend(ctx context.Context, text string) (user, ai chat.Message, failed bool, err error) {
	trimmed := strings.TrimSpace(text)

	c.mu.Lock()
	if trimmed == "" && c.pendingImage == "" {
		c.mu.Unlock()
		return chat.Message{}, chat.Message{}, false, ErrEmptyMessage
	}
	if c.replyInFlight {
		c.mu.Unlock()
		return chat.Message{}, chat.Message{}, false, ErrReplyInFlight
	}

	display := trimmed
	if c.pendingImage != "" && trimmed == "" {
		display = imageOnlyMarker
	} else if c.pendingImage != "" {
		display = trimmed + "\n" + imageWithText
	}

	user = chat.New(chat.RoleUser, display, c.now())
	c.store.Append(user)
	c.lastUserAt = c.now()
	c.hasLastUser = true
	image := c.pendingImage
	c.pendingImage = ""
	c.replyInFlight = true
	// Snapshot under the lock: the user message must still be the final
	// entry when the reply client drops it to build the history, and a
	// concurrent greeting append could otherwise displace it.
	snapshot := c.store.Messages()
	c.mu.Unlock()

	c.publish(Event{Type: EventMessageAppended, Message: &user})
	c.publish(Event{Type: EventReplyPending, Mascot: MascotThinking})

	ai, ok := c.replies.RequestReply(ctx, trimmed, image, snapshot)

	c.mu.Lock()
	c.store.Append(ai)
	c.replyInFlight = false
	c.mu.Unlock()

	if ok {
		c.publish(Event{Type: EventMessageAppended, Message: &ai, Mascot: MascotRelieved})
	} else {
		c.publish(Event{Type: EventMessageAppended, Message: &ai, Mascot: MascotWorried})
		c.publish(Event{Type: EventReplyFailed, Mascot: MascotWorried})
	}

	return user, ai, !ok, nil
}

// OnViewEnter starts the greeting checks; one check runs immediately.
func (c *Controller) OnViewEnter() error {
	return c.sched.Start()
}

// OnViewLeave cancels the greeting checks.
func (c *Controller) OnViewLeave() {
	c.sched.Stop()
}

// OnSettingsChanged persists and applies the new preferences.
func (c *Controller) OnSettingsChanged(prefs settings.Settings) settings.Settings {
	prefs = settings.Normalize(prefs)

	pairs := map[string]string{
		settings.KeyAutoGreeting:  prefs.AutoGreeting,
		settings.KeyMascotVisible: prefs.MascotVisible,
		settings.KeyFontSize:      prefs.FontSize,
	}
	for key, value := range pairs {
		if err := c.db.Set(key, value); err != nil {
			log.Printf("[session] failed to persist setting %s: %v", key, err)
		}
	}

	c.mu.Lock()
	c.prefs = prefs
	c.mu.Unlock()

	c.publish(Event{Type: EventSettingsChanged, Settings: &prefs})
	return prefs
}

// OnHistoryCleared resets the conversation to the seeded greetings.
func (c *Controller) OnHistoryCleared() {
	c.mu.Lock()
	c.store.Clear()
	c.mu.Unlock()

	c.publish(Event{Type: EventHistoryCleared, Mascot: MascotNormal})
}

// AttachImage stages one base64 image for the next send, replacing any
// previously staged one.
func (c *Controller) AttachImage(image string) {
	c.mu.Lock()
	c.pendingImage = image
	c.mu.Unlock()
}

// RemoveImage discards the staged image, if any.
func (c *Controller) RemoveImage() {
	c.mu.Lock()
	c.pendingImage = ""
	c.mu.Unlock()
}

// Messages returns the ordered log for rendering.
func (c *Controller) Messages() []chat.Message {
	return c.store.Messages()
}

// Settings returns the active preferences.
func (c *Controller) Settings() settings.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefs
}

// Close tears the session down; no greeting fires afterwards.
func (c *Controller) Close() {
	c.sched.Stop()
}

// Subscribe registers an event listener. The returned cancel func must be
// called when the listener goes away. Slow listeners drop events rather
// than block the session.
func (c *Controller) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	c.subMu.Lock()
	c.subscribers[ch] = struct{}{}
	c.subMu.Unlock()

	cancel := func() {
		c.subMu.Lock()
		delete(c.subscribers, ch)
		c.subMu.Unlock()
	}
	return ch, cancel
}

func (c *Controller) publish(event Event) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	for ch := range c.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

func (c *Controller) appendGreeting(text string) {
	c.mu.Lock()
	msg := chat.New(chat.RoleAI, text, c.now())
	c.store.Append(msg)
	c.mu.Unlock()

	c.publish(Event{Type: EventMessageAppended, Message: &msg, Mascot: MascotNormal})
}

func (c *Controller) autoGreetingEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefs.AutoGreeting == settings.On
}

func (c *Controller) lastUserMessageAt() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUserAt, c.hasLastUser
}

func (c *Controller) loadSettings() settings.Settings {
	read := func(key string) string {
		value, ok, err := c.db.Get(key)
		if err != nil {
			log.Printf("[session] failed to read setting %s: %v", key, err)
			return ""
		}
		if !ok {
			return ""
		}
		return value
	}

	return settings.Normalize(settings.Settings{
		AutoGreeting:  read(settings.KeyAutoGreeting),
		MascotVisible: read(settings.KeyMascotVisible),
		FontSize:      read(settings.KeyFontSize),
	})
}
