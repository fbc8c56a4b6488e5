// Package greeting sends autonomous seasonal check-in messages while the
// conversation view is open, at most once per day and slot.
package greeting

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/magonotec/magonotec-api/internal/format"
	"github.com/magonotec/magonotec-api/internal/storage"
)

// MinQuietInterval is how long the user must have been silent before an
// autonomous greeting is allowed.
const MinQuietInterval = 180 * time.Minute

const sentinelSent = "sent"

// Checker evaluates the greeting guard chain once. All collaborators are
// injected so tests can pin the clock and the template pick.
type Checker struct {
	DB       *storage.DB
	Now      func() time.Time
	RandIntn func(int) int

	// AutoGreeting reports the current value of the user setting.
	AutoGreeting func() bool
	// LastUserMessageAt returns when the user last sent a message, if ever.
	LastUserMessageAt func() (time.Time, bool)
	// Append adds the greeting to the conversation as an AI message.
	// The caller serializes it against user sends.
	Append func(text string)
}

// Check runs the guards in order and, when all pass, appends one seasonal
// greeting and marks the (day, slot) sentinel. Guards short-circuit with no
// side effects.
func (c *Checker) Check() {
	if !c.AutoGreeting() {
		return
	}

	now := c.Now()

	slot := slotOf(now)
	if slot == "" {
		return
	}

	key := sentinelKey(now, slot)
	value, ok, err := c.DB.Get(key)
	if err != nil {
		log.Printf("[greeting] failed to read sentinel %s: %v", key, err)
		return
	}
	if ok && value == sentinelSent {
		return
	}

	if at, ok := c.LastUserMessageAt(); ok {
		if now.Sub(at) < MinQuietInterval {
			return
		}
	}

	season := seasonOf(now)
	templates := templatesFor(slot, season)
	text := templates[c.RandIntn(len(templates))]

	c.Append(format.ForSenior(text))

	if err := c.DB.Set(key, sentinelSent); err != nil {
		log.Printf("[greeting] failed to mark sentinel %s: %v", key, err)
	}
	log.Printf("[greeting] sent %s/%s greeting", season, slot)
}

// Scheduler runs the checker while the conversation view is active: once
// immediately on Start and then on a fixed cadence until Stop.
type Scheduler struct {
	mu       sync.Mutex
	checker  *Checker
	interval time.Duration
	sched    gocron.Scheduler
}

// NewScheduler wraps checker with a repeating job at the given interval.
func NewScheduler(checker *Checker, interval time.Duration) *Scheduler {
	if checker.Now == nil {
		checker.Now = time.Now
	}
	if checker.RandIntn == nil {
		checker.RandIntn = rand.Intn
	}
	return &Scheduler{checker: checker, interval: interval}
}

// Start begins periodic checks and runs one check right away. Calling Start
// on a running scheduler restarts it.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched != nil {
		if err := s.sched.Shutdown(); err != nil {
			log.Printf("[greeting] failed to stop previous scheduler: %v", err)
		}
		s.sched = nil
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	if _, err := sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.checker.Check),
	); err != nil {
		return err
	}
	sched.Start()
	s.sched = sched

	// The view was just entered; a slot may already be active.
	s.checker.Check()
	return nil
}

// Stop cancels the periodic checks. No check fires after Stop returns; the
// scheduler may be started again later.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched == nil {
		return
	}
	if err := s.sched.Shutdown(); err != nil {
		log.Printf("[greeting] failed to stop scheduler: %v", err)
	}
	s.sched = nil
}
