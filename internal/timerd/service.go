// Package timerd implements the daemon-side timer service. It wraps the core
// timeq.Queue with named timers carrying a message payload, optional cron
// recurrence, and a bounded history of recent firings for the list surface.
package timerd

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/adhocore/gronx"

	"github.com/chronoq/chronoq/pkg/logger"
	"github.com/chronoq/chronoq/pkg/timeq"
)

var (
	// ErrEmptyID is returned when a timer is added without an id.
	ErrEmptyID = errors.New("timer id is required")

	// ErrNoDeadline is returned when a timer has neither a deadline nor a
	// cron expression.
	ErrNoDeadline = errors.New("timer needs a deadline or a cron expression")

	// ErrBadCron is returned for cron expressions gronx cannot parse.
	ErrBadCron = errors.New("invalid cron expression")
)

// historyCap bounds the fired-timer history; older entries are dropped.
const historyCap = 64

// Timer is one named, pending timer.
type Timer struct {
	ID      string
	Message string
	At      time.Time
	Cron    string
}

// Fired records one delivered timer.
type Fired struct {
	ID      string
	Message string
	At      time.Time
	FiredAt time.Time
}

// Service owns the queue and the timer metadata. All methods are safe for
// concurrent use; the expiry path runs on the queue's goroutine.
type Service struct {
	log logger.Logger
	q   *timeq.Queue[string]

	mu      sync.Mutex
	timers  map[string]*Timer
	history []Fired
}

// New creates a Service with a running scheduling queue.
func New(l logger.Logger) *Service {
	if l == nil {
		l = logger.NewNopLogger()
	}
	s := &Service{
		log:    l,
		timers: make(map[string]*Timer),
	}
	s.q = timeq.New(s.onExpire, &timeq.Opts{Logger: l})
	return s
}

// Add schedules (or moves) the timer named id. With a cron expression and a
// zero deadline, the next occurrence becomes the deadline; after each firing
// the following occurrence is scheduled automatically. Returns the effective
// deadline.
func (s *Service) Add(id, message string, at time.Time, cron string) (time.Time, error) {
	if id == "" {
		return time.Time{}, ErrEmptyID
	}
	if cron != "" {
		if !gronx.New().IsValid(cron) {
			return time.Time{}, ErrBadCron
		}
		if at.IsZero() {
			next, err := gronx.NextTickAfter(cron, time.Now(), false)
			if err != nil {
				return time.Time{}, ErrBadCron
			}
			at = next
		}
	}
	if at.IsZero() {
		return time.Time{}, ErrNoDeadline
	}

	s.mu.Lock()
	s.timers[id] = &Timer{ID: id, Message: message, At: at, Cron: cron}
	s.q.Add(at, id)
	s.mu.Unlock()

	s.log.Info("timer %s scheduled for %s", id, at.Format(time.RFC3339))
	return at, nil
}

// Cancel removes the timer named id. Reports whether a timer was pending.
func (s *Service) Cancel(id string) bool {
	s.mu.Lock()
	_, ok := s.timers[id]
	if ok {
		delete(s.timers, id)
		s.q.Remove(id)
	}
	s.mu.Unlock()

	if ok {
		s.log.Info("timer %s cancelled", id)
	}
	return ok
}

// CancelAt removes every timer scheduled for exactly the instant at and
// returns how many were cancelled.
func (s *Service) CancelAt(at time.Time) int {
	s.mu.Lock()
	var n int
	for id, t := range s.timers {
		if t.At.Equal(at) {
			delete(s.timers, id)
			n++
		}
	}
	if n > 0 {
		s.q.RemoveAt(at)
	}
	s.mu.Unlock()

	if n > 0 {
		s.log.Info("cancelled %d timer(s) at %s", n, at.Format(time.RFC3339))
	}
	return n
}

// Reschedule moves the timer named id to a new deadline. Reports whether the
// timer was pending.
func (s *Service) Reschedule(id string, at time.Time) bool {
	s.mu.Lock()
	t, ok := s.timers[id]
	if ok {
		t.At = at
		s.q.Reschedule(at, id)
	}
	s.mu.Unlock()

	if ok {
		s.log.Info("timer %s rescheduled to %s", id, at.Format(time.RFC3339))
	}
	return ok
}

// List returns all pending timers in deadline order.
func (s *Service) List() []Timer {
	s.mu.Lock()
	out := make([]Timer, 0, len(s.timers))
	for _, t := range s.timers {
		out = append(out, *t)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}

// History returns the recent firings, oldest first.
func (s *Service) History() []Fired {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Fired(nil), s.history...)
}

// Len reports the number of pending timers.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop shuts the queue down and blocks until its goroutine has exited.
// Idempotent. Pending timers are discarded.
func (s *Service) Stop() {
	s.q.Stop()
}

// onExpire runs on the queue goroutine for each fired timer. Recurring
// timers are rescheduled for their next cron occurrence; one-shot timers are
// dropped after recording them in the history.
func (s *Service) onExpire(at time.Time, id string) {
	s.mu.Lock()
	t, ok := s.timers[id]
	if !ok {
		// cancelled between pop and delivery bookkeeping
		s.mu.Unlock()
		return
	}

	s.history = append(s.history, Fired{ID: t.ID, Message: t.Message, At: at, FiredAt: time.Now()})
	if len(s.history) > historyCap {
		s.history = s.history[len(s.history)-historyCap:]
	}

	if t.Cron != "" {
		next, err := gronx.NextTickAfter(t.Cron, time.Now(), false)
		if err == nil {
			t.At = next
			s.q.Add(next, id)
			s.mu.Unlock()
			s.log.Info("timer %s fired, next occurrence %s", id, next.Format(time.RFC3339))
			return
		}
		s.log.Warning("timer %s: dropping recurrence, cron %q: %v", id, t.Cron, err)
	}

	delete(s.timers, id)
	s.mu.Unlock()
	s.log.Info("timer %s fired", id)
}
