package scheduler

import (
	"context"
	"time"

	"github.com/vk/prefstore/internal/ctxlog"
)

// State is the scheduler's position in its save cycle.
type State int

const (
	// Idle means no pending changes since the last save.
	Idle State = iota
	// Dirty means the store has changed past the last saved version.
	Dirty
	// Saving means a backend flush is in flight. Flushes are synchronous,
	// so this state is only ever observed from inside the flush itself.
	Saving
	// ShuttingDown means the final flush has run; no further saves happen.
	ShuttingDown
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dirty:
		return "dirty"
	case Saving:
		return "saving"
	case ShuttingDown:
		return "shutting-down"
	default:
		return "unknown"
	}
}

// Target is what the scheduler watches and flushes: the store's change
// counter on one side, the codec+backend pipeline on the other.
type Target interface {
	// Version returns the store's monotonic change counter.
	Version() uint64
	// Flush serializes the store and saves it to the backend.
	Flush(ctx context.Context) error
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithMinInterval sets the debounce interval between saves.
func WithMinInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.minInterval = d }
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithOnSaved registers a zero-payload notification fired after every
// successful flush.
func WithOnSaved(fn func()) Option {
	return func(s *Scheduler) { s.onSaved = fn }
}

// Scheduler debounces store changes into backend saves. It is tick-driven
// and single-threaded like the store it watches.
type Scheduler struct {
	target      Target
	minInterval time.Duration
	now         func() time.Time
	onSaved     func()

	state        State
	savedVersion uint64
	lastSaveAt   time.Time
}

// DefaultMinInterval is the debounce interval used when none is configured.
const DefaultMinInterval = time.Second

// New creates a scheduler baselined on the target's current version, so a
// freshly loaded, untouched store triggers no save. The baseline save time
// is "now": the first save after startup also waits out the interval.
func New(target Target, opts ...Option) *Scheduler {
	s := &Scheduler{
		target:      target,
		minInterval: DefaultMinInterval,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.savedVersion = target.Version()
	s.lastSaveAt = s.now()
	return s
}

// State returns the current state.
func (s *Scheduler) State() State {
	return s.state
}

// LastSaveAt returns when the last successful save completed, or the
// construction time if none has.
func (s *Scheduler) LastSaveAt() time.Time {
	return s.lastSaveAt
}

// Tick runs one scheduling step: dirty check first, then the debounced save
// decision. Mutations applied earlier in the same tick are always observed.
// A failed save leaves the store Dirty and is retried on a later tick.
func (s *Scheduler) Tick(ctx context.Context) error {
	if s.state == ShuttingDown {
		return nil
	}

	version := s.target.Version()
	if version == s.savedVersion {
		s.state = Idle
		return nil
	}
	s.state = Dirty

	now := s.now()
	if now.Sub(s.lastSaveAt) < s.minInterval {
		return nil
	}
	return s.save(ctx, version, now)
}

// Shutdown flushes a Dirty store immediately, bypassing the debounce
// interval, and stops the scheduler. It is safe to call more than once;
// only the first call can save.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	if s.state == ShuttingDown {
		return nil
	}

	var err error
	if version := s.target.Version(); version != s.savedVersion {
		err = s.save(ctx, version, s.now())
	}
	s.state = ShuttingDown
	return err
}

func (s *Scheduler) save(ctx context.Context, version uint64, now time.Time) error {
	s.state = Saving
	if err := s.target.Flush(ctx); err != nil {
		ctxlog.FromContext(ctx).Error("Failed to save preferences, keeping previous document.", "error", err)
		s.state = Dirty
		return err
	}
	s.savedVersion = version
	s.lastSaveAt = now
	s.state = Idle
	if s.onSaved != nil {
		s.onSaved()
	}
	return nil
}
