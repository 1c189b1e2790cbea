package reconcile

import (
	"sync"
	"time"
)

// DefaultDebounceWindow collapses a burst of change signals into a single
// scan pass.
const DefaultDebounceWindow = 1500 * time.Millisecond

// Scheduler is a single-slot pending-task scheduler: at most one pass is
// outstanding, and a signal that arrives while one is pending is a no-op.
// It neither resets nor extends the window, so a pass fires once per idle
// window and the next signal after it schedules the following pass. This
// debounce is the sole concurrency control; it is a soft guarantee, not a
// mutual-exclusion lock.
type Scheduler struct {
	window time.Duration
	run    func()

	mu      sync.Mutex
	pending bool
	timer   *time.Timer
	stopped bool
}

// NewScheduler creates a Scheduler invoking run after each debounce
// window. A zero window falls back to DefaultDebounceWindow.
func NewScheduler(window time.Duration, run func()) *Scheduler {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Scheduler{window: window, run: run}
}

// Signal requests a pass. If one is already pending, the signal is
// absorbed.
func (s *Scheduler) Signal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending || s.stopped {
		return
	}
	s.pending = true
	s.timer = time.AfterFunc(s.window, s.fire)
}

// Pending reports whether a pass is currently scheduled.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Stop cancels any pending pass and refuses further signals.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = false
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.mu.Unlock()
	s.run()
}
