package reconcile

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_CollapsesBurstIntoOnePass(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(20*time.Millisecond, func() { runs.Add(1) })
	defer s.Stop()

	for i := 0; i < 10; i++ {
		s.Signal()
	}
	assert.True(t, s.Pending())

	assert.Eventually(t, func() bool { return runs.Load() == 1 },
		time.Second, 5*time.Millisecond)

	// The slot is free again; the next signal schedules the next pass.
	assert.False(t, s.Pending())
	s.Signal()
	assert.Eventually(t, func() bool { return runs.Load() == 2 },
		time.Second, 5*time.Millisecond)
}

func TestScheduler_SignalDoesNotExtendWindow(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(50*time.Millisecond, func() { runs.Add(1) })
	defer s.Stop()

	s.Signal()
	start := time.Now()

	// Keep signalling past the window midpoint; the pass still fires at
	// the original deadline.
	for time.Since(start) < 30*time.Millisecond {
		s.Signal()
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return runs.Load() == 1 },
		time.Second, 5*time.Millisecond)
	assert.WithinDuration(t, start.Add(50*time.Millisecond), time.Now(), 200*time.Millisecond)
}

func TestScheduler_StopCancelsPending(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(20*time.Millisecond, func() { runs.Add(1) })

	s.Signal()
	s.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, runs.Load())

	// Signals after Stop are refused.
	s.Signal()
	assert.False(t, s.Pending())
}

func TestScheduler_ZeroWindowUsesDefault(t *testing.T) {
	s := NewScheduler(0, func() {})
	assert.Equal(t, DefaultDebounceWindow, s.window)
}
