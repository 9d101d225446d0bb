package clock

import (
	"context"
	"time"
)

// Timer is a cancellable pending callback.
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the call stopped
	// the timer before it fired.
	Stop() bool
}

// Clock abstracts time for components driven by debounce and inactivity timers.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type wallClock struct{}

// Real returns the wall clock.
func Real() Clock {
	return wallClock{}
}

func (wallClock) Now() time.Time {
	return time.Now()
}

func (wallClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Wait blocks for d on c or until ctx is done. Non-positive durations return
// immediately.
func Wait(ctx context.Context, c Clock, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	done := make(chan struct{})
	t := c.AfterFunc(d, func() { close(done) })

	select {
	case <-ctx.Done():
		t.Stop()
		return ctx.Err()
	case <-done:
		return nil
	}
}
