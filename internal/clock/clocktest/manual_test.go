package clocktest

import (
	"testing"
	"time"
)

func TestManualFiresInDeadlineOrder(t *testing.T) {
	m := New(time.Unix(0, 0))

	var order []string
	m.AfterFunc(2*time.Second, func() { order = append(order, "second") })
	m.AfterFunc(time.Second, func() { order = append(order, "first") })
	stopped := m.AfterFunc(time.Second, func() { order = append(order, "stopped") })

	if !stopped.Stop() {
		t.Fatalf("expected stop to succeed on armed timer")
	}

	m.Advance(1500 * time.Millisecond)
	if len(order) != 1 || order[0] != "first" {
		t.Fatalf("unexpected order after first advance: %v", order)
	}
	if m.Pending() != 1 {
		t.Fatalf("expected one pending timer, got %d", m.Pending())
	}

	m.Advance(time.Second)
	if len(order) != 2 || order[1] != "second" {
		t.Fatalf("unexpected order after second advance: %v", order)
	}
	if got := m.Now(); !got.Equal(time.Unix(0, 0).Add(2500 * time.Millisecond)) {
		t.Fatalf("unexpected now: %v", got)
	}
}

func TestManualCallbackCanArmTimers(t *testing.T) {
	m := New(time.Unix(0, 0))

	fired := 0
	m.AfterFunc(time.Second, func() {
		fired++
		m.AfterFunc(time.Second, func() { fired++ })
	})

	m.Advance(3 * time.Second)
	if fired != 2 {
		t.Fatalf("expected chained timers to fire, got %d", fired)
	}
}
