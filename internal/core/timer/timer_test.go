package timer

import (
	"testing"
	"time"
)

func TestAdvanceRunsDueCallbacksInOrder(t *testing.T) {
	s := NewScheduler()
	var got []string
	s.After(300*time.Millisecond, func() { got = append(got, "spawn") })
	s.After(2*time.Second, func() { got = append(got, "reload") })
	s.After(300*time.Millisecond, func() { got = append(got, "spawn2") })

	s.Advance(100 * time.Millisecond)
	if len(got) != 0 {
		t.Fatalf("fired early: %v", got)
	}
	s.Advance(200 * time.Millisecond)
	if len(got) != 2 || got[0] != "spawn" || got[1] != "spawn2" {
		t.Fatalf("got %v", got)
	}
	if s.Pending() != 1 {
		t.Fatalf("pending=%d", s.Pending())
	}
	s.Advance(5 * time.Second)
	if len(got) != 3 || got[2] != "reload" {
		t.Fatalf("got %v", got)
	}
	s.Advance(5 * time.Second)
	if len(got) != 3 {
		t.Fatalf("callback ran twice: %v", got)
	}
}

func TestStopPreventsCallback(t *testing.T) {
	s := NewScheduler()
	ran := false
	tm := s.After(time.Second, func() { ran = true })
	if !tm.Stop() {
		t.Fatalf("first stop returned false")
	}
	if tm.Stop() {
		t.Fatalf("second stop returned true")
	}
	s.Advance(2 * time.Second)
	if ran {
		t.Fatalf("stopped timer fired")
	}
	var nilTimer *Timer
	if nilTimer.Stop() {
		t.Fatalf("nil timer stop returned true")
	}
}

func TestCallbackScheduledDuringAdvanceWaits(t *testing.T) {
	s := NewScheduler()
	count := 0
	s.After(0, func() {
		count++
		s.After(0, func() { count++ })
	})
	s.Advance(0)
	if count != 1 {
		t.Fatalf("count=%d after first advance", count)
	}
	s.Advance(0)
	if count != 2 {
		t.Fatalf("count=%d after second advance", count)
	}
}
