package timer

import (
	"sort"
	"time"
)

// Scheduler runs deferred callbacks on the tick goroutine. Time only moves
// when Advance is called, so a callback can never race a tick.
type Scheduler struct {
	now     time.Duration
	seq     uint64
	pending []*Timer
}

// Timer is a handle to one scheduled callback.
type Timer struct {
	due     time.Duration
	seq     uint64
	fn      func()
	stopped bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{pending: make([]*Timer, 0, 8)}
}

// After schedules fn to run once at least d of tick time has elapsed.
// Callbacks scheduled from inside a callback run on a later Advance.
func (s *Scheduler) After(d time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &Timer{due: s.now + d, seq: s.seq, fn: fn}
	s.pending = append(s.pending, t)
	return t
}

// Stop prevents the callback from running. Stopping a fired or already
// stopped timer is a no-op. Returns true if this call stopped it.
func (t *Timer) Stop() bool {
	if t == nil || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward by dt and runs every due callback in
// due order (ties in scheduling order).
func (s *Scheduler) Advance(dt time.Duration) {
	s.now += dt
	if len(s.pending) == 0 {
		return
	}

	var due []*Timer
	keep := s.pending[:0]
	for _, t := range s.pending {
		switch {
		case t.stopped:
		case t.due <= s.now:
			due = append(due, t)
		default:
			keep = append(keep, t)
		}
	}
	for i := len(keep); i < len(s.pending); i++ {
		s.pending[i] = nil
	}
	s.pending = keep

	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		if t.stopped {
			continue
		}
		t.stopped = true
		t.fn()
	}
}

// Now returns the scheduler's tick clock.
func (s *Scheduler) Now() time.Duration { return s.now }

// Pending returns the number of callbacks not yet fired or stopped.
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.pending {
		if !t.stopped {
			n++
		}
	}
	return n
}
