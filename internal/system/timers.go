package system

import (
	"time"

	coresys "github.com/hauntess/server/internal/core/system"
	"github.com/hauntess/server/internal/core/timer"
)

// TimerSystem advances the deferred-callback scheduler by the tick delta.
// Phase Update.
type TimerSystem struct {
	sched *timer.Scheduler
}

func NewTimerSystem(sched *timer.Scheduler) *TimerSystem {
	return &TimerSystem{sched: sched}
}

func (s *TimerSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *TimerSystem) Update(dt time.Duration) {
	s.sched.Advance(dt)
}
