package system

import (
	"time"

	"github.com/hauntess/server/internal/core/event"
	coresys "github.com/hauntess/server/internal/core/system"
)

// EventSystem delivers host notifications emitted since the previous
// dispatch. Phase PreUpdate, so commands handled during Input are seen
// in the same tick.
type EventSystem struct {
	bus *event.Bus
}

func NewEventSystem(bus *event.Bus) *EventSystem {
	return &EventSystem{bus: bus}
}

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
