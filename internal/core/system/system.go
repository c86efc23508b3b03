package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain operator console lines
	PhasePreUpdate               // 1: dispatch last tick's host notifications
	PhaseUpdate                  // 2: deferred callbacks
	PhasePostUpdate              // 3: convergence pass
	PhaseOutput                  // 4: replication flush + console replies
	PhaseCleanup                 // 5: destroy queued entities
)

// System is the interface every per-tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
