package system

import (
	"time"

	coresys "github.com/hauntess/server/internal/core/system"
)

type destroyFlusher interface {
	FlushDestroyed()
}

// CleanupSystem flushes the host's deferred entity destruction queue at
// tick end. Phase Cleanup.
type CleanupSystem struct {
	host destroyFlusher
}

func NewCleanupSystem(h destroyFlusher) *CleanupSystem {
	return &CleanupSystem{host: h}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.host.FlushDestroyed()
}
