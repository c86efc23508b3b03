package system

import (
	"time"

	coresys "github.com/hauntess/server/internal/core/system"
	"go.uber.org/zap"
)

type replicator interface {
	Replicate() int
}

// ReplicationSystem ships the fields marked changed this tick. Phase Output.
type ReplicationSystem struct {
	host replicator
	log  *zap.Logger
}

func NewReplicationSystem(h replicator, log *zap.Logger) *ReplicationSystem {
	return &ReplicationSystem{host: h, log: log}
}

func (s *ReplicationSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *ReplicationSystem) Update(_ time.Duration) {
	if n := s.host.Replicate(); n > 0 {
		s.log.Debug("replicated", zap.Int("fields", n))
	}
}
