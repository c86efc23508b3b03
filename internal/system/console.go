package system

import (
	"time"

	coresys "github.com/hauntess/server/internal/core/system"
	"github.com/hauntess/server/internal/handler"
	"github.com/hauntess/server/internal/net"
	"go.uber.org/zap"
)

// ConsoleSystem adopts new console sessions and runs their queued command
// lines through the handler, at most maxPerTick lines per session per tick.
// Phase Input.
type ConsoleSystem struct {
	incoming   <-chan *net.Session
	store      *net.SessionStore
	deps       *handler.Deps
	maxPerTick int
	log        *zap.Logger
}

func NewConsoleSystem(incoming <-chan *net.Session, store *net.SessionStore, deps *handler.Deps, maxPerTick int, log *zap.Logger) *ConsoleSystem {
	return &ConsoleSystem{
		incoming:   incoming,
		store:      store,
		deps:       deps,
		maxPerTick: maxPerTick,
		log:        log,
	}
}

func (s *ConsoleSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *ConsoleSystem) Update(_ time.Duration) {
	s.accept()

	s.store.ForEach(func(sess *net.Session) {
		s.drain(sess)
		if sess.IsClosed() {
			s.log.Info("console disconnected", zap.Uint64("session", sess.ID), zap.String("ip", sess.IP))
			s.store.Remove(sess.ID)
		}
	})
}

// Adopt registers a session created outside the accept loop.
func (s *ConsoleSystem) Adopt(sess *net.Session) {
	s.store.Add(sess)
}

func (s *ConsoleSystem) accept() {
	if s.incoming == nil {
		return
	}
	for {
		select {
		case sess := <-s.incoming:
			s.store.Add(sess)
		default:
			return
		}
	}
}

// drain also runs lines that arrived just before a session closed.
func (s *ConsoleSystem) drain(sess *net.Session) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case line := <-sess.InQueue:
			handler.HandleCommand(sess, line, s.deps)
		default:
			return
		}
	}
}

// OutputSystem flushes buffered console replies once per tick. Phase Output.
type OutputSystem struct {
	store *net.SessionStore
}

func NewOutputSystem(store *net.SessionStore) *OutputSystem {
	return &OutputSystem{store: store}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ time.Duration) {
	s.store.ForEach(func(sess *net.Session) {
		sess.FlushOutput()
	})
}
