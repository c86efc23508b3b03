package haunt

import "github.com/hauntess/server/internal/host"

// Mode is the activation state.
type Mode int32

const (
	ModeNormal Mode = iota
	ModeHaunted
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeHaunted:
		return "haunted"
	}
	return "unknown"
}

// State is the process-scoped context shared by the registry, the
// enforcer and the controller. It lives for the life of the process and is
// never persisted, so a restart always begins in ModeNormal.
type State struct {
	mode       Mode
	master     host.FogController
	generation uint32
}

func NewState() *State {
	return &State{mode: ModeNormal}
}

func (s *State) Mode() Mode    { return s.mode }
func (s *State) Haunted() bool { return s.mode == ModeHaunted }

// Master returns the cached master as-is. It may be stale; callers that
// need a live handle go through Registry.
func (s *State) Master() host.FogController { return s.master }

// Generation returns the last content generation seen.
func (s *State) Generation() uint32 { return s.generation }

// invalidate drops every cached handle for a new content generation.
func (s *State) invalidate(generation uint32) {
	s.master = nil
	s.generation = generation
}
