package haunt

import (
	"errors"
	"fmt"
)

var (
	// ErrCreationFailed means the master fog controller could neither be
	// found nor created. Surfaced to the operator; retried next tick.
	ErrCreationFailed = errors.New("haunt: master fog controller unavailable")
	// ErrStaleReference means a cached handle died with its content
	// generation. Recovered by re-resolving; never surfaced.
	ErrStaleReference = errors.New("haunt: stale reference")
	// ErrTransientActor means one player's body was mid-transition. The
	// player is skipped for this pass only.
	ErrTransientActor = errors.New("haunt: actor in transition")
)

func actorFault(slot int, err error) error {
	return fmt.Errorf("%w: slot %d: %w", ErrTransientActor, slot, err)
}
