// Package host defines the object model of the simulation process this
// server runs inside. Every call happens on the host's tick goroutine.
package host

import (
	"errors"

	"github.com/hauntess/server/internal/schema"
)

var (
	// ErrInvalidHandle means the entity was destroyed or belongs to an
	// earlier content generation.
	ErrInvalidHandle = errors.New("host: invalid entity handle")
	// ErrCreateFailed means the host refused to create an entity.
	ErrCreateFailed = errors.New("host: entity creation failed")
)

// Inputs understood by host entities.
const (
	InputSetFogController = "SetFogController"
	InputDisable          = "Disable"
	InputEnable           = "Enable"
	InputTurnOff          = "TurnOff"
	InputTurnOn           = "TurnOn"
)

// Entity is a handle to a host-owned object. Handles may go stale at any
// time between ticks; IsValid must be checked before use.
type Entity interface {
	schema.StateChanger
	Handle() uint64
	DesignerName() string
	Name() string
	SetName(name string) error
	IsValid() bool
	Enabled() bool // false after Disable/TurnOff or when placed disabled
	DispatchSpawn() error
	AcceptInput(input string, activator Entity, value string) error
}

// FogController is an env_fog_controller.
type FogController interface {
	Entity
	Fog() *schema.FogParams
}

// PlayerVisibility is an env_player_visibility.
type PlayerVisibility interface {
	Entity
	FogMaxDensityMultiplier() float32
	SetFogMaxDensityMultiplier(v float32) error
}

// Pawn is a player's in-world body.
type Pawn interface {
	Entity
	Flags() (uint32, error)
	SetFlags(flags uint32) error
	Glowing() (bool, error)
	SetGlowing(on bool) error
	// SkyboxFog is the pawn's local copy of the fog it renders with.
	SkyboxFog() *schema.FogParams
	// FogController is the controller the pawn's camera points at, or nil.
	FogController() FogController
}

// Player is a connected session. Pawn is nil until the player spawns.
type Player interface {
	Slot() int
	PlayerName() string
	IsValid() bool
	IsBot() bool
	Pawn() Pawn
	ExecuteClientCommand(cmd string) error
}

// Host is the simulation process.
type Host interface {
	// EachPlayer visits the live player set as of this call.
	EachPlayer(fn func(Player))
	FindPlayer(slot int) Player
	FindAllByDesignerName(designer string) []Entity
	CreateByName(designer string) (Entity, error)
	ExecuteCommand(cmd string)
	PrintToChatAll(msg string)
	MapName() string
}
