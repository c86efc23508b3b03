package simhost

import (
	"strings"

	"github.com/hauntess/server/internal/core/ecs"
	"github.com/hauntess/server/internal/host"
)

// player is a connected session. The host keeps one per occupied slot.
type player struct {
	h         *Host
	slot      int
	name      string
	bot       bool
	connected bool

	pawnID ecs.EntityID // None until the first spawn

	clientCmds     []string
	glowBrightness string
}

func (p *player) Slot() int          { return p.slot }
func (p *player) PlayerName() string { return p.name }
func (p *player) IsBot() bool        { return p.bot }

func (p *player) IsValid() bool {
	return p.connected && p.slot < len(p.h.players) && p.h.players[p.slot] == p
}

func (p *player) Pawn() host.Pawn {
	if !p.h.world.Alive(p.pawnID) {
		return nil
	}
	return pawn{entity{h: p.h, id: p.pawnID}}
}

func (p *player) ExecuteClientCommand(cmd string) error {
	if !p.IsValid() {
		return host.ErrInvalidHandle
	}
	p.clientCmds = append(p.clientCmds, cmd)
	if f := strings.Fields(cmd); len(f) == 2 && f[0] == "cl_glow_brightness" {
		p.glowBrightness = f[1]
	}
	return nil
}
