package haunt

import (
	"time"

	coresys "github.com/hauntess/server/internal/core/system"
	"github.com/hauntess/server/internal/host"
	"github.com/hauntess/server/internal/schema"
	"go.uber.org/zap"
)

// PassStats summarises one convergence pass.
type PassStats struct {
	Visited int
	Bound   int
	Synced  int
	Faults  int
}

// Enforcer re-asserts the master fog on every live pawn once per tick.
// Map logic and the host can revert a pawn's fog between ticks without
// notice, so the pass repeats unconditionally while haunted.
type Enforcer struct {
	c     *Controller
	visit func(host.Player)

	master  host.FogController // valid only during a pass
	pass    PassStats
	last    PassStats
	passes  uint64
	failing bool
}

func newEnforcer(c *Controller) *Enforcer {
	e := &Enforcer{c: c}
	e.visit = e.enforce
	return e
}

func (e *Enforcer) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (e *Enforcer) Update(_ time.Duration) {
	e.Pass()
}

// Pass runs one convergence pass. It is a no-op unless haunted, and a
// no-op for this tick when the master cannot be resolved.
func (e *Enforcer) Pass() {
	if !e.c.state.Haunted() {
		return
	}

	master, err := e.c.registry.GetOrCreateMaster()
	if err != nil {
		if !e.failing {
			e.failing = true
			e.c.reportCreationFailure(err)
		} else {
			e.c.log.Debug("master fog still unavailable", zap.Error(err))
		}
		return
	}
	if e.failing {
		e.failing = false
		e.c.log.Info("master fog recovered", zap.Uint64("handle", master.Handle()))
	}

	e.master = master
	e.pass = PassStats{}
	e.c.host.EachPlayer(e.visit)
	e.master = nil
	e.last = e.pass
	e.passes++
}

// Last returns the stats of the most recent completed pass.
func (e *Enforcer) Last() PassStats { return e.last }

// Passes returns how many passes ran while haunted.
func (e *Enforcer) Passes() uint64 { return e.passes }

func (e *Enforcer) enforce(p host.Player) {
	if !p.IsValid() {
		return
	}
	if p.IsBot() && !e.c.opts.IncludeBots {
		return
	}
	pw := p.Pawn()
	if pw == nil || !pw.IsValid() {
		return
	}
	e.pass.Visited++

	synced, err := converge(pw, e.master)
	if err != nil {
		e.pass.Faults++
		e.c.log.Debug("convergence skipped player", zap.Error(actorFault(p.Slot(), err)))
		return
	}
	e.pass.Bound++
	if synced {
		e.pass.Synced++
	}
}

// converge binds pw to master, re-applies suppression and brings the pawn's
// skybox fog mirror in line with the master. Reports whether the mirror
// needed correcting.
func converge(pw host.Pawn, master host.FogController) (bool, error) {
	if err := pw.AcceptInput(host.InputSetFogController, master, "!activator"); err != nil {
		return false, err
	}
	if err := Suppress(pw); err != nil {
		return false, err
	}
	if pw.FogController() == nil {
		return false, nil
	}
	return schema.Sync(pw, schema.PawnSkyboxFog, pw.SkyboxFog(), master.Fog())
}
