package haunt

import (
	"fmt"
	"time"

	"github.com/hauntess/server/internal/core/event"
	"github.com/hauntess/server/internal/core/timer"
	"github.com/hauntess/server/internal/host"
	"github.com/hauntess/server/internal/schema"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Options configures the controller.
type Options struct {
	MasterName  string
	ReloadDelay time.Duration // wait after a content reload before re-applying
	SpawnDelay  time.Duration // wait after a spawn before priming the pawn
	IncludeBots bool          // whether the per-tick pass also covers bots
	Visibility  float32       // env_player_visibility multiplier while haunted
	Preset      schema.FogParams
}

// HauntedPreset is the stock master fog: near black, opaque from 350 units.
var HauntedPreset = schema.FogParams{
	Enable:       true,
	ColorPrimary: schema.Color{R: 2, G: 2, B: 4, A: 255},
	Start:        0,
	End:          350,
	MaxDensity:   1,
	Exponent:     1.5,
}

func DefaultOptions() Options {
	return Options{
		MasterName:  "Hauntess_Master_Fog",
		ReloadDelay: 2 * time.Second,
		SpawnDelay:  300 * time.Millisecond,
		Visibility:  1,
		Preset:      HauntedPreset,
	}
}

// Controller sequences activation and deactivation and reacts to host
// notifications. All methods run on the tick goroutine.
type Controller struct {
	host     host.Host
	state    *State
	registry *Registry
	enforcer *Enforcer
	sched    *timer.Scheduler
	journal  Journal
	log      *zap.Logger
	opts     Options

	reapply     *timer.Timer
	neutralized []host.Entity // competing entities this controller disabled
	darkened    []host.Entity // map fog controllers this controller turned off
	activations int
}

func NewController(h host.Host, sched *timer.Scheduler, journal Journal, opts Options, log *zap.Logger) *Controller {
	if journal == nil {
		journal = NopJournal{}
	}
	st := NewState()
	c := &Controller{
		host:     h,
		state:    st,
		registry: NewRegistry(h, st, opts.MasterName, opts.Preset, log),
		sched:    sched,
		journal:  journal,
		log:      log,
		opts:     opts,
	}
	c.enforcer = newEnforcer(c)
	return c
}

// Subscribe wires the controller to host notifications.
func (c *Controller) Subscribe(bus *event.Bus) {
	event.Subscribe(bus, c.OnContentReloaded)
	event.Subscribe(bus, c.OnPlayerSpawned)
}

func (c *Controller) State() *State        { return c.state }
func (c *Controller) Registry() *Registry  { return c.registry }
func (c *Controller) Enforcer() *Enforcer  { return c.enforcer }
func (c *Controller) ReapplyPending() bool { return c.reapply != nil }
func (c *Controller) Activations() int     { return c.activations }

// Activate enters ModeHaunted and applies the atmosphere once. Calling it
// while already haunted re-applies. If the master cannot be resolved the
// sequence stops before touching anything else and the previous mode is
// kept.
func (c *Controller) Activate() error {
	prev := c.state.mode
	c.state.mode = ModeHaunted
	if err := c.apply(); err != nil {
		c.state.mode = prev
		return err
	}
	c.reapply.Stop()
	c.reapply = nil
	c.journal.Record(KindActivate, c.host.MapName(), "")
	return nil
}

// Deactivate returns to ModeNormal and restores every stock value.
// Safe to call in any mode.
func (c *Controller) Deactivate() {
	c.state.mode = ModeNormal
	c.reapply.Stop()
	c.reapply = nil

	for _, cmd := range RestoreCommands {
		c.host.ExecuteCommand(cmd)
	}

	var errs error
	errs = multierr.Append(errs, restore(c.neutralized, host.InputEnable))
	errs = multierr.Append(errs, restore(c.darkened, host.InputTurnOn))
	c.neutralized = c.neutralized[:0]
	c.darkened = c.darkened[:0]

	restored := 0
	c.host.EachPlayer(func(p host.Player) {
		if !p.IsValid() {
			return
		}
		if err := p.ExecuteClientCommand(glowOnCommand); err != nil {
			c.log.Debug("glow restore skipped", zap.Error(actorFault(p.Slot(), err)))
		}
		pw := p.Pawn()
		if pw == nil || !pw.IsValid() {
			return
		}
		if err := Unsuppress(pw); err != nil {
			c.log.Debug("unsuppress skipped", zap.Error(actorFault(p.Slot(), err)))
			return
		}
		restored++
	})

	if m := c.registry.Cached(); m != nil {
		errs = multierr.Append(errs, m.AcceptInput(host.InputTurnOff, nil, ""))
	}
	errs = multierr.Append(errs, c.setVisibility(1))
	if errs != nil {
		c.log.Warn("deactivation partially failed", zap.Error(errs))
	}

	c.log.Info("haunt deactivated", zap.Int("players", restored))
	c.host.PrintToChatAll(chatDeactivated)
	c.journal.Record(KindDeactivate, c.host.MapName(), fmt.Sprintf("players=%d", restored))
}

// OnContentReloaded drops every cached handle and, while haunted, schedules
// a fresh apply for the new generation.
func (c *Controller) OnContentReloaded(ev event.ContentReloaded) {
	c.state.invalidate(ev.Generation)
	c.neutralized = c.neutralized[:0]
	c.darkened = c.darkened[:0]
	c.reapply.Stop()
	c.reapply = nil

	c.log.Info("content reloaded, master fog reset",
		zap.String("map", ev.Map),
		zap.Uint32("generation", ev.Generation),
		zap.Stringer("mode", c.state.mode),
	)
	if !c.state.Haunted() {
		return
	}
	c.journal.Record(KindReload, ev.Map, fmt.Sprintf("generation=%d", ev.Generation))
	c.scheduleReapply()
}

func (c *Controller) scheduleReapply() {
	c.reapply = c.sched.After(c.opts.ReloadDelay, c.reapplyAfterReload)
}

func (c *Controller) reapplyAfterReload() {
	c.reapply = nil
	if !c.state.Haunted() {
		return
	}
	if err := c.apply(); err != nil {
		c.scheduleReapply()
	}
}

// OnPlayerSpawned primes a new pawn after a short delay instead of waiting
// for the next pass to find it.
func (c *Controller) OnPlayerSpawned(ev event.PlayerSpawned) {
	if !c.state.Haunted() {
		return
	}
	slot := ev.Slot
	c.sched.After(c.opts.SpawnDelay, func() { c.primeSpawned(slot) })
}

// primeSpawned may run after the player left, respawned again or the map
// changed, so it re-resolves everything from the slot.
func (c *Controller) primeSpawned(slot int) {
	if !c.state.Haunted() {
		return
	}
	p := c.host.FindPlayer(slot)
	if p == nil || !p.IsValid() {
		return
	}
	if err := p.ExecuteClientCommand(glowOffCommand); err != nil {
		c.log.Debug("spawn glow skipped", zap.Error(actorFault(slot, err)))
	}
	pw := p.Pawn()
	if pw == nil || !pw.IsValid() {
		return
	}
	if err := Suppress(pw); err != nil {
		c.log.Debug("spawn suppress skipped", zap.Error(actorFault(slot, err)))
		return
	}
	if m := c.registry.Cached(); m != nil {
		if err := pw.AcceptInput(host.InputSetFogController, m, "!activator"); err != nil {
			c.log.Debug("spawn bind skipped", zap.Error(actorFault(slot, err)))
		}
	}
}

// apply is the one-shot activation sequence.
func (c *Controller) apply() error {
	master, err := c.registry.GetOrCreateMaster()
	if err != nil {
		c.reportCreationFailure(err)
		c.enforcer.failing = true
		return err
	}

	neutralized := c.neutralize()
	c.rememberLitFog(master)

	for _, cmd := range ActivateCommands {
		c.host.ExecuteCommand(cmd)
	}
	// The command list turns off every fog controller, the master included.
	var errs error
	errs = multierr.Append(errs, master.AcceptInput(host.InputTurnOn, nil, ""))
	errs = multierr.Append(errs, c.setVisibility(c.opts.Visibility))
	if errs != nil {
		c.log.Warn("activation partially failed", zap.Error(errs))
	}

	primed := 0
	c.host.EachPlayer(func(p host.Player) {
		if !p.IsValid() {
			return
		}
		if err := p.ExecuteClientCommand(glowOffCommand); err != nil {
			c.log.Debug("glow suppress skipped", zap.Error(actorFault(p.Slot(), err)))
		}
		pw := p.Pawn()
		if pw == nil || !pw.IsValid() {
			return
		}
		if _, err := converge(pw, master); err != nil {
			c.log.Debug("prime skipped", zap.Error(actorFault(p.Slot(), err)))
			return
		}
		primed++
	})

	c.activations++
	c.enforcer.failing = false
	c.log.Info("haunt applied",
		zap.String("map", c.host.MapName()),
		zap.Uint64("master", master.Handle()),
		zap.Int("neutralized", neutralized),
		zap.Int("players", primed),
	)
	c.host.PrintToChatAll(chatActivated)
	return nil
}

// neutralize disables map entities that set their own atmosphere.
// Entities the map already had disabled are left alone and not recorded,
// so Deactivate does not switch them on. Returns how many were disabled.
func (c *Controller) neutralize() int {
	var errs error
	n := 0
	for _, designer := range competingDesigners {
		for _, e := range c.host.FindAllByDesignerName(designer) {
			if !e.IsValid() || !e.Enabled() {
				continue
			}
			if err := e.AcceptInput(host.InputDisable, nil, ""); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s %d: %w", designer, e.Handle(), err))
				continue
			}
			c.neutralized = remember(c.neutralized, e)
			n++
		}
	}
	if errs != nil {
		c.log.Warn("some map atmosphere entities could not be disabled", zap.Error(errs))
	}
	return n
}

// rememberLitFog records the map's own fog controllers that are on before
// the activation commands turn every fog controller off.
func (c *Controller) rememberLitFog(master host.FogController) {
	for _, e := range c.host.FindAllByDesignerName(schema.DesignerFogController) {
		if e.Handle() == master.Handle() || !e.IsValid() || !e.Enabled() {
			continue
		}
		c.darkened = remember(c.darkened, e)
	}
}

func remember(list []host.Entity, e host.Entity) []host.Entity {
	for _, x := range list {
		if x.Handle() == e.Handle() {
			return list
		}
	}
	return append(list, e)
}

// restore sends input to every still-valid entity in list.
func restore(list []host.Entity, input string) error {
	var errs error
	for _, e := range list {
		if !e.IsValid() {
			continue
		}
		if err := e.AcceptInput(input, nil, ""); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s %d: %w", e.DesignerName(), e.Handle(), err))
		}
	}
	return errs
}

// setVisibility finds or creates env_player_visibility and sets its fog
// density multiplier.
func (c *Controller) setVisibility(v float32) error {
	var vis host.PlayerVisibility
	for _, e := range c.host.FindAllByDesignerName(schema.DesignerPlayerVisibility) {
		if pv, ok := e.(host.PlayerVisibility); ok && pv.IsValid() {
			vis = pv
			break
		}
	}
	if vis == nil {
		e, err := c.host.CreateByName(schema.DesignerPlayerVisibility)
		if err != nil {
			return fmt.Errorf("create player visibility: %w", err)
		}
		pv, ok := e.(host.PlayerVisibility)
		if !ok {
			return fmt.Errorf("host created %T, not player visibility", e)
		}
		if err := pv.DispatchSpawn(); err != nil {
			return fmt.Errorf("spawn player visibility: %w", err)
		}
		vis = pv
	}
	if err := vis.SetFogMaxDensityMultiplier(v); err != nil {
		return err
	}
	return vis.SetStateChanged(schema.ClassPlayerVisibility, schema.FieldFogMaxDensityMultiplier, 0)
}

func (c *Controller) reportCreationFailure(err error) {
	c.log.Error("master fog unavailable", zap.String("map", c.host.MapName()), zap.Error(err))
	c.host.PrintToChatAll(chatNoMaster)
	c.journal.Record(KindCreationFailed, c.host.MapName(), err.Error())
}

// Status is a point-in-time snapshot for operators.
type Status struct {
	Mode           Mode
	Map            string
	Generation     uint32
	MasterCached   bool
	MasterHandle   uint64
	MasterValid    bool
	ReapplyPending bool
	Activations    int
	Passes         uint64
	LastPass       PassStats
}

func (c *Controller) Status() Status {
	s := Status{
		Mode:           c.state.mode,
		Map:            c.host.MapName(),
		Generation:     c.state.generation,
		ReapplyPending: c.reapply != nil,
		Activations:    c.activations,
		Passes:         c.enforcer.passes,
		LastPass:       c.enforcer.last,
	}
	if m := c.state.master; m != nil {
		s.MasterCached = true
		s.MasterHandle = m.Handle()
		s.MasterValid = m.IsValid()
	}
	return s
}
