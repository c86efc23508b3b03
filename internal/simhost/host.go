// Package simhost is an in-memory simulation host. It owns the entity
// graph, player sessions, server cvars and the replication dirty set, and
// publishes reload and spawn notifications on the event bus.
package simhost

import (
	"fmt"
	"strings"

	"github.com/hauntess/server/internal/core/ecs"
	"github.com/hauntess/server/internal/core/event"
	"github.com/hauntess/server/internal/data"
	"github.com/hauntess/server/internal/host"
	"github.com/hauntess/server/internal/schema"
	"go.uber.org/zap"
)

// MaxPlayers is the number of player slots.
const MaxPlayers = 64

// DefaultCvars are the host's stock values for the cvars this server toggles.
var DefaultCvars = map[string]string{
	"sv_footsteps":                     "1",
	"mp_friendlyfire":                  "0",
	"ff_damage_reduction_bullets":      "0.33",
	"ff_damage_reduction_grenade":      "0.85",
	"ff_damage_reduction_grenade_self": "1",
	"ff_damage_reduction_other":        "0.4",
	"mp_autokick":                      "1",
	"mp_td_dmgtokick":                  "300",
	"mp_td_dmgtowarn":                  "200",
	"mp_td_spawndmgthreshold":          "50",
	"sv_show_team_equipment":           "1",
	"sv_show_team_equipment_force_on":  "0",
}

// Host implements host.Host. Accessed only from the tick goroutine.
type Host struct {
	world *ecs.World
	ents  *ecs.PtrComponentStore[entityState]
	order []ecs.EntityID

	players []*player
	cvars   map[string]string

	content    *data.ContentTable
	mapEntry   *data.MapEntry
	generation uint32

	bus *event.Bus
	log *zap.Logger

	chat       []string
	commands   []string
	failCreate map[string]bool
	replicated int
}

func New(content *data.ContentTable, bus *event.Bus, log *zap.Logger) *Host {
	w := ecs.NewWorld()
	ents := ecs.NewPtrComponentStore[entityState]()
	w.Stores().Track(ents)

	cvars := make(map[string]string, len(DefaultCvars))
	for k, v := range DefaultCvars {
		cvars[k] = v
	}
	return &Host{
		world:      w,
		ents:       ents,
		players:    make([]*player, MaxPlayers),
		cvars:      cvars,
		content:    content,
		bus:        bus,
		log:        log,
		failCreate: make(map[string]bool),
	}
}

// ── Content generations ─────────────────────────────────────────────

// LoadMap starts a new content generation: every entity is destroyed, the
// map's entities are placed, ContentReloaded is published and every
// connected player respawns.
func (h *Host) LoadMap(name string) error {
	entry := h.content.Get(name)
	if entry == nil {
		return fmt.Errorf("unknown map %q", name)
	}

	for _, id := range h.order {
		h.world.DestroyNow(id)
	}
	h.order = h.order[:0]
	for _, p := range h.players {
		if p != nil {
			p.pawnID = ecs.None
		}
	}

	h.generation++
	h.mapEntry = entry
	for _, ent := range entry.Entities {
		_, st := h.create(ent.Designer)
		st.name = ent.Name
		st.spawned = true
		st.enabled = !ent.Disabled
		if ent.Fog != nil {
			st.fog = ent.Fog.Params()
		}
	}
	h.log.Info("content loaded",
		zap.String("map", name),
		zap.Uint32("generation", h.generation),
		zap.Int("entities", len(entry.Entities)),
	)
	event.Emit(h.bus, event.ContentReloaded{Map: name, Generation: h.generation})

	for _, p := range h.players {
		if p != nil && p.connected {
			h.spawnPawn(p)
		}
	}
	return nil
}

func (h *Host) MapName() string {
	if h.mapEntry == nil {
		return ""
	}
	return h.mapEntry.Name
}

// Generation returns the current content generation (0 before any load).
func (h *Host) Generation() uint32 { return h.generation }

// ── Entities ────────────────────────────────────────────────────────

func (h *Host) create(designer string) (ecs.EntityID, *entityState) {
	id := h.world.CreateEntity()
	st := &entityState{
		designer: designer,
		enabled:  true,
		dirty:    make(map[int]int),
		inputs:   make(map[string]int),
	}
	if designer == schema.DesignerPlayerVisibility {
		st.visibility = 1
	}
	h.ents.Set(id, st)
	h.order = append(h.order, id)
	return id, st
}

func (h *Host) FindAllByDesignerName(designer string) []host.Entity {
	var out []host.Entity
	live := h.order[:0]
	for _, id := range h.order {
		st, ok := h.ents.Get(id)
		if !ok || !h.world.Alive(id) {
			continue
		}
		live = append(live, id)
		if st.designer == designer {
			out = append(out, h.wrap(id, st))
		}
	}
	h.order = live
	return out
}

func (h *Host) CreateByName(designer string) (host.Entity, error) {
	if h.failCreate[designer] {
		return nil, fmt.Errorf("%w: %s", host.ErrCreateFailed, designer)
	}
	id, st := h.create(designer)
	return h.wrap(id, st), nil
}

// SetCreateFailure makes CreateByName fail for designer.
func (h *Host) SetCreateFailure(designer string, fail bool) {
	h.failCreate[designer] = fail
}

// Enabled reports whether e last received an enabling input.
func (h *Host) Enabled(e host.Entity) bool {
	st, ok := h.stateOf(e)
	return ok && st.enabled
}

// Spawned reports whether e finished spawning.
func (h *Host) Spawned(e host.Entity) bool {
	st, ok := h.stateOf(e)
	return ok && st.spawned
}

// InputCount returns how many times e received input.
func (h *Host) InputCount(e host.Entity, input string) int {
	st, ok := h.stateOf(e)
	if !ok {
		return 0
	}
	return st.inputs[input]
}

// DirtyOffsets returns a copy of e's pending replication marks by offset.
func (h *Host) DirtyOffsets(e host.Entity) map[int]int {
	st, ok := h.stateOf(e)
	if !ok {
		return nil
	}
	out := make(map[int]int, len(st.dirty))
	for k, v := range st.dirty {
		out[k] = v
	}
	return out
}

func (h *Host) stateOf(e host.Entity) (*entityState, bool) {
	if e == nil {
		return nil, false
	}
	id := ecs.EntityID(e.Handle())
	if !h.world.Alive(id) {
		return nil, false
	}
	return h.ents.Get(id)
}

// Replicate pushes every marked field to clients and clears the marks.
// Returns the number of field updates sent.
func (h *Host) Replicate() int {
	n := 0
	h.ents.Each(func(_ ecs.EntityID, st *entityState) {
		for off, c := range st.dirty {
			n += c
			delete(st.dirty, off)
		}
	})
	h.replicated += n
	return n
}

// Replicated returns the total field updates sent so far.
func (h *Host) Replicated() int { return h.replicated }

// FlushDestroyed destroys entities queued during the tick.
func (h *Host) FlushDestroyed() {
	h.world.FlushDestroyQueue()
}

// ── Players ─────────────────────────────────────────────────────────

func (h *Host) EachPlayer(fn func(host.Player)) {
	for _, p := range h.players {
		if p != nil && p.connected {
			fn(p)
		}
	}
}

func (h *Host) FindPlayer(slot int) host.Player {
	if slot < 0 || slot >= len(h.players) {
		return nil
	}
	p := h.players[slot]
	if p == nil || !p.connected {
		return nil
	}
	return p
}

// Connect adds a session in the first free slot. It does not spawn.
func (h *Host) Connect(name string, bot bool) (int, error) {
	for slot, p := range h.players {
		if p == nil {
			h.players[slot] = &player{h: h, slot: slot, name: name, bot: bot, connected: true}
			h.log.Info("player connected", zap.Int("slot", slot), zap.String("name", name), zap.Bool("bot", bot))
			return slot, nil
		}
	}
	return -1, fmt.Errorf("server full")
}

// Disconnect removes the session and its pawn immediately.
func (h *Host) Disconnect(slot int) error {
	p, err := h.player(slot)
	if err != nil {
		return err
	}
	h.world.DestroyNow(p.pawnID)
	p.connected = false
	h.players[slot] = nil
	event.Emit(h.bus, event.PlayerDisconnected{Slot: slot})
	return nil
}

// Spawn (re)creates the player's pawn and publishes PlayerSpawned.
func (h *Host) Spawn(slot int) error {
	p, err := h.player(slot)
	if err != nil {
		return err
	}
	if h.mapEntry == nil {
		return fmt.Errorf("no map loaded")
	}
	h.spawnPawn(p)
	return nil
}

func (h *Host) spawnPawn(p *player) {
	h.world.DestroyNow(p.pawnID)
	id, st := h.create(schema.DesignerPlayerPawn)
	st.spawned = true
	st.glowing = true
	st.fog = h.mapEntry.DefaultSkyFog()
	p.pawnID = id
	event.Emit(h.bus, event.PlayerSpawned{Slot: p.slot, Generation: h.generation})
}

// Kill queues the player's pawn for destruction at tick end.
func (h *Host) Kill(slot int) error {
	p, err := h.player(slot)
	if err != nil {
		return err
	}
	if !h.world.Alive(p.pawnID) {
		return fmt.Errorf("slot %d has no pawn", slot)
	}
	h.world.MarkForDestruction(p.pawnID)
	return nil
}

// Stomp plays the part of map logic resetting a pawn: the camera's fog
// controller is cleared and the skybox fog mirror returns to map defaults.
func (h *Host) Stomp(slot int) error {
	p, err := h.player(slot)
	if err != nil {
		return err
	}
	st, ok := h.stateOf(p.Pawn())
	if !ok {
		return fmt.Errorf("slot %d has no pawn", slot)
	}
	st.fogCtrl = ecs.None
	st.fog = h.mapEntry.DefaultSkyFog()
	return nil
}

// ClientCommands returns every client command sent to slot's session.
func (h *Host) ClientCommands(slot int) []string {
	p, err := h.player(slot)
	if err != nil {
		return nil
	}
	return p.clientCmds
}

// GlowBrightness returns slot's last cl_glow_brightness value.
func (h *Host) GlowBrightness(slot int) string {
	p, err := h.player(slot)
	if err != nil {
		return ""
	}
	return p.glowBrightness
}

func (h *Host) player(slot int) (*player, error) {
	if slot < 0 || slot >= len(h.players) || h.players[slot] == nil {
		return nil, fmt.Errorf("no player in slot %d", slot)
	}
	return h.players[slot], nil
}

// ── Server commands ─────────────────────────────────────────────────

// ExecuteCommand runs a server console command: "ent_fire <designer>
// <input> [value]" or "<cvar> <value>".
func (h *Host) ExecuteCommand(cmd string) {
	h.commands = append(h.commands, cmd)
	f := strings.Fields(cmd)
	switch {
	case len(f) == 0:
		return
	case f[0] == "ent_fire" && len(f) >= 3:
		value := strings.Join(f[3:], " ")
		for _, e := range h.FindAllByDesignerName(f[1]) {
			if err := e.AcceptInput(f[2], nil, value); err != nil {
				h.log.Debug("ent_fire input failed", zap.String("cmd", cmd), zap.Error(err))
			}
		}
	case len(f) == 2:
		h.cvars[f[0]] = f[1]
	default:
		h.log.Debug("ignored server command", zap.String("cmd", cmd))
	}
}

// Cvar returns the current value of name.
func (h *Host) Cvar(name string) string { return h.cvars[name] }

// Commands returns every server command executed so far.
func (h *Host) Commands() []string { return h.commands }

func (h *Host) PrintToChatAll(msg string) {
	h.chat = append(h.chat, msg)
	h.log.Info("chat", zap.String("msg", stripColors(msg)))
}

// Chat returns every broadcast message.
func (h *Host) Chat() []string { return h.chat }

// stripColors drops the host's single-byte chat colour codes.
func stripColors(msg string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x10 {
			return -1
		}
		return r
	}, msg)
}
