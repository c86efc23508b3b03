package simhost

import (
	"github.com/hauntess/server/internal/core/ecs"
	"github.com/hauntess/server/internal/host"
	"github.com/hauntess/server/internal/schema"
)

// entityState is the host-side storage behind every handle.
type entityState struct {
	designer string
	name     string
	spawned  bool
	enabled  bool

	fog        schema.FogParams // m_fog for controllers, m_skybox3d.fog for pawns
	flags      uint32
	glowing    bool
	fogCtrl    ecs.EntityID // None when unbound
	visibility float32

	dirty  map[int]int
	inputs map[string]int
}

// entity is a generational handle. It never holds state directly, so a
// handle from an earlier generation fails IsValid instead of reading garbage.
type entity struct {
	h  *Host
	id ecs.EntityID
}

func (e entity) state() (*entityState, error) {
	if e.h == nil || !e.h.world.Alive(e.id) {
		return nil, host.ErrInvalidHandle
	}
	st, ok := e.h.ents.Get(e.id)
	if !ok {
		return nil, host.ErrInvalidHandle
	}
	return st, nil
}

func (e entity) Handle() uint64 { return uint64(e.id) }

func (e entity) IsValid() bool {
	_, err := e.state()
	return err == nil
}

func (e entity) Enabled() bool {
	st, err := e.state()
	return err == nil && st.enabled
}

func (e entity) DesignerName() string {
	st, err := e.state()
	if err != nil {
		return ""
	}
	return st.designer
}

func (e entity) Name() string {
	st, err := e.state()
	if err != nil {
		return ""
	}
	return st.name
}

func (e entity) SetName(name string) error {
	st, err := e.state()
	if err != nil {
		return err
	}
	st.name = name
	return nil
}

func (e entity) DispatchSpawn() error {
	st, err := e.state()
	if err != nil {
		return err
	}
	st.spawned = true
	return nil
}

func (e entity) AcceptInput(input string, activator host.Entity, value string) error {
	st, err := e.state()
	if err != nil {
		return err
	}
	st.inputs[input]++

	switch input {
	case host.InputSetFogController:
		if st.designer != schema.DesignerPlayerPawn {
			return nil
		}
		if activator == nil || !activator.IsValid() {
			return host.ErrInvalidHandle
		}
		if activator.DesignerName() != schema.DesignerFogController {
			return nil
		}
		st.fogCtrl = ecs.EntityID(activator.Handle())
	case host.InputDisable, host.InputTurnOff:
		st.enabled = false
	case host.InputEnable, host.InputTurnOn:
		st.enabled = true
	}
	return nil
}

func (e entity) SetStateChanged(class, field string, extraOffset int) error {
	st, err := e.state()
	if err != nil {
		return err
	}
	base, err := schema.Offset(class, field)
	if err != nil {
		return err
	}
	st.dirty[base+extraOffset]++
	return nil
}

type fogController struct{ entity }

func (f fogController) Fog() *schema.FogParams {
	st, err := f.state()
	if err != nil {
		return &schema.FogParams{}
	}
	return &st.fog
}

type playerVisibility struct{ entity }

func (v playerVisibility) FogMaxDensityMultiplier() float32 {
	st, err := v.state()
	if err != nil {
		return 0
	}
	return st.visibility
}

func (v playerVisibility) SetFogMaxDensityMultiplier(m float32) error {
	st, err := v.state()
	if err != nil {
		return err
	}
	st.visibility = m
	return nil
}

type pawn struct{ entity }

func (p pawn) Flags() (uint32, error) {
	st, err := p.state()
	if err != nil {
		return 0, err
	}
	return st.flags, nil
}

func (p pawn) SetFlags(flags uint32) error {
	st, err := p.state()
	if err != nil {
		return err
	}
	st.flags = flags
	return nil
}

func (p pawn) Glowing() (bool, error) {
	st, err := p.state()
	if err != nil {
		return false, err
	}
	return st.glowing, nil
}

func (p pawn) SetGlowing(on bool) error {
	st, err := p.state()
	if err != nil {
		return err
	}
	st.glowing = on
	return nil
}

func (p pawn) SkyboxFog() *schema.FogParams {
	st, err := p.state()
	if err != nil {
		return &schema.FogParams{}
	}
	return &st.fog
}

func (p pawn) FogController() host.FogController {
	st, err := p.state()
	if err != nil || st.fogCtrl.IsZero() {
		return nil
	}
	if !p.h.world.Alive(st.fogCtrl) {
		return nil
	}
	return fogController{entity{h: p.h, id: st.fogCtrl}}
}

// wrap returns the typed handle for id.
func (h *Host) wrap(id ecs.EntityID, st *entityState) host.Entity {
	e := entity{h: h, id: id}
	switch st.designer {
	case schema.DesignerFogController:
		return fogController{e}
	case schema.DesignerPlayerPawn:
		return pawn{e}
	case schema.DesignerPlayerVisibility:
		return playerVisibility{e}
	}
	return e
}
