package haunt

import (
	"errors"
	"fmt"

	"github.com/hauntess/server/internal/host"
	"github.com/hauntess/server/internal/schema"
	"go.uber.org/zap"
)

// Registry finds or creates the one master fog controller per content
// generation. Lookup by name always precedes creation, so a generation
// never holds two controllers with the reserved name.
type Registry struct {
	host    host.Host
	state   *State
	name    string
	preset  schema.FogParams
	log     *zap.Logger
	created int
	adopted int
}

func NewRegistry(h host.Host, st *State, name string, preset schema.FogParams, log *zap.Logger) *Registry {
	return &Registry{
		host:   h,
		state:  st,
		name:   name,
		preset: preset,
		log:    log,
	}
}

// Name returns the reserved master name.
func (r *Registry) Name() string { return r.name }

// Preset returns the fog values written to the master.
func (r *Registry) Preset() schema.FogParams { return r.preset }

// Created and Adopted count how often the master was created or found.
func (r *Registry) Created() int { return r.created }
func (r *Registry) Adopted() int { return r.adopted }

// Cached returns the cached master if it is still alive, dropping it
// otherwise. It never searches or creates.
func (r *Registry) Cached() host.FogController {
	m := r.state.master
	if m == nil {
		return nil
	}
	if !m.IsValid() {
		r.log.Debug("cached master fog is stale", zap.Error(ErrStaleReference))
		r.state.master = nil
		return nil
	}
	return m
}

// GetOrCreateMaster returns a live master, adopting an existing controller
// with the reserved name or creating one. Errors wrap ErrCreationFailed.
func (r *Registry) GetOrCreateMaster() (host.FogController, error) {
	if m := r.Cached(); m != nil {
		return m, nil
	}

	for _, e := range r.host.FindAllByDesignerName(schema.DesignerFogController) {
		fc, ok := e.(host.FogController)
		if !ok || !fc.IsValid() || fc.Name() != r.name {
			continue
		}
		if err := r.configure(fc); err != nil {
			if errors.Is(err, host.ErrInvalidHandle) {
				continue
			}
			return nil, fmt.Errorf("%w: configure existing: %w", ErrCreationFailed, err)
		}
		r.state.master = fc
		r.adopted++
		r.log.Info("adopted master fog", zap.Uint64("handle", fc.Handle()))
		return fc, nil
	}

	fc, err := r.create()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreationFailed, err)
	}
	r.state.master = fc
	r.created++
	r.log.Info("created master fog", zap.Uint64("handle", fc.Handle()), zap.String("name", r.name))
	return fc, nil
}

func (r *Registry) create() (host.FogController, error) {
	e, err := r.host.CreateByName(schema.DesignerFogController)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, host.ErrCreateFailed
	}
	fc, ok := e.(host.FogController)
	if !ok {
		return nil, fmt.Errorf("host created %T, not a fog controller", e)
	}
	if err := fc.SetName(r.name); err != nil {
		return nil, err
	}
	if err := fc.DispatchSpawn(); err != nil {
		return nil, err
	}
	if err := r.configure(fc); err != nil {
		return nil, err
	}
	return fc, nil
}

// configure writes the preset into m_fog and marks every member.
func (r *Registry) configure(fc host.FogController) error {
	return schema.Write(fc, schema.ControllerFog, fc.Fog(), r.preset)
}
