package haunt

import (
	"testing"

	"github.com/hauntess/server/internal/core/event"
	"github.com/hauntess/server/internal/core/timer"
	"github.com/hauntess/server/internal/data"
	"github.com/hauntess/server/internal/host"
	"github.com/hauntess/server/internal/schema"
	"github.com/hauntess/server/internal/simhost"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const fixtureMaps = `
- name: de_fog
  sky_fog: {enable: true, color: [100, 110, 120], end: 5000, max_density: 0.2, exponent: 1}
  entities:
    - designer: env_gradient_fog
    - designer: env_cubemap_fog
    - designer: post_processing_volume
    - designer: light_environment
    - designer: env_sky_light
    - designer: env_fog_controller
      name: map_fog
      fog: {enable: true, color: [90, 90, 90], end: 7000, max_density: 0.5, exponent: 1}
- name: de_shuttered
  entities:
    - designer: post_processing_volume
      name: pp_on
    - designer: post_processing_volume
      name: pp_off
      disabled: true
    - designer: env_fog_controller
      name: fog_off
      disabled: true
      fog: {enable: true, color: [50, 50, 50], end: 3000, max_density: 0.3, exponent: 1}
- name: de_leftover
  entities:
    - designer: env_fog_controller
      name: Hauntess_Master_Fog
      fog: {enable: false, color: [255, 255, 255], end: 9999, max_density: 0.1, exponent: 3}
`

type memJournal struct {
	kinds []string
}

func (j *memJournal) Record(kind, _, _ string) { j.kinds = append(j.kinds, kind) }

type fixture struct {
	t       *testing.T
	h       *simhost.Host
	bus     *event.Bus
	sched   *timer.Scheduler
	c       *Controller
	journal *memJournal
	logs    *observer.ObservedLogs
}

func newFixture(t *testing.T, opts ...func(*Options)) *fixture {
	return newFixtureWithHost(t, nil, opts...)
}

// newFixtureWithHost lets a test wrap the in-memory host before the
// controller sees it.
func newFixtureWithHost(t *testing.T, wrap func(*simhost.Host) host.Host, opts ...func(*Options)) *fixture {
	t.Helper()
	table, err := data.ParseContentTable([]byte(fixtureMaps))
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	bus := event.NewBus()
	h := simhost.New(table, bus, zap.NewNop())
	core, logs := observer.New(zapcore.DebugLevel)

	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	var hh host.Host = h
	if wrap != nil {
		hh = wrap(h)
	}
	f := &fixture{
		t:       t,
		h:       h,
		bus:     bus,
		sched:   timer.NewScheduler(),
		journal: &memJournal{},
		logs:    logs,
	}
	f.c = NewController(hh, f.sched, f.journal, o, zap.New(core))
	f.c.Subscribe(bus)
	return f
}

func (f *fixture) load(name string) {
	f.t.Helper()
	if err := f.h.LoadMap(name); err != nil {
		f.t.Fatalf("load %s: %v", name, err)
	}
	f.dispatch()
}

// join connects a human player and spawns them.
func (f *fixture) join(name string) int {
	f.t.Helper()
	slot, err := f.h.Connect(name, false)
	if err != nil {
		f.t.Fatal(err)
	}
	if err := f.h.Spawn(slot); err != nil {
		f.t.Fatal(err)
	}
	return slot
}

func (f *fixture) dispatch() {
	f.bus.SwapBuffers()
	f.bus.DispatchAll()
}

func (f *fixture) pawn(slot int) host.Pawn {
	f.t.Helper()
	p := f.h.FindPlayer(slot)
	if p == nil {
		f.t.Fatalf("no player in slot %d", slot)
	}
	pw := p.Pawn()
	if pw == nil {
		f.t.Fatalf("slot %d has no pawn", slot)
	}
	return pw
}

func (f *fixture) masters() int {
	n := 0
	for _, e := range f.h.FindAllByDesignerName(schema.DesignerFogController) {
		if e.IsValid() && e.Name() == f.c.Registry().Name() {
			n++
		}
	}
	return n
}

func (f *fixture) countChat(msg string) int {
	n := 0
	for _, m := range f.h.Chat() {
		if m == msg {
			n++
		}
	}
	return n
}

// named returns the live entity of designer called name.
func (f *fixture) named(designer, name string) host.Entity {
	f.t.Helper()
	for _, e := range f.h.FindAllByDesignerName(designer) {
		if e.Name() == name {
			return e
		}
	}
	f.t.Fatalf("no %s named %q", designer, name)
	return nil
}

func boundTo(pw host.Pawn, m host.FogController) bool {
	got := pw.FogController()
	return got != nil && m != nil && got.Handle() == m.Handle()
}
