package handler

import (
	"fmt"
	"strings"
	"testing"

	"github.com/hauntess/server/internal/core/event"
	"github.com/hauntess/server/internal/core/timer"
	"github.com/hauntess/server/internal/data"
	"github.com/hauntess/server/internal/haunt"
	"github.com/hauntess/server/internal/schema"
	"github.com/hauntess/server/internal/simhost"
	"go.uber.org/zap"
)

const testMaps = `
- name: de_fog
  entities:
    - designer: env_gradient_fog
    - designer: env_fog_controller
      name: map_fog
- name: de_mist
  entities:
    - designer: post_processing_volume
- name: de_empty
`

type recorder struct {
	lines []string
}

func (r *recorder) Send(line string) { r.lines = append(r.lines, line) }
func (r *recorder) Reply(format string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func (r *recorder) contains(sub string) bool {
	for _, l := range r.lines {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}

type env struct {
	t    *testing.T
	deps *Deps
	bus  *event.Bus
}

func newEnv(t *testing.T) *env {
	t.Helper()
	table, err := data.ParseContentTable([]byte(testMaps))
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	bus := event.NewBus()
	h := simhost.New(table, bus, zap.NewNop())
	c := haunt.NewController(h, timer.NewScheduler(), nil, haunt.DefaultOptions(), zap.NewNop())
	c.Subscribe(bus)
	if err := h.LoadMap("de_fog"); err != nil {
		t.Fatalf("load: %v", err)
	}
	return &env{
		t:    t,
		bus:  bus,
		deps: &Deps{Log: zap.NewNop(), Host: h, Controller: c, Content: table},
	}
}

func (e *env) run(line string) *recorder {
	e.t.Helper()
	out := &recorder{}
	if !HandleCommand(out, line, e.deps) {
		e.t.Fatalf("%q not consumed", line)
	}
	e.bus.SwapBuffers()
	e.bus.DispatchAll()
	return out
}

func TestBlankLineNotConsumed(t *testing.T) {
	e := newEnv(t)
	if HandleCommand(&recorder{}, "   ", e.deps) {
		t.Fatal("blank line consumed")
	}
}

func TestHauntAliases(t *testing.T) {
	for _, pair := range [][2]string{{"css_haunt", "css_unhaunt"}, {"haunt", "unhaunt"}, {"!haunt", "!unhaunt"}} {
		e := newEnv(t)
		out := e.run(pair[0])
		if !out.contains("enabled") {
			t.Fatalf("%s reply = %v", pair[0], out.lines)
		}
		if !e.deps.Controller.State().Haunted() {
			t.Fatalf("%s did not activate", pair[0])
		}
		e.run(pair[1])
		if e.deps.Controller.State().Haunted() {
			t.Fatalf("%s did not deactivate", pair[1])
		}
	}
}

func TestHauntFailureIsReported(t *testing.T) {
	e := newEnv(t)
	e.deps.Host.SetCreateFailure(schema.DesignerFogController, true)
	// map_fog is not the master, so the registry has to create one.
	out := e.run("css_haunt")
	if !out.contains("haunt failed") {
		t.Fatalf("reply = %v", out.lines)
	}
	if e.deps.Controller.State().Haunted() {
		t.Fatal("failed activation left server haunted")
	}
}

func TestStatus(t *testing.T) {
	e := newEnv(t)
	out := e.run("haunt_status")
	if !out.contains("mode=normal") || !out.contains("not cached") {
		t.Fatalf("status = %v", out.lines)
	}
	e.run("haunt")
	out = e.run("haunt_status")
	if !out.contains("mode=haunted") || !out.contains("valid=true") || !out.contains("activations=1") {
		t.Fatalf("status = %v", out.lines)
	}
}

func TestStatusOnEmptyMapReportsCreatedMaster(t *testing.T) {
	e := newEnv(t)
	e.run("changelevel de_empty")
	e.run("haunt")
	out := e.run("haunt_status")
	if out.contains("not cached") || !out.contains("valid=true") {
		t.Fatalf("status = %v", out.lines)
	}
}

func TestPlayerLifecycleCommands(t *testing.T) {
	e := newEnv(t)
	e.run("haunt")

	out := e.run("connect Alice")
	if !out.contains("connected Alice in slot 0") {
		t.Fatalf("connect = %v", out.lines)
	}
	e.run("connect Wraith bot")

	out = e.run("players")
	if len(out.lines) != 2 || !strings.Contains(out.lines[1], "bot") {
		t.Fatalf("players = %v", out.lines)
	}

	out = e.run("kill 0")
	if !out.contains("kill slot 0") {
		t.Fatalf("kill = %v", out.lines)
	}
	out = e.run("stomp 9")
	if !out.contains("stomp failed") {
		t.Fatalf("stomp = %v", out.lines)
	}
	out = e.run("disconnect 1")
	if !out.contains("slot 1 disconnected") {
		t.Fatalf("disconnect = %v", out.lines)
	}
	out = e.run("disconnect x")
	if !out.contains("invalid slot") {
		t.Fatalf("disconnect x = %v", out.lines)
	}
	out = e.run("spawn")
	if !out.contains("usage: spawn <slot>") {
		t.Fatalf("spawn = %v", out.lines)
	}
}

func TestPlayersShowsBinding(t *testing.T) {
	e := newEnv(t)
	e.run("connect Alice")
	e.run("haunt")

	out := e.run("players")
	if !out.contains("bound=true") || !out.contains("suppressed=true") {
		t.Fatalf("players = %v", out.lines)
	}

	e.run("stomp 0")
	out = e.run("players")
	if !out.contains("bound=false") {
		t.Fatalf("players after stomp = %v", out.lines)
	}
}

func TestChangeLevelAndMaps(t *testing.T) {
	e := newEnv(t)
	out := e.run("changelevel de_mist")
	if !out.contains("loaded de_mist (generation 2)") {
		t.Fatalf("changelevel = %v", out.lines)
	}
	out = e.run("maps")
	if len(out.lines) != 3 || !strings.HasPrefix(out.lines[2], "* de_mist") {
		t.Fatalf("maps = %v", out.lines)
	}
	out = e.run("changelevel de_nowhere")
	if !out.contains("changelevel failed") {
		t.Fatalf("changelevel unknown = %v", out.lines)
	}
}

func TestExecAndUnknown(t *testing.T) {
	e := newEnv(t)
	e.run("exec sv_footsteps 0")
	if got := e.deps.Host.Cvar("sv_footsteps"); got != "0" {
		t.Fatalf("sv_footsteps = %q", got)
	}
	out := e.run("fly")
	if !out.contains("unknown command: fly") {
		t.Fatalf("unknown = %v", out.lines)
	}
	out = e.run("help")
	if !out.contains("css_haunt") {
		t.Fatalf("help = %v", out.lines)
	}
}
