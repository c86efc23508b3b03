package scripting

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hauntess/server/internal/schema"
	"go.uber.org/zap"
)

var base = schema.FogParams{
	Enable:       true,
	ColorPrimary: schema.Color{R: 2, G: 2, B: 4, A: 255},
	Start:        0,
	End:          350,
	MaxDensity:   1,
	Exponent:     1.5,
}

func newEngine(t *testing.T, files map[string]string) *Engine {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestFogPresetWithoutScriptKeepsBase(t *testing.T) {
	e := newEngine(t, nil)
	if e.HasPreset() {
		t.Fatal("no script loaded but HasPreset is true")
	}
	got, err := e.FogPreset(base)
	if err != nil {
		t.Fatalf("FogPreset: %v", err)
	}
	if got != base {
		t.Fatalf("got %+v, want %+v", got, base)
	}
}

func TestFogPresetAppliesOverrides(t *testing.T) {
	e := newEngine(t, map[string]string{
		"haunt/fog.lua": `
function haunt_fog_preset(base)
  return {
    end_dist = base.end_dist * 2,
    max_density = 0.9,
    color = { b = 40 },
  }
end`,
	})
	if !e.HasPreset() {
		t.Fatal("HasPreset = false")
	}
	got, err := e.FogPreset(base)
	if err != nil {
		t.Fatalf("FogPreset: %v", err)
	}
	want := base
	want.End = 700
	want.MaxDensity = 0.9
	want.ColorPrimary.B = 40
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestFogPresetNilResultKeepsBase(t *testing.T) {
	e := newEngine(t, map[string]string{
		"preset.lua": `function haunt_fog_preset(base) return nil end`,
	})
	got, err := e.FogPreset(base)
	if err != nil || got != base {
		t.Fatalf("got %+v, %v", got, err)
	}
}

func TestFogPresetRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"density above one", `function haunt_fog_preset(b) return { max_density = 1.5 } end`},
		{"negative start", `function haunt_fog_preset(b) return { start_dist = -10 } end`},
		{"zero exponent", `function haunt_fog_preset(b) return { exponent = 0 } end`},
		{"colour out of range", `function haunt_fog_preset(b) return { color = { r = 300 } } end`},
		{"non-table result", `function haunt_fog_preset(b) return 42 end`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, map[string]string{"preset.lua": tt.script})
			got, err := e.FogPreset(base)
			if !errors.Is(err, ErrInvalidPreset) {
				t.Fatalf("err = %v, want ErrInvalidPreset", err)
			}
			if got != base {
				t.Fatalf("configured preset not kept: %+v", got)
			}
		})
	}
}

func TestFogPresetRuntimeError(t *testing.T) {
	e := newEngine(t, map[string]string{
		"preset.lua": `function haunt_fog_preset(b) error("boom") end`,
	})
	got, err := e.FogPreset(base)
	if err == nil {
		t.Fatal("expected error")
	}
	if got != base {
		t.Fatalf("configured preset not kept: %+v", got)
	}
}

func TestNewEngineSyntaxError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.lua"), []byte("function ("), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewEngine(dir, zap.NewNop()); err == nil {
		t.Fatal("expected load error")
	}
}

func TestShippedScript(t *testing.T) {
	e, err := NewEngine(filepath.Join("..", "..", "scripts"), zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer e.Close()
	got, err := e.FogPreset(base)
	if err != nil {
		t.Fatalf("FogPreset: %v", err)
	}
	if !e.HasPreset() {
		t.Fatalf("shipped script defines no preset hook")
	}
	if got != base {
		t.Fatalf("shipped hook changed the preset: got %+v, want %+v", got, base)
	}
}
