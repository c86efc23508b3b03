package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hauntess/server/internal/schema"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ErrInvalidPreset is returned when a script produces fog values the host
// would reject.
var ErrInvalidPreset = errors.New("invalid fog preset")

const presetFunc = "haunt_fog_preset"

// Engine wraps a single gopher-lua VM for operator tuning scripts.
// Single-goroutine access only.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory, then from its haunt/ subdirectory. Missing directories are
// skipped.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	e := &Engine{vm: vm, log: log}

	for _, dir := range []string{scriptsDir, filepath.Join(scriptsDir, "haunt")} {
		if err := e.loadDir(dir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts %s: %w", dir, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// HasPreset reports whether a script defines haunt_fog_preset.
func (e *Engine) HasPreset() bool {
	return e.vm.GetGlobal(presetFunc) != lua.LNil
}

// FogPreset passes base to haunt_fog_preset and applies the keys of the
// returned table on top of it. Without the function base is returned as is.
// On any error base is returned alongside the error.
func (e *Engine) FogPreset(base schema.FogParams) (schema.FogParams, error) {
	fn := e.vm.GetGlobal(presetFunc)
	if fn == lua.LNil {
		return base, nil
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, fogTable(e.vm, base)); err != nil {
		return base, fmt.Errorf("lua %s: %w", presetFunc, err)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	if result == lua.LNil {
		return base, nil
	}
	rt, ok := result.(*lua.LTable)
	if !ok {
		return base, fmt.Errorf("%w: %s returned %s, want table", ErrInvalidPreset, presetFunc, result.Type())
	}

	out := base
	if v := rt.RawGetString("enable"); v != lua.LNil {
		out.Enable = lua.LVAsBool(v)
	}
	if c, ok := rt.RawGetString("color").(*lua.LTable); ok {
		var err error
		if out.ColorPrimary, err = colorFrom(c, base.ColorPrimary); err != nil {
			return base, err
		}
	}
	setNum(rt, "start_dist", &out.Start)
	setNum(rt, "end_dist", &out.End)
	setNum(rt, "max_density", &out.MaxDensity)
	setNum(rt, "exponent", &out.Exponent)

	if err := validate(out); err != nil {
		return base, err
	}
	return out, nil
}

func validate(p schema.FogParams) error {
	if p.MaxDensity < 0 || p.MaxDensity > 1 {
		return fmt.Errorf("%w: max_density %g outside [0,1]", ErrInvalidPreset, p.MaxDensity)
	}
	if p.Start < 0 || p.End < 0 {
		return fmt.Errorf("%w: negative distance start=%g end=%g", ErrInvalidPreset, p.Start, p.End)
	}
	if p.Exponent <= 0 {
		return fmt.Errorf("%w: exponent %g must be positive", ErrInvalidPreset, p.Exponent)
	}
	return nil
}

func fogTable(vm *lua.LState, p schema.FogParams) *lua.LTable {
	t := vm.NewTable()
	t.RawSetString("enable", lua.LBool(p.Enable))

	c := vm.NewTable()
	c.RawSetString("r", lua.LNumber(p.ColorPrimary.R))
	c.RawSetString("g", lua.LNumber(p.ColorPrimary.G))
	c.RawSetString("b", lua.LNumber(p.ColorPrimary.B))
	c.RawSetString("a", lua.LNumber(p.ColorPrimary.A))
	t.RawSetString("color", c)

	t.RawSetString("start_dist", lua.LNumber(p.Start))
	t.RawSetString("end_dist", lua.LNumber(p.End))
	t.RawSetString("max_density", lua.LNumber(p.MaxDensity))
	t.RawSetString("exponent", lua.LNumber(p.Exponent))
	return t
}

// --- Lua helpers ---

func setNum(t *lua.LTable, key string, dst *float32) {
	if n, ok := t.RawGetString(key).(lua.LNumber); ok {
		*dst = float32(n)
	}
}

func colorFrom(t *lua.LTable, base schema.Color) (schema.Color, error) {
	out := base
	for _, ch := range []struct {
		key string
		dst *uint8
	}{
		{"r", &out.R}, {"g", &out.G}, {"b", &out.B}, {"a", &out.A},
	} {
		v := t.RawGetString(ch.key)
		if v == lua.LNil {
			continue
		}
		n, ok := v.(lua.LNumber)
		if !ok || n < 0 || n > 255 {
			return base, fmt.Errorf("%w: color.%s = %s", ErrInvalidPreset, ch.key, v.String())
		}
		*ch.dst = uint8(n)
	}
	return out, nil
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
