package schema

import "fmt"

// Color is an 8-bit RGBA colour as stored in fogparams_t.
type Color struct {
	R, G, B, A uint8
}

// FogParams mirrors the replicated subset of fogparams_t.
type FogParams struct {
	Enable       bool
	ColorPrimary Color
	Start        float32
	End          float32
	MaxDensity   float32
	Exponent     float32
}

// FogField is one replicated fogparams_t member. Copy and Equal operate on
// exactly that member, so the copy list and the dirty-mark list are the same
// table.
type FogField struct {
	Name  string
	Copy  func(dst, src *FogParams)
	Equal func(a, b *FogParams) bool
}

// FogFields lists every member written by this server, in schema order.
var FogFields = []FogField{
	{
		Name:  "start",
		Copy:  func(d, s *FogParams) { d.Start = s.Start },
		Equal: func(a, b *FogParams) bool { return a.Start == b.Start },
	},
	{
		Name:  "end",
		Copy:  func(d, s *FogParams) { d.End = s.End },
		Equal: func(a, b *FogParams) bool { return a.End == b.End },
	},
	{
		Name:  "maxdensity",
		Copy:  func(d, s *FogParams) { d.MaxDensity = s.MaxDensity },
		Equal: func(a, b *FogParams) bool { return a.MaxDensity == b.MaxDensity },
	},
	{
		Name:  "enable",
		Copy:  func(d, s *FogParams) { d.Enable = s.Enable },
		Equal: func(a, b *FogParams) bool { return a.Enable == b.Enable },
	},
	{
		Name:  "colorPrimary",
		Copy:  func(d, s *FogParams) { d.ColorPrimary = s.ColorPrimary },
		Equal: func(a, b *FogParams) bool { return a.ColorPrimary == b.ColorPrimary },
	},
	{
		Name:  "exponent",
		Copy:  func(d, s *FogParams) { d.Exponent = s.Exponent },
		Equal: func(a, b *FogParams) bool { return a.Exponent == b.Exponent },
	},
}

// StateChanger is implemented by host objects whose networked fields can be
// flagged for replication.
type StateChanger interface {
	SetStateChanged(class, field string, extraOffset int) error
}

// FogLocation names where a fogparams_t lives inside an object: the owning
// class, the field holding the struct, and the offset of the struct within
// that field.
type FogLocation struct {
	Class       string
	Field       string
	ExtraOffset int
}

// ControllerFog is the m_fog member of an env_fog_controller.
var ControllerFog = FogLocation{Class: ClassFogController, Field: FieldFog}

// PawnSkyboxFog is the pawn's local m_skybox3d.fog mirror.
var PawnSkyboxFog = FogLocation{
	Class:       ClassBasePlayerPawn,
	Field:       FieldSkybox3d,
	ExtraOffset: MustOffset(ClassSky3dParams, FieldSkyFog),
}

// MarkChanged flags each named fogparams_t member of the struct at loc.
// Must follow any write to that struct with no yield in between.
func MarkChanged(obj StateChanger, loc FogLocation, fields []FogField) error {
	for _, f := range fields {
		sub, err := Offset(ClassFogParams, f.Name)
		if err != nil {
			return err
		}
		if err := obj.SetStateChanged(loc.Class, loc.Field, loc.ExtraOffset+sub); err != nil {
			return fmt.Errorf("mark %s.%s+%s: %w", loc.Class, loc.Field, f.Name, err)
		}
	}
	return nil
}

// Write copies every member of src into dst and marks all of them.
func Write(obj StateChanger, loc FogLocation, dst *FogParams, src FogParams) error {
	for _, f := range FogFields {
		f.Copy(dst, &src)
	}
	return MarkChanged(obj, loc, FogFields)
}

// Sync copies the members of src that differ from dst and marks exactly
// those. It reports whether anything was written.
func Sync(obj StateChanger, loc FogLocation, dst, src *FogParams) (bool, error) {
	changed := false
	for _, f := range FogFields {
		if f.Equal(dst, src) {
			continue
		}
		f.Copy(dst, src)
		changed = true
		if err := MarkChanged(obj, loc, []FogField{f}); err != nil {
			return true, err
		}
	}
	return changed, nil
}

// Diff returns the names of members that differ between a and b.
func Diff(a, b *FogParams) []string {
	var out []string
	for _, f := range FogFields {
		if !f.Equal(a, b) {
			out = append(out, f.Name)
		}
	}
	return out
}
