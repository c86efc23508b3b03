package schema

import (
	"errors"
	"testing"
)

type recorder struct {
	marks []int
	fail  bool
}

func (r *recorder) SetStateChanged(class, field string, extraOffset int) error {
	if r.fail {
		return errors.New("handle gone")
	}
	base, err := Offset(class, field)
	if err != nil {
		return err
	}
	r.marks = append(r.marks, base+extraOffset)
	return nil
}

var haunted = FogParams{
	Enable:       true,
	ColorPrimary: Color{R: 2, G: 2, B: 4, A: 255},
	Start:        0,
	End:          350,
	MaxDensity:   1,
	Exponent:     1.5,
}

func TestWriteMarksEveryFieldAtAbsoluteOffset(t *testing.T) {
	var dst FogParams
	r := &recorder{}
	if err := Write(r, ControllerFog, &dst, haunted); err != nil {
		t.Fatalf("write: %v", err)
	}
	if dst != haunted {
		t.Fatalf("dst=%+v", dst)
	}
	if len(r.marks) != len(FogFields) {
		t.Fatalf("marked %d fields, want %d", len(r.marks), len(FogFields))
	}
	base := MustOffset(ClassFogController, FieldFog)
	want := map[int]bool{}
	for _, f := range FogFields {
		want[base+MustOffset(ClassFogParams, f.Name)] = true
	}
	for _, off := range r.marks {
		if !want[off] {
			t.Fatalf("unexpected mark offset %#x", off)
		}
		delete(want, off)
	}
	if len(want) != 0 {
		t.Fatalf("offsets never marked: %v", want)
	}
}

func TestSyncMarksOnlyDifferingFields(t *testing.T) {
	dst := haunted
	dst.End = 8000
	dst.ColorPrimary = Color{R: 128, G: 128, B: 128, A: 255}
	r := &recorder{}

	changed, err := Sync(r, PawnSkyboxFog, &dst, &haunted)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !changed {
		t.Fatalf("sync reported no change")
	}
	if dst != haunted {
		t.Fatalf("dst=%+v", dst)
	}
	base := MustOffset(ClassBasePlayerPawn, FieldSkybox3d) + MustOffset(ClassSky3dParams, FieldSkyFog)
	want := []int{
		base + MustOffset(ClassFogParams, "end"),
		base + MustOffset(ClassFogParams, "colorPrimary"),
	}
	if len(r.marks) != len(want) || r.marks[0] != want[0] || r.marks[1] != want[1] {
		t.Fatalf("marks=%#v want %#v", r.marks, want)
	}

	r.marks = nil
	changed, err = Sync(r, PawnSkyboxFog, &dst, &haunted)
	if err != nil || changed || len(r.marks) != 0 {
		t.Fatalf("second sync changed=%v err=%v marks=%v", changed, err, r.marks)
	}
}

func TestMarkChangedPropagatesHostError(t *testing.T) {
	r := &recorder{fail: true}
	var dst FogParams
	if err := Write(r, ControllerFog, &dst, haunted); err == nil {
		t.Fatalf("expected error")
	}
}

func TestOffsetUnknown(t *testing.T) {
	if _, err := Offset("CNope", "m_x"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("err=%v", err)
	}
	if _, err := Offset(ClassFogParams, "blend"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("err=%v", err)
	}
}

func TestDiff(t *testing.T) {
	other := haunted
	other.Exponent = 2
	got := Diff(&haunted, &other)
	if len(got) != 1 || got[0] != "exponent" {
		t.Fatalf("diff=%v", got)
	}
}
