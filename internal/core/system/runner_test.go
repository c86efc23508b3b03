package system

import (
	"testing"
	"time"
)

type recordSystem struct {
	name  string
	phase Phase
	log   *[]string
}

func (s recordSystem) Phase() Phase { return s.phase }

func (s recordSystem) Update(time.Duration) { *s.log = append(*s.log, s.name) }

func TestRunnerOrdersByPhaseThenRegistration(t *testing.T) {
	var got []string
	r := NewRunner()
	r.Register(recordSystem{"output", PhaseOutput, &got})
	r.Register(recordSystem{"enforce", PhasePostUpdate, &got})
	r.Register(recordSystem{"input", PhaseInput, &got})
	r.Register(recordSystem{"replicate", PhaseOutput, &got})

	r.Tick(time.Millisecond)

	want := []string{"input", "enforce", "output", "replicate"}
	if len(got) != len(want) {
		t.Fatalf("ran %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ran %v, want %v", got, want)
		}
	}
	if r.Ticks() != 1 {
		t.Fatalf("ticks=%d", r.Ticks())
	}
}

func TestRunnerTickPhase(t *testing.T) {
	var got []string
	r := NewRunner()
	r.Register(recordSystem{"input", PhaseInput, &got})
	r.Register(recordSystem{"enforce", PhasePostUpdate, &got})

	r.TickPhase(PhaseInput, 0)

	if len(got) != 1 || got[0] != "input" {
		t.Fatalf("ran %v", got)
	}
	if r.Ticks() != 0 {
		t.Fatalf("phase-only tick counted as full tick")
	}
}
