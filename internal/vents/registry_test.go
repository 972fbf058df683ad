package vents

import (
	"slices"
	"testing"
)

type recorder struct{ calls []Vent }

func (r *recorder) Inject(u, v, amount, radius float64) {
	r.calls = append(r.calls, Vent{U: u, V: v})
}

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry(40, 0.01)
	if !reg.Enabled() || reg.Len() != 0 {
		t.Fatal("new registry should be enabled and empty")
	}
	reg.Place(0.2, 0.3)
	clamped := reg.Place(-1, 4)
	if clamped != (Vent{U: 0, V: 1}) {
		t.Fatalf("placement should clamp, got %+v", clamped)
	}

	rec := &recorder{}
	if n := reg.InjectAll(rec); n != 2 {
		t.Fatalf("InjectAll returned %d", n)
	}
	want := []Vent{{U: 0.2, V: 0.3}, {U: 0, V: 1}}
	if !slices.Equal(rec.calls, want) {
		t.Fatalf("injections out of order: %+v", rec.calls)
	}

	reg.SetEnabled(false)
	rec.calls = nil
	if n := reg.InjectAll(rec); n != 0 || len(rec.calls) != 0 {
		t.Fatal("disabled registry must not inject")
	}
	if reg.Len() != 2 {
		t.Fatal("disabling must keep placements")
	}

	snapshot := reg.Vents()
	snapshot[0].U = 0.9
	if reg.Vents()[0].U != 0.2 {
		t.Fatal("Vents must return a copy")
	}

	reg.Clear()
	if reg.Len() != 0 {
		t.Fatal("Clear should remove all vents")
	}
}
