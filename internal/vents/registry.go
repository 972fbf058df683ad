package vents

import "lavaflow/internal/core"

// Vent is a persistent injection point in normalized texture coordinates.
type Vent struct {
	U, V float64
}

// Injector receives vent injections. Engines satisfy it.
type Injector interface {
	Inject(u, v, amount, radiusFraction float64)
}

// Registry is the ordered list of vents. Vents are never mutated once
// placed; the only removal is Clear.
type Registry struct {
	// Amount and Radius are injected by every vent on every tick.
	Amount float64
	Radius float64

	vents   []Vent
	enabled bool
}

// NewRegistry returns an enabled, empty registry.
func NewRegistry(amount, radius float64) *Registry {
	return &Registry{Amount: amount, Radius: radius, enabled: true}
}

// Place appends a vent, clamping the coordinates into [0,1]².
func (r *Registry) Place(u, v float64) Vent {
	vent := Vent{U: core.Clamp01(u), V: core.Clamp01(v)}
	r.vents = append(r.vents, vent)
	return vent
}

// Clear removes every vent.
func (r *Registry) Clear() { r.vents = r.vents[:0] }

// SetEnabled toggles injection without forgetting placements.
func (r *Registry) SetEnabled(on bool) { r.enabled = on }

// Enabled reports whether vents inject.
func (r *Registry) Enabled() bool { return r.enabled }

// Len reports the number of placed vents.
func (r *Registry) Len() int { return len(r.vents) }

// Vents returns a copy of the placed vents in placement order.
func (r *Registry) Vents() []Vent { return append([]Vent(nil), r.vents...) }

// Each visits vents in placement order.
func (r *Registry) Each(fn func(Vent)) {
	for _, v := range r.vents {
		fn(v)
	}
}

// InjectAll feeds every vent into dst once. It is a no-op while disabled.
func (r *Registry) InjectAll(dst Injector) int {
	if !r.enabled || r.Amount <= 0 {
		return 0
	}
	for _, v := range r.vents {
		dst.Inject(v.U, v.V, r.Amount, r.Radius)
	}
	return len(r.vents)
}
