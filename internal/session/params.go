package session

import (
	"math"

	"lavaflow/internal/core"
)

// Parameter keys accepted by SetFloatParameter and SetIntParameter.
const (
	KeyMobility        = "mobility"
	KeyViscosity       = "viscosity"
	KeyCooling         = "cooling"
	KeyInjectionAmount = "injection_amount"
	KeyInjectionRadius = "injection_radius"
	KeyVentAmount      = "vent_amount"
	KeyVentRadius      = "vent_radius"
	KeySize            = "size"
)

var flowControls = []core.ParameterControl{
	{Key: KeyMobility, Label: "Mobility", Type: core.ParamTypeFloat, Step: 0.05, Min: 0.05, Max: 2, HasMin: true, HasMax: true},
	{Key: KeyViscosity, Label: "Viscosity", Type: core.ParamTypeFloat, Step: 0.01, Min: 0, Max: 0.2, HasMin: true, HasMax: true},
	{Key: KeyCooling, Label: "Cooling", Type: core.ParamTypeFloat, Step: 0.005, Min: 0, Max: 0.2, HasMin: true, HasMax: true},
	{Key: KeyInjectionAmount, Label: "Inject amount", Type: core.ParamTypeFloat, Step: 10, Min: 30, Max: 1000, HasMin: true, HasMax: true},
	{Key: KeyInjectionRadius, Label: "Inject radius", Type: core.ParamTypeFloat, Step: 0.005, Min: 0.001, Max: 0.2, HasMin: true, HasMax: true},
	{Key: KeyVentAmount, Label: "Vent amount", Type: core.ParamTypeFloat, Step: 10, Min: 0, Max: 1000, HasMin: true, HasMax: true},
	{Key: KeyVentRadius, Label: "Vent radius", Type: core.ParamTypeFloat, Step: 0.005, Min: 0.001, Max: 0.2, HasMin: true, HasMax: true},
	{Key: KeySize, Label: "Grid size", Type: core.ParamTypeInt, Step: 16, Min: 16, Max: 512, HasMin: true, HasMax: true},
}

type groupProvider interface {
	ParameterGroup() core.ParameterGroup
}

// Parameters reports the session's tunables grouped for display.
func (s *Session) Parameters() core.ParameterSnapshot {
	t := s.cfg.Tick
	groups := []core.ParameterGroup{
		{
			Name: "Session",
			Params: []core.Parameter{
				core.StringParam("engine", "Engine", s.engine.Name()),
				core.IntParam(KeySize, "Grid size", s.engine.Size()),
				core.IntParam("terrain", "Terrain", s.hf.R),
				core.IntParam("ticks", "Ticks", s.ticks),
				core.BoolParam("paused", "Paused", s.paused),
			},
		},
		{
			Name: "Flow",
			Params: []core.Parameter{
				core.FloatParam(KeyMobility, "Mobility", t.Mobility),
				core.FloatParam(KeyViscosity, "Viscosity", t.Viscosity),
				core.FloatParam(KeyCooling, "Cooling", t.CoolingRate),
				core.FloatParam(KeyInjectionAmount, "Inject amount", t.InjectionAmount),
				core.FloatParam(KeyInjectionRadius, "Inject radius", t.InjectionRadius),
			},
		},
		{
			Name: "Vents",
			Params: []core.Parameter{
				core.IntParam("vents", "Vents", s.vents.Len()),
				core.BoolParam("vents_enabled", "Enabled", s.vents.Enabled()),
				core.FloatParam(KeyVentAmount, "Vent amount", s.vents.Amount),
				core.FloatParam(KeyVentRadius, "Vent radius", s.vents.Radius),
			},
		},
	}
	if gp, ok := s.engine.(groupProvider); ok {
		groups = append(groups, gp.ParameterGroup())
	}
	return core.ParameterSnapshot{Groups: groups}
}

// ParameterControls lists the adjustable controls, engine-specific ones last.
func (s *Session) ParameterControls() []core.ParameterControl {
	out := append([]core.ParameterControl(nil), flowControls...)
	if p, ok := s.engine.(core.ParameterControlsProvider); ok {
		out = append(out, p.ParameterControls()...)
	}
	return out
}

func findControl(key string) (core.ParameterControl, bool) {
	for _, c := range flowControls {
		if c.Key == key {
			return c, true
		}
	}
	return core.ParameterControl{}, false
}

// SetFloatParameter updates a tunable, clamped to its documented range.
// Unknown keys are offered to the engine.
func (s *Session) SetFloatParameter(key string, value float64) bool {
	if math.IsNaN(value) {
		return false
	}
	ctrl, ok := findControl(key)
	if !ok || ctrl.Type != core.ParamTypeFloat {
		if setter, ok := s.engine.(core.FloatParameterSetter); ok {
			return setter.SetFloatParameter(key, value)
		}
		return false
	}
	value = ctrl.Clamp(value)
	switch key {
	case KeyMobility:
		s.cfg.Tick.Mobility = value
	case KeyViscosity:
		s.cfg.Tick.Viscosity = value
	case KeyCooling:
		s.cfg.Tick.CoolingRate = value
	case KeyInjectionAmount:
		s.cfg.Tick.InjectionAmount = value
	case KeyInjectionRadius:
		s.cfg.Tick.InjectionRadius = value
	case KeyVentAmount:
		s.vents.Amount = value
		s.cfg.VentAmount = value
	case KeyVentRadius:
		s.vents.Radius = value
		s.cfg.VentRadius = value
	}
	return true
}

// SetIntParameter updates an integer tunable. Changing the grid size
// rebuilds the engine and drops all fluid.
func (s *Session) SetIntParameter(key string, value int) bool {
	ctrl, ok := findControl(key)
	if !ok || ctrl.Type != core.ParamTypeInt {
		if setter, ok := s.engine.(core.IntParameterSetter); ok {
			return setter.SetIntParameter(key, value)
		}
		return false
	}
	value = int(ctrl.Clamp(float64(value)))
	if key == KeySize {
		if err := s.Resize(value); err != nil {
			s.log.WithError(err).Warn("resize failed")
			return false
		}
	}
	return true
}
