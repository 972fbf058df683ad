package thermal

import (
	"math"

	"lavaflow/internal/core"
)

// Params holds the tunables of the thermal rheology model. Temperatures are
// in °C, lengths in metres and times in seconds.
type Params struct {
	CellSize float64
	Density  float64

	ConductiveCoeff float64
	ConvectiveCoeff float64

	YieldStrength float64
	VelocityScale float64

	MaxFluxFraction  float64
	MinFlowThickness float64
	MinFlowVelocity  float64

	EruptionTemp    float64
	CrustGrowthRate float64
	ErosionRate     float64

	// ThicknessPerUnit converts one injected/exported quantized unit into
	// metres of lava.
	ThicknessPerUnit float64

	TerrainFeedback bool
}

// DefaultParams returns values tuned for interactive grids of 64–256 cells.
func DefaultParams() Params {
	return Params{
		CellSize:         5,
		Density:          2600,
		ConductiveCoeff:  8,
		ConvectiveCoeff:  5,
		YieldStrength:    500,
		VelocityScale:    1000,
		MaxFluxFraction:  0.25,
		MinFlowThickness: 0.01,
		MinFlowVelocity:  1e-4,
		EruptionTemp:     1150,
		CrustGrowthRate:  1e-3,
		ErosionRate:      1e-3,
		ThicknessPerUnit: 0.01,
		TerrainFeedback:  true,
	}
}

// Sanitize replaces unusable values with their defaults. Flux fractions are
// held below one half so that two axes never move more than the whole cell.
func (p Params) Sanitize() Params {
	def := DefaultParams()
	positive := func(v, fallback float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fallback
		}
		return v
	}
	nonNegative := func(v float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return 0
		}
		return v
	}
	p.CellSize = positive(p.CellSize, def.CellSize)
	p.Density = positive(p.Density, def.Density)
	p.ThicknessPerUnit = positive(p.ThicknessPerUnit, def.ThicknessPerUnit)
	p.EruptionTemp = positive(p.EruptionTemp, def.EruptionTemp)
	p.ConductiveCoeff = nonNegative(p.ConductiveCoeff)
	p.ConvectiveCoeff = nonNegative(p.ConvectiveCoeff)
	p.YieldStrength = nonNegative(p.YieldStrength)
	p.VelocityScale = nonNegative(p.VelocityScale)
	p.MinFlowThickness = nonNegative(p.MinFlowThickness)
	p.MinFlowVelocity = nonNegative(p.MinFlowVelocity)
	p.CrustGrowthRate = nonNegative(p.CrustGrowthRate)
	p.ErosionRate = nonNegative(p.ErosionRate)
	p.MaxFluxFraction = math.Min(nonNegative(p.MaxFluxFraction), maxFluxPerDim)
	return p
}

var controls = []core.ParameterControl{
	{Key: "yield_strength", Label: "Yield strength", Type: core.ParamTypeFloat, Step: 50, Min: 0, Max: 20000, HasMin: true, HasMax: true},
	{Key: "velocity_scale", Label: "Velocity scale", Type: core.ParamTypeFloat, Step: 100, Min: 0, Max: 100000, HasMin: true, HasMax: true},
	{Key: "eruption_temp", Label: "Eruption temp", Type: core.ParamTypeFloat, Step: 25, Min: SolidificationTemp, Max: 1400, HasMin: true, HasMax: true},
	{Key: "conductive_coeff", Label: "Conduction", Type: core.ParamTypeFloat, Step: 1, Min: 0, Max: 500, HasMin: true, HasMax: true},
	{Key: "convective_coeff", Label: "Convection", Type: core.ParamTypeFloat, Step: 1, Min: 0, Max: 500, HasMin: true, HasMax: true},
	{Key: "erosion_rate", Label: "Erosion rate", Type: core.ParamTypeFloat, Step: 0.0005, Min: 0, Max: 0.1, HasMin: true, HasMax: true},
	{Key: "max_flux_fraction", Label: "Max flux", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: maxFluxPerDim, HasMin: true, HasMax: true},
}

// ParameterControls lists the thermal tunables adjustable at runtime.
func (e *Engine) ParameterControls() []core.ParameterControl {
	return append([]core.ParameterControl(nil), controls...)
}

// ParameterGroup reports the current thermal tunables.
func (e *Engine) ParameterGroup() core.ParameterGroup {
	p := e.params
	return core.ParameterGroup{
		Name: "Thermal",
		Params: []core.Parameter{
			core.FloatParam("cell_size", "Cell size (m)", p.CellSize),
			core.FloatParam("density", "Density", p.Density),
			core.FloatParam("yield_strength", "Yield strength", p.YieldStrength),
			core.FloatParam("velocity_scale", "Velocity scale", p.VelocityScale),
			core.FloatParam("eruption_temp", "Eruption temp", p.EruptionTemp),
			core.FloatParam("conductive_coeff", "Conduction", p.ConductiveCoeff),
			core.FloatParam("convective_coeff", "Convection", p.ConvectiveCoeff),
			core.FloatParam("erosion_rate", "Erosion rate", p.ErosionRate),
			core.FloatParam("max_flux_fraction", "Max flux", p.MaxFluxFraction),
			core.BoolParam("terrain_feedback", "Terrain feedback", p.TerrainFeedback),
		},
	}
}

// SetFloatParameter updates a thermal tunable, clamped to its control range.
func (e *Engine) SetFloatParameter(key string, value float64) bool {
	if math.IsNaN(value) {
		return false
	}
	var ctrl core.ParameterControl
	found := false
	for _, c := range controls {
		if c.Key == key {
			ctrl, found = c, true
			break
		}
	}
	if !found {
		return false
	}
	value = ctrl.Clamp(value)
	switch key {
	case "yield_strength":
		e.params.YieldStrength = value
	case "velocity_scale":
		e.params.VelocityScale = value
	case "eruption_temp":
		e.params.EruptionTemp = value
	case "conductive_coeff":
		e.params.ConductiveCoeff = value
	case "convective_coeff":
		e.params.ConvectiveCoeff = value
	case "erosion_rate":
		e.params.ErosionRate = value
	case "max_flux_fraction":
		e.params.MaxFluxFraction = value
	}
	return true
}
