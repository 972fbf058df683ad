package thermal

import "math"

const (
	// AmbientTemp is the floor every cell cools towards.
	AmbientTemp = 20.0
	// SolidificationTemp is the liquid/solid boundary.
	SolidificationTemp = 700.0
	// CrustTemp is the temperature below which a crust grows.
	CrustTemp = 900.0
	// ErosionTemp is the temperature above which flowing lava erodes its bed.
	ErosionTemp = 1000.0
	// MaxErosionPerStep bounds the bed lowered in one tick, in metres.
	MaxErosionPerStep = 1.0

	// Vogel-Fulcher-Tammann constants on a Kelvin basis.
	vftA  = -4.55
	vftB  = 6270.0
	vftT0 = 837.0

	// SolidViscosity stands in for "does not flow". It sits above the VFT
	// value at the solidification temperature.
	SolidViscosity = 1e22

	emissivity    = 0.95
	stefanBoltz   = 5.670374e-8
	specificHeat  = 1000.0
	gravity       = 9.81
	kelvinOffset  = 273.15
	emptyEpsilon  = 1e-6
	slopeEpsilon  = 1e-9
	maxFluxPerDim = 0.5
)

// Viscosity returns the dynamic viscosity in Pa·s at temperature t (°C).
func Viscosity(t float64) float64 {
	if t < SolidificationTemp {
		return SolidViscosity
	}
	tk := t + kelvinOffset
	return math.Exp(vftA+vftB/(tk-vftT0)) * 1000
}

// HeatFlux returns the surface heat loss in W/m² of lava at temperature t
// moving at speed. Radiation follows Stefan-Boltzmann; conduction and
// convection are linear in the excess over ambient.
func HeatFlux(t, speed, conductive, convective float64) float64 {
	if t <= AmbientTemp {
		return 0
	}
	tk := t + kelvinOffset
	ak := AmbientTemp + kelvinOffset
	radiative := emissivity * stefanBoltz * (tk*tk*tk*tk - ak*ak*ak*ak)
	excess := t - AmbientTemp
	return radiative + conductive*excess + convective*speed*excess
}

// Cool returns the temperature after losing heat for dt seconds from a layer
// of the given thickness. Cell area cancels between the loss and the cell
// mass, so only the per-area quantities matter. The result never drops below
// ambient.
func Cool(t, thickness, speed, dt float64, p Params) float64 {
	if thickness < emptyEpsilon || dt <= 0 {
		return t
	}
	loss := HeatFlux(t, speed, p.ConductiveCoeff, p.ConvectiveCoeff) * dt
	delta := loss / (p.Density * thickness * specificHeat)
	return math.Max(AmbientTemp, t-delta)
}

// YieldVelocity applies the Bingham plastic law: no motion below the yield
// stress, otherwise a speed proportional to the excess stress over η.
func YieldVelocity(thickness, slope, viscosity float64, p Params) float64 {
	tau := p.Density * gravity * thickness * slope
	if tau <= p.YieldStrength || viscosity <= 0 {
		return 0
	}
	strain := (tau - p.YieldStrength) / viscosity
	return strain * thickness * p.VelocityScale
}
