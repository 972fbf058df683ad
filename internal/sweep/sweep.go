package sweep

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"

	"lavaflow/internal/core"
	"lavaflow/internal/field"
	"lavaflow/internal/session"
	"lavaflow/internal/terrain"
	pcore "lavaflow/pkg/core"
)

// Scenario describes a deterministic vent run used for tuning.
type Scenario struct {
	Session session.Config
	// Terrain is cloned for every run, so engines with terrain feedback
	// never leak modifications between runs.
	Terrain *terrain.HeightField

	VentU, VentV float64
	// Steps is the number of ticks to simulate; EruptionSteps is how many
	// of them the vent stays enabled (zero keeps it on throughout).
	Steps         int
	EruptionSteps int
	DT            float64

	Seed int64
}

// FlowResult captures telemetry from one scenario run.
type FlowResult struct {
	// MaxDistance is the farthest distance in cells from the vent cell
	// that held any thickness.
	MaxDistance     float64
	MaxDistanceStep int
	// PeakActiveCells is the largest number of wet cells seen at once.
	PeakActiveCells int
	// LastActiveStep is the final tick that still had fluid.
	LastActiveStep int
	StepsSimulated int
	PeakMass       float64
	FinalMass      float64
}

// Record documents a single improvement found while sweeping.
type Record struct {
	Pass      int
	Parameter string
	Value     string
	Result    FlowResult
	Tick      core.TickConfig
}

const inactiveLimit = 32

// ErrNoTerrain reports a scenario without a height field.
var ErrNoTerrain = errors.New("sweep: scenario has no terrain")

// Run simulates the scenario and measures the spread.
func Run(sc Scenario) (FlowResult, error) {
	res, _, err := simulate(sc)
	return res, err
}

// Final runs the scenario like Run and also returns the last exported state.
func Final(sc Scenario) (*field.Snapshot, FlowResult, error) {
	res, s, err := simulate(sc)
	if err != nil || s == nil {
		return nil, res, err
	}
	return s.Snapshot(), res, nil
}

func simulate(sc Scenario) (FlowResult, *session.Session, error) {
	if sc.Terrain == nil {
		return FlowResult{}, nil, ErrNoTerrain
	}
	dt := sc.DT
	if dt <= 0 {
		dt = core.MaxStep
	}

	s, err := session.New(sc.Session, sc.Terrain.Clone())
	if err != nil {
		return FlowResult{}, nil, err
	}
	s.PlaceVent(sc.VentU, sc.VentV)

	n := s.Engine().Size()
	vx, vy := core.CellAt(n, sc.VentU, sc.VentV)
	ventRow := n - 1 - vy

	result := FlowResult{}
	snap := &field.Snapshot{}
	inactive := 0
	for step := 1; step <= sc.Steps; step++ {
		if sc.EruptionSteps > 0 && step == sc.EruptionSteps+1 {
			s.SetVentsEnabled(false)
		}
		if err := s.Tick(dt); err != nil {
			return result, s, err
		}
		result.StepsSimulated = step

		s.Engine().Export(snap)
		active, mass := 0, 0.0
		for row := 0; row < n; row++ {
			for x := 0; x < n; x++ {
				v := snap.At(x, row, field.ChannelThickness)
				if v <= 0 {
					continue
				}
				active++
				mass += float64(v)
				if d := math.Hypot(float64(x-vx), float64(row-ventRow)); d > result.MaxDistance {
					result.MaxDistance = d
					result.MaxDistanceStep = step
				}
			}
		}
		result.FinalMass = mass
		result.PeakMass = math.Max(result.PeakMass, mass)
		if active > result.PeakActiveCells {
			result.PeakActiveCells = active
		}
		if active > 0 {
			result.LastActiveStep = step
			inactive = 0
			continue
		}
		inactive++
		if inactive >= inactiveLimit {
			break
		}
	}
	return result, s, nil
}

type spec struct {
	name   string
	values []float64
	getter func(core.TickConfig) float64
	setter func(*core.TickConfig, float64)
}

var specs = []spec{
	{
		name:   session.KeyMobility,
		values: []float64{0.1, 0.3, 0.6, 1.0, 1.5, 2.0},
		getter: func(c core.TickConfig) float64 { return c.Mobility },
		setter: func(c *core.TickConfig, v float64) { c.Mobility = v },
	},
	{
		name:   session.KeyViscosity,
		values: []float64{0, 0.02, 0.05, 0.1, 0.2},
		getter: func(c core.TickConfig) float64 { return c.Viscosity },
		setter: func(c *core.TickConfig, v float64) { c.Viscosity = v },
	},
	{
		name:   session.KeyCooling,
		values: []float64{0.002, 0.005, 0.01, 0.02, 0.05},
		getter: func(c core.TickConfig) float64 { return c.CoolingRate },
		setter: func(c *core.TickConfig, v float64) { c.CoolingRate = v },
	},
}

// ParameterSweep samples random flow settings and then runs a coarse
// coordinate descent over mobility, viscosity and cooling, evaluating each
// axis on a bounded pool of workers. It returns the best settings found, their
// telemetry and the improvement trace.
func ParameterSweep(base Scenario, passes, workers int) (core.TickConfig, FlowResult, []Record, error) {
	if passes <= 0 {
		passes = 1
	}
	if workers <= 0 {
		workers = 1
	}

	current := base.Session.Tick
	currentResult, err := Run(base)
	if err != nil {
		return current, currentResult, nil, err
	}
	records := []Record{{Parameter: "baseline", Result: currentResult, Tick: current}}

	samples := passes * 4
	if samples < 8 {
		samples = 8
	}
	rng := pcore.NewRNG(base.Seed + 0x5f3759df)
	for i := 0; i < samples; i++ {
		candidate := randomize(rng, current)
		res, err := Run(withTick(base, candidate))
		if err != nil {
			return current, currentResult, records, err
		}
		if better(res, currentResult) {
			current, currentResult = candidate, res
			records = append(records, Record{
				Parameter: fmt.Sprintf("random#%d", i+1),
				Result:    res,
				Tick:      candidate,
			})
		}
	}

	for pass := 1; pass <= passes; pass++ {
		improved := false
		for _, sp := range specs {
			best, bestResult, recs, err := evaluate(base, current, currentResult, sp, workers, pass)
			if err != nil {
				return current, currentResult, records, err
			}
			if len(recs) > 0 {
				current, currentResult = best, bestResult
				records = append(records, recs...)
				improved = true
			}
		}
		if !improved {
			break
		}
	}
	return current, currentResult, records, nil
}

func evaluate(base Scenario, tick core.TickConfig, baseline FlowResult, sp spec, workers, pass int) (core.TickConfig, FlowResult, []Record, error) {
	type candidate struct {
		result FlowResult
		err    error
		valid  bool
	}
	candidates := make([]candidate, len(sp.values))
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for idx, value := range sp.values {
		if almostEqual(value, sp.getter(tick)) {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, v float64) {
			defer wg.Done()
			defer func() { <-sem }()
			cand := tick
			sp.setter(&cand, v)
			res, err := Run(withTick(base, cand))
			candidates[i] = candidate{result: res, err: err, valid: true}
		}(idx, value)
	}
	wg.Wait()

	best, bestResult := tick, baseline
	var records []Record
	for idx, value := range sp.values {
		cand := candidates[idx]
		if !cand.valid {
			continue
		}
		if cand.err != nil {
			return tick, baseline, nil, cand.err
		}
		if better(cand.result, bestResult) {
			next := tick
			sp.setter(&next, value)
			best, bestResult = next, cand.result
			records = append(records, Record{
				Pass:      pass,
				Parameter: sp.name,
				Value:     strconv.FormatFloat(value, 'f', 3, 64),
				Result:    cand.result,
				Tick:      next,
			})
		}
	}
	return best, bestResult, records, nil
}

// better prefers a longer reach, then a longer-lived flow.
func better(a, b FlowResult) bool {
	if a.MaxDistance != b.MaxDistance {
		return a.MaxDistance > b.MaxDistance
	}
	return a.LastActiveStep > b.LastActiveStep
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-6
}

func withTick(sc Scenario, tick core.TickConfig) Scenario {
	sc.Session.Tick = tick
	return sc
}

func randomize(rng *pcore.RNG, base core.TickConfig) core.TickConfig {
	c := base
	c.Mobility = rng.FloatRange(0.05, 2)
	c.Viscosity = rng.FloatRange(0, 0.2)
	c.CoolingRate = rng.FloatRange(0.001, 0.05)
	return c
}
