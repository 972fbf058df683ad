package core

import "time"

// maxCatchUp bounds how many ticks a stalled host may owe. Without it a long
// pause (window drag, debugger) would trigger a burst of physics steps.
const maxCatchUp = 4

// FixedStep runs simulation updates at a steady ticks-per-second rate,
// independent of how often the host loop polls it.
type FixedStep struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
	now         func() time.Time
}

// NewFixedStep constructs a FixedStep controller targeting the given TPS.
func NewFixedStep(tps int) *FixedStep {
	fs := &FixedStep{now: time.Now}
	fs.SetTPS(tps)
	return fs
}

// SetTPS changes the tick rate. It is safe to call from the main loop.
func (f *FixedStep) SetTPS(tps int) {
	if tps <= 0 {
		tps = 60
	}
	f.step = time.Second / time.Duration(tps)
}

// Step reports the tick duration.
func (f *FixedStep) Step() time.Duration { return f.step }

// Seconds reports the tick duration in seconds, the dt handed to engines.
func (f *FixedStep) Seconds() float64 { return f.step.Seconds() }

// Due returns how many ticks elapsed since the previous call.
func (f *FixedStep) Due() int {
	now := f.now()
	if f.last.IsZero() {
		f.last = now
		return 0
	}
	f.accumulator += now.Sub(f.last)
	f.last = now
	limit := time.Duration(maxCatchUp) * f.step
	if f.accumulator > limit {
		f.accumulator = limit
	}
	n := 0
	for f.accumulator >= f.step {
		f.accumulator -= f.step
		n++
	}
	return n
}
