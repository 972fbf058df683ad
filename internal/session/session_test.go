package session

import (
	"errors"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"lavaflow/internal/core"
	"lavaflow/internal/field"
	"lavaflow/internal/sims/thermal"
	"lavaflow/internal/sims/transport"
	"lavaflow/internal/terrain"
	"lavaflow/pkg/logger"
)

func newSession(t *testing.T, engine string, n int) (*Session, *terrain.HeightField) {
	t.Helper()
	hf, err := terrain.Flat(n, 0)
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.Engine = engine
	cfg.Size = n
	s, err := New(cfg, hf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, hf
}

func thicknessTotal(s *Session) float64 {
	return s.Snapshot().Total(field.ChannelThickness)
}

func TestNewRejectsUnknownEngine(t *testing.T) {
	hf, _ := terrain.Flat(8, 0)
	cfg := DefaultConfig()
	cfg.Engine = "plasma"
	if _, err := New(cfg, hf); !errors.Is(err, core.ErrUnknownEngine) {
		t.Fatalf("expected ErrUnknownEngine, got %v", err)
	}
	cfg.Engine = transport.Name
	cfg.Size = 0
	if _, err := New(cfg, hf); !errors.Is(err, core.ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}
}

func TestTickValidatesStep(t *testing.T) {
	s, _ := newSession(t, transport.Name, 16)
	for _, dt := range []float64{-0.1, math.NaN(), math.Inf(1)} {
		if err := s.Tick(dt); !errors.Is(err, core.ErrInvalidTimeStep) {
			t.Fatalf("Tick(%v) = %v, want ErrInvalidTimeStep", dt, err)
		}
	}
	if err := s.Tick(0); err != nil {
		t.Fatalf("zero dt is valid: %v", err)
	}
}

func TestVentsInjectEveryTick(t *testing.T) {
	s, _ := newSession(t, transport.Name, 32)
	s.SetFloatParameter(KeyCooling, 0)
	s.SetFloatParameter(KeyViscosity, 0)
	s.PlaceVent(0.5, 0.5)

	if err := s.Tick(0.1); err != nil {
		t.Fatal(err)
	}
	first := thicknessTotal(s)
	if first == 0 {
		t.Fatal("vent should inject on the first tick")
	}
	if err := s.Tick(0.1); err != nil {
		t.Fatal(err)
	}
	second := thicknessTotal(s)
	if second <= first {
		t.Fatalf("vent should keep adding mass: %f -> %f", first, second)
	}

	s.SetVentsEnabled(false)
	s.Tick(0.1)
	if got := thicknessTotal(s); got > second {
		t.Fatalf("disabled vents still inject: %f -> %f", second, got)
	}

	s.ClearVents()
	if len(s.Vents()) != 0 {
		t.Fatal("ClearVents should drop every vent")
	}
}

func TestPauseSkipsTicks(t *testing.T) {
	s, _ := newSession(t, transport.Name, 16)
	s.PlaceVent(0.5, 0.5)
	if !s.TogglePaused() || !s.Paused() {
		t.Fatal("TogglePaused should pause")
	}
	s.Tick(0.1)
	if s.Ticks() != 0 || thicknessTotal(s) != 0 {
		t.Fatal("paused session advanced")
	}
	if err := s.Step(0.1); err != nil {
		t.Fatal(err)
	}
	if s.Ticks() != 1 || thicknessTotal(s) == 0 {
		t.Fatal("Step should advance while paused")
	}
	s.SetPaused(false)
	s.Tick(0.1)
	if s.Ticks() != 2 {
		t.Fatalf("ticks = %d, want 2", s.Ticks())
	}
}

func TestInjectUsesConfiguredAmount(t *testing.T) {
	s, _ := newSession(t, transport.Name, 32)
	s.SetFloatParameter(KeyInjectionAmount, 80)
	s.Inject(0.5, 0.5)
	snap := s.Snapshot()
	x, y := core.CellAt(32, 0.5, 0.5)
	if got := snap.At(x, 31-y, field.ChannelThickness); got != 80 {
		t.Fatalf("centre = %f, want 80", got)
	}

	// Snapshots are copies.
	snap.Data[0] = 99
	if s.Snapshot().Data[0] == 99 {
		t.Fatal("snapshot aliases session state")
	}
}

func TestClearRestoresThermalTerrain(t *testing.T) {
	s, hf := newSession(t, thermal.Name, 8)
	th := s.Engine().(*thermal.Engine)
	p := th.Params()
	p.EruptionTemp = thermal.SolidificationTemp - 1
	th.SetParams(p)
	s.InjectWith(0.5, 0.5, 50, 0.01)
	s.Tick(0.1)
	if !hf.Modified() {
		t.Fatal("cold lava should have deposited into the terrain")
	}
	if snap := s.Snapshot(); snap.Elevation == nil {
		t.Fatal("snapshot should carry the modified terrain")
	}
	s.Clear()
	if hf.Modified() || thicknessTotal(s) != 0 {
		t.Fatal("Clear should empty the grid and restore terrain")
	}
}

func TestReloadAndResize(t *testing.T) {
	s, _ := newSession(t, transport.Name, 16)
	s.PlaceVent(0.2, 0.3)
	s.Inject(0.5, 0.5)

	hills, _ := terrain.Hills(24, 50, 3)
	if err := s.Reload(hills); err != nil {
		t.Fatal(err)
	}
	if s.Terrain() != hills || thicknessTotal(s) != 0 {
		t.Fatal("Reload should start a fresh engine on the new terrain")
	}
	if len(s.Vents()) != 1 {
		t.Fatal("vents survive a reload")
	}
	if err := s.Reload(nil); err == nil {
		t.Fatal("nil terrain should be rejected")
	}

	if !s.SetIntParameter(KeySize, 40) {
		t.Fatal("size should be settable")
	}
	if s.Engine().Size() != 40 || s.Snapshot().Size != 40 {
		t.Fatalf("engine size = %d, want 40", s.Engine().Size())
	}
	s.SetIntParameter(KeySize, 4)
	if s.Engine().Size() != 16 {
		t.Fatalf("size should clamp to 16, got %d", s.Engine().Size())
	}
}

func TestParameterClamping(t *testing.T) {
	s, _ := newSession(t, transport.Name, 16)
	cases := []struct {
		key   string
		value float64
		want  func(Config) float64
		exp   float64
	}{
		{KeyMobility, 5, func(c Config) float64 { return c.Tick.Mobility }, 2},
		{KeyMobility, 0, func(c Config) float64 { return c.Tick.Mobility }, 0.05},
		{KeyViscosity, -1, func(c Config) float64 { return c.Tick.Viscosity }, 0},
		{KeyCooling, 0.5, func(c Config) float64 { return c.Tick.CoolingRate }, 0.2},
		{KeyInjectionAmount, 5, func(c Config) float64 { return c.Tick.InjectionAmount }, 30},
		{KeyInjectionRadius, 1, func(c Config) float64 { return c.Tick.InjectionRadius }, 0.2},
		{KeyVentAmount, 2000, func(c Config) float64 { return c.VentAmount }, 1000},
	}
	for _, tc := range cases {
		if !s.SetFloatParameter(tc.key, tc.value) {
			t.Fatalf("%s rejected", tc.key)
		}
		if got := tc.want(s.Config()); got != tc.exp {
			t.Fatalf("%s = %f, want %f", tc.key, got, tc.exp)
		}
	}
	if s.SetFloatParameter("yield_strength", 10) {
		t.Fatal("transport engine has no yield strength")
	}
	if s.SetFloatParameter(KeyMobility, math.NaN()) {
		t.Fatal("NaN accepted")
	}
}

func TestThermalControlsAreDelegated(t *testing.T) {
	s, _ := newSession(t, thermal.Name, 8)
	controls := s.ParameterControls()
	found := false
	for _, c := range controls {
		if c.Key == "yield_strength" {
			found = true
		}
	}
	if !found {
		t.Fatal("thermal controls missing")
	}
	if !s.SetFloatParameter("yield_strength", 1200) {
		t.Fatal("thermal key rejected")
	}
	if got := s.Config().Thermal.YieldStrength; got != 1200 {
		t.Fatalf("yield strength = %f, want 1200", got)
	}
	snap := s.Parameters()
	if p, ok := snap.Lookup("engine"); !ok || p.Value != thermal.Name {
		t.Fatal("parameters should report the engine name")
	}
	if _, ok := snap.Lookup("terrain_feedback"); !ok {
		t.Fatal("thermal group missing from parameters")
	}
}

func TestRebuildLogsQuietly(t *testing.T) {
	hook := logtest.NewLocal(logger.Log)
	defer hook.Reset()

	s, _ := newSession(t, transport.Name, 16)
	if err := s.Resize(32); err != nil {
		t.Fatal(err)
	}
	for _, entry := range hook.AllEntries() {
		if entry.Level <= logrus.InfoLevel && entry.Message == "engine ready" {
			t.Fatalf("engine rebuilds should not log at %s", entry.Level)
		}
	}
}
