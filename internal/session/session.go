package session

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"lavaflow/internal/core"
	"lavaflow/internal/field"
	"lavaflow/internal/sims/thermal"
	"lavaflow/internal/sims/transport"
	"lavaflow/internal/terrain"
	"lavaflow/internal/vents"
	"lavaflow/pkg/logger"
)

// Config selects the engine and its starting tunables.
type Config struct {
	Engine string
	Size   int

	Tick core.TickConfig

	VentAmount float64
	VentRadius float64

	Thermal thermal.Params
}

// DefaultConfig runs the transport engine on a 128×128 grid.
func DefaultConfig() Config {
	return Config{
		Engine:     transport.Name,
		Size:       128,
		Tick:       core.DefaultTickConfig(),
		VentAmount: 60,
		VentRadius: 0.015,
		Thermal:    thermal.DefaultParams(),
	}
}

// Session is the host-side glue around one engine: it owns the engine, the
// vent registry and the height field, and is driven from a single goroutine.
type Session struct {
	cfg    Config
	hf     *terrain.HeightField
	engine core.Engine
	vents  *vents.Registry
	snap   *field.Snapshot

	paused bool
	ticks  int

	log *logrus.Entry
}

// New builds the configured engine over hf.
func New(cfg Config, hf *terrain.HeightField) (*Session, error) {
	s := &Session{
		cfg:   cfg,
		vents: vents.NewRegistry(cfg.VentAmount, cfg.VentRadius),
		snap:  &field.Snapshot{},
		log:   logger.Component("session"),
	}
	if err := s.rebuild(hf, cfg.Size); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) rebuild(hf *terrain.HeightField, n int) error {
	eng, err := core.Build(s.cfg.Engine, n, hf)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if th, ok := eng.(*thermal.Engine); ok {
		th.SetParams(s.cfg.Thermal)
	}
	s.engine = eng
	s.hf = hf
	s.cfg.Size = n
	s.ticks = 0
	s.log.WithFields(logrus.Fields{
		"engine":  eng.Name(),
		"size":    n,
		"terrain": hf.R,
	}).Debug("engine ready")
	return nil
}

// Engine exposes the active engine.
func (s *Session) Engine() core.Engine { return s.engine }

// Config returns the session configuration with the current tunables.
func (s *Session) Config() Config {
	cfg := s.cfg
	if th, ok := s.engine.(*thermal.Engine); ok {
		cfg.Thermal = th.Params()
	}
	return cfg
}

// TickConfig returns the tunables passed to every Advance.
func (s *Session) TickConfig() core.TickConfig { return s.cfg.Tick }

// Ticks reports how many ticks advanced since the engine was built.
func (s *Session) Ticks() int { return s.ticks }

// Terrain returns the live height field, including any feedback.
func (s *Session) Terrain() *terrain.HeightField { return s.hf }

// Tick injects from every enabled vent once and advances the engine. Paused
// sessions do nothing. dt must be finite and non-negative.
func (s *Session) Tick(dt float64) error {
	if err := core.ValidateStep(dt); err != nil {
		return err
	}
	if s.paused {
		return nil
	}
	s.advance(dt)
	return nil
}

// Step advances exactly one tick regardless of the pause flag.
func (s *Session) Step(dt float64) error {
	if err := core.ValidateStep(dt); err != nil {
		return err
	}
	s.advance(dt)
	return nil
}

func (s *Session) advance(dt float64) {
	s.vents.InjectAll(s.engine)
	s.engine.Advance(dt, s.cfg.Tick)
	s.ticks++
}

// Inject performs a one-shot injection with the configured amount and radius.
func (s *Session) Inject(u, v float64) {
	s.InjectWith(u, v, s.cfg.Tick.InjectionAmount, s.cfg.Tick.InjectionRadius)
}

// InjectWith performs a one-shot injection with explicit amount and radius.
func (s *Session) InjectWith(u, v, amount, radiusFraction float64) {
	s.engine.Inject(u, v, amount, radiusFraction)
}

// PlaceVent adds a persistent vent at (u, v).
func (s *Session) PlaceVent(u, v float64) vents.Vent {
	vent := s.vents.Place(u, v)
	s.log.WithFields(logrus.Fields{"u": vent.U, "v": vent.V, "count": s.vents.Len()}).Debug("vent placed")
	return vent
}

// ClearVents removes every vent.
func (s *Session) ClearVents() {
	s.vents.Clear()
	s.log.Debug("vents cleared")
}

// SetVentsEnabled toggles vent injection.
func (s *Session) SetVentsEnabled(on bool) { s.vents.SetEnabled(on) }

// VentsEnabled reports whether vents inject.
func (s *Session) VentsEnabled() bool { return s.vents.Enabled() }

// Vents returns the placed vents.
func (s *Session) Vents() []vents.Vent { return s.vents.Vents() }

// Clear zeroes all fluid and restores the original terrain.
func (s *Session) Clear() {
	s.engine.Clear()
	s.hf.Restore()
	s.log.Info("cleared")
}

// Reload swaps in a new height field and rebuilds the engine over it. Vents
// are kept since they are stored in normalized coordinates. On failure the
// previous engine stays active.
func (s *Session) Reload(hf *terrain.HeightField) error {
	if hf == nil {
		return fmt.Errorf("session: %w", core.ErrNilTerrain)
	}
	return s.rebuild(hf, s.cfg.Size)
}

// Resize rebuilds the engine at a new grid size over the pristine terrain.
func (s *Session) Resize(n int) error {
	if n == s.cfg.Size {
		return nil
	}
	s.hf.Restore()
	return s.rebuild(s.hf, n)
}

// Snapshot exports the current state into a fresh copy the caller may keep.
func (s *Session) Snapshot() *field.Snapshot {
	s.engine.Export(s.snap)
	return s.snap.Clone()
}

// Paused reports the pause flag.
func (s *Session) Paused() bool { return s.paused }

// SetPaused sets the pause flag.
func (s *Session) SetPaused(p bool) { s.paused = p }

// TogglePaused flips the pause flag and returns the new value.
func (s *Session) TogglePaused() bool {
	s.paused = !s.paused
	return s.paused
}
