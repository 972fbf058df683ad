//go:build ebiten

package app

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"lavaflow/internal/config"
	"lavaflow/internal/core"
	"lavaflow/internal/field"
	"lavaflow/internal/render"
	"lavaflow/internal/session"
	"lavaflow/internal/ui"
)

// Game adapts a session to the ebiten.Game interface. Physics runs at a fixed
// rate independent of the frame rate.
type Game struct {
	sess    *session.Session
	painter *render.Painter
	hud     *ui.HUD
	overlay *ui.Overlay
	clock   *core.FixedStep
	snap    *field.Snapshot

	palette []color.RGBA
	mode    render.Mode

	view     int
	hudWidth int
	stepOnce bool
}

// New constructs a Game for sess using the display settings in cfg.
func New(sess *session.Session, cfg *config.Config) *Game {
	n := sess.Engine().Size()
	scale := cfg.Scale
	if scale <= 0 {
		scale = 1
	}
	return &Game{
		sess:     sess,
		painter:  render.NewPainter(n),
		hud:      ui.NewHUD(sess, cfg.HUDWidth),
		overlay:  ui.NewOverlay(),
		clock:    core.NewFixedStep(cfg.TPS),
		snap:     field.NewSnapshot(n),
		palette:  field.NewPalette(cfg.Palette),
		view:     n * scale,
		hudWidth: cfg.HUDWidth,
	}
}

// WindowSize reports the window size in pixels.
func (g *Game) WindowSize() (int, int) { return g.view + g.hudWidth, g.view }

func (g *Game) scale() float64 {
	return float64(g.view) / float64(g.sess.Engine().Size())
}

// Update handles input and advances the physics by however many ticks are due.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.sess.TogglePaused()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.stepOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.sess.Clear()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyX) {
		g.sess.ClearVents()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		g.sess.SetVentsEnabled(!g.sess.VentsEnabled())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		g.mode = g.mode.Next()
	}

	onPanel := g.hud.Update(g.view)
	g.overlay.Update()

	mx, my := ebiten.CursorPosition()
	u, v, inside := cursorUV(mx, my, g.view)
	inside = inside && !onPanel
	if inside && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		g.sess.PlaceVent(u, v)
	}
	pouring := inside && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)

	dt := g.clock.Seconds()
	for due := g.clock.Due(); due > 0; due-- {
		if g.sess.Paused() {
			break
		}
		if pouring {
			g.sess.Inject(u, v)
		}
		if err := g.sess.Tick(dt); err != nil {
			return err
		}
	}
	if g.stepOnce {
		g.stepOnce = false
		if pouring {
			g.sess.Inject(u, v)
		}
		if err := g.sess.Step(dt); err != nil {
			return err
		}
	}

	g.hud.SetStatus(
		fmt.Sprintf("ticks %d  %s", g.sess.Ticks(), pausedLabel(g.sess.Paused())),
		fmt.Sprintf("view %s  vents %d", g.mode, len(g.sess.Vents())),
		"LMB pour  V vent  X clear vents",
		"E vents on/off  C clear  T view",
		"Space pause  N step  Q quit",
	)
	return nil
}

func pausedLabel(paused bool) string {
	if paused {
		return "paused"
	}
	return "running"
}

// Draw renders the map, the overlay and the HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	g.sess.Engine().Export(g.snap)
	scale := g.scale()
	g.painter.Blit(screen, g.snap, g.sess.Terrain(), g.mode, g.palette, scale)

	mx, my := ebiten.CursorPosition()
	_, _, inside := cursorUV(mx, my, g.view)
	g.overlay.Draw(screen, g.sess.Vents(), g.sess.VentsEnabled(), g.snap.Size, scale,
		g.sess.TickConfig().InjectionRadius, mx, my, inside)
	g.hud.Draw(screen, g.view, g.view)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.WindowSize()
}
