//go:build ebiten

package app

import (
	"context"
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"pixelcore/internal/core"
	"pixelcore/internal/engine"
	"pixelcore/internal/render"
	"pixelcore/internal/ui"
)

const hudWidth = 240

// Game adapts an engine to the ebiten.Game interface.
type Game struct {
	ctx     context.Context
	engine  *engine.Engine
	painter *render.Painter
	hud     *ui.HUD
	overlay *ui.Overlay
	reload  <-chan Reload

	title     string
	scale     int
	start     time.Time
	pausedAt  time.Time
	paused    bool
	frame     core.Buffer
	reloadErr error
}

// New constructs a Game for opts.Engine.
func New(ctx context.Context, opts Options) *Game {
	opts.defaults()
	g := &Game{
		ctx:     ctx,
		engine:  opts.Engine,
		painter: render.NewPainter(),
		hud:     ui.NewHUD(hudWidth),
		overlay: ui.NewOverlay(opts.Scale),
		reload:  opts.Reload,
		title:   opts.Title,
		scale:   opts.Scale,
		start:   time.Now(),
	}
	if opts.Project != nil {
		g.overlay.Masks.SetProject(opts.Project, opts.Engine.Layout().Len())
	}
	return g
}

// Run opens the preview window and blocks until it is closed or ctx ends.
func Run(ctx context.Context, opts Options) error {
	if opts.Engine == nil {
		return errors.New("app: nil engine")
	}
	opts.defaults()
	g := New(ctx, opts)
	w, h := g.Layout(0, 0)
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetTPS(opts.TPS)
	ebiten.SetWindowSize(w, h)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// Reset restarts the engine and the wall clock.
func (g *Game) Reset() {
	g.engine.Reset()
	g.start = time.Now()
	g.pausedAt = g.start
}

func (g *Game) elapsed() float64 {
	now := time.Now()
	if g.paused {
		now = g.pausedAt
	}
	return now.Sub(g.start).Seconds()
}

// Update handles input, applies pending reloads and renders the next frame.
func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.togglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.hud.Toggle()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.overlay.Masks.Next()
	}
	g.drainReloads()

	g.frame = g.engine.Render(g.elapsed())
	g.hud.Update(ui.Status{
		Title:      g.title,
		Frame:      g.engine.Frame(),
		Time:       g.elapsed(),
		Paused:     g.paused,
		Layers:     g.engine.LayerCount(),
		Mask:       g.overlay.Masks.Selected(),
		Faults:     g.engine.Faults(),
		RuleErrors: g.engine.RuleErrors(),
		Variables:  g.engine.Variables(),
		FrameErr:   g.engine.Err(),
		ReloadErr:  g.reloadErr,
	})
	return nil
}

func (g *Game) togglePause() {
	if g.paused {
		// Shift the origin so the paused span is not fed to the clock.
		g.start = g.start.Add(time.Since(g.pausedAt))
	} else {
		g.pausedAt = time.Now()
	}
	g.paused = !g.paused
}

func (g *Game) drainReloads() {
	for {
		select {
		case r, ok := <-g.reload:
			if !ok {
				g.reload = nil
				return
			}
			g.apply(r)
		default:
			return
		}
	}
}

func (g *Game) apply(r Reload) {
	if r.Err != nil {
		g.reloadErr = r.Err
		core.Logger().Warn("reload failed", "err", r.Err)
		return
	}
	if err := g.engine.SetProject(r.Project); err != nil {
		g.reloadErr = err
		core.Logger().Warn("reload rejected", "err", err)
		return
	}
	g.reloadErr = nil
	g.overlay.Masks.SetProject(r.Project, g.engine.Layout().Len())
	ebiten.SetWindowSize(g.Layout(0, 0))
}

// Draw renders the current frame, the mask overlay and the HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	layout := g.engine.Layout()
	if g.frame != nil {
		g.painter.Blit(screen, g.frame, layout, g.scale)
	}
	g.overlay.Draw(screen, layout)
	_, h := g.Layout(0, 0)
	g.hud.Draw(screen, layout.Size().W*g.scale, h)
}

// Layout returns the logical screen size: the scaled pixel view plus the HUD.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.engine.Layout().Size()
	return s.W*g.scale + g.hud.Width(), max(s.H*g.scale, 240)
}
