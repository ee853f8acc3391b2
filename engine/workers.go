package engine

import (
	"context"

	"github.com/lixenwraith/cube-hunter/render"
)

// renderCubes draws every live cube whenever a redraw is requested
func (g *Game) renderCubes(ctx context.Context) {
	w := g.world
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.redraw:
		}

		w.drawMu.Lock()
		if ctx.Err() != nil || w.Session.Over() {
			w.drawMu.Unlock()
			return
		}
		for _, c := range g.Cohort().Coordinators() {
			// The cube lock orders this draw against a hit clearing the same cell
			c.cube.Lock()
			if c.cube.Alive {
				render.DrawCube(w.Surface, w.Layout, c.cube.ViewLocked())
			}
			c.cube.Unlock()
		}
		w.Surface.Show()
		w.drawMu.Unlock()
	}
}

// trackCrosshair consumes input samples and redraws the crosshair and HUD
func (g *Game) trackCrosshair(ctx context.Context) {
	w := g.world
	prevX, prevY := w.Crosshair.Position()
	for {
		s, err := w.Queue.Take(ctx)
		if err != nil {
			return
		}
		w.RequestRedraw()

		w.drawMu.Lock()
		if ctx.Err() != nil {
			w.drawMu.Unlock()
			return
		}
		// The erase covers the largest crosshair so an expiring aim assist leaves no trace
		w.Surface.DrawCrosshair(prevX, prevY, w.Timing.LargeRadius, render.ColorBackground)
		w.Surface.DrawCrosshair(s.X, s.Y, w.Crosshair.Radius(), render.ColorCrosshair)
		render.DrawHUD(w.Surface, w.Layout, w.Session.Score(), w.Session.Life())
		w.Surface.Show()
		w.drawMu.Unlock()

		prevX, prevY = s.X, s.Y
	}
}
