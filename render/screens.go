package render

import (
	"fmt"

	"github.com/lixenwraith/cube-hunter/collision"
	"github.com/lixenwraith/cube-hunter/cube"
	"github.com/lixenwraith/cube-hunter/session"
)

// Layout places the HUD and text screens relative to the playfield
type Layout struct {
	FieldWidth  int
	FieldHeight int
	CellWidth   int
	CellHeight  int
	// LineHeight is the pixel pitch of text lines
	LineHeight int
}

// HUDY returns the pixel row of the score/life line under the field
func (l Layout) HUDY() int { return l.FieldHeight + 2 }

func (l Layout) line(n int) int { return n * l.LineHeight }

// DrawCube fills a cube's cell, using a sprite for the life and slow-down kinds
func DrawCube(s Surface, l Layout, v cube.View) {
	r := collision.CellBounds(v.Pos, l.CellWidth, l.CellHeight)
	switch v.PowerUp {
	case cube.Life:
		s.DrawSprite(r.X, r.Y, LifeSprite)
	case cube.SlowDown:
		s.DrawSprite(r.X, r.Y, SlowSprite)
	default:
		s.FillRect(r.X, r.Y, r.W, r.H, v.Color)
	}
}

// ClearCube paints a cube's cell with the background
func ClearCube(s Surface, l Layout, v cube.View) {
	r := collision.CellBounds(v.Pos, l.CellWidth, l.CellHeight)
	s.FillRect(r.X, r.Y, r.W, r.H, ColorBackground)
}

// DrawHUD writes score and life under the field
func DrawHUD(s Surface, l Layout, score, life int) {
	y := l.HUDY()
	s.DrawText(0, y, fmt.Sprintf("Score:%-4d", score), ColorText)
	s.DrawText(l.FieldWidth/2+6, y, fmt.Sprintf("Life:%-3d", life), ColorText)
}

// DrawGameOver shows the final score and the available buttons
func DrawGameOver(s Surface, l Layout, score int) {
	s.FillScreen(ColorBackground)
	s.DrawText(30, l.line(4), "Game Over", ColorText)
	s.DrawText(18, l.line(6), fmt.Sprintf("Score: %d", score), ColorText)
	s.DrawText(0, l.line(9), "s: save score", ColorText)
	s.DrawText(0, l.line(10), "r: restart", ColorText)
	s.Show()
}

// DrawRestarting shows the restart banner
func DrawRestarting(s Surface, l Layout) {
	s.FillScreen(ColorBackground)
	s.DrawText(30, l.line(6), "Restarting", ColorText)
	s.Show()
}

// DrawScoreEntry shows the initials being edited with the cursor letter highlighted
func DrawScoreEntry(s Surface, l Layout, score int, initials string, cursor int, full bool) {
	if full {
		s.FillScreen(ColorBackground)
		s.DrawText(0, l.line(6), fmt.Sprintf("Score: %d", score), ColorText)
		s.DrawText(0, l.line(10), "Press s to save", ColorText)
	}
	for i, r := range initials {
		c := ColorText
		if i == cursor {
			c = ColorSelected
		}
		s.DrawText(40+i*18, l.line(3), string(r), c)
	}
	s.Show()
}

// DrawHighScores lists the filled high-score slots
func DrawHighScores(s Surface, l Layout, entries []session.Entry) {
	s.FillScreen(ColorBackground)
	s.DrawText(15, 0, "Highscores", ColorTitle)
	for i, e := range entries {
		s.DrawText(0, l.line(2+i*2), fmt.Sprintf("%d. %s %d", i+1, e.Name, e.Score), ColorText)
	}
	s.Show()
}
