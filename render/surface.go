// Package render draws the playfield onto a pixel-addressed surface.
package render

import "github.com/gdamore/tcell/v2"

// Surface is a drawing target addressed in field pixels
type Surface interface {
	FillScreen(c tcell.Color)
	FillRect(x, y, w, h int, c tcell.Color)
	DrawSprite(x, y int, s *Sprite)
	DrawText(x, y int, text string, fg tcell.Color)
	DrawCrosshair(x, y, size int, c tcell.Color)
	Show()
}

// Palette colors shared by every screen
var (
	ColorBackground = tcell.ColorBlack
	ColorText       = tcell.ColorWhite
	ColorCrosshair  = tcell.ColorRed
	ColorSelected   = tcell.ColorRed
	ColorTitle      = tcell.ColorGreen
)
