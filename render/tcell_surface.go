package render

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Pixel-to-cell scale of the terminal surface. Terminal cells are about twice as tall as wide
const (
	PixelsPerCol = 3
	PixelsPerRow = 6
)

// TcellSurface renders field pixels onto a tcell screen
type TcellSurface struct {
	mu     sync.Mutex
	screen tcell.Screen
	width  int
	height int
	offX   int
	offY   int
}

// NewTcellSurface maps a width x height pixel field onto screen, centered
func NewTcellSurface(screen tcell.Screen, width, height int) *TcellSurface {
	s := &TcellSurface{screen: screen, width: width, height: height}
	s.Resize()
	return s
}

// Resize recomputes the centering offset after a terminal resize
func (s *TcellSurface) Resize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cols, rows := s.screen.Size()
	s.offX = max((cols-s.width/PixelsPerCol)/2, 0)
	s.offY = max((rows-s.height/PixelsPerRow)/2, 0)
}

// ToField converts a screen cell to the field pixel at its center
func (s *TcellSurface) ToField(col, row int) (x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (col-s.offX)*PixelsPerCol + PixelsPerCol/2, (row-s.offY)*PixelsPerRow + PixelsPerRow/2
}

// Offset returns the screen cell of field pixel (0, 0)
func (s *TcellSurface) Offset() (col, row int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offX, s.offY
}

func (s *TcellSurface) put(col, row int, r rune, style tcell.Style) {
	if col < 0 || row < 0 || col*PixelsPerCol >= s.width || row*PixelsPerRow >= s.height {
		return
	}
	s.screen.SetContent(s.offX+col, s.offY+row, r, nil, style)
}

// FillScreen paints the whole field
func (s *TcellSurface) FillScreen(c tcell.Color) {
	s.FillRect(0, 0, s.width, s.height, c)
}

// FillRect paints every cell whose area intersects the rectangle
func (s *TcellSurface) FillRect(x, y, w, h int, c tcell.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	style := tcell.StyleDefault.Background(c).Foreground(c)
	for row := y / PixelsPerRow; row <= (y+h-1)/PixelsPerRow; row++ {
		for col := x / PixelsPerCol; col <= (x+w-1)/PixelsPerCol; col++ {
			s.put(col, row, ' ', style)
		}
	}
}

// DrawSprite samples the sprite at each cell center
func (s *TcellSurface) DrawSprite(x, y int, sp *Sprite) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for row := 0; row*PixelsPerRow < sp.H; row++ {
		for col := 0; col*PixelsPerCol < sp.W; col++ {
			px := min(col*PixelsPerCol+PixelsPerCol/2, sp.W-1)
			py := min(row*PixelsPerRow+PixelsPerRow/2, sp.H-1)
			c := sp.At(px, py)
			if c == tcell.ColorReset {
				continue
			}
			style := tcell.StyleDefault.Background(c).Foreground(c)
			s.put((x+col*PixelsPerCol)/PixelsPerCol, (y+row*PixelsPerRow)/PixelsPerRow, ' ', style)
		}
	}
}

// DrawText writes text starting at the cell containing (x, y)
func (s *TcellSurface) DrawText(x, y int, text string, fg tcell.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()

	style := tcell.StyleDefault.Background(ColorBackground).Foreground(fg)
	col, row := x/PixelsPerCol, y/PixelsPerRow
	for i, r := range []rune(text) {
		s.put(col+i, row, r, style)
	}
}

// DrawCrosshair draws a plus sign with arms of length size
func (s *TcellSurface) DrawCrosshair(x, y, size int, c tcell.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()

	style := tcell.StyleDefault.Background(ColorBackground).Foreground(c)
	erase := c == ColorBackground
	glyph := func(r rune) rune {
		if erase {
			return ' '
		}
		return r
	}

	col, row := x/PixelsPerCol, y/PixelsPerRow
	for cx := (x - size) / PixelsPerCol; cx <= (x+size)/PixelsPerCol; cx++ {
		s.put(cx, row, glyph('─'), style)
	}
	for cy := (y - size) / PixelsPerRow; cy <= (y+size)/PixelsPerRow; cy++ {
		s.put(col, cy, glyph('│'), style)
	}
	s.put(col, row, glyph('┼'), style)
}

// Show flushes pending changes to the terminal
func (s *TcellSurface) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen.Show()
}
