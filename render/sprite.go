package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Sprite is a bitmap of colors; ColorReset pixels are transparent
type Sprite struct {
	W, H   int
	Pixels []tcell.Color
}

// At returns the pixel at (x, y)
func (s *Sprite) At(x, y int) tcell.Color {
	return s.Pixels[y*s.W+x]
}

// ParseSprite builds a sprite from character art, scaling each character to scale x scale pixels
func ParseSprite(art []string, legend map[rune]tcell.Color, scale int) (*Sprite, error) {
	if len(art) == 0 || scale <= 0 {
		return nil, fmt.Errorf("empty sprite")
	}
	w := len([]rune(art[0]))
	s := &Sprite{W: w * scale, H: len(art) * scale}
	s.Pixels = make([]tcell.Color, s.W*s.H)

	for row, line := range art {
		runes := []rune(line)
		if len(runes) != w {
			return nil, fmt.Errorf("sprite row %d has width %d, want %d", row, len(runes), w)
		}
		for col, r := range runes {
			c, ok := legend[r]
			if !ok {
				return nil, fmt.Errorf("sprite row %d: unknown glyph %q", row, r)
			}
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					s.Pixels[(row*scale+dy)*s.W+col*scale+dx] = c
				}
			}
		}
	}
	return s, nil
}

func mustSprite(art []string, legend map[rune]tcell.Color, scale int) *Sprite {
	s, err := ParseSprite(art, legend, scale)
	if err != nil {
		panic(err)
	}
	return s
}

var spriteLegend = map[rune]tcell.Color{
	'.': tcell.ColorBlack,
	'R': tcell.ColorRed,
	'W': tcell.ColorWhite,
	'G': tcell.ColorGray,
	'Y': tcell.ColorYellow,
}

// LifeSprite marks a cube that grants a life
var LifeSprite = mustSprite([]string{
	".........",
	".RR...RR.",
	"RRRR.RRRR",
	"RRWRRRRRR",
	"RRRRRRRRR",
	".RRRRRRR.",
	"..RRRRR..",
	"...RRR...",
	"....R....",
}, spriteLegend, 2)

// SlowSprite marks the disguised slow-down cube
var SlowSprite = mustSprite([]string{
	".........",
	"....GGG..",
	"...G...G.",
	"...G.G.G.",
	"...G..GG.",
	"YY..GGG..",
	".YYYYYYYY",
	"..YYYYYY.",
	".........",
}, spriteLegend, 2)
