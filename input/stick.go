package input

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
)

// Positioner reports the current crosshair position
type Positioner interface {
	Position() (x, y int)
}

// Stick is a virtual analog stick fed by terminal events.
// Arrow keys tilt it fully for a short hold; the mouse steers toward the pointer
type Stick struct {
	mu sync.Mutex

	hold   time.Duration
	until  time.Time
	dx, dy int

	pointer bool
	px, py  int
	aim     Positioner
	cellW   int
	cellH   int
	gain    int
	button  bool
	closed  bool
	now     func() time.Time
}

// NewStick creates a stick. cellW and cellH convert terminal cells to field pixels
func NewStick(aim Positioner, cellW, cellH int) *Stick {
	return &Stick{
		hold:  150 * time.Millisecond,
		aim:   aim,
		cellW: cellW,
		cellH: cellH,
		gain:  AxisCenter / 6,
		now:   time.Now,
	}
}

// HandleEvent feeds a terminal event; returns true if the stick consumed it
func (s *Stick) HandleEvent(ev tcell.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e := ev.(type) {
	case *tcell.EventKey:
		dx, dy := 0, 0
		switch e.Key() {
		case tcell.KeyLeft:
			dx = -1
		case tcell.KeyRight:
			dx = 1
		case tcell.KeyUp:
			dy = 1
		case tcell.KeyDown:
			dy = -1
		case tcell.KeyRune:
			switch e.Rune() {
			case 'h':
				dx = -1
			case 'l':
				dx = 1
			case 'k':
				dy = 1
			case 'j':
				dy = -1
			case ' ':
				s.button = true
				return true
			default:
				return false
			}
		default:
			return false
		}
		s.pointer = false
		s.dx, s.dy = dx*(AxisCenter-1), dy*(AxisCenter-1)
		s.until = s.now().Add(s.hold)
		return true

	case *tcell.EventMouse:
		col, row := e.Position()
		s.pointer = true
		s.px = col*s.cellW + s.cellW/2
		s.py = row*s.cellH + s.cellH/2
		if e.Buttons()&tcell.Button1 != 0 {
			s.button = true
		}
		return true
	}
	return false
}

// Sample reports the current deflection around the axis center
func (s *Stick) Sample() (Raw, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Raw{}, ErrSamplerClosed
	}

	dx, dy := 0, 0
	switch {
	case s.pointer && s.aim != nil:
		x, y := s.aim.Position()
		dx = (s.px - x) * s.gain
		dy = (y - s.py) * s.gain
	case s.now().Before(s.until):
		dx, dy = s.dx, s.dy
	}

	r := Raw{
		X:      clampAxis(AxisCenter + dx),
		Y:      clampAxis(AxisCenter + dy),
		Button: s.button,
	}
	s.button = false
	return r, nil
}

// Close makes further samples return ErrSamplerClosed
func (s *Stick) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
