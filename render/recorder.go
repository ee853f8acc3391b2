package render

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

// OpKind names a recorded drawing call
type OpKind string

const (
	OpFillScreen OpKind = "fill_screen"
	OpFillRect   OpKind = "fill_rect"
	OpSprite     OpKind = "sprite"
	OpText       OpKind = "text"
	OpCrosshair  OpKind = "crosshair"
	OpShow       OpKind = "show"
)

// Op is one recorded drawing call
type Op struct {
	Kind       OpKind
	X, Y, W, H int
	Color      tcell.Color
	Text       string
}

// Recorder is an in-memory surface for headless runs and tests.
// It keeps the most recent ops up to a limit
type Recorder struct {
	mu    sync.Mutex
	ops   []Op
	limit int
	total map[OpKind]int
}

// NewRecorder keeps at most limit ops; zero keeps everything
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit, total: make(map[OpKind]int)}
}

func (r *Recorder) add(op Op) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total[op.Kind]++
	r.ops = append(r.ops, op)
	if r.limit > 0 && len(r.ops) > r.limit {
		r.ops = append(r.ops[:0], r.ops[len(r.ops)-r.limit:]...)
	}
}

func (r *Recorder) FillScreen(c tcell.Color) { r.add(Op{Kind: OpFillScreen, Color: c}) }

func (r *Recorder) FillRect(x, y, w, h int, c tcell.Color) {
	r.add(Op{Kind: OpFillRect, X: x, Y: y, W: w, H: h, Color: c})
}

func (r *Recorder) DrawSprite(x, y int, s *Sprite) {
	r.add(Op{Kind: OpSprite, X: x, Y: y, W: s.W, H: s.H})
}

func (r *Recorder) DrawText(x, y int, text string, fg tcell.Color) {
	r.add(Op{Kind: OpText, X: x, Y: y, Color: fg, Text: text})
}

func (r *Recorder) DrawCrosshair(x, y, size int, c tcell.Color) {
	r.add(Op{Kind: OpCrosshair, X: x, Y: y, W: size, Color: c})
}

func (r *Recorder) Show() { r.add(Op{Kind: OpShow}) }

// Ops returns a copy of the retained ops
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Op, len(r.ops))
	copy(out, r.ops)
	return out
}

// Count returns how many ops of a kind were ever recorded
func (r *Recorder) Count(kind OpKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total[kind]
}

// Texts returns the retained text ops in order
func (r *Recorder) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, op := range r.ops {
		if op.Kind == OpText {
			out = append(out, op.Text)
		}
	}
	return out
}

// Reset drops all ops and counts
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = nil
	clear(r.total)
}
