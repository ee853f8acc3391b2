package engine

import (
	"time"

	"github.com/lixenwraith/cube-hunter/session"
)

// CubeState is one cube as seen by the debug feed
type CubeState struct {
	ID          int    `json:"id" msgpack:"id"`
	X           int    `json:"x" msgpack:"x"`
	Y           int    `json:"y" msgpack:"y"`
	Alive       bool   `json:"alive" msgpack:"alive"`
	Heading     string `json:"heading" msgpack:"heading"`
	Lifetime    int    `json:"lifetime" msgpack:"lifetime"`
	PowerUp     string `json:"powerup" msgpack:"powerup"`
	Coordinator string `json:"coordinator" msgpack:"coordinator"`
}

// CrosshairView is the crosshair as seen by the debug feed
type CrosshairView struct {
	X      int `json:"x" msgpack:"x"`
	Y      int `json:"y" msgpack:"y"`
	Radius int `json:"radius" msgpack:"radius"`
}

// ModifierView is the active power-up state
type ModifierView struct {
	Speed  int  `json:"speed" msgpack:"speed"`
	Frozen bool `json:"frozen" msgpack:"frozen"`
}

// Snapshot is a point-in-time copy of the game for diagnostics
type Snapshot struct {
	Time       time.Time       `json:"time" msgpack:"time"`
	Session    session.State   `json:"session" msgpack:"session"`
	Cubes      []CubeState     `json:"cubes" msgpack:"cubes"`
	Crosshair  CrosshairView   `json:"crosshair" msgpack:"crosshair"`
	Occupied   int             `json:"occupied" msgpack:"occupied"`
	Window     bool            `json:"window_open" msgpack:"window_open"`
	Modifiers  ModifierView    `json:"modifiers" msgpack:"modifiers"`
	HighScores []session.Entry `json:"highscores" msgpack:"highscores"`
	Metrics    map[string]any  `json:"metrics" msgpack:"metrics"`
}

// Snapshot copies the observable game state. Each part is consistent on its own
func (g *Game) Snapshot() Snapshot {
	w := g.world
	ch := w.Crosshair.Snapshot()
	mods := w.Modifiers()

	s := Snapshot{
		Time:       time.Now(),
		Session:    w.Session.Snapshot(),
		Crosshair:  CrosshairView{X: ch.X, Y: ch.Y, Radius: ch.Radius},
		Occupied:   w.Grid.Occupied(),
		Window:     w.Window.IsOpen(),
		Modifiers:  ModifierView{Speed: mods.Speed(), Frozen: mods.Frozen()},
		HighScores: w.HighScores.Entries(),
		Metrics:    w.Registry.Snapshot(""),
	}

	if co := g.Cohort(); co != nil {
		s.Cubes = make([]CubeState, 0, co.Size())
		for _, c := range co.Coordinators() {
			v := c.cube.Snapshot()
			s.Cubes = append(s.Cubes, CubeState{
				ID:          v.ID,
				X:           v.Pos.X,
				Y:           v.Pos.Y,
				Alive:       v.Alive,
				Heading:     v.Heading.String(),
				Lifetime:    v.Lifetime,
				PowerUp:     v.PowerUp.String(),
				Coordinator: c.State().String(),
			})
		}
	}
	return s
}

// Metrics copies one metric group, such as "engine" or "input"
func (g *Game) Metrics(group string) map[string]any {
	return g.world.Registry.Snapshot(group + ".")
}
