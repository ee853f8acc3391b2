package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/cube-hunter/render"
	"github.com/lixenwraith/cube-hunter/session"
)

// entryPoll bounds how long the entry loop waits for a sample before rechecking the session
const entryPoll = 100 * time.Millisecond

// ScoreEntry handles a score button press. The first press after a game over
// starts initials entry and blocks until a second press finishes it; the second
// press itself returns immediately
func (g *Game) ScoreEntry() {
	w := g.world
	if !g.started.Load() || w.Session.Life() != 0 {
		return
	}
	if w.Session.TryBeginScoring() != session.ScoreStarted {
		return
	}

	// The run workers own the surface until they exit
	<-g.currentRun().done

	w.drawMu.Lock()
	defer w.drawMu.Unlock()

	w.Queue.Drain()
	score := w.Session.Score()
	in := session.NewInitials()
	render.DrawScoreEntry(w.Surface, w.Layout, score, in.String(), in.Cursor(), true)
	g.showField(false)

	for w.Session.Scoring() != session.ScoringFinishing {
		if g.root.Err() != nil {
			return
		}
		ctx, cancel := context.WithTimeout(g.root, entryPoll)
		s, err := w.Queue.Take(ctx)
		cancel()
		if err != nil {
			continue
		}
		in.Step(s.DX, s.DY)
		render.DrawScoreEntry(w.Surface, w.Layout, score, in.String(), in.Cursor(), false)
	}

	rank := w.HighScores.Merge(in.String(), score, w.Session.RunID())
	w.Session.CompleteScoring()
	render.DrawHighScores(w.Surface, w.Layout, w.HighScores.Entries())
	w.Log.WithFields(logrus.Fields{"initials": in.String(), "score": score, "rank": rank}).Info("score recorded")
}
