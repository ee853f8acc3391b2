// Package session holds per-game counters and the restart/scoring state machine.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// ScoringState tracks the score-entry flow of the current game
type ScoringState uint8

const (
	ScoringIdle ScoringState = iota
	ScoringActive
	ScoringFinishing
)

func (s ScoringState) String() string {
	switch s {
	case ScoringIdle:
		return "idle"
	case ScoringActive:
		return "active"
	case ScoringFinishing:
		return "finishing"
	}
	return "unknown"
}

// ScoreRequest is the outcome of a score-entry button press
type ScoreRequest uint8

const (
	ScoreRejected ScoreRequest = iota
	ScoreStarted
	ScoreFinishRequested
)

// State is a consistent copy of the session
type State struct {
	Life       int          `json:"life" msgpack:"life"`
	Score      int          `json:"score" msgpack:"score"`
	Restarting bool         `json:"restarting" msgpack:"restarting"`
	Scoring    ScoringState `json:"scoring" msgpack:"scoring"`
	Recorded   bool         `json:"recorded" msgpack:"recorded"`
	RunID      string       `json:"run" msgpack:"run"`
}

// Session guards life, score and the lifecycle flags behind one mutex
type Session struct {
	mu sync.Mutex

	startingLife int
	life         int
	score        int
	restarting   bool
	scoring      ScoringState
	recorded     bool
	runID        uuid.UUID
}

// New starts a session with the given life and a fresh run id
func New(startingLife int) *Session {
	return &Session{
		startingLife: startingLife,
		life:         startingLife,
		runID:        uuid.New(),
	}
}

// Life returns the remaining lives
func (s *Session) Life() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.life
}

// Score returns the current score
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Over reports whether the game has ended
func (s *Session) Over() bool {
	return s.Life() == 0
}

// Snapshot copies all fields under the lock
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Life:       s.life,
		Score:      s.score,
		Restarting: s.restarting,
		Scoring:    s.scoring,
		Recorded:   s.recorded,
		RunID:      s.runID.String(),
	}
}

// DecLife removes one life. Returns true only for the call that reaches zero
func (s *Session) DecLife() (gameOver bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.life == 0 {
		return false
	}
	s.life--
	return s.life == 0
}

// AddLife grants lives while the game is running
func (s *Session) AddLife(n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.life > 0 {
		s.life += n
	}
}

// AddScore adds a non-negative delta, returns the new score
func (s *Session) AddScore(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > 0 {
		s.score += n
	}
	return s.score
}

// ForceGameOver zeroes life. Returns true if the game was running
func (s *Session) ForceGameOver() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	was := s.life > 0
	s.life = 0
	return was
}

// TryBeginRestart sets the restarting flag unless a restart or a score entry is in progress
func (s *Session) TryBeginRestart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.restarting || s.scoring == ScoringActive || s.scoring == ScoringFinishing {
		return false
	}
	s.restarting = true
	return true
}

// EndRestart resets counters for a new game and clears the restarting flag
func (s *Session) EndRestart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.life = s.startingLife
	s.score = 0
	s.scoring = ScoringIdle
	s.recorded = false
	s.runID = uuid.New()
	s.restarting = false
}

// Restarting reports whether a restart is in progress
func (s *Session) Restarting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restarting
}

// TryBeginScoring handles a score-entry press.
// A press while entry is active asks it to finish; anything else is rejected
// unless the game is over, idle and not yet recorded
func (s *Session) TryBeginScoring() ScoreRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.restarting || s.life != 0 {
		return ScoreRejected
	}
	switch s.scoring {
	case ScoringActive:
		s.scoring = ScoringFinishing
		return ScoreFinishRequested
	case ScoringFinishing:
		return ScoreRejected
	}
	if s.recorded {
		return ScoreRejected
	}
	s.scoring = ScoringActive
	return ScoreStarted
}

// Scoring returns the score-entry state
func (s *Session) Scoring() ScoringState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scoring
}

// CompleteScoring marks the game recorded and returns to idle
func (s *Session) CompleteScoring() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scoring = ScoringIdle
	s.recorded = true
}

// RunID identifies the current game
func (s *Session) RunID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}
