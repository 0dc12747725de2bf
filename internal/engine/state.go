package engine

import (
	"sort"

	"wordquest/internal/models"
)

// Phase is the session state machine position
type Phase string

const (
	PhaseLoading    Phase = "loading"
	PhasePresenting Phase = "presenting"
	PhaseAnswered   Phase = "answered"
	PhaseComplete   Phase = "complete"
	PhaseFailed     Phase = "failed"
)

// Terminal reports whether no transition other than reset leaves the phase
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseFailed
}

// Feedback describes the last answer while the session is Answered
type Feedback struct {
	Correct     bool   `json:"correct"`
	Points      int    `json:"points"`
	ItemID      string `json:"itemId"`
	Solution    string `json:"solution,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

// Snapshot is an immutable copy of the session state
type Snapshot struct {
	SessionID string          `json:"sessionId"`
	Kind      models.GameKind `json:"kind"`
	Phase     Phase           `json:"phase"`
	Score     int             `json:"score"`
	Lives     int             `json:"lives"`
	Round     int             `json:"round"`
	Band      Band            `json:"band"`
	Current   []models.Item   `json:"current"`
	Matched   []string        `json:"matched"`
	UsedIDs   []string        `json:"usedIds"`
	PoolSize  int             `json:"poolSize"`
	Correct   int             `json:"correct"`
	Incorrect int             `json:"incorrect"`
	Skipped   int             `json:"skipped"`
	AllowSkip bool            `json:"allowSkip"`
	Feedback  *Feedback       `json:"feedback,omitempty"`
}

type state struct {
	score     int
	lives     int
	round     int
	used      map[string]struct{}
	current   []models.Item
	matched   map[string]struct{}
	phase     Phase
	correct   int
	incorrect int
	skipped   int
	feedback  *Feedback
}

func freshState(lives int) state {
	return state{
		lives:   lives,
		round:   1,
		used:    make(map[string]struct{}),
		matched: make(map[string]struct{}),
		phase:   PhaseLoading,
	}
}

func (s *state) isCurrent(id string) bool {
	for _, it := range s.current {
		if it.ID == id {
			return true
		}
	}
	return false
}

func (s *state) roundFinished() bool {
	return len(s.matched) >= len(s.current)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (g *Game) snapshotLocked() Snapshot {
	s := &g.st
	current := make([]models.Item, len(s.current))
	for i, it := range s.current {
		current[i] = it.Clone()
	}
	var fb *Feedback
	if s.feedback != nil {
		f := *s.feedback
		fb = &f
	}
	return Snapshot{
		SessionID: g.sessionID,
		Kind:      g.cfg.Kind,
		Phase:     s.phase,
		Score:     s.score,
		Lives:     s.lives,
		Round:     s.round,
		Band:      BandFor(s.score),
		Current:   current,
		Matched:   sortedKeys(s.matched),
		UsedIDs:   sortedKeys(s.used),
		PoolSize:  g.pool.Len(),
		Correct:   s.correct,
		Incorrect: s.incorrect,
		Skipped:   s.skipped,
		AllowSkip: g.cfg.AllowSkip,
		Feedback:  fb,
	}
}
