// Package engine implements the adaptive item selection and session
// progression shared by every game kind.
//
// A Game owns one session. Answers move it from Presenting to Answered and a
// cancellable continuation, run after the feedback delay, moves it on to the
// next item, back to the same item, or to Complete. Failed is entered directly
// when the last life is lost.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"wordquest/internal/content"
	"wordquest/internal/models"
)

// Explainer is implemented by evaluators that can reveal the solution of an item
type Explainer interface {
	Explain(item models.Item) (solution, explanation string)
}

// Result is returned by Submit and Skip. Requests that do not fit the
// current phase or name no valid selection are not accepted, and Reason holds
// ErrStateMisuse or ErrInvalidInput.
type Result struct {
	Accepted bool     `json:"accepted"`
	Reason   error    `json:"-"`
	Correct  bool     `json:"correct"`
	Points   int      `json:"points"`
	Snapshot Snapshot `json:"snapshot"`
}

// Option configures a Game
type Option func(*Game)

func WithRand(r Rand) Option {
	return func(g *Game) { g.sel.Rand = r }
}

func WithScheduler(s Scheduler) Option {
	return func(g *Game) { g.sched = s }
}

func WithNotifier(n Notifier) Option {
	return func(g *Game) { g.notifier = n }
}

func WithLogger(l zerolog.Logger) Option {
	return func(g *Game) { g.log = l }
}

func WithSessionID(id string) Option {
	return func(g *Game) { g.sessionID = id }
}

// WithObserver registers a callback that receives a snapshot after every transition
func WithObserver(f func(Snapshot)) Option {
	return func(g *Game) { g.observer = f }
}

// WithClock overrides the event timestamp source
func WithClock(now func() time.Time) Option {
	return func(g *Game) { g.now = now }
}

// Game is one session of one game kind
type Game struct {
	mu sync.Mutex

	cfg       Config
	pool      *content.Pool
	eval      Evaluator
	sel       Selector
	sched     Scheduler
	notifier  Notifier
	observer  func(Snapshot)
	log       zerolog.Logger
	now       func() time.Time
	sessionID string

	st      state
	gen     uint64
	pending Timer
	closed  bool

	outbox   []Event
	queue    []delivery
	draining bool
}

// New creates a game in the Loading phase. Call Start to draw the first item.
func New(cfg Config, pool *content.Pool, eval Evaluator, opts ...Option) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if pool == nil || pool.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", cfg.Kind, ErrPoolExhausted)
	}
	if pool.Kind() != cfg.Kind {
		return nil, fmt.Errorf("%w: pool kind %s does not match %s", ErrInvalidConfig, pool.Kind(), cfg.Kind)
	}
	if eval == nil {
		return nil, fmt.Errorf("%w: evaluator is required", ErrInvalidConfig)
	}

	g := &Game{
		cfg:      cfg,
		pool:     pool,
		eval:     eval,
		sched:    RealScheduler{},
		notifier: nopNotifier{},
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.sel.Rand == nil {
		g.sel.Rand = NewRand()
	}
	g.st = freshState(cfg.InitialLives)
	return g, nil
}

// Config returns the game configuration
func (g *Game) Config() Config { return g.cfg }

// SessionID returns the id given with WithSessionID
func (g *Game) SessionID() string { return g.sessionID }

// Start begins the session: score 0, full lives, round 1, first draw
func (g *Game) Start() (Snapshot, error) {
	g.mu.Lock()
	if g.closed || g.st.phase != PhaseLoading {
		snap := g.snapshotLocked()
		g.mu.Unlock()
		return snap, ErrStateMisuse
	}
	err := g.beginLocked()
	return g.finish(err)
}

// Reset cancels any pending continuation and starts over
func (g *Game) Reset() (Snapshot, error) {
	g.mu.Lock()
	if g.closed {
		snap := g.snapshotLocked()
		g.mu.Unlock()
		return snap, ErrStateMisuse
	}
	g.cancelLocked()
	g.st = freshState(g.cfg.InitialLives)
	err := g.beginLocked()
	g.log.Debug().Str("session_id", g.sessionID).Msg("session reset")
	return g.finish(err)
}

// Snapshot returns a copy of the current state
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

// Close tears the game down. A pending continuation never fires afterwards
// and every later transition is ignored.
func (g *Game) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.cancelLocked()
	g.closed = true
}

// Submit evaluates an answer. It is only accepted while Presenting.
func (g *Game) Submit(a Answer) Result {
	g.mu.Lock()
	if g.closed || g.st.phase != PhasePresenting {
		return g.reject(ErrStateMisuse)
	}

	ev := g.eval.Evaluate(g.st.current, g.st.matched, a)
	switch ev.Verdict {
	case VerdictCorrect:
		pts := g.correctLocked(ev.ItemID)
		return g.accept(true, pts)
	case VerdictIncorrect:
		g.incorrectLocked(ev.ItemID)
		return g.accept(false, 0)
	default:
		return g.reject(ErrInvalidInput)
	}
}

// Skip advances past the current item with zero points. Only games that
// allow skipping accept it, and only while Presenting.
func (g *Game) Skip() Result {
	g.mu.Lock()
	if g.closed || !g.cfg.AllowSkip || g.st.phase != PhasePresenting {
		return g.reject(ErrStateMisuse)
	}

	s := &g.st
	itemID := ""
	if len(s.current) > 0 {
		itemID = s.current[0].ID
	}
	s.skipped++
	s.round++
	g.emitLocked(EventItemSkipped, itemID, 0)
	g.advanceLocked()
	return g.accept(false, 0)
}

func (g *Game) beginLocked() error {
	g.gen++
	if err := g.drawLocked(); err != nil {
		return err
	}
	g.st.phase = PhasePresenting
	return nil
}

func (g *Game) correctLocked(itemID string) int {
	s := &g.st
	item, _ := g.pool.Get(itemID)
	pts := Points(g.cfg.Scoring, item, s.round)
	s.score += pts
	s.correct++

	roundDone := true
	if g.cfg.pairMode() {
		s.matched[itemID] = struct{}{}
		roundDone = s.roundFinished()
	}
	if roundDone {
		s.round++
	}

	s.feedback = g.feedbackFor(item, true, pts)
	s.phase = PhaseAnswered
	g.emitLocked(EventAnswerCorrect, itemID, pts)

	if roundDone {
		g.scheduleLocked(g.advanceLocked)
	} else {
		g.scheduleLocked(g.representLocked)
	}
	return pts
}

func (g *Game) incorrectLocked(itemID string) {
	s := &g.st
	item, _ := g.pool.Get(itemID)
	if s.lives > 0 {
		s.lives--
	}
	s.incorrect++
	s.feedback = g.feedbackFor(item, false, 0)
	g.emitLocked(EventAnswerIncorrect, itemID, 0)

	if s.lives == 0 {
		s.phase = PhaseFailed
		g.emitLocked(EventSessionFailed, itemID, 0)
		return
	}

	s.phase = PhaseAnswered
	switch g.cfg.Policy {
	case AdvanceAlways:
		s.round++
		g.scheduleLocked(g.advanceLocked)
	default:
		g.scheduleLocked(g.representLocked)
	}
}

// advanceLocked finishes a round: either complete the session or draw the
// next item(s) from the band of the current score
func (g *Game) advanceLocked() {
	s := &g.st
	s.feedback = nil
	s.matched = make(map[string]struct{})

	if g.cfg.CompleteOnExhaustion && g.exhaustedLocked() {
		s.current = nil
		s.phase = PhaseComplete
		g.emitLocked(EventSessionComplete, "", 0)
		return
	}
	if err := g.drawLocked(); err != nil {
		g.log.Error().Err(err).Str("session_id", g.sessionID).Msg("failed to draw next item")
		s.phase = PhaseFailed
		g.emitLocked(EventSessionFailed, "", 0)
		return
	}
	s.phase = PhasePresenting
}

// exhaustedLocked reports whether no unused item can still be drawn. Bands
// only move up with the score, so items below the current band are out of
// reach. When nothing exists at or above the band the draw falls back to the
// full range and every unused item counts.
func (g *Game) exhaustedLocked() bool {
	min := BandFor(g.st.score).Min
	above := false
	for _, it := range g.pool.Items() {
		if it.Difficulty < min {
			continue
		}
		above = true
		if _, ok := g.st.used[it.ID]; !ok {
			return false
		}
	}
	if above {
		return true
	}
	return len(g.st.used) >= g.pool.Len()
}

// representLocked returns to the same item(s) after feedback
func (g *Game) representLocked() {
	g.st.feedback = nil
	g.st.phase = PhasePresenting
}

func (g *Game) drawLocked() error {
	s := &g.st
	band := BandFor(s.score)
	items, err := g.sel.Next(g.pool.Items(), band, s.used, g.cfg.BatchSize)
	if errors.Is(err, ErrPoolExhausted) {
		g.log.Warn().
			Str("kind", string(g.cfg.Kind)).
			Str("band", band.String()).
			Msg("no content in difficulty band, falling back to full band")
		items, err = g.sel.Next(g.pool.Items(), FullBand, s.used, g.cfg.BatchSize)
	}
	if err != nil {
		return fmt.Errorf("%s band %s: %w", g.cfg.Kind, band, err)
	}
	for _, it := range items {
		s.used[it.ID] = struct{}{}
	}
	s.current = items
	return nil
}

func (g *Game) scheduleLocked(next func()) {
	if g.cfg.FeedbackDelay <= 0 {
		next()
		return
	}
	gen := g.gen
	g.pending = g.sched.AfterFunc(g.cfg.FeedbackDelay, func() {
		g.mu.Lock()
		if g.closed || g.gen != gen || g.st.phase != PhaseAnswered {
			g.mu.Unlock()
			return
		}
		g.pending = nil
		next()
		g.finish(nil)
	})
}

func (g *Game) cancelLocked() {
	g.gen++
	if g.pending != nil {
		g.pending.Stop()
		g.pending = nil
	}
}

func (g *Game) feedbackFor(item models.Item, correct bool, pts int) *Feedback {
	fb := &Feedback{Correct: correct, Points: pts, ItemID: item.ID}
	if ex, ok := g.eval.(Explainer); ok && item.ID != "" {
		fb.Solution, fb.Explanation = ex.Explain(item)
	}
	return fb
}

func (g *Game) emitLocked(t EventType, itemID string, delta int) {
	g.outbox = append(g.outbox, Event{
		SessionID: g.sessionID,
		Kind:      g.cfg.Kind,
		Type:      t,
		ItemID:    itemID,
		Delta:     delta,
		Score:     g.st.score,
		Lives:     g.st.lives,
		Round:     g.st.round,
		At:        g.now(),
	})
}

type delivery struct {
	events []Event
	snap   Snapshot
}

// finish queues the outbox and a snapshot for the collaborators, releases
// the state lock and drains the queue unless another goroutine already is.
// Collaborators are never called with g.mu held and always see deliveries
// in transition order. Must be called with g.mu held.
func (g *Game) finish(err error) (Snapshot, error) {
	snap := g.snapshotLocked()
	g.queue = append(g.queue, delivery{events: g.outbox, snap: snap})
	g.outbox = nil
	if g.draining {
		g.mu.Unlock()
		return snap, err
	}

	g.draining = true
	ctx := context.Background()
	for len(g.queue) > 0 {
		d := g.queue[0]
		g.queue = g.queue[1:]
		g.mu.Unlock()

		for _, e := range d.events {
			g.notifier.Notify(ctx, e)
		}
		if g.observer != nil {
			g.observer(d.snap)
		}

		g.mu.Lock()
	}
	g.draining = false
	g.mu.Unlock()
	return snap, err
}

func (g *Game) accept(correct bool, pts int) Result {
	snap, _ := g.finish(nil)
	return Result{Accepted: true, Correct: correct, Points: pts, Snapshot: snap}
}

func (g *Game) reject(reason error) Result {
	snap := g.snapshotLocked()
	g.mu.Unlock()
	g.log.Debug().Err(reason).Str("session_id", g.sessionID).Msg("request ignored")
	return Result{Accepted: false, Reason: reason, Snapshot: snap}
}
