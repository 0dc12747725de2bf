package service

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"wordquest/internal/content"
	"wordquest/internal/engine"
	"wordquest/internal/games"
	"wordquest/internal/models"
	"wordquest/internal/security"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrUnknownGameKind   = errors.New("unknown game kind")
	ErrRecordUnsupported = errors.New("game kind does not record speech")
)

// GameServiceOptions configures a GameService. Zero values pick defaults.
type GameServiceOptions struct {
	Notifier  engine.Notifier
	Scheduler engine.Scheduler
	Logger    zerolog.Logger
	Now       func() time.Time
}

// GameInfo describes one playable game kind
type GameInfo struct {
	Kind                 models.GameKind      `json:"kind"`
	Scoring              engine.ScoringConfig `json:"scoring"`
	Policy               engine.AnswerPolicy  `json:"policy"`
	BatchSize            int                  `json:"batchSize"`
	InitialLives         int                  `json:"initialLives"`
	AllowSkip            bool                 `json:"allowSkip"`
	FeedbackDelayMs      int64                `json:"feedbackDelayMs"`
	CompleteOnExhaustion bool                 `json:"completeOnExhaustion"`
	PoolSize             int                  `json:"poolSize"`
	BandCoverage         map[int]int          `json:"bandCoverage"`
}

type liveSession struct {
	game       *engine.Game
	recognizer *games.SimulatedRecognizer
	createdAt  time.Time
	lastSeen   time.Time
}

// GameService owns every live session. Each session is an independent
// engine.Game; the pools are shared read-only between them.
type GameService struct {
	mu       sync.RWMutex
	sessions map[string]*liveSession

	pools    map[models.GameKind]*content.Pool
	catalog  games.Catalog
	notifier engine.Notifier
	sched    engine.Scheduler
	log      zerolog.Logger
	now      func() time.Time
}

// NewGameService creates a service. Every catalog kind needs a pool.
func NewGameService(pools map[models.GameKind]*content.Pool, catalog games.Catalog, opts GameServiceOptions) (*GameService, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	for kind := range catalog {
		if pools[kind] == nil {
			return nil, fmt.Errorf("no content pool for %s", kind)
		}
	}

	s := &GameService{
		sessions: make(map[string]*liveSession),
		pools:    pools,
		catalog:  catalog,
		notifier: opts.Notifier,
		sched:    opts.Scheduler,
		log:      opts.Logger,
		now:      opts.Now,
	}
	if s.sched == nil {
		s.sched = engine.RealScheduler{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Games lists the playable kinds in display order
func (s *GameService) Games() []GameInfo {
	var out []GameInfo
	for _, kind := range models.AllKinds {
		cfg, ok := s.catalog[kind]
		if !ok {
			continue
		}
		pool := s.pools[kind]
		out = append(out, GameInfo{
			Kind:                 kind,
			Scoring:              cfg.Scoring,
			Policy:               cfg.Policy,
			BatchSize:            cfg.BatchSize,
			InitialLives:         cfg.InitialLives,
			AllowSkip:            cfg.AllowSkip,
			FeedbackDelayMs:      cfg.FeedbackDelay.Milliseconds(),
			CompleteOnExhaustion: cfg.CompleteOnExhaustion,
			PoolSize:             pool.Len(),
			BandCoverage:         pool.BandCoverage(),
		})
	}
	return out
}

// Start creates and starts a session. A non-empty seed makes item
// selection and simulated recordings reproducible.
func (s *GameService) Start(kind models.GameKind, seed string) (string, engine.Snapshot, error) {
	cfg, ok := s.catalog[kind]
	if !ok {
		return "", engine.Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownGameKind, kind)
	}
	eval, err := games.EvaluatorFor(kind)
	if err != nil {
		return "", engine.Snapshot{}, fmt.Errorf("%w: %v", ErrUnknownGameKind, err)
	}

	var gameRand, recRand engine.Rand
	if seed != "" {
		gameRand = engine.NewSeededRand(seed)
		recRand = engine.NewSeededRand(seed + ":recognizer")
	} else {
		gameRand = engine.NewRand()
		recRand = engine.NewRand()
	}

	id := security.GenerateSessionID()
	opts := []engine.Option{
		engine.WithSessionID(id),
		engine.WithRand(gameRand),
		engine.WithScheduler(s.sched),
		engine.WithLogger(s.log.With().Str("session_id", id).Str("kind", string(kind)).Logger()),
		engine.WithClock(s.now),
	}
	if s.notifier != nil {
		opts = append(opts, engine.WithNotifier(s.notifier))
	}

	game, err := engine.New(cfg, s.pools[kind], eval, opts...)
	if err != nil {
		return "", engine.Snapshot{}, fmt.Errorf("failed to create %s session: %w", kind, err)
	}
	snap, err := game.Start()
	if err != nil {
		return "", engine.Snapshot{}, fmt.Errorf("failed to start %s session: %w", kind, err)
	}

	now := s.now()
	s.mu.Lock()
	s.sessions[id] = &liveSession{
		game:       game,
		recognizer: games.NewSimulatedRecognizer(recRand),
		createdAt:  now,
		lastSeen:   now,
	}
	s.mu.Unlock()

	s.log.Info().Str("session_id", id).Str("kind", string(kind)).Bool("seeded", seed != "").Msg("session started")
	return id, snap, nil
}

// Submit forwards an answer to the session
func (s *GameService) Submit(id string, a engine.Answer) (engine.Result, error) {
	ls, err := s.touch(id)
	if err != nil {
		return engine.Result{}, err
	}
	return ls.game.Submit(a), nil
}

// Skip skips the current item where the game allows it
func (s *GameService) Skip(id string) (engine.Result, error) {
	ls, err := s.touch(id)
	if err != nil {
		return engine.Result{}, err
	}
	return ls.game.Skip(), nil
}

// Record runs a simulated pronunciation attempt and submits its confidence
func (s *GameService) Record(id string) (engine.Result, error) {
	ls, err := s.touch(id)
	if err != nil {
		return engine.Result{}, err
	}
	if ls.game.Config().Kind != models.KindPronunciation {
		return engine.Result{}, ErrRecordUnsupported
	}
	return ls.game.Submit(ls.recognizer.Answer()), nil
}

// Reset restarts the session from scratch
func (s *GameService) Reset(id string) (engine.Snapshot, error) {
	ls, err := s.touch(id)
	if err != nil {
		return engine.Snapshot{}, err
	}
	return ls.game.Reset()
}

// Snapshot returns the current state of a session
func (s *GameService) Snapshot(id string) (engine.Snapshot, error) {
	ls, err := s.touch(id)
	if err != nil {
		return engine.Snapshot{}, err
	}
	return ls.game.Snapshot(), nil
}

// End tears a session down
func (s *GameService) End(id string) error {
	s.mu.Lock()
	ls, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	ls.game.Close()
	s.log.Info().Str("session_id", id).Msg("session ended")
	return nil
}

// CleanupExpired ends sessions idle for longer than ttl and returns how many were removed
func (s *GameService) CleanupExpired(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	var expired []*liveSession
	for id, ls := range s.sessions {
		if ls.lastSeen.Before(cutoff) {
			expired = append(expired, ls)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, ls := range expired {
		ls.game.Close()
	}
	return len(expired)
}

// Shutdown ends every session
func (s *GameService) Shutdown() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*liveSession)
	s.mu.Unlock()

	for _, ls := range sessions {
		ls.game.Close()
	}
}

// ActiveSessions returns the ids of live sessions, sorted
func (s *GameService) ActiveSessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *GameService) touch(id string) (*liveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	ls.lastSeen = s.now()
	return ls, nil
}
