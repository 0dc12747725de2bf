// Package games holds the per-kind configuration table and the answer
// evaluators plugged into the engine.
package games

import (
	"fmt"
	"time"

	"wordquest/internal/engine"
	"wordquest/internal/models"
)

// Catalog maps every game kind to its engine configuration
type Catalog map[models.GameKind]engine.Config

// DefaultCatalog returns the built-in configuration for all four games
func DefaultCatalog() Catalog {
	return Catalog{
		models.KindMatching: {
			Kind:                 models.KindMatching,
			Scoring:              engine.ScoringConfig{Base: 50, DifficultyWeight: 10, RoundWeight: 5},
			Policy:               engine.RetryOnIncorrect,
			BatchSize:            6,
			InitialLives:         engine.DefaultLives,
			FeedbackDelay:        800 * time.Millisecond,
			CompleteOnExhaustion: true,
		},
		models.KindSentence: {
			Kind:                 models.KindSentence,
			Scoring:              engine.ScoringConfig{Base: 200, DifficultyWeight: 50, RoundWeight: 25},
			Policy:               engine.RetryOnIncorrect,
			BatchSize:            1,
			InitialLives:         engine.DefaultLives,
			FeedbackDelay:        1500 * time.Millisecond,
			CompleteOnExhaustion: true,
		},
		models.KindGrammar: {
			Kind:                 models.KindGrammar,
			Scoring:              engine.ScoringConfig{Base: 150, DifficultyWeight: 25, RoundWeight: 10},
			Policy:               engine.AdvanceAlways,
			BatchSize:            1,
			InitialLives:         engine.DefaultLives,
			FeedbackDelay:        3 * time.Second,
			CompleteOnExhaustion: true,
		},
		models.KindPronunciation: {
			Kind:                 models.KindPronunciation,
			Scoring:              engine.ScoringConfig{Base: 200, DifficultyWeight: 50, RoundWeight: 25},
			Policy:               engine.RetryOnIncorrect,
			BatchSize:            1,
			InitialLives:         engine.DefaultLives,
			FeedbackDelay:        2 * time.Second,
			AllowSkip:            true,
			CompleteOnExhaustion: true,
		},
	}
}

// WithFeedbackDelay returns a copy of the catalog with every delay replaced by d
func (c Catalog) WithFeedbackDelay(d time.Duration) Catalog {
	out := make(Catalog, len(c))
	for k, cfg := range c {
		cfg.FeedbackDelay = d
		out[k] = cfg
	}
	return out
}

// Config returns the configuration for kind
func (c Catalog) Config(kind models.GameKind) (engine.Config, bool) {
	cfg, ok := c[kind]
	return cfg, ok
}

// Validate checks every entry
func (c Catalog) Validate() error {
	for kind, cfg := range c {
		if cfg.Kind != kind {
			return fmt.Errorf("catalog entry %s has kind %s", kind, cfg.Kind)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("catalog entry %s: %w", kind, err)
		}
	}
	return nil
}

// EvaluatorFor returns the answer evaluator for kind
func EvaluatorFor(kind models.GameKind) (engine.Evaluator, error) {
	switch kind {
	case models.KindMatching:
		return MatchingEvaluator{}, nil
	case models.KindSentence:
		return SentenceEvaluator{}, nil
	case models.KindGrammar:
		return GrammarEvaluator{}, nil
	case models.KindPronunciation:
		return PronunciationEvaluator{Threshold: DefaultConfidenceThreshold}, nil
	default:
		return nil, fmt.Errorf("no evaluator for game kind %q", kind)
	}
}
