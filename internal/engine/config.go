package engine

import (
	"fmt"
	"time"

	"wordquest/internal/models"
)

// AnswerPolicy decides what follows an incorrect answer that did not end the session
type AnswerPolicy string

const (
	// AdvanceAlways draws a new item and increments the round
	AdvanceAlways AnswerPolicy = "advance-always"
	// RetryOnIncorrect re-presents the same item(s)
	RetryOnIncorrect AnswerPolicy = "retry-on-incorrect"
)

const DefaultLives = 3

// Config is the per-game-kind configuration surface
type Config struct {
	Kind          models.GameKind `json:"kind"`
	Scoring       ScoringConfig   `json:"scoring"`
	Policy        AnswerPolicy    `json:"policy"`
	BatchSize     int             `json:"batchSize"`
	InitialLives  int             `json:"initialLives"`
	FeedbackDelay time.Duration   `json:"feedbackDelay"`
	AllowSkip     bool            `json:"allowSkip"`

	// CompleteOnExhaustion ends the session once the current round is
	// finished and no unused item remains at or above the current band.
	CompleteOnExhaustion bool `json:"completeOnExhaustion"`
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.Kind == "" {
		return fmt.Errorf("%w: kind is required", ErrInvalidConfig)
	}
	if err := c.Scoring.Validate(); err != nil {
		return err
	}
	switch c.Policy {
	case AdvanceAlways, RetryOnIncorrect:
	default:
		return fmt.Errorf("%w: unknown answer policy %q", ErrInvalidConfig, c.Policy)
	}
	if c.BatchSize < 1 || c.BatchSize > 6 {
		return fmt.Errorf("%w: batch size must be between 1 and 6", ErrInvalidConfig)
	}
	if c.InitialLives < 1 || c.InitialLives > DefaultLives {
		return fmt.Errorf("%w: initial lives must be between 1 and %d", ErrInvalidConfig, DefaultLives)
	}
	if c.FeedbackDelay < 0 {
		return fmt.Errorf("%w: feedback delay must not be negative", ErrInvalidConfig)
	}
	return nil
}

// pairMode reports whether answers match pairs within a batch
func (c Config) pairMode() bool {
	return c.BatchSize > 1
}
