package engine

import (
	"fmt"

	"wordquest/internal/models"
)

// ScoringConfig holds the per-game point weights
type ScoringConfig struct {
	Base             int `json:"base"`
	DifficultyWeight int `json:"difficultyWeight"`
	RoundWeight      int `json:"roundWeight"`
}

// Validate rejects negative weights
func (c ScoringConfig) Validate() error {
	if c.Base < 0 || c.DifficultyWeight < 0 || c.RoundWeight < 0 {
		return fmt.Errorf("%w: scoring weights must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Points computes the award for a correct answer on item during round
func Points(cfg ScoringConfig, item models.Item, round int) int {
	p := cfg.Base + item.Difficulty*cfg.DifficultyWeight + round*cfg.RoundWeight
	if p < 0 {
		return 0
	}
	return p
}
