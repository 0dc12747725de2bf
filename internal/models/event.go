package models

import "time"

// OutcomeEvent is a journaled engine outcome (answer-correct, session-failed, ...)
type OutcomeEvent struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	GameKind  GameKind  `json:"gameKind"`
	EventType string    `json:"eventType"`
	ItemID    string    `json:"itemId,omitempty"`
	Delta     int       `json:"delta"`
	Score     int       `json:"score"`
	Lives     int       `json:"lives"`
	Round     int       `json:"round"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsTerminal reports whether the event ends a session
func (e OutcomeEvent) IsTerminal() bool {
	return e.EventType == "session-complete" || e.EventType == "session-failed"
}
