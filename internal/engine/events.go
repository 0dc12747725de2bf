package engine

import (
	"context"
	"time"

	"wordquest/internal/models"
)

// EventType names an outcome reported to the notification collaborator
type EventType string

const (
	EventAnswerCorrect   EventType = "answer-correct"
	EventAnswerIncorrect EventType = "answer-incorrect"
	EventSessionComplete EventType = "session-complete"
	EventSessionFailed   EventType = "session-failed"
	EventItemSkipped     EventType = "item-skipped"
)

// Event is an outcome with the point delta and current totals
type Event struct {
	SessionID string          `json:"sessionId"`
	Kind      models.GameKind `json:"kind"`
	Type      EventType       `json:"type"`
	ItemID    string          `json:"itemId,omitempty"`
	Delta     int             `json:"delta"`
	Score     int             `json:"score"`
	Lives     int             `json:"lives"`
	Round     int             `json:"round"`
	At        time.Time       `json:"at"`
}

// Terminal reports whether the event ends the session
func (e Event) Terminal() bool {
	return e.Type == EventSessionComplete || e.Type == EventSessionFailed
}

// Notifier receives outcome events. Implementations must not call back into
// the game that produced the event from within Notify.
type Notifier interface {
	Notify(ctx context.Context, e Event)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, e Event)

func (f NotifierFunc) Notify(ctx context.Context, e Event) { f(ctx, e) }

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Event) {}
