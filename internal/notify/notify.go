// Package notify fans engine outcome events out to the log, the outcome
// journal and email reports.
package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"wordquest/internal/engine"
	"wordquest/internal/models"
)

// Multi delivers every event to each notifier in order
type Multi []engine.Notifier

func (m Multi) Notify(ctx context.Context, e engine.Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, e)
		}
	}
}

// LogNotifier writes every event to a zerolog logger. Terminal events are
// logged at info, everything else at debug.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) Notify(_ context.Context, e engine.Event) {
	ev := n.Log.Debug()
	if e.Terminal() {
		ev = n.Log.Info()
	}
	ev.Str("session_id", e.SessionID).
		Str("kind", string(e.Kind)).
		Str("event", string(e.Type)).
		Str("item_id", e.ItemID).
		Int("delta", e.Delta).
		Int("score", e.Score).
		Int("lives", e.Lives).
		Int("round", e.Round).
		Msg("game event")
}

// EventRecorder persists outcome events
type EventRecorder interface {
	Record(ctx context.Context, e *models.OutcomeEvent) error
}

// JournalNotifier writes events to the outcome journal. Failures are logged
// and never reach the game.
type JournalNotifier struct {
	recorder EventRecorder
	timeout  time.Duration
	log      zerolog.Logger
}

// NewJournalNotifier creates a journal notifier. A zero timeout means 5s.
func NewJournalNotifier(recorder EventRecorder, timeout time.Duration, log zerolog.Logger) *JournalNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &JournalNotifier{recorder: recorder, timeout: timeout, log: log}
}

func (n *JournalNotifier) Notify(ctx context.Context, e engine.Event) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	oe := ToOutcomeEvent(e)
	if err := n.recorder.Record(ctx, &oe); err != nil {
		n.log.Error().Err(err).Str("session_id", e.SessionID).Str("event", string(e.Type)).Msg("failed to journal event")
	}
}

// ToOutcomeEvent converts an engine event into its journal row
func ToOutcomeEvent(e engine.Event) models.OutcomeEvent {
	return models.OutcomeEvent{
		SessionID: e.SessionID,
		GameKind:  e.Kind,
		EventType: string(e.Type),
		ItemID:    e.ItemID,
		Delta:     e.Delta,
		Score:     e.Score,
		Lives:     e.Lives,
		Round:     e.Round,
		CreatedAt: e.At,
	}
}
