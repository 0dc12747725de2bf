package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"wordquest/internal/database"
	"wordquest/internal/models"
)

// EventRepository handles outcome journal database operations
type EventRepository struct {
	db database.DBTX
}

// NewEventRepository creates a new event repository
func NewEventRepository(db database.DBTX) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, session_id, game_kind, event_type, item_id, delta, score, lives, round, created_at`

// Record inserts an outcome event. A missing ID or timestamp is filled in.
func (r *EventRepository) Record(ctx context.Context, e *models.OutcomeEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	query := `
		INSERT INTO outcome_events (` + eventColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.SessionID, string(e.GameKind), e.EventType, e.ItemID,
		e.Delta, e.Score, e.Lives, e.Round, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// ListBySession returns the events of one session in the order they happened
func (r *EventRepository) ListBySession(ctx context.Context, sessionID string) ([]models.OutcomeEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM outcome_events
		WHERE session_id = ?
		ORDER BY created_at ASC, id ASC
	`
	return r.list(ctx, query, sessionID)
}

// ListSince returns all events created at or after since
func (r *EventRepository) ListSince(ctx context.Context, since time.Time) ([]models.OutcomeEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM outcome_events
		WHERE created_at >= ?
		ORDER BY created_at ASC, id ASC
	`
	return r.list(ctx, query, since.UTC())
}

// CountByType tallies the events of a session per event type
func (r *EventRepository) CountByType(ctx context.Context, sessionID string) (map[string]int, error) {
	query := `
		SELECT event_type, COUNT(*)
		FROM outcome_events
		WHERE session_id = ?
		GROUP BY event_type
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var eventType string
		var n int
		if err := rows.Scan(&eventType, &n); err != nil {
			return nil, err
		}
		counts[eventType] = n
	}
	return counts, rows.Err()
}

// DeleteBefore removes events older than cutoff and returns how many were deleted
func (r *EventRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM outcome_events WHERE created_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune events: %w", err)
	}
	return result.RowsAffected()
}

func (r *EventRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.OutcomeEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.OutcomeEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func scanEvent(rows *sql.Rows) (models.OutcomeEvent, error) {
	var e models.OutcomeEvent
	var kind string
	err := rows.Scan(
		&e.ID,
		&e.SessionID,
		&kind,
		&e.EventType,
		&e.ItemID,
		&e.Delta,
		&e.Score,
		&e.Lives,
		&e.Round,
		&e.CreatedAt,
	)
	e.GameKind = models.GameKind(kind)
	return e, err
}
