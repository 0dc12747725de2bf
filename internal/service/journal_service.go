package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"wordquest/internal/database"
	"wordquest/internal/models"
	"wordquest/internal/repository"
)

const journalVersion = "1.0"

// JournalExport is the file format written by Export and read by Import
type JournalExport struct {
	Version      string                `json:"version"`
	ExportedAt   time.Time             `json:"exported_at"`
	DatabaseType string                `json:"database_type"`
	Since        *time.Time            `json:"since,omitempty"`
	Events       []models.OutcomeEvent `json:"events"`
}

// SessionSummary tallies the journal of one session
type SessionSummary struct {
	SessionID string                `json:"sessionId"`
	Finished  bool                  `json:"finished"`
	Counts    map[string]int        `json:"counts"`
	Events    []models.OutcomeEvent `json:"events"`
}

// JournalService reads and maintains the outcome journal
type JournalService struct {
	db   *database.DB
	repo *repository.EventRepository
}

// NewJournalService creates a new journal service
func NewJournalService(db *database.DB) *JournalService {
	return &JournalService{db: db, repo: repository.NewEventRepository(db)}
}

// Repository returns the event repository backing the service
func (s *JournalService) Repository() *repository.EventRepository {
	return s.repo
}

// Session returns the journaled events of a session with per-type counts
func (s *JournalService) Session(ctx context.Context, sessionID string) (*SessionSummary, error) {
	events, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	counts, err := s.repo.CountByType(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	summary := &SessionSummary{SessionID: sessionID, Counts: counts, Events: events}
	if summary.Events == nil {
		summary.Events = []models.OutcomeEvent{}
	}
	for _, e := range events {
		if e.IsTerminal() {
			summary.Finished = true
		}
	}
	return summary, nil
}

// Export writes every event created at or after since as indented JSON.
// A zero since exports the whole journal.
func (s *JournalService) Export(ctx context.Context, w io.Writer, since time.Time) (int, error) {
	events, err := s.repo.ListSince(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("failed to read journal: %w", err)
	}
	if events == nil {
		events = []models.OutcomeEvent{}
	}

	export := JournalExport{
		Version:      journalVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.GetDialect().DriverName(),
		Events:       events,
	}
	if !since.IsZero() {
		utc := since.UTC()
		export.Since = &utc
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return 0, fmt.Errorf("failed to encode journal: %w", err)
	}

	log.Info().Int("events", len(events)).Msg("journal exported")
	return len(events), nil
}

// Import restores an export in a single transaction
func (s *JournalService) Import(ctx context.Context, r io.Reader) (int, error) {
	var export JournalExport
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return 0, fmt.Errorf("failed to decode journal: %w", err)
	}
	if export.Version != journalVersion {
		return 0, fmt.Errorf("unsupported journal version %q", export.Version)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	repo := repository.NewEventRepository(tx)
	for i := range export.Events {
		if err := repo.Record(ctx, &export.Events[i]); err != nil {
			return 0, fmt.Errorf("failed to import event %s: %w", export.Events[i].ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}

	log.Info().Int("events", len(export.Events)).Msg("journal imported")
	return len(export.Events), nil
}

// Prune deletes events older than olderThan
func (s *JournalService) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := s.repo.DeleteBefore(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	log.Info().Int64("deleted", n).Dur("older_than", olderThan).Msg("journal pruned")
	return n, nil
}
