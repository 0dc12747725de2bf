package service

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"wordquest/internal/database"
	"wordquest/internal/models"
)

func newTestJournal(t *testing.T) *JournalService {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}
	db, err := database.Initialize(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewJournalService(db)
}

func seedJournal(t *testing.T, s *JournalService, events ...models.OutcomeEvent) {
	t.Helper()
	for i := range events {
		if err := s.Repository().Record(context.Background(), &events[i]); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
}

func TestJournalExportImport(t *testing.T) {
	src := newTestJournal(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedJournal(t, src,
		models.OutcomeEvent{SessionID: "a", GameKind: models.KindGrammar, EventType: "answer-correct", ItemID: "g01", Delta: 185, Score: 185, Lives: 3, Round: 2, CreatedAt: now.Add(-48 * time.Hour)},
		models.OutcomeEvent{SessionID: "b", GameKind: models.KindSentence, EventType: "answer-incorrect", ItemID: "s01", Lives: 2, Round: 1, CreatedAt: now.Add(-time.Hour)},
		models.OutcomeEvent{SessionID: "b", GameKind: models.KindSentence, EventType: "session-failed", Lives: 0, Round: 1, CreatedAt: now.Add(-time.Minute)},
	)

	tests := []struct {
		name  string
		since time.Time
		want  int
	}{
		{"everything", time.Time{}, 3},
		{"last day", now.Add(-24 * time.Hour), 2},
		{"future", now.Add(time.Hour), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			n, err := src.Export(ctx, &buf, tt.since)
			if err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			if n != tt.want {
				t.Errorf("Export() = %d, want %d", n, tt.want)
			}
			var export JournalExport
			if err := json.Unmarshal(buf.Bytes(), &export); err != nil {
				t.Fatalf("export is not JSON: %v", err)
			}
			if len(export.Events) != tt.want || export.Version != journalVersion {
				t.Errorf("export = %d events version %q", len(export.Events), export.Version)
			}
		})
	}

	var buf bytes.Buffer
	if _, err := src.Export(ctx, &buf, time.Time{}); err != nil {
		t.Fatal(err)
	}
	dst := newTestJournal(t)
	n, err := dst.Import(ctx, &buf)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Import() = %d, want 3", n)
	}
	summary, err := dst.Session(ctx, "b")
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.Events) != 2 || summary.Counts["session-failed"] != 1 || !summary.Finished {
		t.Errorf("Session(b) = %+v, want 2 events with one failure", summary)
	}
}

func TestJournalImportRollsBack(t *testing.T) {
	s := newTestJournal(t)
	ctx := context.Background()
	seedJournal(t, s, models.OutcomeEvent{ID: "dup", SessionID: "x", GameKind: models.KindMatching, EventType: "answer-correct"})

	export := JournalExport{Version: journalVersion, Events: []models.OutcomeEvent{
		{ID: "fresh", SessionID: "y", GameKind: models.KindMatching, EventType: "answer-correct"},
		{ID: "dup", SessionID: "x", GameKind: models.KindMatching, EventType: "answer-correct"},
	}}
	data, _ := json.Marshal(export)

	if _, err := s.Import(ctx, bytes.NewReader(data)); err == nil {
		t.Fatal("Import() error = nil, want duplicate id error")
	}
	summary, err := s.Session(ctx, "y")
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.Events) != 0 {
		t.Errorf("failed import left %d events behind", len(summary.Events))
	}
}

func TestJournalImportRejectsUnknownVersion(t *testing.T) {
	s := newTestJournal(t)
	if _, err := s.Import(context.Background(), bytes.NewBufferString(`{"version":"9","events":[]}`)); err == nil {
		t.Error("Import() error = nil, want version error")
	}
}

func TestJournalPrune(t *testing.T) {
	s := newTestJournal(t)
	ctx := context.Background()
	now := time.Now()

	seedJournal(t, s,
		models.OutcomeEvent{SessionID: "old", GameKind: models.KindGrammar, EventType: "answer-correct", CreatedAt: now.Add(-40 * 24 * time.Hour)},
		models.OutcomeEvent{SessionID: "new", GameKind: models.KindGrammar, EventType: "answer-correct", CreatedAt: now.Add(-time.Hour)},
	)

	n, err := s.Prune(ctx, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Prune() = %d, want 1", n)
	}
	summary, err := s.Session(ctx, "new")
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.Events) != 1 {
		t.Errorf("Prune() removed recent events")
	}
}
