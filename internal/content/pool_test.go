package content

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"wordquest/internal/models"
)

func TestLoadEmbeddedPools(t *testing.T) {
	tests := []struct {
		kind    models.GameKind
		minSize int
	}{
		{models.KindMatching, 12},
		{models.KindSentence, 6},
		{models.KindGrammar, 6},
		{models.KindPronunciation, 8},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			p, err := Load(tt.kind, "")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if p.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", p.Kind(), tt.kind)
			}
			if p.Len() < tt.minSize {
				t.Errorf("Len() = %d, want at least %d", p.Len(), tt.minSize)
			}
			for _, it := range p.Items() {
				if it.Kind != tt.kind {
					t.Errorf("item %s has kind %q", it.ID, it.Kind)
				}
			}
			// the lowest band must have content so a fresh session can start
			if n := p.CountInRange(1, 2); n == 0 {
				t.Errorf("no items with difficulty 1-2")
			}
		})
	}
}

func TestLoadAll(t *testing.T) {
	pools, err := LoadAll("")
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(pools) != len(models.AllKinds) {
		t.Fatalf("LoadAll() returned %d pools, want %d", len(pools), len(models.AllKinds))
	}
}

func TestLoadFromDirectory(t *testing.T) {
	dir := t.TempDir()
	data := `[{"id":"x1","difficulty":2,"category":"test","grammar":{"question":"She ___ here.","options":["is","are"],"correctIndex":0,"explanation":"singular"}}]`
	if err := os.WriteFile(filepath.Join(dir, "grammar.json"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(models.KindGrammar, dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", p.Len())
	}
	it, ok := p.Get("x1")
	if !ok {
		t.Fatal("Get(x1) not found")
	}
	if it.Kind != models.KindGrammar {
		t.Errorf("Kind = %q, want grammar", it.Kind)
	}

	if _, err := Load(models.KindMatching, dir); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNewPoolValidation(t *testing.T) {
	match := func(id string, d int) models.Item {
		return models.Item{ID: id, Difficulty: d, Match: &models.MatchPayload{Word: "cat", Image: "🐱"}}
	}

	tests := []struct {
		name    string
		kind    models.GameKind
		items   []models.Item
		wantErr bool
	}{
		{"valid", models.KindMatching, []models.Item{match("a", 1), match("b", 6)}, false},
		{"empty", models.KindMatching, nil, true},
		{"duplicate id", models.KindMatching, []models.Item{match("a", 1), match("a", 2)}, true},
		{"difficulty too low", models.KindMatching, []models.Item{match("a", 0)}, true},
		{"difficulty too high", models.KindMatching, []models.Item{match("a", 7)}, true},
		{"missing id", models.KindMatching, []models.Item{match("", 1)}, true},
		{"wrong payload", models.KindGrammar, []models.Item{match("a", 1)}, true},
		{
			name: "grammar index out of range",
			kind: models.KindGrammar,
			items: []models.Item{{ID: "g", Difficulty: 1, Grammar: &models.GrammarPayload{
				Question: "q", Options: []string{"a", "b"}, CorrectIndex: 2,
			}}},
			wantErr: true,
		},
		{
			name: "sentence orders not a permutation",
			kind: models.KindSentence,
			items: []models.Item{{ID: "s", Difficulty: 1, Sentence: &models.SentencePayload{
				Text:   "I run",
				Tokens: []models.SentenceToken{{ID: "1", Word: "I", Order: 1}, {ID: "2", Word: "run", Order: 1}},
			}}},
			wantErr: true,
		},
		{
			name: "two payloads",
			kind: models.KindMatching,
			items: []models.Item{{ID: "m", Difficulty: 1,
				Match:         &models.MatchPayload{Word: "a", Image: "b"},
				Pronunciation: &models.PronunciationPayload{Word: "a"},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPool(tt.kind, tt.items)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewPool() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewPoolEmptyIsSentinel(t *testing.T) {
	_, err := NewPool(models.KindMatching, nil)
	if !errors.Is(err, ErrEmptyPool) {
		t.Errorf("NewPool(nil) error = %v, want ErrEmptyPool", err)
	}
}

func TestPoolIsolatedFromCaller(t *testing.T) {
	items := []models.Item{{ID: "a", Difficulty: 1, Grammar: &models.GrammarPayload{
		Question: "q", Options: []string{"x", "y"}, CorrectIndex: 0,
	}}}
	p, err := NewPool(models.KindGrammar, items)
	if err != nil {
		t.Fatal(err)
	}
	items[0].Grammar.Options[0] = "changed"

	got, _ := p.Get("a")
	if got.Grammar.Options[0] != "x" {
		t.Errorf("pool item changed through caller slice: %q", got.Grammar.Options[0])
	}
}

func TestBandCoverage(t *testing.T) {
	p, err := Load(models.KindMatching, "")
	if err != nil {
		t.Fatal(err)
	}
	cov := p.BandCoverage()
	total := 0
	for d := MinDifficulty; d <= MaxDifficulty; d++ {
		total += cov[d]
	}
	if total != p.Len() {
		t.Errorf("coverage total = %d, want %d", total, p.Len())
	}
}
