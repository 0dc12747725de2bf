package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"wordquest/internal/content"
	"wordquest/internal/database"
	"wordquest/internal/engine"
	"wordquest/internal/games"
	"wordquest/internal/models"
	"wordquest/internal/notify"
	"wordquest/internal/security"
	"wordquest/internal/service"
)

type testServer struct {
	handler http.Handler
	games   *service.GameService
	tokens  *security.TokenIssuer
}

func newTestServer(t *testing.T, withJournal bool, rate int) *testServer {
	t.Helper()
	pools, err := content.LoadAll("")
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}

	var journal *service.JournalService
	var notifier engine.Notifier = notify.LogNotifier{Log: zerolog.Nop()}
	if withJournal {
		if testing.Short() {
			t.Skip("Skipping database test in short mode")
		}
		db, err := database.Initialize(filepath.Join(t.TempDir(), "api.db"))
		if err != nil {
			t.Fatalf("Initialize() error = %v", err)
		}
		t.Cleanup(func() { db.Close() })
		journal = service.NewJournalService(db)
		notifier = notify.NewJournalNotifier(journal.Repository(), time.Second, zerolog.Nop())
	}

	svc, err := service.NewGameService(pools, games.DefaultCatalog().WithFeedbackDelay(0), service.GameServiceOptions{Notifier: notifier})
	if err != nil {
		t.Fatalf("NewGameService() error = %v", err)
	}
	t.Cleanup(svc.Shutdown)

	tokens, _, err := security.NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	limiter := security.NewRateLimiter(rate, time.Minute)
	t.Cleanup(limiter.Stop)

	return &testServer{
		handler: NewRouter(NewGameHandler(svc, tokens, journal), NewMiddleware(tokens, limiter)),
		games:   svc,
		tokens:  tokens,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) start(t *testing.T, kind models.GameKind, seed string) StartResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/sessions", "", StartRequest{Kind: string(kind), Seed: seed})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp StartResponse
	decode(t, rec, &resp)
	return resp
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
	}
}

func TestHealthAndGames(t *testing.T) {
	s := newTestServer(t, false, 0)

	rec := s.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health = %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("GET /health content type = %q", rec.Header().Get("Content-Type"))
	}

	rec = s.do(t, http.MethodGet, "/api/games", "", nil)
	var infos []service.GameInfo
	decode(t, rec, &infos)
	if len(infos) != 4 {
		t.Errorf("GET /api/games returned %d games, want 4", len(infos))
	}
}

func TestStartSession(t *testing.T) {
	s := newTestServer(t, false, 0)

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"bad json", "{", http.StatusBadRequest},
		{"unknown kind", StartRequest{Kind: "chess"}, http.StatusBadRequest},
		{"matching", StartRequest{Kind: "matching"}, http.StatusCreated},
		{"sentence", StartRequest{Kind: "sentence", Seed: "abc"}, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/sessions", "", tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
			if tt.want != http.StatusCreated {
				return
			}
			var resp StartResponse
			decode(t, rec, &resp)
			if resp.Token == "" || resp.SessionID == "" {
				t.Errorf("response = %+v, want token and id", resp)
			}
			if resp.Session.Phase != engine.PhasePresenting {
				t.Errorf("phase = %v, want presenting", resp.Session.Phase)
			}
			if c := rec.Result().Cookies(); len(c) == 0 || c[0].Name != security.SessionCookieName {
				t.Errorf("cookies = %v, want session cookie", c)
			}
		})
	}
}

func TestSessionViewHidesAnswers(t *testing.T) {
	s := newTestServer(t, false, 0)

	for _, kind := range []models.GameKind{models.KindSentence, models.KindGrammar, models.KindMatching} {
		t.Run(string(kind), func(t *testing.T) {
			resp := s.start(t, kind, "")
			rec := s.do(t, http.MethodGet, "/api/session", resp.Token, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("GET /api/session = %d", rec.Code)
			}
			body := rec.Body.String()
			for _, leak := range []string{"correctIndex", `"order"`, "explanation", "translation"} {
				if strings.Contains(body, leak) {
					t.Errorf("session view leaks %s: %s", leak, body)
				}
			}
		})
	}
}

func TestSessionRequiresToken(t *testing.T) {
	s := newTestServer(t, false, 0)

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/api/session", tt.token, nil)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestAnswerFlow(t *testing.T) {
	s := newTestServer(t, false, 0)
	resp := s.start(t, models.KindGrammar, "flow")

	snap, err := s.games.Snapshot(resp.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	idx := snap.Current[0].Grammar.CorrectIndex

	rec := s.do(t, http.MethodPost, "/api/session/answer", resp.Token, engine.Answer{Choice: &idx})
	if rec.Code != http.StatusOK {
		t.Fatalf("answer status = %d (%s)", rec.Code, rec.Body.String())
	}
	var action ActionResponse
	decode(t, rec, &action)
	if !action.Accepted || !action.Correct || action.Points == 0 {
		t.Errorf("answer = %+v, want accepted correct with points", action)
	}
	if action.Session.Score != action.Points || action.Session.Correct != 1 {
		t.Errorf("session = %+v, want score %d", action.Session, action.Points)
	}

	t.Run("invalid choice is not accepted", func(t *testing.T) {
		bad := 99
		rec := s.do(t, http.MethodPost, "/api/session/answer", resp.Token, engine.Answer{Choice: &bad})
		var action ActionResponse
		decode(t, rec, &action)
		if action.Accepted || action.Reason == "" {
			t.Errorf("answer = %+v, want rejected with reason", action)
		}
	})

	t.Run("skip not allowed for grammar", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/session/skip", resp.Token, nil)
		var action ActionResponse
		decode(t, rec, &action)
		if action.Accepted {
			t.Errorf("skip = %+v, want rejected", action)
		}
	})

	t.Run("record not supported", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/session/record", resp.Token, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("record status = %d, want 400", rec.Code)
		}
	})

	t.Run("reset", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/session/reset", resp.Token, nil)
		var view SessionView
		decode(t, rec, &view)
		if view.Score != 0 || view.Round != 1 || view.Lives != engine.DefaultLives {
			t.Errorf("reset view = %+v, want fresh session", view)
		}
	})

	t.Run("journal disabled", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/session/events", resp.Token, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("events status = %d, want 404", rec.Code)
		}
	})

	t.Run("end", func(t *testing.T) {
		rec := s.do(t, http.MethodDelete, "/api/session", resp.Token, nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("end status = %d, want 204", rec.Code)
		}
		rec = s.do(t, http.MethodGet, "/api/session", resp.Token, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET after end = %d, want 404", rec.Code)
		}
	})
}

func TestPronunciationRecordAndSkip(t *testing.T) {
	s := newTestServer(t, false, 0)
	resp := s.start(t, models.KindPronunciation, "speak")

	rec := s.do(t, http.MethodPost, "/api/session/record", resp.Token, nil)
	var action ActionResponse
	decode(t, rec, &action)
	if !action.Accepted {
		t.Fatalf("record = %+v, want accepted", action)
	}

	if action.Session.Phase != engine.PhasePresenting {
		t.Skipf("session ended after one attempt: %s", action.Session.Phase)
	}
	rec = s.do(t, http.MethodPost, "/api/session/skip", resp.Token, nil)
	decode(t, rec, &action)
	if !action.Accepted || action.Session.Skipped != 1 {
		t.Errorf("skip = %+v, want accepted with one skip", action)
	}
}

func TestStartIsRateLimited(t *testing.T) {
	s := newTestServer(t, false, 2)

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = s.do(t, http.MethodPost, "/api/sessions", "", StartRequest{Kind: "grammar"}).Code
	}
	want := []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d status = %d, want %d", i+1, codes[i], want[i])
		}
	}
}

func TestSessionEventsFromJournal(t *testing.T) {
	s := newTestServer(t, true, 0)
	resp := s.start(t, models.KindGrammar, "journal")

	snap, err := s.games.Snapshot(resp.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	wrong := (snap.Current[0].Grammar.CorrectIndex + 1) % len(snap.Current[0].Grammar.Options)
	s.do(t, http.MethodPost, "/api/session/answer", resp.Token, engine.Answer{Choice: &wrong})

	rec := s.do(t, http.MethodGet, "/api/session/events", resp.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("events status = %d (%s)", rec.Code, rec.Body.String())
	}
	var summary service.SessionSummary
	decode(t, rec, &summary)
	if len(summary.Events) != 1 || summary.Events[0].EventType != string(engine.EventAnswerIncorrect) {
		t.Errorf("events = %+v, want one answer-incorrect", summary.Events)
	}
	if summary.Counts["answer-incorrect"] != 1 {
		t.Errorf("counts = %v", summary.Counts)
	}
}

func TestMatchingImageCardsAreOpaque(t *testing.T) {
	s := newTestServer(t, false, 0)
	resp := s.start(t, models.KindMatching, "cards")

	view := resp.Session
	if len(view.Images) != len(view.Items) || len(view.Items) == 0 {
		t.Fatalf("images %d items %d", len(view.Images), len(view.Items))
	}
	words := make(map[string]bool, len(view.Items))
	for _, it := range view.Items {
		words[it.ID] = true
	}
	for _, img := range view.Images {
		if words[img.ID] {
			t.Errorf("image card %s reuses a word id", img.ID)
		}
	}

	// the server side knows which picture belongs to the first word
	snap, err := s.games.Snapshot(resp.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	word := view.Items[0].ID
	var image string
	for _, it := range snap.Current {
		if it.ID == word {
			image = it.Match.Image
		}
	}
	card := ""
	for _, img := range view.Images {
		if img.Image == image {
			card = img.ID
		}
	}
	if card == "" {
		t.Fatalf("no image card for %s", word)
	}

	tests := []struct {
		name     string
		imageID  string
		accepted bool
		correct  bool
	}{
		{"word id as image id", word, false, false},
		{"unknown card", "img-0000", false, false},
		{"matching card", card, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/session/answer", resp.Token, engine.Answer{WordID: word, ImageID: tt.imageID})
			if rec.Code != http.StatusOK {
				t.Fatalf("answer status = %d (%s)", rec.Code, rec.Body.String())
			}
			var action ActionResponse
			decode(t, rec, &action)
			if action.Accepted != tt.accepted || action.Correct != tt.correct {
				t.Errorf("answer = accepted %v correct %v, want %v %v", action.Accepted, action.Correct, tt.accepted, tt.correct)
			}
		})
	}

	rec := s.do(t, http.MethodGet, "/api/session", resp.Token, nil)
	var after SessionView
	decode(t, rec, &after)
	for _, img := range after.Images {
		if img.ID == card && !img.Matched {
			t.Errorf("image card %s not marked matched", card)
		}
	}
}
