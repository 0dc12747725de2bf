package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"wordquest/internal/engine"
	"wordquest/internal/service"
)

// ReportSender delivers a session report
type ReportSender interface {
	SendSessionReport(ctx context.Context, to string, r service.SessionReport) error
}

type tally struct {
	correct, incorrect, skipped int
	seen                        time.Time
}

// EmailNotifier counts answers per session and mails a report when a session
// completes or fails. Reports are sent in the background.
type EmailNotifier struct {
	sender  ReportSender
	to      string
	timeout time.Duration
	maxIdle time.Duration
	log     zerolog.Logger

	mu      sync.Mutex
	tallies map[string]*tally
	wg      sync.WaitGroup
}

// NewEmailNotifier creates a notifier that mails reports to to
func NewEmailNotifier(sender ReportSender, to string, log zerolog.Logger) *EmailNotifier {
	return &EmailNotifier{
		sender:  sender,
		to:      to,
		timeout: 30 * time.Second,
		maxIdle: 24 * time.Hour,
		log:     log,
		tallies: make(map[string]*tally),
	}
}

func (n *EmailNotifier) Notify(ctx context.Context, e engine.Event) {
	n.mu.Lock()
	t, ok := n.tallies[e.SessionID]
	if !ok {
		t = &tally{}
		n.tallies[e.SessionID] = t
	}
	t.seen = e.At
	switch e.Type {
	case engine.EventAnswerCorrect:
		t.correct++
	case engine.EventAnswerIncorrect:
		t.incorrect++
	case engine.EventItemSkipped:
		t.skipped++
	}
	var report *service.SessionReport
	if e.Terminal() {
		report = &service.SessionReport{
			SessionID: e.SessionID,
			Kind:      string(e.Kind),
			Outcome:   outcome(e.Type),
			Score:     e.Score,
			Round:     e.Round,
			Lives:     e.Lives,
			Correct:   t.correct,
			Incorrect: t.incorrect,
			Skipped:   t.skipped,
			EndedAt:   e.At,
		}
		delete(n.tallies, e.SessionID)
	}
	n.pruneLocked(e.At)
	n.mu.Unlock()

	if report == nil {
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
		defer cancel()
		if err := n.sender.SendSessionReport(ctx, n.to, *report); err != nil {
			n.log.Error().Err(err).Str("session_id", report.SessionID).Msg("failed to send session report")
		}
	}()
}

// Wait blocks until every report in flight has been sent
func (n *EmailNotifier) Wait() {
	n.wg.Wait()
}

// pruneLocked drops tallies of sessions that went quiet without finishing
func (n *EmailNotifier) pruneLocked(now time.Time) {
	for id, t := range n.tallies {
		if now.Sub(t.seen) > n.maxIdle {
			delete(n.tallies, id)
		}
	}
}

func outcome(t engine.EventType) string {
	if t == engine.EventSessionComplete {
		return "complete"
	}
	return "failed"
}
