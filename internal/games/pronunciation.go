package games

import (
	"wordquest/internal/engine"
	"wordquest/internal/models"
)

const (
	DefaultConfidenceThreshold = 0.7
	DefaultSuccessRate         = 0.7
)

// PronunciationEvaluator accepts a recognition confidence at or above Threshold
type PronunciationEvaluator struct {
	Threshold float64
}

func (e PronunciationEvaluator) Evaluate(current []models.Item, _ map[string]struct{}, a engine.Answer) engine.Evaluation {
	if len(current) == 0 || current[0].Pronunciation == nil || a.Confidence == nil {
		return engine.Evaluation{Verdict: engine.VerdictInvalid}
	}
	c := *a.Confidence
	if c < 0 || c > 1 {
		return engine.Evaluation{Verdict: engine.VerdictInvalid}
	}
	id := current[0].ID
	if c >= e.Threshold {
		return engine.Evaluation{Verdict: engine.VerdictCorrect, ItemID: id}
	}
	return engine.Evaluation{Verdict: engine.VerdictIncorrect, ItemID: id}
}

func (PronunciationEvaluator) Explain(item models.Item) (string, string) {
	if item.Pronunciation == nil {
		return "", ""
	}
	return item.Pronunciation.Word, item.Pronunciation.Tips
}

// SimulatedRecognizer stands in for speech recognition. A recording succeeds
// with probability SuccessRate.
type SimulatedRecognizer struct {
	Rand        engine.Rand
	SuccessRate float64
	Threshold   float64
}

// NewSimulatedRecognizer uses the default success rate and threshold
func NewSimulatedRecognizer(r engine.Rand) *SimulatedRecognizer {
	return &SimulatedRecognizer{Rand: r, SuccessRate: DefaultSuccessRate, Threshold: DefaultConfidenceThreshold}
}

// Recognize returns a confidence in [0,1]. Successful attempts land in
// [Threshold, 1], failed ones below Threshold.
func (s *SimulatedRecognizer) Recognize() float64 {
	success := s.Rand.Float64() < s.SuccessRate
	u := s.Rand.Float64()
	if success {
		return s.Threshold + u*(1-s.Threshold)
	}
	return u * s.Threshold
}

// Answer produces an engine answer from a simulated attempt
func (s *SimulatedRecognizer) Answer() engine.Answer {
	c := s.Recognize()
	return engine.Answer{Confidence: &c}
}
