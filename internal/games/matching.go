package games

import (
	"wordquest/internal/engine"
	"wordquest/internal/models"
)

// MatchingEvaluator pairs a word card with a picture card from the current batch.
// Both cards carry the item id they came from.
type MatchingEvaluator struct{}

func (MatchingEvaluator) Evaluate(current []models.Item, matched map[string]struct{}, a engine.Answer) engine.Evaluation {
	if !inBatch(current, a.WordID) || !inBatch(current, a.ImageID) {
		return engine.Evaluation{Verdict: engine.VerdictInvalid}
	}
	if _, done := matched[a.WordID]; done {
		return engine.Evaluation{Verdict: engine.VerdictInvalid}
	}
	if _, done := matched[a.ImageID]; done {
		return engine.Evaluation{Verdict: engine.VerdictInvalid}
	}
	if a.WordID == a.ImageID {
		return engine.Evaluation{Verdict: engine.VerdictCorrect, ItemID: a.WordID}
	}
	return engine.Evaluation{Verdict: engine.VerdictIncorrect, ItemID: a.WordID}
}

func (MatchingEvaluator) Explain(item models.Item) (string, string) {
	if item.Match == nil {
		return "", ""
	}
	return item.Match.Word, ""
}

func inBatch(current []models.Item, id string) bool {
	if id == "" {
		return false
	}
	for _, it := range current {
		if it.ID == id {
			return true
		}
	}
	return false
}
