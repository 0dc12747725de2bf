package games

import (
	"wordquest/internal/engine"
	"wordquest/internal/models"
)

// GrammarEvaluator checks a multiple-choice selection
type GrammarEvaluator struct{}

func (GrammarEvaluator) Evaluate(current []models.Item, _ map[string]struct{}, a engine.Answer) engine.Evaluation {
	if len(current) == 0 || current[0].Grammar == nil || a.Choice == nil {
		return engine.Evaluation{Verdict: engine.VerdictInvalid}
	}
	item := current[0]
	choice := *a.Choice
	if choice < 0 || choice >= len(item.Grammar.Options) {
		return engine.Evaluation{Verdict: engine.VerdictInvalid}
	}
	if choice == item.Grammar.CorrectIndex {
		return engine.Evaluation{Verdict: engine.VerdictCorrect, ItemID: item.ID}
	}
	return engine.Evaluation{Verdict: engine.VerdictIncorrect, ItemID: item.ID}
}

func (GrammarEvaluator) Explain(item models.Item) (string, string) {
	if item.Grammar == nil {
		return "", ""
	}
	return item.Grammar.Options[item.Grammar.CorrectIndex], item.Grammar.Explanation
}
