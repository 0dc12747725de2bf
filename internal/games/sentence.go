package games

import (
	"strings"

	"wordquest/internal/engine"
	"wordquest/internal/models"
)

// SentenceEvaluator checks a word ordering. The answer must use every token
// exactly once. Orderings compare by text, so tokens with the same word are
// interchangeable.
type SentenceEvaluator struct{}

func (SentenceEvaluator) Evaluate(current []models.Item, _ map[string]struct{}, a engine.Answer) engine.Evaluation {
	if len(current) == 0 || current[0].Sentence == nil {
		return engine.Evaluation{Verdict: engine.VerdictInvalid}
	}
	item := current[0]
	tokens := item.Sentence.Tokens
	if len(a.Tokens) != len(tokens) {
		return engine.Evaluation{Verdict: engine.VerdictInvalid}
	}

	words := make(map[string]string, len(tokens))
	for _, t := range tokens {
		words[t.ID] = t.Word
	}
	seen := make(map[string]bool, len(tokens))
	got := make([]string, 0, len(tokens))
	for _, id := range a.Tokens {
		w, ok := words[id]
		if !ok || seen[id] {
			return engine.Evaluation{Verdict: engine.VerdictInvalid}
		}
		seen[id] = true
		got = append(got, w)
	}

	want := item.Sentence.OrderedWords()
	if strings.Join(got, " ") == strings.Join(want, " ") {
		return engine.Evaluation{Verdict: engine.VerdictCorrect, ItemID: item.ID}
	}
	return engine.Evaluation{Verdict: engine.VerdictIncorrect, ItemID: item.ID}
}

func (SentenceEvaluator) Explain(item models.Item) (string, string) {
	if item.Sentence == nil {
		return "", ""
	}
	return strings.Join(item.Sentence.OrderedWords(), " "), item.Sentence.Translation
}
