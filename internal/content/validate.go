package content

import (
	"fmt"
	"strings"

	"wordquest/internal/models"
)

// ValidationError represents an authoring defect in a content item
type ValidationError struct {
	ItemID  string
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.ItemID == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("item %q %s: %s", e.ItemID, e.Field, e.Message)
}

// Validate checks that an item is well formed for kind
func Validate(kind models.GameKind, it models.Item) error {
	if strings.TrimSpace(it.ID) == "" {
		return ValidationError{Field: "id", Message: "id is required"}
	}
	if it.Kind != kind {
		return ValidationError{ItemID: it.ID, Field: "kind", Message: fmt.Sprintf("expected %s, got %s", kind, it.Kind)}
	}
	if it.Difficulty < MinDifficulty || it.Difficulty > MaxDifficulty {
		return ValidationError{ItemID: it.ID, Field: "difficulty", Message: fmt.Sprintf("must be between %d and %d", MinDifficulty, MaxDifficulty)}
	}
	if payloadCount(it) != 1 {
		return ValidationError{ItemID: it.ID, Field: "payload", Message: "exactly one payload must be set"}
	}

	switch kind {
	case models.KindMatching:
		return validateMatch(it)
	case models.KindSentence:
		return validateSentence(it)
	case models.KindGrammar:
		return validateGrammar(it)
	case models.KindPronunciation:
		return validatePronunciation(it)
	default:
		return ValidationError{ItemID: it.ID, Field: "kind", Message: "unknown game kind"}
	}
}

func payloadCount(it models.Item) int {
	n := 0
	if it.Match != nil {
		n++
	}
	if it.Sentence != nil {
		n++
	}
	if it.Grammar != nil {
		n++
	}
	if it.Pronunciation != nil {
		n++
	}
	return n
}

func validateMatch(it models.Item) error {
	if it.Match == nil {
		return ValidationError{ItemID: it.ID, Field: "match", Message: "payload missing"}
	}
	if strings.TrimSpace(it.Match.Word) == "" || strings.TrimSpace(it.Match.Image) == "" {
		return ValidationError{ItemID: it.ID, Field: "match", Message: "word and image are required"}
	}
	return nil
}

func validateSentence(it models.Item) error {
	s := it.Sentence
	if s == nil {
		return ValidationError{ItemID: it.ID, Field: "sentence", Message: "payload missing"}
	}
	if len(s.Tokens) == 0 {
		return ValidationError{ItemID: it.ID, Field: "sentence.tokens", Message: "at least one token is required"}
	}
	seenOrder := make(map[int]bool, len(s.Tokens))
	seenID := make(map[string]bool, len(s.Tokens))
	for _, t := range s.Tokens {
		if t.ID == "" || strings.TrimSpace(t.Word) == "" {
			return ValidationError{ItemID: it.ID, Field: "sentence.tokens", Message: "token id and word are required"}
		}
		if seenID[t.ID] {
			return ValidationError{ItemID: it.ID, Field: "sentence.tokens", Message: fmt.Sprintf("duplicate token id %q", t.ID)}
		}
		if t.Order < 1 || t.Order > len(s.Tokens) || seenOrder[t.Order] {
			return ValidationError{ItemID: it.ID, Field: "sentence.tokens", Message: "orders must be a permutation of 1..n"}
		}
		seenID[t.ID] = true
		seenOrder[t.Order] = true
	}
	return nil
}

func validateGrammar(it models.Item) error {
	g := it.Grammar
	if g == nil {
		return ValidationError{ItemID: it.ID, Field: "grammar", Message: "payload missing"}
	}
	if len(g.Options) < 2 {
		return ValidationError{ItemID: it.ID, Field: "grammar.options", Message: "at least two options are required"}
	}
	if g.CorrectIndex < 0 || g.CorrectIndex >= len(g.Options) {
		return ValidationError{ItemID: it.ID, Field: "grammar.correctIndex", Message: "out of range"}
	}
	return nil
}

func validatePronunciation(it models.Item) error {
	if it.Pronunciation == nil {
		return ValidationError{ItemID: it.ID, Field: "pronunciation", Message: "payload missing"}
	}
	if strings.TrimSpace(it.Pronunciation.Word) == "" {
		return ValidationError{ItemID: it.ID, Field: "pronunciation.word", Message: "word is required"}
	}
	return nil
}
