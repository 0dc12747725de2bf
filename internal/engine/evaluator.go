package engine

import "wordquest/internal/models"

// Answer carries the learner's input. Only the fields relevant to the game kind are read.
type Answer struct {
	// matching
	WordID  string `json:"wordId,omitempty"`
	ImageID string `json:"imageId,omitempty"`

	// grammar
	Choice *int `json:"choice,omitempty"`

	// sentence ordering: token ids in the learner's order
	Tokens []string `json:"tokens,omitempty"`

	// pronunciation: recognition confidence in [0,1]
	Confidence *float64 `json:"confidence,omitempty"`
}

// Verdict is the outcome of evaluating an answer
type Verdict int

const (
	VerdictInvalid Verdict = iota
	VerdictIncorrect
	VerdictCorrect
)

func (v Verdict) String() string {
	switch v {
	case VerdictCorrect:
		return "correct"
	case VerdictIncorrect:
		return "incorrect"
	default:
		return "invalid"
	}
}

// Evaluation is what an Evaluator decided and which item it concerns
type Evaluation struct {
	Verdict Verdict
	ItemID  string
}

// Evaluator judges an answer against the presented item(s). matched holds ids
// already solved in the current round (pair matching only).
type Evaluator interface {
	Evaluate(current []models.Item, matched map[string]struct{}, a Answer) Evaluation
}

// EvaluatorFunc adapts a function to Evaluator
type EvaluatorFunc func(current []models.Item, matched map[string]struct{}, a Answer) Evaluation

func (f EvaluatorFunc) Evaluate(current []models.Item, matched map[string]struct{}, a Answer) Evaluation {
	return f(current, matched, a)
}
