package models

import "fmt"

// GameKind identifies one of the mini-games
type GameKind string

const (
	KindMatching      GameKind = "matching"
	KindSentence      GameKind = "sentence"
	KindGrammar       GameKind = "grammar"
	KindPronunciation GameKind = "pronunciation"
)

// AllKinds lists every game kind in display order
var AllKinds = []GameKind{KindMatching, KindSentence, KindGrammar, KindPronunciation}

// ParseGameKind converts a string to a GameKind
func ParseGameKind(s string) (GameKind, error) {
	for _, k := range AllKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown game kind %q", s)
}

// Item is a unit of learning content tagged with a difficulty rating.
// Exactly one payload is set and it matches Kind.
type Item struct {
	ID         string   `json:"id"`
	Kind       GameKind `json:"kind"`
	Difficulty int      `json:"difficulty"`
	Category   string   `json:"category"`

	Match         *MatchPayload         `json:"match,omitempty"`
	Sentence      *SentencePayload      `json:"sentence,omitempty"`
	Grammar       *GrammarPayload       `json:"grammar,omitempty"`
	Pronunciation *PronunciationPayload `json:"pronunciation,omitempty"`
}

// MatchPayload is a word paired with its picture
type MatchPayload struct {
	Word  string `json:"word"`
	Image string `json:"image"`
}

// SentenceToken is one draggable word of a sentence
type SentenceToken struct {
	ID    string `json:"id"`
	Word  string `json:"word"`
	Order int    `json:"order"`
}

// SentencePayload is a sentence split into ordered tokens
type SentencePayload struct {
	Text        string          `json:"text"`
	Tokens      []SentenceToken `json:"tokens"`
	Translation string          `json:"translation"`
}

// GrammarPayload is a multiple-choice grammar question
type GrammarPayload struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

// PronunciationPayload is a pronunciation target
type PronunciationPayload struct {
	Word     string `json:"word"`
	Phonetic string `json:"phonetic"`
	Tips     string `json:"tips"`
}

// Clone returns a deep copy of the item
func (it Item) Clone() Item {
	out := it
	if it.Match != nil {
		m := *it.Match
		out.Match = &m
	}
	if it.Sentence != nil {
		s := *it.Sentence
		s.Tokens = append([]SentenceToken(nil), it.Sentence.Tokens...)
		out.Sentence = &s
	}
	if it.Grammar != nil {
		g := *it.Grammar
		g.Options = append([]string(nil), it.Grammar.Options...)
		out.Grammar = &g
	}
	if it.Pronunciation != nil {
		p := *it.Pronunciation
		out.Pronunciation = &p
	}
	return out
}

// OrderedWords returns the sentence words in their authored order
func (p *SentencePayload) OrderedWords() []string {
	words := make([]string, len(p.Tokens))
	for _, t := range p.Tokens {
		if t.Order >= 1 && t.Order <= len(words) {
			words[t.Order-1] = t.Word
		}
	}
	return words
}
