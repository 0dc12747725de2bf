package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"wordquest/internal/engine"
	"wordquest/internal/models"
)

// SessionView is the client's view of a session. Answers stay hidden: token
// order and the grammar key are only revealed through Feedback, and picture
// cards carry opaque ids that do not name their word.
type SessionView struct {
	SessionID string           `json:"sessionId"`
	Kind      models.GameKind  `json:"kind"`
	Phase     engine.Phase     `json:"phase"`
	Score     int              `json:"score"`
	Lives     int              `json:"lives"`
	Round     int              `json:"round"`
	Band      engine.Band      `json:"band"`
	Items     []ItemView       `json:"items"`
	Images    []ImageView      `json:"images,omitempty"`
	Matched   []string         `json:"matched"`
	Progress  ProgressView     `json:"progress"`
	Correct   int              `json:"correct"`
	Incorrect int              `json:"incorrect"`
	Skipped   int              `json:"skipped"`
	AllowSkip bool             `json:"allowSkip"`
	Feedback  *engine.Feedback `json:"feedback,omitempty"`
}

type ItemView struct {
	ID         string      `json:"id"`
	Difficulty int         `json:"difficulty"`
	Category   string      `json:"category,omitempty"`
	Word       string      `json:"word,omitempty"`
	Phonetic   string      `json:"phonetic,omitempty"`
	Tokens     []TokenView `json:"tokens,omitempty"`
	Question   string      `json:"question,omitempty"`
	Options    []string    `json:"options,omitempty"`
}

type TokenView struct {
	ID   string `json:"id"`
	Word string `json:"word"`
}

// ImageView is a matching target. ID is an opaque per-session card id; the
// answer endpoint maps it back to the item.
type ImageView struct {
	ID      string `json:"id"`
	Image   string `json:"image"`
	Matched bool   `json:"matched,omitempty"`
}

type ProgressView struct {
	Used  int `json:"used"`
	Total int `json:"total"`
}

type StartRequest struct {
	Kind string `json:"kind"`
	Seed string `json:"seed,omitempty"`
}

type StartResponse struct {
	SessionID string      `json:"sessionId"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	Session   SessionView `json:"session"`
}

type ActionResponse struct {
	Accepted bool        `json:"accepted"`
	Reason   string      `json:"reason,omitempty"`
	Correct  bool        `json:"correct"`
	Points   int         `json:"points"`
	Session  SessionView `json:"session"`
}

// newSessionView builds the client view. Tokens and images are shuffled with
// a key derived from the session, so repeated polls show the same layout.
func newSessionView(s engine.Snapshot) SessionView {
	v := SessionView{
		SessionID: s.SessionID,
		Kind:      s.Kind,
		Phase:     s.Phase,
		Score:     s.Score,
		Lives:     s.Lives,
		Round:     s.Round,
		Band:      s.Band,
		Items:     make([]ItemView, 0, len(s.Current)),
		Matched:   s.Matched,
		Progress:  ProgressView{Used: len(s.UsedIDs), Total: s.PoolSize},
		Correct:   s.Correct,
		Incorrect: s.Incorrect,
		Skipped:   s.Skipped,
		AllowSkip: s.AllowSkip,
		Feedback:  s.Feedback,
	}
	if v.Matched == nil {
		v.Matched = []string{}
	}

	matched := make(map[string]bool, len(s.Matched))
	for _, id := range s.Matched {
		matched[id] = true
	}

	for _, it := range s.Current {
		iv := ItemView{ID: it.ID, Difficulty: it.Difficulty, Category: it.Category}
		switch {
		case it.Match != nil:
			iv.Word = it.Match.Word
			v.Images = append(v.Images, ImageView{
				ID:      imageCardID(s.SessionID, it.ID),
				Image:   it.Match.Image,
				Matched: matched[it.ID],
			})
		case it.Sentence != nil:
			for _, tok := range it.Sentence.Tokens {
				iv.Tokens = append(iv.Tokens, TokenView{ID: tok.ID, Word: tok.Word})
			}
			iv.Tokens = shuffled(iv.Tokens, s.SessionID+":"+it.ID)
		case it.Grammar != nil:
			iv.Question = it.Grammar.Question
			iv.Options = it.Grammar.Options
		case it.Pronunciation != nil:
			iv.Word = it.Pronunciation.Word
			iv.Phonetic = it.Pronunciation.Phonetic
		}
		v.Items = append(v.Items, iv)
	}
	if len(v.Images) > 0 {
		v.Images = shuffled(v.Images, s.SessionID+":images:"+itemKey(s.Current))
	}
	return v
}

// imageCardID derives the picture card id for an item. It is stable for the
// session and unrelated to the item id.
func imageCardID(sessionID, itemID string) string {
	h := hmac.New(sha256.New, []byte(sessionID))
	h.Write([]byte(itemID))
	return "img-" + hex.EncodeToString(h.Sum(nil))[:16]
}

// resolveImageCard maps a picture card id back to the item it shows. Unknown
// ids, raw item ids included, resolve to "" and are rejected as invalid input.
func resolveImageCard(s engine.Snapshot, cardID string) string {
	for _, it := range s.Current {
		if it.Match != nil && imageCardID(s.SessionID, it.ID) == cardID {
			return it.ID
		}
	}
	return ""
}

func itemKey(items []models.Item) string {
	key := ""
	for _, it := range items {
		key += it.ID + ","
	}
	return key
}

func shuffled[T any](xs []T, key string) []T {
	out := append([]T(nil), xs...)
	r := engine.NewSeededRand(key)
	for i := len(out) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func newActionResponse(res engine.Result) ActionResponse {
	resp := ActionResponse{
		Accepted: res.Accepted,
		Correct:  res.Correct,
		Points:   res.Points,
		Session:  newSessionView(res.Snapshot),
	}
	if res.Reason != nil {
		resp.Reason = res.Reason.Error()
	}
	return resp
}
