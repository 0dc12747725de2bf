package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"wordquest/internal/engine"
	"wordquest/internal/models"
	"wordquest/internal/security"
	"wordquest/internal/service"
)

// GameHandler serves the session API
type GameHandler struct {
	games   *service.GameService
	tokens  *security.TokenIssuer
	journal *service.JournalService
}

// NewGameHandler creates a new game handler. journal may be nil when the
// outcome journal is disabled.
func NewGameHandler(games *service.GameService, tokens *security.TokenIssuer, journal *service.JournalService) *GameHandler {
	return &GameHandler{games: games, tokens: tokens, journal: journal}
}

// Health reports liveness and the number of live sessions
func (h *GameHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": len(h.games.ActiveSessions()),
		"journal":  h.journal != nil,
	})
}

// ListGames returns the game catalogue
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.games.Games())
}

// StartSession creates a session and returns its signed handle
func (h *GameHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	kind, err := models.ParseGameKind(req.Kind)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrUnknownGame, "", nil)
		return
	}

	id, snap, err := h.games.Start(kind, req.Seed)
	if err != nil {
		if errors.Is(err, service.ErrUnknownGameKind) {
			respondWithError(w, http.StatusBadRequest, ErrUnknownGame, "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to start session", err)
		return
	}

	token, exp, err := h.tokens.Issue(id, string(kind))
	if err != nil {
		_ = h.games.End(id)
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to issue session token", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, token, exp))
	respondWithJSON(w, http.StatusCreated, StartResponse{
		SessionID: id,
		Token:     token,
		ExpiresAt: exp,
		Session:   newSessionView(snap),
	})
}

// GetSession returns the current session view
func (h *GameHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	claims := SessionFromContext(r.Context())
	snap, err := h.games.Snapshot(claims.SessionID)
	if err != nil {
		h.sessionError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newSessionView(snap))
}

// SubmitAnswer evaluates an answer for the current item(s)
func (h *GameHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var answer engine.Answer
	if !decodeJSON(w, r, &answer) {
		return
	}
	claims := SessionFromContext(r.Context())
	if answer.ImageID != "" && claims.Kind == string(models.KindMatching) {
		snap, err := h.games.Snapshot(claims.SessionID)
		if err != nil {
			h.sessionError(w, err)
			return
		}
		answer.ImageID = resolveImageCard(snap, answer.ImageID)
	}
	res, err := h.games.Submit(claims.SessionID, answer)
	h.respondWithResult(w, res, err)
}

// Skip moves past the current item
func (h *GameHandler) Skip(w http.ResponseWriter, r *http.Request) {
	claims := SessionFromContext(r.Context())
	res, err := h.games.Skip(claims.SessionID)
	h.respondWithResult(w, res, err)
}

// Record runs a simulated pronunciation attempt
func (h *GameHandler) Record(w http.ResponseWriter, r *http.Request) {
	claims := SessionFromContext(r.Context())
	res, err := h.games.Record(claims.SessionID)
	if errors.Is(err, service.ErrRecordUnsupported) {
		respondWithError(w, http.StatusBadRequest, "This game does not record speech", "", nil)
		return
	}
	h.respondWithResult(w, res, err)
}

// Reset restarts the session
func (h *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	claims := SessionFromContext(r.Context())
	snap, err := h.games.Reset(claims.SessionID)
	if err != nil {
		h.sessionError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newSessionView(snap))
}

// EndSession tears the session down and clears the cookie
func (h *GameHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	claims := SessionFromContext(r.Context())
	http.SetCookie(w, security.CreateDeleteCookie(r))
	if err := h.games.End(claims.SessionID); err != nil {
		h.sessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SessionEvents returns the journaled outcomes of the session
func (h *GameHandler) SessionEvents(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		respondWithError(w, http.StatusNotFound, ErrJournalDisabled, "", nil)
		return
	}
	claims := SessionFromContext(r.Context())
	summary, err := h.journal.Session(r.Context(), claims.SessionID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to read journal", err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

func (h *GameHandler) respondWithResult(w http.ResponseWriter, res engine.Result, err error) {
	if err != nil {
		h.sessionError(w, err)
		return
	}
	if !res.Accepted {
		log.Debug().Str("session_id", res.Snapshot.SessionID).Err(res.Reason).Msg("request not accepted")
	}
	respondWithJSON(w, http.StatusOK, newActionResponse(res))
}

func (h *GameHandler) sessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrSessionNotFound) {
		respondWithError(w, http.StatusNotFound, ErrSessionExpired, "", nil)
		return
	}
	respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "session request failed", err)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return false
	}
	return true
}
