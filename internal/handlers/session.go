package handlers

import (
	"log"
	"net/http"

	"github.com/google/uuid"

	"studyquiz/internal/session"
)

// TokenIssuer signs the token handed to a new session.
type TokenIssuer interface {
	GenerateToken(sessionID uuid.UUID) (string, error)
}

type SessionHandler struct {
	sessions *session.Registry
	tokens   TokenIssuer
}

func NewSessionHandler(sessions *session.Registry, tokens TokenIssuer) *SessionHandler {
	return &SessionHandler{sessions: sessions, tokens: tokens}
}

// Create starts a fresh, empty session. The page calls it on every load.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Create()

	token, err := h.tokens.GenerateToken(sess.ID)
	if err != nil {
		log.Printf("Failed to sign session token: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to start session", r))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"session_id": sess.ID,
		"token":      token,
	})
}
