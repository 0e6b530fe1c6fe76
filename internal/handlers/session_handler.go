package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/session"
)

type cookieExpirer interface {
	Expire(w http.ResponseWriter, r *http.Request) error
}

// SessionHandler lets a client end its session explicitly
type SessionHandler struct {
	manager *session.Manager
	cookies cookieExpirer
	log     *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(manager *session.Manager, cookies cookieExpirer, log *slog.Logger) *SessionHandler {
	return &SessionHandler{
		manager: manager,
		cookies: cookies,
		log:     log,
	}
}

// End handles DELETE /api/session
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.log)
	if !ok {
		return
	}

	if err := h.manager.End(r.Context(), sess.ID); err != nil {
		h.log.Error("failed to end session", "session_id", sess.ID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}
	if err := h.cookies.Expire(w, r); err != nil {
		h.log.Warn("failed to expire session cookie", "session_id", sess.ID, "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}
