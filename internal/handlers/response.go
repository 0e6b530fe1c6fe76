package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/session"
)

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response in JSON format
func WriteError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]string{"error": message}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed to encode error response", "error", err)
	}
}

// parseID parses a positive int64 path parameter (OpenAPI: integer, int64).
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// requireSession returns the request's session or writes a 500. Routes using
// it must sit behind the session middleware.
func requireSession(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*session.Session, bool) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		logger.Error("no session in request context", "path", r.URL.Path)
		WriteError(w, http.StatusInternalServerError, "Internal server error", logger)
		return nil, false
	}
	return sess, true
}
