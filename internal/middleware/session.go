package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/config"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/session"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const sessionIDKey = "sid"

// SessionCookies binds requests to server-side sessions through a signed
// cookie carrying the session ID.
type SessionCookies struct {
	store   sessions.Store
	name    string
	manager *session.Manager
	log     *slog.Logger
}

// NewSessionCookies creates a cookie binder signed with cfg.Secret.
func NewSessionCookies(cfg config.SessionConfig, manager *session.Manager, log *slog.Logger) *SessionCookies {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &SessionCookies{
		store:   store,
		name:    cfg.CookieName,
		manager: manager,
		log:     log,
	}
}

// Middleware attaches the caller's session to the request context, issuing a
// new session cookie when the request carries none or an unreadable one.
func (c *SessionCookies) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := c.store.Get(r, c.name)
		if err != nil {
			c.log.Debug("discarding unreadable session cookie", "error", err)
		}

		sid, _ := cookie.Values[sessionIDKey].(string)
		if sid == "" {
			sid = uuid.NewString()
			cookie.Values[sessionIDKey] = sid
			if err := cookie.Save(r, w); err != nil {
				c.log.Error("failed to save session cookie", "error", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
		}

		sess, err := c.manager.Acquire(sid)
		if err != nil {
			http.Error(w, "Service Unavailable: shutting down", http.StatusServiceUnavailable)
			return
		}

		next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), sess)))
	})
}

// Expire tells the client to drop its session cookie.
func (c *SessionCookies) Expire(w http.ResponseWriter, r *http.Request) error {
	// Get always returns a session, even when the old cookie is unreadable.
	cookie, _ := c.store.Get(r, c.name)
	cookie.Options.MaxAge = -1
	return cookie.Save(r, w)
}
