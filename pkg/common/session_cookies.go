package common

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const SessionCookieName = "sid"

// SessionStarter is notified when a request arrives without a session cookie.
type SessionStarter interface {
	TrackSession(sessionId string, r *http.Request)
}

func generateSessionId() string {
	return uuid.NewString()
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, sessionId string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionId,
		Domain:   strings.TrimPrefix(hostname(r), "."),
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		MaxAge:   60 * 60 * 24 * 365,
		Path:     "/",
	})
}

func hostname(r *http.Request) string {
	host := r.Host
	if i := strings.LastIndex(host, ":"); i > 0 && !strings.HasSuffix(host, "]") {
		host = host[:i]
	}
	return host
}

// HandleSessionCookie returns the session id of the request, a new id is
// generated and set as cookie when the request has none or an invalid one.
func HandleSessionCookie(tracking SessionStarter, w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err == nil {
		if _, parseErr := uuid.Parse(c.Value); parseErr == nil {
			return c.Value
		}
	}
	sessionId := generateSessionId()
	if tracking != nil {
		go tracking.TrackSession(sessionId, r.Clone(r.Context()))
	}
	setSessionCookie(w, r, sessionId)
	return sessionId
}
