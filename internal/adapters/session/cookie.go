package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DefaultCookieName names the cookie carrying the session id.
const DefaultCookieName = "samemean_session"

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

// FromRequest returns the session id carried by r, or "" when the cookie is
// missing or is not a well-formed id.
func FromRequest(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return ""
	}
	return id.String()
}

// SetCookie attaches the session id to the response.
func SetCookie(w http.ResponseWriter, name, id string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie tells the browser to forget the session.
func ClearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
