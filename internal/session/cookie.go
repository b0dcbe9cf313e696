package session

import (
	"net/http"
	"time"
)

// CookieOptions are shared by the cookie-based backends
type CookieOptions struct {
	Name   string
	Domain string
	Secure bool
	TTL    time.Duration
}

const defaultCookieName = "fitforge_session"

func (o CookieOptions) name() string {
	if o.Name == "" {
		return defaultCookieName
	}
	return o.Name
}

func (o CookieOptions) write(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     o.name(),
		Value:    value,
		Path:     "/",
		Domain:   o.Domain,
		MaxAge:   int(o.TTL.Seconds()),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (o CookieOptions) expire(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     o.name(),
		Value:    "",
		Path:     "/",
		Domain:   o.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (o CookieOptions) read(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	c, err := r.Cookie(o.name())
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
