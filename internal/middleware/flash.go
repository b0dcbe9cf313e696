package middleware

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	flashCookieName   = "fitforge_flash"
	flashMaxAgeSecond = 60
	flashContextKey   = "fitforge_flash"
)

// Flash kinds map onto the page's notification styles
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
)

// Flash is a one-shot notification carried across a redirect
type Flash struct {
	Kind    string `json:"k"`
	Message string `json:"m"`
}

// SetFlash stores a notification for the next page render. A later call in
// the same request replaces it.
func SetFlash(c *gin.Context, kind, message string) {
	raw, err := json.Marshal(Flash{Kind: kind, Message: message})
	if err != nil {
		return
	}
	c.Set(flashContextKey, Flash{Kind: kind, Message: message})
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   flashMaxAgeSecond,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash returns the pending notification and deletes it
func PopFlash(c *gin.Context) (Flash, bool) {
	if val, ok := c.Get(flashContextKey); ok {
		if f, ok := val.(Flash); ok {
			c.Set(flashContextKey, nil)
			expireFlash(c)
			return f, true
		}
	}

	cookie, err := c.Request.Cookie(flashCookieName)
	if err != nil {
		return Flash{}, false
	}
	expireFlash(c)

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return Flash{}, false
	}
	var f Flash
	if err := json.Unmarshal(raw, &f); err != nil || f.Message == "" {
		return Flash{}, false
	}
	return f, true
}

func expireFlash(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
