package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/fitforge/fitforge-web/internal/session"
	apperrors "github.com/fitforge/fitforge-web/pkg/errors"
	"github.com/fitforge/fitforge-web/pkg/logger"
	"github.com/fitforge/fitforge-web/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// SessionContextKey holds the visitor's session.Session
	SessionContextKey = "fitforge_session"
	// sessionErrContextKey holds the error from loading it, if any
	sessionErrContextKey = "fitforge_session_err"

	// LoginPath is where anonymous visitors are sent
	LoginPath = "/login"
	// HomePath is the safe default for visitors without the right role
	HomePath = "/"
)

// Access is the guard's decision for one navigation. It is advisory: the
// course API re-checks every call with the bearer token.
type Access int

const (
	Allowed Access = iota
	RedirectLogin
	RedirectHome
)

func (a Access) String() string {
	switch a {
	case Allowed:
		return "allowed"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

// Decide maps a loaded session onto an Access. With no roles any session is
// enough.
func Decide(sess session.Session, err error, roles []session.RoleHint) Access {
	if err != nil || sess.Anonymous() {
		return RedirectLogin
	}
	if len(roles) == 0 {
		return Allowed
	}
	for _, role := range roles {
		if sess.Hint == role {
			return Allowed
		}
	}
	return RedirectHome
}

// LoadSession puts the visitor's session (if any) into the context so pages
// can render the navbar. It never redirects.
func LoadSession(store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		load(c, store)
		c.Next()
	}
}

// RequireSession redirects anonymous visitors to the login page before the
// handler runs, so no protected API call is made. A malformed session is
// cleared first.
func RequireSession(store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := load(c, store)
		if Decide(sess, err, nil) == Allowed {
			c.Next()
			return
		}

		reason := "anonymous"
		if errors.Is(err, session.ErrMalformedToken) {
			reason = "malformed"
			if clearErr := store.Clear(c.Writer, c.Request); clearErr != nil {
				logger.Warn("Failed to clear malformed session", zap.Error(clearErr))
			}
		}
		metrics.GuardRedirects.WithLabelValues(reason).Inc()

		SetFlash(c, FlashError, "Please log in to continue")
		target := LoginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
		c.Redirect(redirectStatus(c.Request.Method), target)
		c.Abort()
	}
}

// RequireRole sends visitors whose hint is not one of roles to the home page.
// It must run after RequireSession.
func RequireRole(roles ...session.RoleHint) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := GetSession(c)
		switch Decide(sess, err, roles) {
		case Allowed:
			c.Next()
			return
		case RedirectLogin:
			metrics.GuardRedirects.WithLabelValues("anonymous").Inc()
			c.Redirect(redirectStatus(c.Request.Method), LoginPath)
		default:
			metrics.GuardRedirects.WithLabelValues("role").Inc()
			msg, _ := apperrors.UserMessage(apperrors.AccessDeniedError(""))
			SetFlash(c, FlashError, msg)
			c.Redirect(redirectStatus(c.Request.Method), HomePath)
		}
		c.Abort()
	}
}

// GetSession returns the session loaded for this request
func GetSession(c *gin.Context) (session.Session, error) {
	val, exists := c.Get(SessionContextKey)
	if !exists {
		return session.Session{}, session.ErrNoSession
	}
	sess, ok := val.(session.Session)
	if !ok {
		return session.Session{}, session.ErrNoSession
	}
	if errVal, exists := c.Get(sessionErrContextKey); exists {
		if err, ok := errVal.(error); ok {
			return sess, err
		}
	}
	return sess, nil
}

// SetSession replaces the request's session, e.g. right after login
func SetSession(c *gin.Context, sess session.Session) {
	c.Set(SessionContextKey, sess)
	c.Set(sessionErrContextKey, nil)
}

// SafeNext returns next when it is a local path, otherwise the home page
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return HomePath
	}
	return next
}

func load(c *gin.Context, store session.Store) (session.Session, error) {
	if _, exists := c.Get(SessionContextKey); exists {
		return GetSession(c)
	}

	sess, err := store.Get(c.Request)
	if err != nil {
		sess = session.Session{}
	}
	c.Set(SessionContextKey, sess)
	c.Set(sessionErrContextKey, err)
	return sess, err
}

func redirectStatus(method string) int {
	if method == http.MethodGet || method == http.MethodHead {
		return http.StatusFound
	}
	return http.StatusSeeOther
}
