package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/fitforge/fitforge-web/internal/middleware"
	"github.com/fitforge/fitforge-web/internal/session"
	"github.com/fitforge/fitforge-web/internal/web"
	"github.com/fitforge/fitforge-web/pkg/courseapi"
	apperrors "github.com/fitforge/fitforge-web/pkg/errors"
	"github.com/fitforge/fitforge-web/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionExpiredMessage = "Your session has expired. Please log in again."

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log. c.Error() returns *gin.Error (not
// the error interface), so the result is discarded.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err)
	}
}

// respondError sends an error JSON response and attaches the error to the gin context
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message})
}

// userMessage picks the text shown to the visitor: our own validation and
// access messages, then the API's detail, then fallback
func userMessage(err error, fallback string) string {
	if msg, ok := apperrors.UserMessage(err); ok {
		return msg
	}
	if errors.Is(err, session.ErrMalformedToken) {
		return "Received an invalid token. Please try again."
	}
	return courseapi.Message(err, fallback)
}

// statusFor maps an error onto the status of the page that reports it
func statusFor(err error) int {
	var apiErr *courseapi.APIError
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case apperrors.Is(err, apperrors.ErrAccessDenied):
		return http.StatusForbidden
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		return apiErr.Status
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// expireIfUnauthorized handles a 401 from the course API: the bearer token is
// no longer accepted, so the session is cleared and the visitor sent to login.
// Reports whether it responded.
func expireIfUnauthorized(c *gin.Context, store session.Store, err error) bool {
	if !courseapi.IsUnauthorized(err) {
		return false
	}

	attachError(c, err)
	if clearErr := store.Clear(c.Writer, c.Request); clearErr != nil {
		logger.Warn("Failed to clear expired session", zap.Error(clearErr))
	}
	middleware.SetSession(c, session.Session{})

	if wantsJSON(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": sessionExpiredMessage})
		return true
	}
	middleware.SetFlash(c, middleware.FlashError, sessionExpiredMessage)
	c.Redirect(redirectStatus(c), middleware.LoginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
	return true
}

// renderFailure shows the error page for a page load that could not complete
func renderFailure(c *gin.Context, store session.Store, err error, fallback string) {
	if expireIfUnauthorized(c, store, err) {
		return
	}
	attachError(c, err)
	renderPage(c, statusFor(err), "error", "Error", web.ErrorData{Message: userMessage(err, fallback)})
}
