package handlers

import (
	"net/http"
	"strings"

	"github.com/fitforge/fitforge-web/internal/middleware"
	"github.com/fitforge/fitforge-web/internal/session"
	"github.com/fitforge/fitforge-web/internal/web"
	"github.com/gin-gonic/gin"
)

// renderPage renders a page inside the layout with the navbar and any
// pending flash
func renderPage(c *gin.Context, status int, name, title string, data any) {
	sess, _ := middleware.GetSession(c)
	page := web.Page{Title: title, Nav: web.NavFor(sess), Data: data}
	if f, ok := middleware.PopFlash(c); ok {
		page.Flash = &web.Flash{Kind: f.Kind, Message: f.Message}
	}
	c.HTML(status, name, page)
}

// redirectWithFlash stores a notification and redirects
func redirectWithFlash(c *gin.Context, location, kind, message string) {
	middleware.SetFlash(c, kind, message)
	c.Redirect(redirectStatus(c), location)
}

// currentSession returns the request's session; guarded routes always have one
func currentSession(c *gin.Context) session.Session {
	sess, _ := middleware.GetSession(c)
	return sess
}

func redirectStatus(c *gin.Context) int {
	if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
		return http.StatusFound
	}
	return http.StatusSeeOther
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// NotFound renders the error page for unknown routes
func NotFound(c *gin.Context) {
	renderPage(c, http.StatusNotFound, "error", "Not found", web.ErrorData{Message: "Page not found"})
}
