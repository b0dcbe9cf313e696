package handlers

import (
	"net/http"

	"github.com/fitforge/fitforge-web/internal/middleware"
	"github.com/fitforge/fitforge-web/internal/session"
	"github.com/gin-gonic/gin"
)

// SessionResponse describes the visitor's session. Role is the unverified
// display hint.
type SessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Role          string `json:"role,omitempty"`
	DisplayName   string `json:"display_name,omitempty"`
	Backend       string `json:"backend"`
}

type SessionHandler struct {
	store session.Store
}

func NewSessionHandler(store session.Store) *SessionHandler {
	return &SessionHandler{store: store}
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	sess, err := middleware.GetSession(c)
	if err != nil || sess.Anonymous() {
		c.JSON(http.StatusOK, SessionResponse{Backend: h.store.Name()})
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		Authenticated: true,
		Role:          string(sess.Hint),
		DisplayName:   sess.DisplayName,
		Backend:       h.store.Name(),
	})
}
