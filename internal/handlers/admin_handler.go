package handlers

import (
	"net/http"

	"github.com/fitforge/fitforge-web/internal/middleware"
	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/fitforge/fitforge-web/internal/services"
	"github.com/fitforge/fitforge-web/internal/session"
	"github.com/gin-gonic/gin"
)

// AdminData is the body of the admin panel
type AdminData struct {
	Instructors []models.Instructor
}

type verifyForm struct {
	Verify bool `form:"verify" json:"verify"`
}

type AdminHandler struct {
	service services.AdminInstructorsServiceInterface
	store   session.Store
}

func NewAdminHandler(service services.AdminInstructorsServiceInterface, store session.Store) *AdminHandler {
	return &AdminHandler{service: service, store: store}
}

func (h *AdminHandler) Panel(c *gin.Context) {
	instructors, err := h.service.ListInstructors(c.Request.Context(), currentSession(c).Token)
	if err != nil {
		renderFailure(c, h.store, err, "Failed to fetch instructors")
		return
	}
	renderPage(c, http.StatusOK, "admin", "Admin Panel", AdminData{Instructors: instructors})
}

// VerifyInstructor flips one instructor's flag. The table is reloaded from the
// API afterwards.
func (h *AdminHandler) VerifyInstructor(c *gin.Context) {
	var form verifyForm
	if err := c.ShouldBind(&form); err != nil {
		attachError(c, err)
		h.fail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	instructors, err := h.service.SetVerified(c.Request.Context(), currentSession(c).Token, c.Param("id"), form.Verify)
	if err != nil {
		if expireIfUnauthorized(c, h.store, err) {
			return
		}
		attachError(c, err)
		h.fail(c, statusFor(err), userMessage(err, "Failed to update instructor verification"))
		return
	}

	message := "Instructor unverified"
	if form.Verify {
		message = "Instructor verified"
	}
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"message": message, "instructors": instructors})
		return
	}
	redirectWithFlash(c, "/admin", middleware.FlashSuccess, message)
}

func (h *AdminHandler) fail(c *gin.Context, status int, message string) {
	if wantsJSON(c) {
		c.JSON(status, gin.H{"error": message})
		return
	}
	redirectWithFlash(c, "/admin", middleware.FlashError, message)
}
