package handlers

import (
	"net/http"

	"github.com/fitforge/fitforge-web/internal/middleware"
	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/fitforge/fitforge-web/internal/services"
	"github.com/fitforge/fitforge-web/internal/session"
	"github.com/fitforge/fitforge-web/internal/validation"
	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviews services.ReviewServiceInterface
	courses services.CourseServiceInterface
	store   session.Store
}

func NewReviewHandler(reviews services.ReviewServiceInterface, courses services.CourseServiceInterface, store session.Store) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, courses: courses, store: store}
}

// SubmitReview posts a review. JSON clients get the reloaded list back as the
// API returned it.
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	courseID := c.Param("id")
	reviewsPath := "/courses/" + courseID + "#reviews"
	sess := currentSession(c)

	var req models.SubmitReviewRequest
	if err := c.ShouldBind(&req); err != nil {
		attachError(c, err)
		h.fail(c, http.StatusUnprocessableEntity, reviewsPath, validation.Summary(err))
		return
	}

	user, err := h.courses.CurrentUser(c.Request.Context(), sess.Token)
	if err != nil {
		if expireIfUnauthorized(c, h.store, err) {
			return
		}
		attachError(c, err)
		h.fail(c, statusFor(err), reviewsPath, userMessage(err, "Failed to fetch user data"))
		return
	}

	result, err := h.reviews.Submit(c.Request.Context(), sess.Token, courseID, user, &req)
	if err != nil {
		if expireIfUnauthorized(c, h.store, err) {
			return
		}
		attachError(c, err)
		h.fail(c, statusFor(err), reviewsPath, userMessage(err, "Failed to submit review"))
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"reviews": result.Reviews, "warning": result.Warning})
		return
	}
	if result.Warning != "" {
		redirectWithFlash(c, reviewsPath, middleware.FlashWarning, result.Warning)
		return
	}
	redirectWithFlash(c, reviewsPath, middleware.FlashSuccess, "Review submitted successfully")
}

func (h *ReviewHandler) fail(c *gin.Context, status int, location, message string) {
	if wantsJSON(c) {
		c.JSON(status, gin.H{"error": message})
		return
	}
	redirectWithFlash(c, location, middleware.FlashError, message)
}
