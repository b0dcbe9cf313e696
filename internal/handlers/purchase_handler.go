package handlers

import (
	"net/http"

	"github.com/fitforge/fitforge-web/internal/middleware"
	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/fitforge/fitforge-web/internal/services"
	"github.com/fitforge/fitforge-web/internal/session"
	"github.com/fitforge/fitforge-web/internal/validation"
	apperrors "github.com/fitforge/fitforge-web/pkg/errors"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader may carry the key instead of the hidden form field
const IdempotencyKeyHeader = "Idempotency-Key"

type PurchaseHandler struct {
	service services.PurchaseServiceInterface
	store   session.Store
}

func NewPurchaseHandler(service services.PurchaseServiceInterface, store session.Store) *PurchaseHandler {
	return &PurchaseHandler{service: service, store: store}
}

// Purchase runs the whole purchase for one payment form submission
func (h *PurchaseHandler) Purchase(c *gin.Context) {
	courseID := c.Param("id")
	coursePath := "/courses/" + courseID
	checkoutPath := coursePath + "?checkout=1"

	var form models.PurchaseForm
	if err := c.ShouldBind(&form); err != nil {
		attachError(c, err)
		h.fail(c, http.StatusUnprocessableEntity, checkoutPath, validation.Summary(err))
		return
	}
	if form.IdempotencyKey == "" {
		form.IdempotencyKey = c.GetHeader(IdempotencyKeyHeader)
	}

	outcome, err := h.service.Purchase(c.Request.Context(), currentSession(c), courseID, &form)
	if err != nil {
		if expireIfUnauthorized(c, h.store, err) {
			return
		}
		attachError(c, err)
		switch {
		case apperrors.Is(err, apperrors.ErrUnauthorized):
			h.fail(c, http.StatusUnauthorized, middleware.LoginPath+"?next="+coursePath, userMessage(err, "Please log in to continue"))
		case apperrors.Is(err, apperrors.ErrInvalidInput):
			// The payment form stays open
			h.fail(c, http.StatusUnprocessableEntity, checkoutPath, userMessage(err, "Invalid payment details"))
		default:
			h.fail(c, statusFor(err), coursePath, userMessage(err, "Failed to purchase course"))
		}
		return
	}

	message := "Successfully purchased " + outcome.Receipt.CourseTitle + "!"
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{
			"message": message,
			"receipt": outcome.Receipt,
			"user":    outcome.User,
			"warning": outcome.Warning,
		})
		return
	}

	if outcome.Warning != "" {
		redirectWithFlash(c, coursePath, middleware.FlashWarning, message+" "+outcome.Warning)
		return
	}
	redirectWithFlash(c, coursePath, middleware.FlashSuccess, message)
}

func (h *PurchaseHandler) fail(c *gin.Context, status int, location, message string) {
	if wantsJSON(c) {
		c.JSON(status, gin.H{"error": message})
		return
	}
	redirectWithFlash(c, location, middleware.FlashError, message)
}
