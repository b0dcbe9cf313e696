package handlers

import (
	"net/http"
	"sort"

	"github.com/fitforge/fitforge-web/internal/middleware"
	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/fitforge/fitforge-web/internal/services"
	"github.com/fitforge/fitforge-web/internal/session"
	"github.com/fitforge/fitforge-web/internal/validation"
	"github.com/fitforge/fitforge-web/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const featuredCount = 3

// HomeData is the body of the landing page
type HomeData struct {
	Courses []models.Course
}

// CatalogueData is the body of the course list
type CatalogueData struct {
	Courses []models.Course
	Filter  models.CourseFilter
	Levels  []string
}

// CourseData is the body of the course page
type CourseData struct {
	Detail *services.CourseDetail
	// Checkout opens the payment form
	Checkout bool
	// IdempotencyKey is fresh per render so a resubmitted form is recognised
	IdempotencyKey string
	RatingChoices  []int
}

type CourseHandler struct {
	service services.CourseServiceInterface
	store   session.Store
}

func NewCourseHandler(service services.CourseServiceInterface, store session.Store) *CourseHandler {
	return &CourseHandler{service: service, store: store}
}

// Home shows the landing page, with the top rated courses for logged in visitors
func (h *CourseHandler) Home(c *gin.Context) {
	sess := currentSession(c)
	data := HomeData{}

	if !sess.Anonymous() {
		courses, err := h.service.Catalogue(c.Request.Context(), sess.Token, models.CourseFilter{})
		if err != nil {
			if expireIfUnauthorized(c, h.store, err) {
				return
			}
			attachError(c, err)
			logger.Warn("Failed to load featured courses", zap.Error(err))
		} else {
			data.Courses = featured(courses)
		}
	}

	renderPage(c, http.StatusOK, "home", "", data)
}

func (h *CourseHandler) Catalogue(c *gin.Context) {
	var filter models.CourseFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		attachError(c, err)
		middleware.SetFlash(c, middleware.FlashWarning, "Ignoring invalid filters: "+validation.Summary(err))
		filter = models.CourseFilter{}
	}

	courses, err := h.service.Catalogue(c.Request.Context(), currentSession(c).Token, filter)
	if err != nil {
		renderFailure(c, h.store, err, "Failed to fetch courses")
		return
	}

	renderPage(c, http.StatusOK, "courses", "Courses", CatalogueData{
		Courses: courses,
		Filter:  filter,
		Levels:  models.Difficulties,
	})
}

func (h *CourseHandler) Detail(c *gin.Context) {
	detail, err := h.service.Detail(c.Request.Context(), currentSession(c).Token, c.Param("id"))
	if err != nil {
		renderFailure(c, h.store, err, "Failed to fetch course details")
		return
	}

	if detail.ReviewsWarning != "" {
		attachError(c, &reviewsWarning{detail.ReviewsWarning})
	}

	renderPage(c, http.StatusOK, "course", detail.Course.Title, CourseData{
		Detail:         detail,
		Checkout:       c.Query("checkout") == "1" && !detail.Purchased,
		IdempotencyKey: uuid.NewString(),
		RatingChoices:  []int{5, 4, 3, 2, 1},
	})
}

func (h *CourseHandler) MyCourses(c *gin.Context) {
	mine, err := h.service.MyCourses(c.Request.Context(), currentSession(c).Token)
	if err != nil {
		renderFailure(c, h.store, err, "Failed to fetch user data")
		return
	}

	renderPage(c, http.StatusOK, "my_courses", "My Courses", mine)
}

func featured(courses []models.Course) []models.Course {
	sorted := append([]models.Course(nil), courses...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DisplayRating() > sorted[j].DisplayRating()
	})
	if len(sorted) > featuredCount {
		sorted = sorted[:featuredCount]
	}
	return sorted
}

type reviewsWarning struct{ msg string }

func (w *reviewsWarning) Error() string { return "reviews unavailable: " + w.msg }
