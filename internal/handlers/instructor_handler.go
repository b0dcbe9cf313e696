package handlers

import (
	"errors"
	"net/http"

	"github.com/fitforge/fitforge-web/internal/middleware"
	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/fitforge/fitforge-web/internal/services"
	"github.com/fitforge/fitforge-web/internal/session"
	"github.com/fitforge/fitforge-web/internal/validation"
	apperrors "github.com/fitforge/fitforge-web/pkg/errors"
	"github.com/fitforge/fitforge-web/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CourseFormData is the body of both course forms
type CourseFormData struct {
	Form        models.CourseForm
	Upload      bool
	Action      string
	Levels      []string
	MaxUploadMB int64
	Problems    []validation.Problem
}

// InstructorCoursesData is the body of the instructor's course list
type InstructorCoursesData struct {
	Courses []models.Course
}

type InstructorHandler struct {
	service services.InstructorServiceInterface
	store   session.Store
}

func NewInstructorHandler(service services.InstructorServiceInterface, store session.Store) *InstructorHandler {
	return &InstructorHandler{service: service, store: store}
}

// CreateCoursePage is the URL-only course form
func (h *InstructorHandler) CreateCoursePage(c *gin.Context) {
	h.renderForm(c, http.StatusOK, false, models.CourseForm{Difficulty: models.DifficultyBeginner}, nil)
}

// UploadPage is the course form with a video upload
func (h *InstructorHandler) UploadPage(c *gin.Context) {
	h.renderForm(c, http.StatusOK, true, models.CourseForm{Difficulty: models.DifficultyBeginner}, nil)
}

func (h *InstructorHandler) CreateCourse(c *gin.Context) {
	h.publish(c, false)
}

func (h *InstructorHandler) Upload(c *gin.Context) {
	h.publish(c, true)
}

func (h *InstructorHandler) MyCourses(c *gin.Context) {
	courses, err := h.service.MyCourses(c.Request.Context(), currentSession(c).Token)
	if err != nil {
		renderFailure(c, h.store, err, "Failed to fetch instructor courses")
		return
	}
	renderPage(c, http.StatusOK, "instructor_courses", "My Published Courses", InstructorCoursesData{Courses: courses})
}

func (h *InstructorHandler) publish(c *gin.Context, upload bool) {
	var form models.CourseForm
	if err := c.ShouldBind(&form); err != nil {
		attachError(c, err)
		h.renderForm(c, http.StatusUnprocessableEntity, upload, form, problemsFor(err, h.service.MaxUploadBytes()))
		return
	}

	var video *services.VideoFile
	if upload {
		fh, err := c.FormFile("file")
		switch {
		case err == nil:
			f, openErr := fh.Open()
			if openErr != nil {
				attachError(c, openErr)
				h.renderForm(c, http.StatusBadRequest, upload, form, []validation.Problem{{Field: "file", Message: "Could not read the uploaded file"}})
				return
			}
			defer f.Close()
			video = &services.VideoFile{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
				Body:        f,
			}
		case errors.Is(err, http.ErrMissingFile):
			// URLs alone are fine
		default:
			attachError(c, err)
			h.renderForm(c, http.StatusUnprocessableEntity, upload, form, problemsFor(err, h.service.MaxUploadBytes()))
			return
		}
	}

	course, err := h.service.Publish(c.Request.Context(), currentSession(c).Token, &form, video)
	if err != nil {
		if expireIfUnauthorized(c, h.store, err) {
			return
		}
		attachError(c, err)
		if apperrors.Is(err, apperrors.ErrInvalidInput) {
			msg, _ := apperrors.UserMessage(err)
			h.renderForm(c, http.StatusUnprocessableEntity, upload, form, []validation.Problem{{Field: "course", Message: msg}})
			return
		}
		middleware.SetFlash(c, middleware.FlashError, userMessage(err, failureFallback(upload, video)))
		h.renderForm(c, statusFor(err), upload, form, nil)
		return
	}

	logger.Info("Course published from web form", zap.String("course_id", course.ID), zap.Bool("uploaded", video != nil))
	redirectWithFlash(c, "/courses/"+course.ID, middleware.FlashSuccess, "Course created successfully!")
}

func (h *InstructorHandler) renderForm(c *gin.Context, status int, upload bool, form models.CourseForm, problems []validation.Problem) {
	title, action := "Create Course", "/create-course"
	if upload {
		title, action = "Upload Course", "/instructor/upload"
	}
	renderPage(c, status, "course_form", title, CourseFormData{
		Form:        form,
		Upload:      upload,
		Action:      action,
		Levels:      models.Difficulties,
		MaxUploadMB: h.service.MaxUploadBytes() >> 20,
		Problems:    problems,
	})
}

func failureFallback(upload bool, video *services.VideoFile) string {
	if upload && video != nil {
		return "Failed to upload video"
	}
	return "Failed to create course"
}
