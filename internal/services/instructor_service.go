package services

import (
	"context"
	"fmt"

	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/fitforge/fitforge-web/internal/validation"
	apperrors "github.com/fitforge/fitforge-web/pkg/errors"
	"github.com/fitforge/fitforge-web/pkg/logger"
	"github.com/fitforge/fitforge-web/pkg/metrics"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// InstructorService publishes courses: upload the video, then create the
// course pointing at it
type InstructorService struct {
	api      CourseAPI
	uploader VideoUploader
	maxBytes int64
	validate *validator.Validate
}

// NewInstructorService creates a new instructor service instance
func NewInstructorService(api CourseAPI, uploader VideoUploader, maxUploadMB int) *InstructorService {
	return &InstructorService{
		api:      api,
		uploader: uploader,
		maxBytes: int64(maxUploadMB) << 20,
		validate: validation.New(),
	}
}

// MaxUploadBytes is the largest accepted video
func (s *InstructorService) MaxUploadBytes() int64 {
	return s.maxBytes
}

// Publish validates the form, uploads video when given and creates the course.
// Nothing is uploaded when the form itself is invalid.
func (s *InstructorService) Publish(ctx context.Context, token string, form *models.CourseForm, video *VideoFile) (*models.Course, error) {
	if err := s.validate.Struct(form); err != nil {
		metrics.CourseCreations.WithLabelValues("invalid").Inc()
		return nil, apperrors.InvalidInputError("course", validation.Summary(err))
	}

	var uploaded []string
	if video != nil {
		if s.maxBytes > 0 && video.Size > s.maxBytes {
			metrics.CourseCreations.WithLabelValues("invalid").Inc()
			return nil, apperrors.InvalidInputError("file", fmt.Sprintf("Video must not exceed %d MB", s.maxBytes>>20))
		}

		url, err := s.uploader.Upload(ctx, token, video)
		if err != nil {
			metrics.CourseCreations.WithLabelValues("upload_error").Inc()
			logger.Warn("Video upload failed",
				zap.String("backend", s.uploader.Backend()),
				zap.String("filename", video.Filename),
				zap.Error(err))
			return nil, err
		}
		logger.Info("Video uploaded",
			zap.String("backend", s.uploader.Backend()),
			zap.String("url", url))
		uploaded = append(uploaded, url)
	}

	req := form.Request(uploaded...)
	if len(req.VideoURLs) == 0 {
		metrics.CourseCreations.WithLabelValues("invalid").Inc()
		return nil, apperrors.InvalidInputError("video_urls", "Please upload a video or add at least one video URL")
	}
	if err := s.validate.Struct(req); err != nil {
		metrics.CourseCreations.WithLabelValues("invalid").Inc()
		return nil, apperrors.InvalidInputError("course", validation.Summary(err))
	}

	resp, err := s.api.CreateCourse(ctx, token, req)
	if err != nil {
		metrics.CourseCreations.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.CourseCreations.WithLabelValues("success").Inc()
	logger.Info("Course created",
		zap.String("course_id", resp.Course.ID),
		zap.String("title", resp.Course.Title))
	return &resp.Course, nil
}

// MyCourses lists the instructor's own courses with their reviews
func (s *InstructorService) MyCourses(ctx context.Context, token string) ([]models.Course, error) {
	return s.api.InstructorCourses(ctx, token)
}
