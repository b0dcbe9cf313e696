package services

import (
	"context"
	"strconv"

	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/fitforge/fitforge-web/pkg/logger"
	"github.com/fitforge/fitforge-web/pkg/metrics"
	"go.uber.org/zap"
)

// AdminInstructorsService backs the admin panel's instructor table
type AdminInstructorsService struct {
	api CourseAPI
}

// NewAdminInstructorsService creates a new admin instructors service instance
func NewAdminInstructorsService(api CourseAPI) *AdminInstructorsService {
	return &AdminInstructorsService{api: api}
}

// ListInstructors returns every instructor with their verification flag
func (s *AdminInstructorsService) ListInstructors(ctx context.Context, token string) ([]models.Instructor, error) {
	return s.api.ListInstructors(ctx, token)
}

// SetVerified changes one instructor's flag and returns the reloaded table
func (s *AdminInstructorsService) SetVerified(ctx context.Context, token, instructorID string, verify bool) ([]models.Instructor, error) {
	if _, err := s.api.VerifyInstructor(ctx, token, instructorID, verify); err != nil {
		metrics.InstructorVerifications.WithLabelValues("error").Inc()
		logger.Warn("Instructor verification update failed",
			zap.String("instructor_id", instructorID),
			zap.Bool("verify", verify),
			zap.Error(err))
		return nil, err
	}

	metrics.InstructorVerifications.WithLabelValues(strconv.FormatBool(verify)).Inc()
	logger.Info("Instructor verification updated",
		zap.String("instructor_id", instructorID),
		zap.Bool("verify", verify))

	return s.api.ListInstructors(ctx, token)
}
