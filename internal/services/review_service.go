package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/fitforge/fitforge-web/pkg/courseapi"
	apperrors "github.com/fitforge/fitforge-web/pkg/errors"
	"github.com/fitforge/fitforge-web/pkg/logger"
	"github.com/fitforge/fitforge-web/pkg/metrics"
	"go.uber.org/zap"
)

const maxCommentLength = 500

// ErrNotPurchased is returned when the advisory ownership check fails
var ErrNotPurchased = apperrors.AccessDeniedError("You must purchase this course to review it")

// ReviewResult is the course's review list as returned after a submission
type ReviewResult struct {
	Reviews []models.Review
	// Warning is set when the review was saved but the list could not be reloaded
	Warning string
}

// ReviewService handles review submissions
type ReviewService struct {
	api CourseAPI
}

// NewReviewService creates a new review service instance
func NewReviewService(api CourseAPI) *ReviewService {
	return &ReviewService{api: api}
}

// Submit posts the review and then reloads the full list. The returned list
// is exactly what the API answered; nothing is merged locally.
func (s *ReviewService) Submit(ctx context.Context, token, courseID string, user *models.User, req *models.SubmitReviewRequest) (*ReviewResult, error) {
	if !user.HasPurchased(courseID) {
		metrics.ReviewSubmissions.WithLabelValues("not_purchased").Inc()
		return nil, ErrNotPurchased
	}

	req.Comment = strings.TrimSpace(req.Comment)
	if err := checkReview(req); err != nil {
		metrics.ReviewSubmissions.WithLabelValues("invalid").Inc()
		return nil, err
	}

	if _, err := s.api.CreateReview(ctx, token, courseID, *req); err != nil {
		metrics.ReviewSubmissions.WithLabelValues("error").Inc()
		logger.Info("Review rejected",
			zap.String("course_id", courseID),
			zap.Error(err))
		return nil, err
	}
	metrics.ReviewSubmissions.WithLabelValues("success").Inc()

	reviews, err := s.api.ListReviews(ctx, token, courseID)
	if err != nil {
		logger.Warn("Review saved but list reload failed",
			zap.String("course_id", courseID),
			zap.Error(err))
		return &ReviewResult{
			Reviews: []models.Review{},
			Warning: "Review submitted. " + courseapi.Message(err, "Failed to fetch reviews"),
		}, nil
	}

	return &ReviewResult{Reviews: reviews}, nil
}

func checkReview(req *models.SubmitReviewRequest) error {
	if req.Rating < 1 || req.Rating > 5 {
		return apperrors.InvalidInputError("rating", "Rating must be between 1 and 5")
	}
	n := utf8.RuneCountInString(req.Comment)
	if n == 0 {
		return apperrors.InvalidInputError("comment", "Comment is required")
	}
	if n > maxCommentLength {
		return apperrors.InvalidInputError("comment", "Comment must not exceed 500 characters")
	}
	return nil
}
