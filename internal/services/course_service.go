package services

import (
	"context"

	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/fitforge/fitforge-web/pkg/courseapi"
	"github.com/fitforge/fitforge-web/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CourseDetail is everything the course page shows
type CourseDetail struct {
	Course  *models.Course
	User    *models.User
	Reviews []models.Review
	// Purchased is the advisory ownership check; it only decides what is shown
	Purchased bool
	// ReviewsWarning is set when the reviews could not be loaded
	ReviewsWarning string
}

// MyCourses is the purchased part of the catalogue
type MyCourses struct {
	User    *models.User
	Courses []models.Course
}

// CourseService reads the catalogue
type CourseService struct {
	api CourseAPI
}

// NewCourseService creates a new course service instance
func NewCourseService(api CourseAPI) *CourseService {
	return &CourseService{api: api}
}

// Catalogue fetches every course and filters locally
func (s *CourseService) Catalogue(ctx context.Context, token string, filter models.CourseFilter) ([]models.Course, error) {
	courses, err := s.api.ListCourses(ctx, token)
	if err != nil {
		return nil, err
	}
	return filter.Apply(courses), nil
}

// Detail loads the course, the account and the reviews side by side.
// Reviews are optional; the course and the account are not.
func (s *CourseService) Detail(ctx context.Context, token, courseID string) (*CourseDetail, error) {
	detail := &CourseDetail{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		course, err := s.api.GetCourse(gctx, token, courseID)
		detail.Course = course
		return err
	})
	g.Go(func() error {
		user, err := s.api.CurrentUser(gctx, token)
		detail.User = user
		return err
	})
	g.Go(func() error {
		reviews, err := s.api.ListReviews(gctx, token, courseID)
		if err != nil {
			logger.Warn("Failed to load reviews", zap.String("course_id", courseID), zap.Error(err))
			detail.ReviewsWarning = courseapi.Message(err, "Failed to fetch reviews")
			reviews = []models.Review{}
		}
		detail.Reviews = reviews
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	detail.Purchased = detail.User.HasPurchased(courseID)
	return detail, nil
}

// MyCourses intersects the account's purchases with the catalogue
func (s *CourseService) MyCourses(ctx context.Context, token string) (*MyCourses, error) {
	var (
		user    *models.User
		courses []models.Course
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		user, err = s.api.CurrentUser(gctx, token)
		return err
	})
	g.Go(func() (err error) {
		courses, err = s.api.ListCourses(gctx, token)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &MyCourses{User: user, Courses: user.OwnedCourses(courses)}, nil
}

// CurrentUser returns the account behind token
func (s *CourseService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	return s.api.CurrentUser(ctx, token)
}
