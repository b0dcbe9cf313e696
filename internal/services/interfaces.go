package services

import (
	"context"
	"io"

	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/fitforge/fitforge-web/internal/session"
	"github.com/fitforge/fitforge-web/pkg/courseapi"
)

// CourseAPI is the part of the course API client the services use
type CourseAPI interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.TokenResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error)
	AdminLogin(ctx context.Context, req models.AdminLoginRequest) (*models.TokenResponse, error)
	ListCourses(ctx context.Context, token string) ([]models.Course, error)
	GetCourse(ctx context.Context, token, courseID string) (*models.Course, error)
	CreateCourse(ctx context.Context, token string, req models.CreateCourseRequest) (*models.CreateCourseResponse, error)
	UploadVideo(ctx context.Context, token, filename string, file io.Reader) (*models.UploadVideoResponse, error)
	PurchaseCourse(ctx context.Context, token, courseID, idempotencyKey string) (*models.PurchaseResponse, error)
	CurrentUser(ctx context.Context, token string) (*models.User, error)
	ListInstructors(ctx context.Context, token string) ([]models.Instructor, error)
	VerifyInstructor(ctx context.Context, token, instructorID string, verify bool) (*models.Instructor, error)
	ListReviews(ctx context.Context, token, courseID string) ([]models.Review, error)
	CreateReview(ctx context.Context, token, courseID string, req models.SubmitReviewRequest) (*models.SubmitReviewResponse, error)
	InstructorCourses(ctx context.Context, token string) ([]models.Course, error)
}

// VideoUploader stores a course video and returns its URL
type VideoUploader interface {
	Upload(ctx context.Context, token string, video *VideoFile) (string, error)
	Backend() string
}

// AuthServiceInterface exchanges credentials for API tokens
type AuthServiceInterface interface {
	Signup(ctx context.Context, req *models.SignupRequest) (string, error)
	Login(ctx context.Context, req *models.LoginRequest) (string, error)
	AdminLogin(ctx context.Context, req *models.AdminLoginRequest) (string, error)
}

// CourseServiceInterface serves the catalogue pages
type CourseServiceInterface interface {
	Catalogue(ctx context.Context, token string, filter models.CourseFilter) ([]models.Course, error)
	Detail(ctx context.Context, token, courseID string) (*CourseDetail, error)
	MyCourses(ctx context.Context, token string) (*MyCourses, error)
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// PurchaseServiceInterface runs a complete purchase in one call
type PurchaseServiceInterface interface {
	Purchase(ctx context.Context, sess session.Session, courseID string, form *models.PurchaseForm) (*models.PurchaseOutcome, error)
}

// ReviewServiceInterface submits and lists reviews
type ReviewServiceInterface interface {
	Submit(ctx context.Context, token, courseID string, user *models.User, req *models.SubmitReviewRequest) (*ReviewResult, error)
}

// InstructorServiceInterface publishes courses and lists the instructor's own
type InstructorServiceInterface interface {
	Publish(ctx context.Context, token string, form *models.CourseForm, video *VideoFile) (*models.Course, error)
	MyCourses(ctx context.Context, token string) ([]models.Course, error)
	MaxUploadBytes() int64
}

// AdminInstructorsServiceInterface backs the admin panel
type AdminInstructorsServiceInterface interface {
	ListInstructors(ctx context.Context, token string) ([]models.Instructor, error)
	SetVerified(ctx context.Context, token, instructorID string, verify bool) ([]models.Instructor, error)
}

// Ensure services implement their interfaces
var _ CourseAPI = (*courseapi.Client)(nil)
var _ AuthServiceInterface = (*AuthService)(nil)
var _ CourseServiceInterface = (*CourseService)(nil)
var _ PurchaseServiceInterface = (*PurchaseService)(nil)
var _ ReviewServiceInterface = (*ReviewService)(nil)
var _ InstructorServiceInterface = (*InstructorService)(nil)
var _ AdminInstructorsServiceInterface = (*AdminInstructorsService)(nil)
