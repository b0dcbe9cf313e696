package services_test

import (
	"context"
	"io"

	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/fitforge/fitforge-web/internal/services"
	"github.com/stretchr/testify/mock"
)

// MockCourseAPI is a mock implementation of services.CourseAPI
type MockCourseAPI struct {
	mock.Mock
}

func (m *MockCourseAPI) Signup(ctx context.Context, req models.SignupRequest) (*models.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockCourseAPI) Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockCourseAPI) AdminLogin(ctx context.Context, req models.AdminLoginRequest) (*models.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockCourseAPI) ListCourses(ctx context.Context, token string) ([]models.Course, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Course), args.Error(1)
}

func (m *MockCourseAPI) GetCourse(ctx context.Context, token, courseID string) (*models.Course, error) {
	args := m.Called(ctx, token, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockCourseAPI) CreateCourse(ctx context.Context, token string, req models.CreateCourseRequest) (*models.CreateCourseResponse, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CreateCourseResponse), args.Error(1)
}

func (m *MockCourseAPI) UploadVideo(ctx context.Context, token, filename string, file io.Reader) (*models.UploadVideoResponse, error) {
	args := m.Called(ctx, token, filename, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UploadVideoResponse), args.Error(1)
}

func (m *MockCourseAPI) PurchaseCourse(ctx context.Context, token, courseID, idempotencyKey string) (*models.PurchaseResponse, error) {
	args := m.Called(ctx, token, courseID, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseResponse), args.Error(1)
}

func (m *MockCourseAPI) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockCourseAPI) ListInstructors(ctx context.Context, token string) ([]models.Instructor, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Instructor), args.Error(1)
}

func (m *MockCourseAPI) VerifyInstructor(ctx context.Context, token, instructorID string, verify bool) (*models.Instructor, error) {
	args := m.Called(ctx, token, instructorID, verify)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Instructor), args.Error(1)
}

func (m *MockCourseAPI) ListReviews(ctx context.Context, token, courseID string) ([]models.Review, error) {
	args := m.Called(ctx, token, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *MockCourseAPI) CreateReview(ctx context.Context, token, courseID string, req models.SubmitReviewRequest) (*models.SubmitReviewResponse, error) {
	args := m.Called(ctx, token, courseID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubmitReviewResponse), args.Error(1)
}

func (m *MockCourseAPI) InstructorCourses(ctx context.Context, token string) ([]models.Course, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Course), args.Error(1)
}

// MockVideoUploader is a mock implementation of services.VideoUploader
type MockVideoUploader struct {
	mock.Mock
}

func (m *MockVideoUploader) Upload(ctx context.Context, token string, video *services.VideoFile) (string, error) {
	args := m.Called(ctx, token, video)
	return args.String(0), args.Error(1)
}

func (m *MockVideoUploader) Backend() string {
	return "mock"
}
