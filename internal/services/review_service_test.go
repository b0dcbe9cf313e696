package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/fitforge/fitforge-web/internal/services"
	"github.com/fitforge/fitforge-web/pkg/courseapi"
	"github.com/fitforge/fitforge-web/pkg/courseapi/courseapitest"
	apperrors "github.com/fitforge/fitforge-web/pkg/errors"
	"github.com/fitforge/fitforge-web/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReviewService_Submit(t *testing.T) {
	owner := &models.User{Username: "lifter", PurchasedCourses: []string{"c1"}}

	t.Run("not purchased", func(t *testing.T) {
		api := new(MockCourseAPI)
		_, err := services.NewReviewService(api).Submit(context.Background(), "tok", "c2", owner,
			&models.SubmitReviewRequest{Rating: 5, Comment: "Great"})

		assert.ErrorIs(t, err, services.ErrNotPurchased)
		msg, _ := apperrors.UserMessage(err)
		assert.Equal(t, "You must purchase this course to review it", msg)
		api.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid input", func(t *testing.T) {
		tests := []struct {
			name string
			req  models.SubmitReviewRequest
		}{
			{name: "rating too low", req: models.SubmitReviewRequest{Rating: 0, Comment: "ok"}},
			{name: "rating too high", req: models.SubmitReviewRequest{Rating: 6, Comment: "ok"}},
			{name: "blank comment", req: models.SubmitReviewRequest{Rating: 3, Comment: "   "}},
			{name: "long comment", req: models.SubmitReviewRequest{Rating: 3, Comment: strings.Repeat("é", 501)}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				api := new(MockCourseAPI)
				_, err := services.NewReviewService(api).Submit(context.Background(), "tok", "c1", owner, &tt.req)
				assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
				api.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("500 characters is accepted", func(t *testing.T) {
		api := new(MockCourseAPI)
		req := models.SubmitReviewRequest{Rating: 4, Comment: strings.Repeat("é", 500)}
		api.On("CreateReview", mock.Anything, "tok", "c1", req).Return(&models.SubmitReviewResponse{ReviewID: "r1"}, nil)
		api.On("ListReviews", mock.Anything, "tok", "c1").Return([]models.Review{{ID: "r1"}}, nil)

		_, err := services.NewReviewService(api).Submit(context.Background(), "tok", "c1", owner, &req)
		assert.NoError(t, err)
	})

	t.Run("list reload failure is a warning", func(t *testing.T) {
		api := new(MockCourseAPI)
		req := models.SubmitReviewRequest{Rating: 4, Comment: "Solid"}
		api.On("CreateReview", mock.Anything, "tok", "c1", req).Return(&models.SubmitReviewResponse{ReviewID: "r1"}, nil)
		api.On("ListReviews", mock.Anything, "tok", "c1").Return(nil, errors.New("timeout"))

		result, err := services.NewReviewService(api).Submit(context.Background(), "tok", "c1", owner, &req)
		require.NoError(t, err)
		assert.NotEmpty(t, result.Warning)
	})
}

func TestReviewService_ListEqualsServerList(t *testing.T) {
	fake := courseapitest.New(t)
	token := fake.AddAccount("lifter", "lifter@example.com", "Squat#2024", models.RoleUser, 100)
	other := fake.AddAccount("runner", "runner@example.com", "Squat#2024", models.RoleUser, 100)
	courseID := fake.AddCourse(models.Course{Title: "Mobility", Price: 10, Difficulty: models.DifficultyBeginner})

	client := courseapi.New(fake.URL, httpclient.NewStandardClient(5*time.Second))
	ctx := context.Background()

	_, err := client.PurchaseCourse(ctx, other, courseID, "")
	require.NoError(t, err)
	_, err = client.CreateReview(ctx, other, courseID, models.SubmitReviewRequest{Rating: 3, Comment: "Fine"})
	require.NoError(t, err)

	_, err = client.PurchaseCourse(ctx, token, courseID, "")
	require.NoError(t, err)
	user, err := client.CurrentUser(ctx, token)
	require.NoError(t, err)

	result, err := services.NewReviewService(client).Submit(ctx, token, courseID, user,
		&models.SubmitReviewRequest{Rating: 5, Comment: "  Loved it  "})
	require.NoError(t, err)

	assert.Equal(t, fake.Reviews(courseID), result.Reviews)
	require.Len(t, result.Reviews, 2)
	assert.Equal(t, "Loved it", result.Reviews[0].Comment)

	_, err = services.NewReviewService(client).Submit(ctx, token, courseID, user,
		&models.SubmitReviewRequest{Rating: 5, Comment: "Again"})
	assert.Equal(t, "You have already reviewed this course", courseapi.Message(err, ""))
}
