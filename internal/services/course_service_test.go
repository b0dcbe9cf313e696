package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/fitforge/fitforge-web/internal/services"
	"github.com/fitforge/fitforge-web/pkg/courseapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var catalogue = []models.Course{
	{ID: "c1", Title: "Kettlebell Basics", Difficulty: models.DifficultyBeginner, Price: 40, Rating: 4.5},
	{ID: "c2", Title: "Olympic Lifting", Difficulty: models.DifficultyAdvanced, Price: 120, Rating: 4.8},
	{ID: "c3", Title: "Mobility Flow", Difficulty: models.DifficultyBeginner, Price: 0, Ratings: 3},
}

func TestCourseService_Catalogue(t *testing.T) {
	api := new(MockCourseAPI)
	api.On("ListCourses", mock.Anything, "tok").Return(catalogue, nil)
	svc := services.NewCourseService(api)

	all, err := svc.Catalogue(context.Background(), "tok", models.CourseFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	beginner, err := svc.Catalogue(context.Background(), "tok", models.CourseFilter{Levels: []string{"beginner"}, MaxPrice: 50})
	require.NoError(t, err)
	require.Len(t, beginner, 2)
	assert.Equal(t, "c1", beginner[0].ID)
	assert.Equal(t, "c3", beginner[1].ID)
}

func TestCourseService_Detail(t *testing.T) {
	user := &models.User{Username: "lifter", PurchasedCourses: []string{"c1"}}
	reviews := []models.Review{{ID: "r1", Rating: 5, Comment: "Great"}}

	t.Run("loads everything", func(t *testing.T) {
		api := new(MockCourseAPI)
		api.On("GetCourse", mock.Anything, "tok", "c1").Return(&catalogue[0], nil)
		api.On("CurrentUser", mock.Anything, "tok").Return(user, nil)
		api.On("ListReviews", mock.Anything, "tok", "c1").Return(reviews, nil)

		detail, err := services.NewCourseService(api).Detail(context.Background(), "tok", "c1")
		require.NoError(t, err)
		assert.Equal(t, "Kettlebell Basics", detail.Course.Title)
		assert.True(t, detail.Purchased)
		assert.Equal(t, reviews, detail.Reviews)
		assert.Empty(t, detail.ReviewsWarning)
	})

	t.Run("reviews failure is only a warning", func(t *testing.T) {
		api := new(MockCourseAPI)
		api.On("GetCourse", mock.Anything, "tok", "c2").Return(&catalogue[1], nil)
		api.On("CurrentUser", mock.Anything, "tok").Return(user, nil)
		api.On("ListReviews", mock.Anything, "tok", "c2").
			Return(nil, &courseapi.APIError{Op: "list_reviews", Status: 500, Detail: "Failed to fetch reviews"})

		detail, err := services.NewCourseService(api).Detail(context.Background(), "tok", "c2")
		require.NoError(t, err)
		assert.False(t, detail.Purchased)
		assert.Empty(t, detail.Reviews)
		assert.Equal(t, "Failed to fetch reviews", detail.ReviewsWarning)
	})

	t.Run("missing course fails the page", func(t *testing.T) {
		api := new(MockCourseAPI)
		api.On("GetCourse", mock.Anything, "tok", "nope").
			Return(nil, &courseapi.APIError{Op: "get_course", Status: 404, Detail: "Course not found"})
		api.On("CurrentUser", mock.Anything, "tok").Return(user, nil).Maybe()
		api.On("ListReviews", mock.Anything, "tok", "nope").Return([]models.Review{}, nil).Maybe()

		_, err := services.NewCourseService(api).Detail(context.Background(), "tok", "nope")
		assert.Equal(t, "Course not found", courseapi.Message(err, ""))
	})
}

func TestCourseService_MyCourses(t *testing.T) {
	api := new(MockCourseAPI)
	api.On("CurrentUser", mock.Anything, "tok").
		Return(&models.User{Username: "lifter", PurchasedCourses: []string{"c3", "c1", "gone"}}, nil)
	api.On("ListCourses", mock.Anything, "tok").Return(catalogue, nil)

	mine, err := services.NewCourseService(api).MyCourses(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, mine.Courses, 2)
	assert.ElementsMatch(t, []string{"c1", "c3"}, []string{mine.Courses[0].ID, mine.Courses[1].ID})

	failing := new(MockCourseAPI)
	failing.On("CurrentUser", mock.Anything, "tok").Return(nil, errors.New("connection refused"))
	failing.On("ListCourses", mock.Anything, "tok").Return(catalogue, nil).Maybe()
	_, err = services.NewCourseService(failing).MyCourses(context.Background(), "tok")
	assert.Error(t, err)
}
