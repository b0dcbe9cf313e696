package models

// Review is a course review. Ratings come from the form as integers but the
// API stores floats.
type Review struct {
	ID        string  `json:"_id"`
	CourseID  string  `json:"course_id"`
	UserID    string  `json:"user_id"`
	Username  string  `json:"username"`
	Rating    float64 `json:"rating"`
	Comment   string  `json:"comment"`
	CreatedAt string  `json:"created_at"`
}

// ReviewList is the envelope of GET /courses/:id/reviews
type ReviewList struct {
	Reviews []Review `json:"reviews"`
}

// SubmitReviewRequest is the review form and the body of POST /courses/:id/reviews
type SubmitReviewRequest struct {
	Rating  int    `json:"rating" form:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" form:"comment" binding:"required,min=1,max=500"`
}

// SubmitReviewResponse is returned by POST /courses/:id/reviews
type SubmitReviewResponse struct {
	Message  string `json:"message"`
	ReviewID string `json:"review_id"`
}
