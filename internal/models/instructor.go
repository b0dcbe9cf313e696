package models

// Instructor is a row of the admin panel
type Instructor struct {
	ID         string `json:"_id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Role       string `json:"role,omitempty"`
	IsVerified bool   `json:"isVerified"`
}

// VerifyInstructorRequest is the body of PUT /admin/instructors/:id/verify
type VerifyInstructorRequest struct {
	Verify bool `json:"verify"`
}
