package courseapi

import "net/http"

type operation struct {
	name           string
	method         string
	defaultMessage string
}

var (
	opSignup            = operation{"signup", http.MethodPost, "Signup failed"}
	opLogin             = operation{"login", http.MethodPost, "Login failed"}
	opAdminLogin        = operation{"admin_login", http.MethodPost, "Invalid admin credentials"}
	opListCourses       = operation{"list_courses", http.MethodGet, "Failed to fetch courses"}
	opGetCourse         = operation{"get_course", http.MethodGet, "Failed to fetch course details"}
	opCreateCourse      = operation{"create_course", http.MethodPost, "Failed to create course"}
	opUploadVideo       = operation{"upload_video", http.MethodPost, "Failed to upload video"}
	opPurchaseCourse    = operation{"purchase_course", http.MethodPost, "Failed to purchase course"}
	opCurrentUser       = operation{"current_user", http.MethodGet, "Failed to fetch user data"}
	opListInstructors   = operation{"list_instructors", http.MethodGet, "Failed to fetch instructors"}
	opVerifyInstructor  = operation{"verify_instructor", http.MethodPut, "Failed to update instructor verification"}
	opListReviews       = operation{"list_reviews", http.MethodGet, "Failed to fetch reviews"}
	opCreateReview      = operation{"create_review", http.MethodPost, "Failed to submit review"}
	opInstructorCourses = operation{"instructor_courses", http.MethodGet, "Failed to fetch instructor courses"}
	opPing              = operation{"ping", http.MethodGet, "Course API unavailable"}
)
