package models

// Roles as carried in the API's token payload and user records
const (
	RoleUser       = "user"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// PurchaseRecord is one entry of a user's purchase history
type PurchaseRecord struct {
	CourseID     string  `json:"course_id"`
	CourseTitle  string  `json:"course_title"`
	Price        float64 `json:"price"`
	PurchaseDate string  `json:"purchase_date"`
}

// User is the transient copy of the account returned by GET /users/me
type User struct {
	ID               string           `json:"_id"`
	Username         string           `json:"username"`
	Email            string           `json:"email"`
	Role             string           `json:"role"`
	Balance          float64          `json:"balance"`
	PurchasedCourses []string         `json:"purchased_courses"`
	PurchaseHistory  []PurchaseRecord `json:"purchase_history,omitempty"`
	IsVerified       bool             `json:"isVerified,omitempty"`
	IsAdmin          bool             `json:"isAdmin,omitempty"`
}

// HasPurchased is the advisory ownership check used to decide what to show.
// The API enforces ownership on its own.
func (u *User) HasPurchased(courseID string) bool {
	if u == nil || courseID == "" {
		return false
	}
	for _, id := range u.PurchasedCourses {
		if id == courseID {
			return true
		}
	}
	return false
}

// OwnedCourses intersects the purchased ids with the catalogue
func (u *User) OwnedCourses(catalogue []Course) []Course {
	owned := []Course{}
	for _, c := range catalogue {
		if u.HasPurchased(c.ID) {
			owned = append(owned, c)
		}
	}
	return owned
}
