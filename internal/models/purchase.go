package models

// PurchaseResponse is returned by POST /courses/:id/purchase
type PurchaseResponse struct {
	Message      string  `json:"message"`
	CourseTitle  string  `json:"course_title"`
	Price        float64 `json:"price"`
	PurchaseDate string  `json:"purchase_date"`
}

// PaymentDetails are the simulated card fields. Only the format is checked;
// no payment gateway is involved.
type PaymentDetails struct {
	CardNumber string `form:"card_number" json:"card_number" binding:"required,card_number"`
	Expiry     string `form:"expiry" json:"expiry" binding:"required,card_expiry"`
	CVV        string `form:"cvv" json:"cvv" binding:"required,card_cvv"`
}

// PurchaseForm is the single submission that runs the whole purchase
type PurchaseForm struct {
	PaymentDetails
	IdempotencyKey string `form:"idempotency_key" json:"idempotency_key" binding:"omitempty,uuid"`
}

// PurchaseOutcome is the result of one completed purchase submission
type PurchaseOutcome struct {
	CourseID string
	Receipt  PurchaseResponse
	// User is the refreshed account; nil when the refresh failed
	User *User
	// Warning is set when the purchase went through but the refresh did not
	Warning string
}
