package models

// SignupRequest is both the signup form and the body of POST /signup
type SignupRequest struct {
	Username string `json:"username" form:"username" binding:"required,min=4,max=50"`
	Email    string `json:"email" form:"email" binding:"required,email,max=255"`
	Password string `json:"password" form:"password" binding:"required,min=8,max=128,password_strength"`
	Role     string `json:"role" form:"role" binding:"required,oneof=user instructor"`
}

// LoginRequest is the body of POST /login
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// AdminLoginRequest is the body of POST /admin/login
type AdminLoginRequest struct {
	Username string `json:"username" form:"username" binding:"required,max=100"`
	Password string `json:"password" form:"password" binding:"required,max=128"`
}

// TokenResponse is what the API answers to signup and the two logins
type TokenResponse struct {
	Token   string `json:"token"`
	Message string `json:"msg,omitempty"`
}
