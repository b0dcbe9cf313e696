package handlers

import (
	"net/http"
	"net/url"

	"github.com/fitforge/fitforge-web/internal/middleware"
	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/fitforge/fitforge-web/internal/services"
	"github.com/fitforge/fitforge-web/internal/session"
	"github.com/fitforge/fitforge-web/internal/validation"
	"github.com/fitforge/fitforge-web/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoginData is the body of the login page
type LoginData struct {
	Next  string
	Email string
}

// SignupData is the body of the signup page
type SignupData struct {
	Form     models.SignupRequest
	Problems []validation.Problem
}

type AuthHandler struct {
	service services.AuthServiceInterface
	store   session.Store
}

func NewAuthHandler(service services.AuthServiceInterface, store session.Store) *AuthHandler {
	return &AuthHandler{service: service, store: store}
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	if !currentSession(c).Anonymous() {
		c.Redirect(http.StatusFound, middleware.HomePath)
		return
	}
	renderPage(c, http.StatusOK, "login", "Login", LoginData{Next: c.Query("next")})
}

func (h *AuthHandler) Login(c *gin.Context) {
	next := c.PostForm("next")

	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		attachError(c, err)
		middleware.SetFlash(c, middleware.FlashError, validation.Summary(err))
		renderPage(c, http.StatusUnprocessableEntity, "login", "Login", LoginData{Next: next, Email: req.Email})
		return
	}

	token, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		attachError(c, err)
		middleware.SetFlash(c, middleware.FlashError, userMessage(err, "Login failed"))
		renderPage(c, statusFor(err), "login", "Login", LoginData{Next: next, Email: req.Email})
		return
	}

	if !h.startSession(c, token) {
		return
	}
	redirectWithFlash(c, middleware.SafeNext(next), middleware.FlashSuccess, "Login successful!")
}

// AdminLogin forwards the credentials to the API; nothing is checked here
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req models.AdminLoginRequest
	if err := c.ShouldBind(&req); err != nil {
		attachError(c, err)
		redirectWithFlash(c, middleware.LoginPath, middleware.FlashError, "Invalid admin credentials")
		return
	}

	token, err := h.service.AdminLogin(c.Request.Context(), &req)
	if err != nil {
		attachError(c, err)
		redirectWithFlash(c, middleware.LoginPath, middleware.FlashError, userMessage(err, "Invalid admin credentials"))
		return
	}

	if !h.startSession(c, token) {
		return
	}
	redirectWithFlash(c, "/admin", middleware.FlashSuccess, "Admin login successful")
}

func (h *AuthHandler) SignupPage(c *gin.Context) {
	if !currentSession(c).Anonymous() {
		c.Redirect(http.StatusFound, middleware.HomePath)
		return
	}
	renderPage(c, http.StatusOK, "signup", "Sign Up", SignupData{Form: models.SignupRequest{Role: models.RoleUser}})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		attachError(c, err)
		req.Password = ""
		renderPage(c, http.StatusUnprocessableEntity, "signup", "Sign Up", SignupData{Form: req, Problems: validation.Problems(err)})
		return
	}

	token, err := h.service.Signup(c.Request.Context(), &req)
	if err != nil {
		attachError(c, err)
		req.Password = ""
		middleware.SetFlash(c, middleware.FlashError, userMessage(err, "Signup failed"))
		renderPage(c, statusFor(err), "signup", "Sign Up", SignupData{Form: req})
		return
	}

	if !h.startSession(c, token) {
		return
	}
	redirectWithFlash(c, middleware.HomePath, middleware.FlashSuccess, "Signup successful!")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.store.Clear(c.Writer, c.Request); err != nil {
		attachError(c, err)
		logger.Warn("Failed to clear session on logout", zap.Error(err))
	}
	middleware.SetSession(c, session.Session{})
	redirectWithFlash(c, middleware.HomePath, middleware.FlashSuccess, "Logged out successfully")
}

// startSession stores the token. A token whose payload cannot be decoded
// leaves the visitor anonymous.
func (h *AuthHandler) startSession(c *gin.Context, token string) bool {
	sess, err := h.store.Set(c.Writer, c.Request, token)
	if err != nil {
		attachError(c, err)
		logger.Warn("Rejected token from course API", zap.String("backend", h.store.Name()), zap.Error(err))
		redirectWithFlash(c, middleware.LoginPath+"?next="+url.QueryEscape(c.PostForm("next")), middleware.FlashError, userMessage(err, "Login failed"))
		return false
	}
	middleware.SetSession(c, sess)
	return true
}
