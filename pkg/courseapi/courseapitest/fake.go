// Package courseapitest provides an in-memory course API for tests.
package courseapitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const signingKey = "course-api-test-signing-key"

// Admin credentials accepted by POST /admin/login
const (
	AdminUsername = "sample"
	AdminPassword = "123"
)

type account struct {
	user     models.User
	password string
}

// Fake is a course API backed by maps. All methods are safe for concurrent use.
type Fake struct {
	Server *httptest.Server
	URL    string

	mu          sync.Mutex
	accounts    map[string]*account
	instructors map[string]bool
	courses     []models.Course
	reviews     map[string][]models.Review
	hits        map[string]int
	nextID      int

	purchaseDetail   string
	currentUserFails bool
	latency          time.Duration
	lastHeaders      http.Header
}

// New starts a fake API that is closed when the test ends
func New(t testing.TB) *Fake {
	gin.SetMode(gin.TestMode)

	f := &Fake{
		accounts:    map[string]*account{},
		instructors: map[string]bool{},
		reviews:     map[string][]models.Review{},
		hits:        map[string]int{},
	}
	f.Server = httptest.NewServer(f.router())
	f.URL = f.Server.URL
	t.Cleanup(f.Server.Close)
	return f
}

// Token issues a token for username the way the API does
func (f *Fake) Token(username, role string) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  username,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(signingKey))
	if err != nil {
		panic(err)
	}
	return token
}

// AddAccount registers an account and returns its token
func (f *Fake) AddAccount(username, email, password, role string, balance float64) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	f.accounts[username] = &account{
		user: models.User{
			ID:               fmt.Sprintf("u%d", f.nextID),
			Username:         username,
			Email:            email,
			Role:             role,
			Balance:          balance,
			PurchasedCourses: []string{},
		},
		password: password,
	}
	return f.Token(username, role)
}

// AddCourse stores a course and returns its id
func (f *Fake) AddCourse(c models.Course) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	if c.ID == "" {
		c.ID = fmt.Sprintf("c%d", f.nextID)
	}
	f.courses = append(f.courses, c)
	return c.ID
}

// User returns a copy of the stored account
func (f *Fake) User(username string) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()

	acc, ok := f.accounts[username]
	if !ok {
		return models.User{}
	}
	u := acc.user
	u.PurchasedCourses = append([]string(nil), acc.user.PurchasedCourses...)
	return u
}

// Courses returns a copy of the catalogue
func (f *Fake) Courses() []models.Course {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Course(nil), f.courses...)
}

// Reviews returns the stored reviews of a course, newest first
func (f *Fake) Reviews(courseID string) []models.Review {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Review(nil), f.reviews[courseID]...)
}

// FailPurchases makes every purchase fail with detail; "" restores success
func (f *Fake) FailPurchases(detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purchaseDetail = detail
}

// FailCurrentUser makes GET /users/me answer 500
func (f *Fake) FailCurrentUser(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentUserFails = fail
}

// SetLatency delays every response
func (f *Fake) SetLatency(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latency = d
}

// Hits counts requests to a route, e.g. Hits("GET", "/courses/:id")
func (f *Fake) Hits(method, route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[method+" "+route]
}

// TotalHits counts every request served
func (f *Fake) TotalHits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.hits {
		total += n
	}
	return total
}

// LastHeaders returns the headers of the most recent request
func (f *Fake) LastHeaders() http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastHeaders.Clone()
}

func (f *Fake) router() *gin.Engine {
	r := gin.New()
	r.Use(f.record)

	r.GET("/", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "API is working"}) })
	r.POST("/signup", f.signup)
	r.POST("/login", f.login)
	r.POST("/admin/login", f.adminLogin)

	authed := r.Group("/", f.authenticate)
	authed.GET("/courses", f.listCourses)
	authed.GET("/courses/:id", f.getCourse)
	authed.POST("/courses/:id/purchase", f.purchase)
	authed.GET("/courses/:id/reviews", f.listReviews)
	authed.POST("/courses/:id/reviews", f.createReview)
	authed.POST("/create-course", f.createCourse)
	authed.POST("/upload-video", f.uploadVideo)
	authed.GET("/users/me", f.currentUser)
	authed.GET("/instructor/courses", f.instructorCourses)
	authed.GET("/admin/instructors", f.listInstructors)
	authed.PUT("/admin/instructors/:id/verify", f.verifyInstructor)

	return r
}

func (f *Fake) record(c *gin.Context) {
	f.mu.Lock()
	f.hits[c.Request.Method+" "+c.FullPath()]++
	f.lastHeaders = c.Request.Header.Clone()
	latency := f.latency
	f.mu.Unlock()

	if latency > 0 {
		time.Sleep(latency)
	}
	c.Next()
}

func detail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}

func (f *Fake) authenticate(c *gin.Context) {
	raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || raw == "" {
		detail(c, http.StatusUnauthorized, "Missing or invalid token")
		return
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(signingKey), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		detail(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	c.Set("sub", sub)
	c.Set("role", role)
	c.Next()
}

func (f *Fake) signup(c *gin.Context) {
	var req models.SignupRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil || req.Email == "" {
		detail(c, http.StatusBadRequest, "Invalid signup data")
		return
	}

	f.mu.Lock()
	for _, acc := range f.accounts {
		if acc.user.Email == req.Email {
			f.mu.Unlock()
			detail(c, http.StatusBadRequest, "Email already registered")
			return
		}
	}
	f.mu.Unlock()

	token := f.AddAccount(req.Username, req.Email, req.Password, req.Role, 0)
	c.JSON(http.StatusOK, models.TokenResponse{Token: token, Message: "User registered successfully"})
}

func (f *Fake) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "Invalid login data")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, acc := range f.accounts {
		if acc.user.Email == req.Email && acc.password == req.Password {
			c.JSON(http.StatusOK, models.TokenResponse{Token: f.Token(acc.user.Username, acc.user.Role)})
			return
		}
	}
	detail(c, http.StatusUnauthorized, "Invalid email or password")
}

func (f *Fake) adminLogin(c *gin.Context) {
	var req models.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username != AdminUsername || req.Password != AdminPassword {
		detail(c, http.StatusUnauthorized, "Invalid admin credentials")
		return
	}
	c.JSON(http.StatusOK, models.TokenResponse{Token: f.Token("admin", models.RoleAdmin)})
}

func (f *Fake) withInstructorFlags(course models.Course) models.Course {
	course.Instructor.IsVerified = f.instructors[course.Instructor.Username]
	return course
}

func (f *Fake) listCourses(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.Course, 0, len(f.courses))
	for _, course := range f.courses {
		out = append(out, f.withInstructorFlags(course))
	}
	c.JSON(http.StatusOK, out)
}

func (f *Fake) findCourse(id string) (int, bool) {
	for i, course := range f.courses {
		if course.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (f *Fake) getCourse(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i, ok := f.findCourse(c.Param("id"))
	if !ok {
		detail(c, http.StatusNotFound, "Course not found")
		return
	}
	c.JSON(http.StatusOK, f.withInstructorFlags(f.courses[i]))
}

func (f *Fake) purchase(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.purchaseDetail != "" {
		detail(c, http.StatusBadRequest, f.purchaseDetail)
		return
	}

	i, ok := f.findCourse(c.Param("id"))
	if !ok {
		detail(c, http.StatusNotFound, "Course not found")
		return
	}
	acc, ok := f.accounts[c.GetString("sub")]
	if !ok {
		detail(c, http.StatusNotFound, "User not found")
		return
	}
	course := f.courses[i]
	if acc.user.HasPurchased(course.ID) {
		detail(c, http.StatusBadRequest, "Course already purchased")
		return
	}
	if acc.user.Balance < course.Price {
		detail(c, http.StatusBadRequest, "Insufficient balance")
		return
	}

	acc.user.Balance -= course.Price
	acc.user.PurchasedCourses = append(acc.user.PurchasedCourses, course.ID)
	c.JSON(http.StatusOK, models.PurchaseResponse{
		Message:      "Course purchased successfully",
		CourseTitle:  course.Title,
		Price:        course.Price,
		PurchaseDate: time.Now().UTC().Format(time.RFC3339),
	})
}

func (f *Fake) listReviews(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := append([]models.Review{}, f.reviews[c.Param("id")]...)
	c.JSON(http.StatusOK, models.ReviewList{Reviews: list})
}

func (f *Fake) createReview(c *gin.Context) {
	var req models.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid review")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	courseID := c.Param("id")
	acc, ok := f.accounts[c.GetString("sub")]
	if !ok {
		detail(c, http.StatusNotFound, "User not found")
		return
	}
	if !acc.user.HasPurchased(courseID) {
		detail(c, http.StatusForbidden, "You must purchase this course to review it")
		return
	}
	for _, r := range f.reviews[courseID] {
		if r.UserID == acc.user.ID {
			detail(c, http.StatusBadRequest, "You have already reviewed this course")
			return
		}
	}

	f.nextID++
	review := models.Review{
		ID:        fmt.Sprintf("r%d", f.nextID),
		CourseID:  courseID,
		UserID:    acc.user.ID,
		Username:  acc.user.Username,
		Rating:    float64(req.Rating),
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	f.reviews[courseID] = append([]models.Review{review}, f.reviews[courseID]...)

	c.JSON(http.StatusOK, models.SubmitReviewResponse{Message: "Review created successfully", ReviewID: review.ID})
}

func (f *Fake) createCourse(c *gin.Context) {
	if c.GetString("role") != models.RoleInstructor {
		detail(c, http.StatusForbidden, "Only instructors can create courses")
		return
	}

	var req models.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid course data")
		return
	}

	f.mu.Lock()
	f.nextID++
	course := models.Course{
		ID:          fmt.Sprintf("c%d", f.nextID),
		Title:       req.Title,
		Description: req.Description,
		Instructor:  models.InstructorRef{Username: c.GetString("sub")},
		Difficulty:  req.Difficulty,
		Price:       req.Price,
		Ratings:     req.Ratings,
		VideoURLs:   req.VideoURLs,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	f.courses = append(f.courses, course)
	f.mu.Unlock()

	c.JSON(http.StatusOK, models.CreateCourseResponse{Message: "Course created successfully", Course: course})
}

func (f *Fake) uploadVideo(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		detail(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	c.JSON(http.StatusOK, models.UploadVideoResponse{
		Message:  "Video uploaded successfully",
		VideoURL: "https://videos.example.com/" + file.Filename,
		Title:    file.Filename,
	})
}

func (f *Fake) currentUser(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.currentUserFails {
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	sub := c.GetString("sub")
	if c.GetString("role") == models.RoleAdmin && sub == "admin" {
		c.JSON(http.StatusOK, models.User{ID: "admin", Username: "admin", Role: models.RoleAdmin, IsAdmin: true})
		return
	}
	acc, ok := f.accounts[sub]
	if !ok {
		detail(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, acc.user)
}

func (f *Fake) instructorCourses(c *gin.Context) {
	if c.GetString("role") != models.RoleInstructor {
		detail(c, http.StatusForbidden, "Only instructors can access this endpoint")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.Course{}
	for _, course := range f.courses {
		if course.Instructor.Username == c.GetString("sub") {
			course.Reviews = append([]models.Review{}, f.reviews[course.ID]...)
			out = append(out, course)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (f *Fake) listInstructors(c *gin.Context) {
	if c.GetString("role") != models.RoleAdmin {
		detail(c, http.StatusForbidden, "Admin access required")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.Instructor{}
	for _, acc := range f.accounts {
		if acc.user.Role == models.RoleInstructor {
			out = append(out, models.Instructor{
				ID:         acc.user.ID,
				Username:   acc.user.Username,
				Email:      acc.user.Email,
				Role:       acc.user.Role,
				IsVerified: f.instructors[acc.user.Username],
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	c.JSON(http.StatusOK, out)
}

func (f *Fake) verifyInstructor(c *gin.Context) {
	if c.GetString("role") != models.RoleAdmin {
		detail(c, http.StatusForbidden, "Admin access required")
		return
	}

	var req models.VerifyInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, acc := range f.accounts {
		if acc.user.ID == c.Param("id") && acc.user.Role == models.RoleInstructor {
			f.instructors[acc.user.Username] = req.Verify
			c.JSON(http.StatusOK, models.Instructor{
				ID:         acc.user.ID,
				Username:   acc.user.Username,
				Email:      acc.user.Email,
				Role:       acc.user.Role,
				IsVerified: req.Verify,
			})
			return
		}
	}
	detail(c, http.StatusNotFound, "Instructor not found")
}
