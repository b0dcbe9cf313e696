package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/fitforge/fitforge-web/config"
	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/fitforge/fitforge-web/internal/session"
	"github.com/fitforge/fitforge-web/pkg/courseapi"
	"github.com/fitforge/fitforge-web/pkg/courseapi/courseapitest"
	"github.com/fitforge/fitforge-web/pkg/httpclient"
	"github.com/fitforge/fitforge-web/pkg/logger"
	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const password = "Squat#2024"

var card = url.Values{
	"card_number": {"4242 4242 4242 4242"},
	"expiry":      {"12/29"},
	"cvv":         {"123"},
}

func init() {
	gin.SetMode(gin.TestMode)

	if err := logger.Initialize(logger.Config{Level: "error", Environment: "development"}); err != nil {
		panic(err)
	}
}

type harness struct {
	t      *testing.T
	fake   *courseapitest.Fake
	store  session.Store
	server *httptest.Server
	client *http.Client
}

func testConfig(t *testing.T, apiURL string) *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{AppEnv: "test", MetricsToken: "metrics-secret"},
		CourseAPI: config.CourseAPIConfig{BaseURL: apiURL, TimeoutSeconds: 5},
		Session: config.SessionConfig{
			Backend:  "cookie",
			Secret:   "test-session-secret-with-enough-bytes",
			Issuer:   "fitforge-test",
			TTLHours: 1,
		},
		Purchase:      config.PurchaseConfig{SimulationDelayMS: 1, IdempotencyTTLSeconds: 60},
		Upload:        config.UploadConfig{Backend: "api", MaxUploadMB: 5},
		Logging:       config.LoggingConfig{Level: "error", Dir: t.TempDir()},
		Observability: config.ObservabilityConfig{ServiceName: "fitforge-web-test"},
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	fake := courseapitest.New(t)
	h := startHarness(t, testConfig(t, fake.URL))
	h.fake = fake
	return h
}

// startHarness serves the router in front of whatever API cfg points at
func startHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()

	httpClient := httpclient.NewStandardClient(5 * time.Second)
	api := courseapi.New(cfg.CourseAPI.BaseURL, httpClient)

	store, err := NewSessionStore(cfg)
	require.NoError(t, err)

	deps, err := BuildDependencies(cfg, api, store, httpClient)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router, err := NewRouter(ctx, cfg, deps)
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &harness{
		t:      t,
		store:  store,
		server: srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (h *harness) do(req *http.Request) (*http.Response, string) {
	h.t.Helper()

	resp, err := h.client.Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp, string(body)
}

func (h *harness) get(path string) (*http.Response, string) {
	req, err := http.NewRequest(http.MethodGet, h.server.URL+path, http.NoBody)
	require.NoError(h.t, err)
	return h.do(req)
}

func (h *harness) post(path string, form url.Values, headers ...string) (*http.Response, string) {
	req, err := http.NewRequest(http.MethodPost, h.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return h.do(req)
}

func (h *harness) login(email string) {
	h.t.Helper()
	resp, _ := h.post("/login", url.Values{"email": {email}, "password": {password}})
	require.Equal(h.t, http.StatusSeeOther, resp.StatusCode)
}

// plant stores token in the visitor's cookie without going through login
func (h *harness) plant(token string) {
	h.t.Helper()

	w := httptest.NewRecorder()
	_, err := h.store.Set(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody), token)
	require.NoError(h.t, err)

	u, err := url.Parse(h.server.URL)
	require.NoError(h.t, err)
	h.client.Jar.SetCookies(u, w.Result().Cookies())
}

func TestRouter_GuardRedirectsWithoutCallingAPI(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/courses", "/my-courses", "/admin", "/instructor/upload"} {
		resp, _ := h.get(path)
		assert.Equal(t, http.StatusFound, resp.StatusCode, path)
		assert.Equal(t, "/login?next="+url.QueryEscape(path), resp.Header.Get("Location"), path)
	}

	resp, _ := h.post("/courses/c1/purchase", card)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	assert.Zero(t, h.fake.TotalHits())
}

func TestRouter_LoginReturnsToRequestedPage(t *testing.T) {
	h := newHarness(t)
	h.fake.AddAccount("lifter", "lifter@example.com", password, models.RoleUser, 100)
	h.fake.AddCourse(models.Course{Title: "Kettlebell Basics", Price: 40, Difficulty: models.DifficultyBeginner})

	resp, _ := h.post("/login", url.Values{"email": {"lifter@example.com"}, "password": {password}, "next": {"/courses"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/courses", resp.Header.Get("Location"))

	resp, body := h.get("/courses")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Login successful!")
	assert.Contains(t, body, "Kettlebell Basics")

	// The flash is shown once
	_, body = h.get("/courses")
	assert.NotContains(t, body, "Login successful!")
}

func TestRouter_LoginRejectsExternalNext(t *testing.T) {
	h := newHarness(t)
	h.fake.AddAccount("lifter", "lifter@example.com", password, models.RoleUser, 0)

	resp, _ := h.post("/login", url.Values{"email": {"lifter@example.com"}, "password": {password}, "next": {"//evil.example.com"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestRouter_LoginFailureShowsDetail(t *testing.T) {
	h := newHarness(t)

	resp, body := h.post("/login", url.Values{"email": {"nobody@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Invalid email or password")

	resp, _ = h.get("/courses")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestRouter_AdminLogin(t *testing.T) {
	h := newHarness(t)
	h.fake.AddAccount("coach_anna", "anna@example.com", password, models.RoleInstructor, 0)

	resp, _ := h.post("/login/admin", url.Values{"username": {courseapitest.AdminUsername}, "password": {courseapitest.AdminPassword}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))

	resp, body := h.get("/admin")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Admin login successful")
	assert.Contains(t, body, "coach_anna")
	assert.Equal(t, 1, h.fake.Hits(http.MethodPost, "/admin/login"))
}

func TestRouter_AdminLoginWrongCredentials(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.post("/login/admin", url.Values{"username": {"sample"}, "password": {"124"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	_, body := h.get("/login")
	assert.Contains(t, body, "Invalid admin credentials")

	resp, _ = h.get("/admin")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/login"))
}

func TestRouter_RoleMismatchRedirectsHome(t *testing.T) {
	h := newHarness(t)
	h.fake.AddAccount("lifter", "lifter@example.com", password, models.RoleUser, 0)
	h.login("lifter@example.com")

	for _, path := range []string{"/admin", "/create-course", "/instructor/upload"} {
		resp, _ := h.get(path)
		assert.Equal(t, http.StatusFound, resp.StatusCode, path)
		assert.Equal(t, "/", resp.Header.Get("Location"), path)
	}
	assert.Zero(t, h.fake.Hits(http.MethodGet, "/admin/instructors"))
}

func TestRouter_PurchaseSuccess(t *testing.T) {
	h := newHarness(t)
	h.fake.AddAccount("lifter", "lifter@example.com", password, models.RoleUser, 100)
	courseID := h.fake.AddCourse(models.Course{Title: "Kettlebell Basics", Price: 40, Difficulty: models.DifficultyBeginner})
	h.login("lifter@example.com")

	resp, _ := h.post("/courses/"+courseID+"/purchase", card)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/courses/"+courseID, resp.Header.Get("Location"))

	_, body := h.get("/courses/" + courseID)
	assert.Contains(t, body, "Successfully purchased Kettlebell Basics!")

	buyer := h.fake.User("lifter")
	assert.True(t, buyer.HasPurchased(courseID))
	assert.InDelta(t, 60.0, buyer.Balance, 0.001)
}

func TestRouter_PurchaseFailureShowsDetail(t *testing.T) {
	h := newHarness(t)
	h.fake.AddAccount("lifter", "lifter@example.com", password, models.RoleUser, 10)
	courseID := h.fake.AddCourse(models.Course{Title: "Kettlebell Basics", Price: 40, Difficulty: models.DifficultyBeginner})
	h.login("lifter@example.com")

	resp, _ := h.post("/courses/"+courseID+"/purchase", card)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body := h.get("/courses/" + courseID)
	assert.Contains(t, body, "Insufficient balance")
	buyer := h.fake.User("lifter")
	assert.False(t, buyer.HasPurchased(courseID))
}

func TestRouter_PurchaseInvalidCardNeverReachesAPI(t *testing.T) {
	h := newHarness(t)
	h.fake.AddAccount("lifter", "lifter@example.com", password, models.RoleUser, 100)
	courseID := h.fake.AddCourse(models.Course{Title: "Kettlebell Basics", Price: 40})
	h.login("lifter@example.com")

	resp, _ := h.post("/courses/"+courseID+"/purchase", url.Values{"card_number": {"1234"}, "expiry": {"13/99"}, "cvv": {"1"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/courses/"+courseID+"?checkout=1", resp.Header.Get("Location"))
	assert.Zero(t, h.fake.Hits(http.MethodPost, "/courses/:id/purchase"))
}

func TestRouter_ReviewReturnsReloadedList(t *testing.T) {
	h := newHarness(t)
	h.fake.AddAccount("lifter", "lifter@example.com", password, models.RoleUser, 100)
	courseID := h.fake.AddCourse(models.Course{Title: "Mobility", Price: 25})
	h.login("lifter@example.com")

	resp, _ := h.post("/courses/"+courseID+"/purchase", card)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, body := h.post("/courses/"+courseID+"/reviews", url.Values{"rating": {"5"}, "comment": {"Hips feel brand new"}}, "Accept", "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	var got struct {
		Reviews []models.Review `json:"reviews"`
		Warning string          `json:"warning"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Empty(t, got.Warning)
	assert.Equal(t, h.fake.Reviews(courseID), got.Reviews)
	require.Len(t, got.Reviews, 1)
	assert.Equal(t, "Hips feel brand new", got.Reviews[0].Comment)
}

func TestRouter_ReviewRequiresPurchase(t *testing.T) {
	h := newHarness(t)
	h.fake.AddAccount("lifter", "lifter@example.com", password, models.RoleUser, 100)
	courseID := h.fake.AddCourse(models.Course{Title: "Mobility", Price: 25})
	h.login("lifter@example.com")

	resp, body := h.post("/courses/"+courseID+"/reviews", url.Values{"rating": {"4"}, "comment": {"ok"}}, "Accept", "application/json")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body, "You must purchase this course to review it")
	assert.Zero(t, h.fake.Hits(http.MethodPost, "/courses/:id/reviews"))
}

func TestRouter_RejectedTokenExpiresSession(t *testing.T) {
	h := newHarness(t)

	forged, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"sub":  "lifter",
		"role": models.RoleUser,
	}).SignedString([]byte("not-the-api-key"))
	require.NoError(t, err)
	h.plant(forged)

	resp, _ := h.get("/courses")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?next=%2Fcourses", resp.Header.Get("Location"))

	_, body := h.get("/login")
	assert.Contains(t, body, "Your session has expired. Please log in again.")

	// The cleared session no longer reaches the API
	hits := h.fake.TotalHits()
	resp, _ = h.get("/courses")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, hits, h.fake.TotalHits())
}

func TestRouter_Logout(t *testing.T) {
	h := newHarness(t)
	h.fake.AddAccount("lifter", "lifter@example.com", password, models.RoleUser, 0)
	h.login("lifter@example.com")

	resp, _ := h.post("/logout", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body := h.get("/")
	assert.Contains(t, body, "Logged out successfully")

	resp, _ = h.get("/my-courses")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestRouter_SessionEndpoint(t *testing.T) {
	h := newHarness(t)
	h.fake.AddAccount("coach_anna", "anna@example.com", password, models.RoleInstructor, 0)

	_, body := h.get("/api/v1/session")
	assert.JSONEq(t, `{"authenticated":false,"backend":"cookie"}`, body)

	h.login("anna@example.com")
	_, body = h.get("/api/v1/session")
	assert.JSONEq(t, `{"authenticated":true,"role":"instructor","display_name":"coach_anna","backend":"cookie"}`, body)
}

func TestRouter_Healthcheck(t *testing.T) {
	h := newHarness(t)

	resp, body := h.get("/api/healthcheck")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestRouter_MetricsRequireToken(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.get("/api/metrics")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, h.server.URL+"/api/metrics", http.NoBody)
	require.NoError(t, err)
	req.Header.Set("X-Metrics-Token", "metrics-secret")
	resp, body := h.do(req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "go_goroutines")
}

func TestRouter_UnknownRoute(t *testing.T) {
	h := newHarness(t)

	resp, body := h.get("/no-such-page")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Page not found")
}

func TestNewSessionStore_UnknownBackend(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Session.Backend = "memcached"

	_, err := NewSessionStore(cfg)
	assert.Error(t, err)
}

func TestNewUploader(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")

	uploader, err := NewUploader(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "api", uploader.Backend())

	cfg.Upload.Backend = "s3"
	_, err = NewUploader(cfg, nil)
	assert.Error(t, err, "s3 needs a bucket")

	cfg.Storage = config.StorageConfig{BucketName: "courses", Endpoint: "http://127.0.0.1:9000"}
	uploader, err = NewUploader(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "s3", uploader.Backend())
}
