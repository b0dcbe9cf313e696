package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/fitforge/fitforge-web/pkg/courseapi/courseapitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const password = "Squat#2024"

type cliHarness struct {
	t           *testing.T
	fake        *courseapitest.Fake
	sessionFile string
}

func newCLI(t *testing.T) *cliHarness {
	return &cliHarness{
		t:           t,
		fake:        courseapitest.New(t),
		sessionFile: filepath.Join(t.TempDir(), "session.yaml"),
	}
}

// run executes one command line and returns its stdout
func (h *cliHarness) run(args ...string) (string, error) {
	h.t.Helper()

	var out, logs bytes.Buffer
	cmd := NewRootCommand(&out, &logs)
	cmd.SetArgs(append([]string{"--api-url", h.fake.URL, "--session-file", h.sessionFile, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *cliHarness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, out)
	return out
}

func TestCLI_LoginWhoamiLogout(t *testing.T) {
	h := newCLI(t)
	h.fake.AddAccount("lifter", "lifter@example.com", password, models.RoleUser, 100)

	out := h.mustRun("login", "--email", "lifter@example.com", "--password", password)
	assert.Contains(t, out, "Login successful!")
	assert.Contains(t, out, "Logged in as lifter (user)")

	info, err := os.Stat(h.sessionFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	out = h.mustRun("whoami")
	assert.Contains(t, out, "lifter <lifter@example.com>")
	assert.Contains(t, out, "$100.00")

	assert.Contains(t, h.mustRun("logout"), "Logged out successfully")

	_, err = h.run("whoami")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestCLI_LoginFailureShowsDetail(t *testing.T) {
	h := newCLI(t)

	_, err := h.run("login", "--email", "nobody@example.com", "--password", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.Error())

	_, statErr := os.Stat(h.sessionFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCLI_Signup(t *testing.T) {
	h := newCLI(t)

	out := h.mustRun("signup", "--username", "coach_anna", "--email", "anna@example.com", "--password", password, "--role", "instructor")
	assert.Contains(t, out, "Signup successful!")
	assert.Contains(t, h.mustRun("whoami"), "role:      instructor")
}

func TestCLI_SignupValidationNeverReachesAPI(t *testing.T) {
	h := newCLI(t)

	_, err := h.run("signup", "--username", "ab", "--email", "anna@example.com", "--password", "weak")
	require.Error(t, err)
	assert.Zero(t, h.fake.Hits("POST", "/signup"))
}

func TestCLI_CommandsNeedSession(t *testing.T) {
	h := newCLI(t)

	for _, args := range [][]string{
		{"courses"},
		{"course", "c1"},
		{"my-courses"},
		{"buy", "c1", "--card", "4242424242424242", "--expiry", "12/29", "--cvv", "123"},
		{"review", "c1", "--rating", "5", "--comment", "great"},
	} {
		_, err := h.run(args...)
		assert.ErrorIs(t, err, ErrNotLoggedIn, args[0])
	}
	assert.Zero(t, h.fake.TotalHits())
}

func TestCLI_BrowseBuyReview(t *testing.T) {
	h := newCLI(t)
	h.fake.AddAccount("lifter", "lifter@example.com", password, models.RoleUser, 100)
	mobility := h.fake.AddCourse(models.Course{Title: "Mobility Flow", Description: "Daily hips and shoulders", Price: 25, Difficulty: models.DifficultyBeginner})
	h.fake.AddCourse(models.Course{Title: "Barbell Strength", Description: "Squat bench deadlift", Price: 80, Difficulty: models.DifficultyAdvanced})
	h.mustRun("login", "--email", "lifter@example.com", "--password", password)

	out := h.mustRun("courses", "--level", "beginner")
	assert.Contains(t, out, "Mobility Flow")
	assert.NotContains(t, out, "Barbell Strength")

	out = h.mustRun("buy", mobility, "--card", "4242 4242 4242 4242", "--expiry", "12/29", "--cvv", "123", "--processing-delay", "1ms")
	assert.Contains(t, out, "Processing payment...")
	assert.Contains(t, out, "Successfully purchased Mobility Flow!")
	assert.Contains(t, out, "Remaining balance: $75.00")

	out = h.mustRun("my-courses")
	assert.Contains(t, out, "Mobility Flow")

	out = h.mustRun("review", mobility, "--rating", "5", "--comment", "Hips feel brand new")
	assert.Contains(t, out, "Review submitted successfully")
	assert.Contains(t, out, "Hips feel brand new")
	assert.Len(t, h.fake.Reviews(mobility), 1)
}

func TestCLI_BuyFailureLeavesAccountUnchanged(t *testing.T) {
	h := newCLI(t)
	h.fake.AddAccount("lifter", "lifter@example.com", password, models.RoleUser, 10)
	course := h.fake.AddCourse(models.Course{Title: "Barbell Strength", Price: 80})
	h.mustRun("login", "--email", "lifter@example.com", "--password", password)

	_, err := h.run("buy", course, "--card", "4242 4242 4242 4242", "--expiry", "12/29", "--cvv", "123", "--processing-delay", "1ms")
	require.Error(t, err)
	assert.Equal(t, "Insufficient balance", err.Error())
	assert.InDelta(t, 10.0, h.fake.User("lifter").Balance, 0.001)
}

func TestCLI_BuyRejectsBadCard(t *testing.T) {
	h := newCLI(t)
	h.fake.AddAccount("lifter", "lifter@example.com", password, models.RoleUser, 100)
	course := h.fake.AddCourse(models.Course{Title: "Mobility Flow", Price: 25})
	h.mustRun("login", "--email", "lifter@example.com", "--password", password)

	_, err := h.run("buy", course, "--card", "1234", "--expiry", "13/99", "--cvv", "1", "--processing-delay", "1ms")
	require.Error(t, err)
	assert.Zero(t, h.fake.Hits("POST", "/courses/:id/purchase"))
}

func TestCLI_ReviewNeedsPurchase(t *testing.T) {
	h := newCLI(t)
	h.fake.AddAccount("lifter", "lifter@example.com", password, models.RoleUser, 100)
	course := h.fake.AddCourse(models.Course{Title: "Mobility Flow", Price: 25})
	h.mustRun("login", "--email", "lifter@example.com", "--password", password)

	_, err := h.run("review", course, "--rating", "5", "--comment", "great")
	require.Error(t, err)
	assert.Equal(t, "You must purchase this course to review it", err.Error())
	assert.Zero(t, h.fake.Hits("POST", "/courses/:id/reviews"))
}

func TestCLI_AdminVerifiesInstructor(t *testing.T) {
	h := newCLI(t)
	h.fake.AddAccount("coach_anna", "anna@example.com", password, models.RoleInstructor, 0)

	_, err := h.run("login", "--admin", "--username", "sample", "--password", "124")
	require.Error(t, err)
	assert.Equal(t, "Invalid admin credentials", err.Error())

	out := h.mustRun("login", "--admin", "--username", courseapitest.AdminUsername, "--password", courseapitest.AdminPassword)
	assert.Contains(t, out, "Admin login successful")

	out = h.mustRun("instructors", "list")
	assert.Contains(t, out, "coach_anna")
	assert.Contains(t, out, "false")

	id := h.fake.User("coach_anna").ID
	out = h.mustRun("instructors", "verify", id)
	assert.Contains(t, out, "Instructor verified")
	assert.Contains(t, out, "true")
}

func TestCLI_InstructorsNeedAdminHint(t *testing.T) {
	h := newCLI(t)
	h.fake.AddAccount("lifter", "lifter@example.com", password, models.RoleUser, 0)
	h.mustRun("login", "--email", "lifter@example.com", "--password", password)

	_, err := h.run("instructors", "list")
	require.Error(t, err)
	assert.Zero(t, h.fake.Hits("GET", "/admin/instructors"))
}

func TestCLI_RejectedTokenDropsSession(t *testing.T) {
	h := newCLI(t)
	require.NoError(t, os.WriteFile(h.sessionFile, []byte("token: "+forgedToken(t)+"\n"), 0o600))

	_, err := h.run("courses")
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = h.run("courses")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestCLI_Version(t *testing.T) {
	h := newCLI(t)
	assert.Contains(t, h.mustRun("version"), "fitforge version "+Version)
}
