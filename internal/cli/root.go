// Package cli implements the fitforge command line client. It shares the
// course API client, the services and the purchase flow with the web server
// and keeps its session in a YAML file.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fitforge/fitforge-web/internal/services"
	"github.com/fitforge/fitforge-web/internal/session"
	"github.com/fitforge/fitforge-web/pkg/courseapi"
	apperrors "github.com/fitforge/fitforge-web/pkg/errors"
	"github.com/fitforge/fitforge-web/pkg/httpclient"
	"github.com/fitforge/fitforge-web/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	Version        = "1.0.0"
	defaultAPIURL  = "http://localhost:8000"
	defaultTimeout = 30 * time.Second
)

var (
	// ErrNotLoggedIn is returned by commands that need a session
	ErrNotLoggedIn = errors.New("not logged in, run `fitforge login` first")

	// ErrSessionExpired is returned after the API rejected the stored token
	ErrSessionExpired = errors.New("your session has expired, run `fitforge login` again")
)

// app is what every command works with once flags are resolved
type app struct {
	out   io.Writer
	api   *courseapi.Client
	store *session.FileStore

	auth    *services.AuthService
	courses *services.CourseService
	reviews *services.ReviewService
	admin   *services.AdminInstructorsService
}

// NewRootCommand builds the fitforge command tree. Command output goes to out,
// logs to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	v := viper.New()
	v.SetDefault("api_url", defaultAPIURL)
	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("log_level", "warn")
	_ = v.BindEnv("api_url", "FITFORGE_API_URL", "API_BASE_URL")
	_ = v.BindEnv("session_file", "FITFORGE_SESSION_FILE")
	_ = v.BindEnv("legacy_admin_token", "FITFORGE_LEGACY_ADMIN_TOKEN")

	a := &app{out: out}

	cmd := &cobra.Command{
		Use:           "fitforge",
		Short:         "Browse, buy and review FitForge courses from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Initialize(logger.Config{
				Level:       v.GetString("log_level"),
				Environment: "development",
				Output:      errOut,
			}); err != nil {
				return err
			}
			return a.setup(v)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("api-url", defaultAPIURL, "Course API base URL (env FITFORGE_API_URL)")
	flags.String("session-file", "", "Session file (default ~/.config/fitforge/session.yaml)")
	flags.Duration("timeout", defaultTimeout, "Course API request timeout")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	for key, flag := range map[string]string{
		"api_url":      "api-url",
		"session_file": "session-file",
		"timeout":      "timeout",
		"log_level":    "log-level",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	cmd.AddCommand(
		a.loginCmd(),
		a.signupCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.coursesCmd(),
		a.courseCmd(),
		a.myCoursesCmd(),
		a.buyCmd(),
		a.reviewCmd(),
		a.instructorsCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(a.out, "fitforge version %s\n", Version)
			},
		},
	)

	return cmd
}

func (a *app) setup(v *viper.Viper) error {
	path := v.GetString("session_file")
	if path == "" {
		var err error
		if path, err = session.DefaultPath(); err != nil {
			return fmt.Errorf("failed to locate session file: %w", err)
		}
	}
	a.store = session.NewFileStore(path, session.Decoder{LegacyAdminToken: v.GetString("legacy_admin_token")})

	baseURL := strings.TrimRight(v.GetString("api_url"), "/")
	a.api = courseapi.New(baseURL, httpclient.NewStandardClient(v.GetDuration("timeout")))

	a.auth = services.NewAuthService(a.api, v.GetString("legacy_admin_token"))
	a.courses = services.NewCourseService(a.api)
	a.reviews = services.NewReviewService(a.api)
	a.admin = services.NewAdminInstructorsService(a.api)

	logger.Debug("CLI configured", zap.String("api_url", baseURL), zap.String("session_file", path))
	return nil
}

// session returns the stored session or ErrNotLoggedIn
func (a *app) session() (session.Session, error) {
	sess, err := a.store.Get(nil)
	switch {
	case err == nil:
		return sess, nil
	case errors.Is(err, session.ErrNoSession):
		return session.Session{}, ErrNotLoggedIn
	case errors.Is(err, session.ErrMalformedToken):
		_ = a.store.Clear(nil, nil) //nolint:errcheck // reported below
		return session.Session{}, fmt.Errorf("%w (the stored session was unreadable and has been removed)", ErrNotLoggedIn)
	default:
		return session.Session{}, err
	}
}

// fail turns an error into the message shown to the user. A 401 from the API
// means the stored token was rejected, so the session is dropped.
func (a *app) fail(err error, fallback string) error {
	if courseapi.IsUnauthorized(err) {
		if clearErr := a.store.Clear(nil, nil); clearErr != nil {
			logger.Warn("Failed to clear expired session", zap.Error(clearErr))
		}
		return ErrSessionExpired
	}
	return message(err, fallback)
}

// message prefers our own validation and access messages, then the API's
// detail, then fallback
func message(err error, fallback string) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}
	if msg, ok := apperrors.UserMessage(err); ok {
		return errors.New(msg)
	}
	var apiErr *courseapi.APIError
	if errors.As(err, &apiErr) {
		return errors.New(apiErr.Detail)
	}
	if errors.Is(err, courseapi.ErrUnexpectedResponse) {
		return errors.New(courseapi.Message(err, fallback))
	}
	return fmt.Errorf("%s: %w", fallback, err)
}
