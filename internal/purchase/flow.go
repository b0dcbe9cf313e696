package purchase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/fitforge/fitforge-web/internal/session"
	"github.com/fitforge/fitforge-web/internal/validation"
	apperrors "github.com/fitforge/fitforge-web/pkg/errors"
	"github.com/fitforge/fitforge-web/pkg/logger"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// State of a purchase
type State int

const (
	Idle State = iota
	AwaitingPayment
	Processing
	Purchased
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingPayment:
		return "awaiting_payment"
	case Processing:
		return "processing"
	case Purchased:
		return "purchased"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DefaultDelay simulates payment processing. No gateway is contacted.
const DefaultDelay = 1500 * time.Millisecond

// RefreshWarning is reported when the purchase went through but the account
// could not be reloaded afterwards
const RefreshWarning = "Course purchased, but your account could not be refreshed. Reload the page to see it."

var (
	// ErrInvalidTransition is returned when an operation does not fit the current state
	ErrInvalidTransition = errors.New("invalid purchase state transition")

	// ErrAuthorization is returned by Begin without a session
	ErrAuthorization = apperrors.UnauthorizedError("Please log in to purchase this course")
)

var transitions = map[State][]State{
	Idle:            {AwaitingPayment},
	AwaitingPayment: {Processing, Idle},
	Processing:      {Purchased, Failed},
	Failed:          {Idle},
}

// API is what the flow needs from the course API
type API interface {
	PurchaseCourse(ctx context.Context, token, courseID, idempotencyKey string) (*models.PurchaseResponse, error)
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// Options tune a Flow
type Options struct {
	// Delay is the simulated processing time; zero means none
	Delay time.Duration
	// Validate checks payment fields; nil uses validation.New()
	Validate *validator.Validate
	// OnTransition observes every state change
	OnTransition func(from, to State)
}

// Flow drives one purchase of one course.
// Idle → AwaitingPayment → Processing → Purchased | Failed → Idle
type Flow struct {
	api      API
	courseID string
	opts     Options

	mu      sync.Mutex
	state   State
	session session.Session
	user    *models.User
	lastErr error
}

// NewFlow starts in Idle. user is the cached account shown to the visitor
// and may be nil.
func NewFlow(api API, courseID string, user *models.User, opts Options) *Flow {
	if opts.Validate == nil {
		opts.Validate = validation.New()
	}
	return &Flow{api: api, courseID: courseID, user: user, opts: opts}
}

// State returns the current state
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// User returns the cached account. It only changes after a successful refresh.
func (f *Flow) User() *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user
}

// Err returns the error of the last failed attempt
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

func (f *Flow) transition(to State) error {
	from := f.state
	for _, allowed := range transitions[from] {
		if allowed == to {
			f.state = to
			if f.opts.OnTransition != nil {
				f.opts.OnTransition(from, to)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, to)
}

// Begin opens the payment form. Without a session the flow stays Idle.
func (f *Flow) Begin(sess session.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if sess.Anonymous() {
		f.lastErr = ErrAuthorization
		return ErrAuthorization
	}
	if err := f.transition(AwaitingPayment); err != nil {
		return err
	}
	f.session = sess
	return nil
}

// Cancel closes the payment form
func (f *Flow) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transition(Idle)
}

// SubmitPayment checks the card fields, simulates processing, purchases the
// course and reloads the account. Invalid fields leave the form open. A
// failed purchase returns the flow to Idle with the cached account untouched.
// A failed reload after a successful purchase is reported in the outcome's
// Warning, not as an error.
func (f *Flow) SubmitPayment(ctx context.Context, details models.PaymentDetails, idempotencyKey string) (*models.PurchaseOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != AwaitingPayment {
		return nil, fmt.Errorf("%w: submit payment in %s", ErrInvalidTransition, f.state)
	}
	if err := f.opts.Validate.Struct(details); err != nil {
		return nil, apperrors.InvalidInputError("payment", validation.Summary(err))
	}
	if err := f.transition(Processing); err != nil {
		return nil, err
	}

	if err := simulateProcessing(ctx, f.opts.Delay); err != nil {
		return nil, f.fail(err)
	}

	receipt, err := f.api.PurchaseCourse(ctx, f.session.Token, f.courseID, idempotencyKey)
	if err != nil {
		return nil, f.fail(err)
	}
	if err := f.transition(Purchased); err != nil {
		return nil, err
	}

	outcome := &models.PurchaseOutcome{CourseID: f.courseID, Receipt: *receipt}

	user, err := f.api.CurrentUser(ctx, f.session.Token)
	if err != nil {
		logger.Warn("Account refresh after purchase failed",
			zap.String("course_id", f.courseID),
			zap.Error(err))
		outcome.Warning = RefreshWarning
		return outcome, nil
	}

	f.user = user
	outcome.User = user
	return outcome, nil
}

// fail records err and walks Processing → Failed → Idle
func (f *Flow) fail(err error) error {
	f.lastErr = err
	if terr := f.transition(Failed); terr != nil {
		return terr
	}
	if terr := f.transition(Idle); terr != nil {
		return terr
	}
	return err
}

func simulateProcessing(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
