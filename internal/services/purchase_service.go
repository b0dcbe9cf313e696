package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/fitforge/fitforge-web/config"
	"github.com/fitforge/fitforge-web/internal/cache"
	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/fitforge/fitforge-web/internal/purchase"
	"github.com/fitforge/fitforge-web/internal/session"
	"github.com/fitforge/fitforge-web/internal/validation"
	apperrors "github.com/fitforge/fitforge-web/pkg/errors"
	"github.com/fitforge/fitforge-web/pkg/httpclient"
	"github.com/fitforge/fitforge-web/pkg/logger"
	"github.com/fitforge/fitforge-web/pkg/metrics"
	"github.com/fitforge/fitforge-web/pkg/trigger"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// PurchaseCompletedEvent is posted to the completion trigger URL
type PurchaseCompletedEvent struct {
	CourseID    string  `json:"course_id"`
	CourseTitle string  `json:"course_title"`
	Price       float64 `json:"price"`
	Username    string  `json:"username"`
	PurchasedAt string  `json:"purchased_at"`
}

// PurchaseService runs payment simulation, purchase and account refresh as
// one server-side call. Submissions are idempotent per key: a repeated key
// gets the stored outcome, and concurrent submissions of the same key share
// one run.
type PurchaseService struct {
	api        CourseAPI
	outcomes   *cache.PurchaseCache
	inflight   singleflight.Group
	validate   *validator.Validate
	delay      time.Duration
	triggerURL string
	httpClient httpclient.Client
}

// NewPurchaseService creates a new purchase service instance
func NewPurchaseService(api CourseAPI, outcomes *cache.PurchaseCache, cfg *config.Config, httpClient httpclient.Client) *PurchaseService {
	return &PurchaseService{
		api:        api,
		outcomes:   outcomes,
		validate:   validation.New(),
		delay:      time.Duration(cfg.Purchase.SimulationDelayMS) * time.Millisecond,
		triggerURL: cfg.Purchase.CompletedTriggerURL,
		httpClient: httpClient,
	}
}

// Purchase buys courseID for the session. Without an idempotency key every
// call is a fresh attempt.
func (s *PurchaseService) Purchase(ctx context.Context, sess session.Session, courseID string, form *models.PurchaseForm) (*models.PurchaseOutcome, error) {
	start := time.Now()

	key := form.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}
	cacheKey := outcomeKey(sess.Token, courseID, key)

	if outcome, ok := s.outcomes.Get(cacheKey); ok {
		metrics.PurchaseAttempts.WithLabelValues("replayed").Inc()
		logger.Info("Purchase replayed from idempotency key", zap.String("course_id", courseID))
		return outcome, nil
	}

	// The shared attempt outlives any one submitter, so a collapsed
	// submission is not failed by the first caller going away.
	ch := s.inflight.DoChan(cacheKey, func() (any, error) {
		if outcome, ok := s.outcomes.Get(cacheKey); ok {
			return outcome, nil
		}
		return s.run(context.WithoutCancel(ctx), sess, courseID, form.PaymentDetails, key)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Shared {
		logger.Info("Concurrent purchase submission collapsed", zap.String("course_id", courseID))
	}

	v, err := res.Val, res.Err
	metrics.PurchaseDuration.Observe(metrics.MeasureDuration(start))
	if err != nil {
		metrics.PurchaseAttempts.WithLabelValues(purchaseFailureLabel(err)).Inc()
		return nil, err
	}

	metrics.PurchaseAttempts.WithLabelValues("success").Inc()
	return v.(*models.PurchaseOutcome), nil
}

func (s *PurchaseService) run(ctx context.Context, sess session.Session, courseID string, details models.PaymentDetails, key string) (*models.PurchaseOutcome, error) {
	flow := purchase.NewFlow(s.api, courseID, nil, purchase.Options{
		Delay:    s.delay,
		Validate: s.validate,
		OnTransition: func(from, to purchase.State) {
			logger.Debug("Purchase state changed",
				zap.String("course_id", courseID),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
	})

	if err := flow.Begin(sess); err != nil {
		return nil, err
	}

	outcome, err := flow.SubmitPayment(ctx, details, key)
	if err != nil {
		logger.Info("Purchase failed",
			zap.String("course_id", courseID),
			zap.String("username", sess.DisplayName),
			zap.Error(err))
		return nil, err
	}

	s.outcomes.Put(outcomeKey(sess.Token, courseID, key), outcome)

	logger.Info("Course purchased",
		zap.String("course_id", courseID),
		zap.String("username", sess.DisplayName),
		zap.Float64("price", outcome.Receipt.Price))

	trigger.CallAsync(s.triggerURL, "purchase.completed", PurchaseCompletedEvent{
		CourseID:    courseID,
		CourseTitle: outcome.Receipt.CourseTitle,
		Price:       outcome.Receipt.Price,
		Username:    sess.DisplayName,
		PurchasedAt: outcome.Receipt.PurchaseDate,
	}, s.httpClient)

	return outcome, nil
}

// outcomeKey scopes an idempotency key to the session and course without
// keeping the bearer token in memory as a map key
func outcomeKey(token, courseID, key string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8]) + ":" + courseID + ":" + key
}

func purchaseFailureLabel(err error) string {
	switch {
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		return "unauthorized"
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return "invalid"
	case apperrors.Is(err, context.Canceled), apperrors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "failed"
	}
}
