package server

import (
	"context"
	"fmt"
	"time"

	"github.com/fitforge/fitforge-web/config"
	"github.com/fitforge/fitforge-web/internal/cache"
	"github.com/fitforge/fitforge-web/internal/services"
	"github.com/fitforge/fitforge-web/internal/session"
	"github.com/fitforge/fitforge-web/pkg/courseapi"
	"github.com/fitforge/fitforge-web/pkg/httpclient"
	"github.com/fitforge/fitforge-web/pkg/jwt"
	"github.com/fitforge/fitforge-web/pkg/logger"
	"github.com/fitforge/fitforge-web/pkg/storage"
	"go.uber.org/zap"
)

// Pinger checks that the course API is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies is everything the router needs
type Dependencies struct {
	Store       session.Store
	API         Pinger
	Auth        services.AuthServiceInterface
	Courses     services.CourseServiceInterface
	Purchases   services.PurchaseServiceInterface
	Reviews     services.ReviewServiceInterface
	Instructors services.InstructorServiceInterface
	Admin       services.AdminInstructorsServiceInterface
}

// NewSessionStore builds the configured web session backend
func NewSessionStore(cfg *config.Config) (session.Store, error) {
	decoder := session.Decoder{LegacyAdminToken: cfg.Session.LegacyAdminToken}
	cookie := session.CookieOptions{
		Domain: cfg.Session.CookieDomain,
		Secure: cfg.Session.CookieSecure,
		TTL:    time.Duration(cfg.Session.TTLHours) * time.Hour,
	}

	switch cfg.Session.Backend {
	case "redis":
		client, err := session.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		logger.Info("Using Redis session store", zap.String("addr", cfg.Redis.Addr))
		return session.NewRedisStore(client, decoder, cookie), nil
	case "cookie", "":
		tokens := jwt.NewTokenManager(cfg.Session.Secret, cfg.Session.Issuer, cfg.Session.TTLHours)
		return session.NewCookieStore(tokens, decoder, cookie), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}

// NewUploader builds the configured video upload backend
func NewUploader(cfg *config.Config, api services.CourseAPI) (services.VideoUploader, error) {
	switch cfg.Upload.Backend {
	case "s3":
		store, err := storage.NewVideoStore(storage.Options{
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			BucketName:      cfg.Storage.BucketName,
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		return services.NewObjectStoreUploader(store), nil
	case "api", "":
		return services.NewAPIVideoUploader(api), nil
	default:
		return nil, fmt.Errorf("unknown upload backend %q", cfg.Upload.Backend)
	}
}

// BuildDependencies wires the services around one course API client
func BuildDependencies(cfg *config.Config, api *courseapi.Client, store session.Store, httpClient httpclient.Client) (Dependencies, error) {
	uploader, err := NewUploader(cfg, api)
	if err != nil {
		return Dependencies{}, err
	}

	return Dependencies{
		Store:       store,
		API:         api,
		Auth:        services.NewAuthService(api, cfg.Session.LegacyAdminToken),
		Courses:     services.NewCourseService(api),
		Purchases:   services.NewPurchaseService(api, cache.NewPurchaseCache(cfg.Purchase.IdempotencyTTLSeconds), cfg, httpClient),
		Reviews:     services.NewReviewService(api),
		Instructors: services.NewInstructorService(api, uploader, cfg.Upload.MaxUploadMB),
		Admin:       services.NewAdminInstructorsService(api),
	}, nil
}
