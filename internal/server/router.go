package server

import (
	"context"
	"time"

	"github.com/fitforge/fitforge-web/config"
	"github.com/fitforge/fitforge-web/internal/handlers"
	"github.com/fitforge/fitforge-web/internal/middleware"
	"github.com/fitforge/fitforge-web/internal/session"
	"github.com/fitforge/fitforge-web/internal/web"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"
)

const (
	defaultBodyLimit = 1 << 20
	logsBodyLimit    = 256 << 10
)

// NewRouter builds the web server. ctx bounds the background work of the rate
// limiters.
func NewRouter(ctx context.Context, cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}

	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Store)
	courseHandler := handlers.NewCourseHandler(deps.Courses, deps.Store)
	purchaseHandler := handlers.NewPurchaseHandler(deps.Purchases, deps.Store)
	reviewHandler := handlers.NewReviewHandler(deps.Reviews, deps.Courses, deps.Store)
	instructorHandler := handlers.NewInstructorHandler(deps.Instructors, deps.Store)
	adminHandler := handlers.NewAdminHandler(deps.Admin, deps.Store)
	healthHandler := handlers.NewHealthHandler(deps.API.Ping)
	sessionHandler := handlers.NewSessionHandler(deps.Store)
	logsHandler := handlers.NewLogsHandler(cfg.Logging.Dir)

	router := gin.New()
	router.HTMLRender = renderer

	uploadLimit := deps.Instructors.MaxUploadBytes() + defaultBodyLimit
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.BodySizeLimitMiddleware(defaultBodyLimit, map[string]int64{
		"/instructor/upload": uploadLimit,
		"/api/v1/logs":       logsBodyLimit,
	}))
	router.Use(middleware.LoadSession(deps.Store))

	router.StaticFS("/static", web.Static())
	router.NoRoute(handlers.NotFound)

	// Credential forms get a tight budget per IP
	authRateLimiter := middleware.NewRateLimiter(ctx, rate.Every(6*time.Second), 10)
	generalRateLimiter := middleware.NewRateLimiter(ctx, 100, 200)

	registerAPIRoutes(router, cfg, generalRateLimiter, healthHandler, sessionHandler, logsHandler)
	registerPublicPages(router, authRateLimiter, authHandler, courseHandler)
	registerSessionPages(router, deps.Store, courseHandler, purchaseHandler, reviewHandler, instructorHandler, adminHandler)

	return router, nil
}

// registerAPIRoutes registers the machine endpoints under /api
func registerAPIRoutes(
	router *gin.Engine,
	cfg *config.Config,
	generalRateLimiter *middleware.RateLimiter,
	healthHandler *handlers.HealthHandler,
	sessionHandler *handlers.SessionHandler,
	logsHandler *handlers.LogsHandler,
) {
	allowedOrigins := append([]string{}, cfg.Server.AllowedOrigins...)
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	api := router.Group("/api")
	if len(allowedOrigins) > 0 {
		api.Use(cors.New(cors.Config{
			AllowOrigins:     allowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.MetricsTokenHeader, "traceparent", "tracestate"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true, // /api/v1/session reads the session cookie
			MaxAge:           12 * time.Hour,
		}))
	}

	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", middleware.TokenAuthMiddleware(cfg.Server.MetricsToken), gin.WrapH(promhttp.Handler()))

	v1 := api.Group("/v1")
	v1.GET("/session", generalRateLimiter.Middleware(), sessionHandler.GetSession)
	v1.POST("/logs", generalRateLimiter.Middleware(), logsHandler.ReceiveFrontendLogs)
}

// registerPublicPages registers the pages anonymous visitors can reach
func registerPublicPages(
	router *gin.Engine,
	authRateLimiter *middleware.RateLimiter,
	authHandler *handlers.AuthHandler,
	courseHandler *handlers.CourseHandler,
) {
	router.GET("/", courseHandler.Home)
	router.GET("/login", authHandler.LoginPage)
	router.POST("/login", authRateLimiter.Middleware(), authHandler.Login)
	router.POST("/login/admin", authRateLimiter.Middleware(), authHandler.AdminLogin)
	router.GET("/signup", authHandler.SignupPage)
	router.POST("/signup", authRateLimiter.Middleware(), authHandler.Signup)
	router.POST("/logout", authHandler.Logout)
}

// registerSessionPages registers the pages behind the route guard
func registerSessionPages(
	router *gin.Engine,
	store session.Store,
	courseHandler *handlers.CourseHandler,
	purchaseHandler *handlers.PurchaseHandler,
	reviewHandler *handlers.ReviewHandler,
	instructorHandler *handlers.InstructorHandler,
	adminHandler *handlers.AdminHandler,
) {
	authed := router.Group("/", middleware.RequireSession(store))
	authed.GET("/courses", courseHandler.Catalogue)
	authed.GET("/courses/:id", courseHandler.Detail)
	authed.POST("/courses/:id/purchase", purchaseHandler.Purchase)
	authed.POST("/courses/:id/reviews", reviewHandler.SubmitReview)
	authed.GET("/my-courses", courseHandler.MyCourses)

	instructor := authed.Group("/", middleware.RequireRole(session.HintInstructor))
	instructor.GET("/create-course", instructorHandler.CreateCoursePage)
	instructor.POST("/create-course", instructorHandler.CreateCourse)
	instructor.GET("/instructor/upload", instructorHandler.UploadPage)
	instructor.POST("/instructor/upload", instructorHandler.Upload)
	instructor.GET("/instructor/courses", instructorHandler.MyCourses)

	admin := authed.Group("/", middleware.RequireRole(session.HintAdmin))
	admin.GET("/admin", adminHandler.Panel)
	admin.POST("/admin/instructors/:id/verify", adminHandler.VerifyInstructor)
}
