package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Buckets span fast page renders up to slow video uploads
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34, 55}

	// HTTP Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Course API client metrics
	CourseAPIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "course_api_client_duration_seconds",
			Help:    "Course API call duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	CourseAPIRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "course_api_client_requests_total",
			Help: "Total number of course API calls",
		},
		[]string{"operation", "status"},
	)

	CourseAPIDeduplicated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "course_api_client_deduplicated_total",
			Help: "Read calls that joined an identical in-flight request",
		},
		[]string{"operation"},
	)

	// Session and guard metrics
	SessionEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitforge_session_events_total",
			Help: "Session lifecycle events (set, cleared, malformed)",
		},
		[]string{"event", "backend"},
	)

	GuardRedirects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitforge_route_guard_redirects_total",
			Help: "Navigations redirected by the route guard",
		},
		[]string{"reason"},
	)

	// Business Metrics
	PurchaseAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitforge_purchase_attempts_total",
			Help: "Course purchase attempts by outcome",
		},
		[]string{"outcome"},
	)

	PurchaseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fitforge_purchase_duration_seconds",
			Help:    "Duration of the full purchase sequence",
			Buckets: CustomAPIBuckets,
		},
	)

	ReviewSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitforge_review_submissions_total",
			Help: "Review submissions by status",
		},
		[]string{"status"},
	)

	VideoUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitforge_video_uploads_total",
			Help: "Video uploads by backend and status",
		},
		[]string{"backend", "status"},
	)

	CourseCreations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitforge_course_creations_total",
			Help: "Course creation attempts by status",
		},
		[]string{"status"},
	)

	InstructorVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitforge_instructor_verifications_total",
			Help: "Instructor verification changes by status",
		},
		[]string{"status"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name"},
	)

	// Infrastructure Metrics
	GoRoutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			GoRoutines.Set(float64(runtime.NumGoroutine()))
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
