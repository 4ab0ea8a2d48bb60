package prometheus

import (
	"strconv"
	"time"

	"tipmap-service/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Submission metrics
	ReportSubmissionCounter  *prometheus.CounterVec
	SubmissionOutcomeCounter *prometheus.CounterVec
	ValidationFailureCounter prometheus.Counter
	BusinessCreatedCounter   prometheus.Counter
	BusinessReusedCounter    prometheus.Counter

	// Read-side metrics
	ConsensusComputeHistogram prometheus.Histogram

	// Collaborator metrics
	GeocodeRequestCounter *prometheus.CounterVec

	// Database operation metrics
	DBOperationHistogram *prometheus.HistogramVec

	// Request metrics
	RequestDurationHistogram *prometheus.HistogramVec
	APIRequestCounter        *prometheus.CounterVec
	APIErrorCounter          *prometheus.CounterVec

	// Namespace prefix for metrics
	namespace string
)

// InitMetrics initializes all Prometheus metrics
func InitMetrics(cfg *config.Config) {
	namespace = cfg.Metrics.Prefix

	// Submission metrics
	ReportSubmissionCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_submissions_total",
			Help:      "Total number of committed report submissions",
		},
		[]string{"tip_practice"},
	)

	SubmissionOutcomeCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submission_outcomes_total",
			Help:      "Total number of submission attempts by final pipeline state",
		},
		[]string{"state"},
	)

	ValidationFailureCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submission_validation_failures_total",
		Help:      "Total number of submissions rejected by validation",
	})

	BusinessCreatedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "businesses_created_total",
		Help:      "Total number of new canonical business records created",
	})

	BusinessReusedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "businesses_reused_total",
		Help:      "Total number of submissions that attached to an existing business",
	})

	// Read-side metrics
	ConsensusComputeHistogram = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "consensus_compute_duration_seconds",
		Help:      "Duration of per-business consensus aggregation in seconds",
		Buckets:   prometheus.DefBuckets,
	})

	// Collaborator metrics
	GeocodeRequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Total number of place-search requests by result",
		},
		[]string{"result"},
	)

	// Database operation metrics
	DBOperationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Duration of database operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Request metrics
	RequestDurationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	APIRequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "path"},
	)

	APIErrorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Total number of API errors",
		},
		[]string{"method", "path", "status"},
	)
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Track API request count
			APIRequestCounter.With(prometheus.Labels{
				"method": c.Request().Method,
				"path":   c.Path(),
			}).Inc()

			// Process the request
			err := next(c)

			// Track request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			RequestDurationHistogram.With(prometheus.Labels{
				"method": c.Request().Method,
				"path":   c.Path(),
				"status": status,
			}).Observe(duration)

			// Track errors
			if c.Response().Status >= 400 {
				APIErrorCounter.With(prometheus.Labels{
					"method": c.Request().Method,
					"path":   c.Path(),
					"status": status,
				}).Inc()
			}

			return err
		}
	}
}

// HandlerFunc returns a HTTP handler for metrics endpoint
func HandlerFunc() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

// TrackDBOperation returns a function that tracks database operation duration
func TrackDBOperation(operation string) func(time.Time) {
	return func(startTime time.Time) {
		if DBOperationHistogram == nil {
			return
		}
		duration := time.Since(startTime).Seconds()
		DBOperationHistogram.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// TrackConsensusCompute returns a function that tracks consensus aggregation duration
func TrackConsensusCompute() func(time.Time) {
	return func(startTime time.Time) {
		if ConsensusComputeHistogram == nil {
			return
		}
		ConsensusComputeHistogram.Observe(time.Since(startTime).Seconds())
	}
}

// RecordSubmissionOutcome increments the outcome counter for a pipeline state
func RecordSubmissionOutcome(state string) {
	if SubmissionOutcomeCounter == nil {
		return
	}
	SubmissionOutcomeCounter.With(prometheus.Labels{"state": state}).Inc()
}

// RecordGeocodeRequest increments the place-search counter
func RecordGeocodeRequest(result string) {
	if GeocodeRequestCounter == nil {
		return
	}
	GeocodeRequestCounter.With(prometheus.Labels{"result": result}).Inc()
}
