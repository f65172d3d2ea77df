package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counter
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "salepoint_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Lifecycle operation counter
	LifecycleOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salepoint_lifecycle_operations_total",
			Help: "Total number of lifecycle operations by type and outcome",
		},
		[]string{"operation", "outcome"}, // operation: "renew_license", "suspend_business", ...; outcome: "ok", "failed"
	)

	// Business operation counter
	BusinessOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salepoint_business_operations_total",
			Help: "Total number of business management operations",
		},
		[]string{"operation"},
	)

	// Sale counter
	SaleCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salepoint_sales_total",
			Help: "Total number of sales recorded by payment method",
		},
		[]string{"payment_method"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salepoint_auth_errors_total",
			Help: "Total number of authentication and authorization errors",
		},
		[]string{"type"}, // "invalid_credentials", "business_suspended", "account_disabled", "invalid_token", "forbidden"
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salepoint_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "salepoint_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "salepoint_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete", "transaction"
	)
)

// Gauge metrics
var (
	// Active businesses
	ActiveBusinessesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "salepoint_active_businesses",
			Help: "Number of businesses currently in ACTIVE status",
		},
	)

	// Expiring licenses
	ExpiringLicensesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "salepoint_expiring_licenses",
			Help: "Number of licenses expiring within 30 days",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "salepoint_info",
			Help: "Information about the salepoint service",
		},
		[]string{"version"},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(LifecycleOperationCounter)
	prometheus.MustRegister(BusinessOperationCounter)
	prometheus.MustRegister(SaleCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(HTTPRequestCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	// Register gauges
	prometheus.MustRegister(ActiveBusinessesGauge)
	prometheus.MustRegister(ExpiringLicensesGauge)
	prometheus.MustRegister(InfoGauge)

	// Set initial service info
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordLifecycleOperation records a lifecycle action and its outcome
func RecordLifecycleOperation(operation string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	LifecycleOperationCounter.With(prometheus.Labels{
		"operation": operation,
		"outcome":   outcome,
	}).Inc()
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Execute the request handler
			err := next(c)

			// Record request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}
