package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Shared HTTP metrics.
var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Domain metrics for the vault's security surface.
var (
	loginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_login_attempts_total",
			Help: "Password login attempts by outcome.",
		},
		[]string{"outcome"},
	)

	otpVerifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_otp_verifications_total",
			Help: "OTP verification attempts by outcome.",
		},
		[]string{"outcome"},
	)

	uploadsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_uploads_rejected_total",
			Help: "Document uploads rejected by the content verifier.",
		},
		[]string{"reason"},
	)

	auditDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vault_audit_events_dropped_total",
		Help: "Audit events that failed to persist and were dropped.",
	})
)

// Init registers all metrics in the default registry.
func Init() {
	prometheus.MustRegister(
		httpInFlight, httpRequestsTotal, httpRequestDuration,
		loginAttempts, otpVerifications, uploadsRejected, auditDropped,
	)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// CountLogin records a password login attempt ("ok" or "denied").
func CountLogin(outcome string) { loginAttempts.WithLabelValues(outcome).Inc() }

// CountOTPVerification records an OTP verification attempt ("ok" or "denied").
func CountOTPVerification(outcome string) { otpVerifications.WithLabelValues(outcome).Inc() }

// CountUploadRejected records a content-verifier rejection by reason.
func CountUploadRejected(reason string) { uploadsRejected.WithLabelValues(reason).Inc() }

// CountAuditDropped records an audit event that could not be persisted.
func CountAuditDropped() { auditDropped.Inc() }

// Instrument wraps a handler with RPS/latency/in-flight measurements.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpInFlight.Dec()
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// CanonicalPath collapses path parameters so metric cardinality stays bounded.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(parts) >= 2 && parts[0] == "v1" && parts[1] == "documents":
		switch {
		case len(parts) == 3 && parts[2] != "shared":
			return "/v1/documents/:id"
		case len(parts) == 4 && parts[3] == "download":
			return "/v1/documents/:id/download"
		case len(parts) == 4 && parts[3] == "shares":
			return "/v1/documents/:id/shares"
		case len(parts) == 5 && parts[3] == "shares":
			return "/v1/documents/:id/shares/:shareId"
		case len(parts) == 6 && parts[3] == "shares" && parts[5] == "permission":
			return "/v1/documents/:id/shares/:shareId/permission"
		}
	case len(parts) == 6 && parts[0] == "v1" && parts[1] == "audit" && parts[2] == "logs" && parts[3] == "entity":
		return "/v1/audit/logs/entity/:type/:id"
	case len(parts) == 4 && parts[0] == "v1" && parts[1] == "gdpr" && parts[2] == "consents":
		return "/v1/gdpr/consents/:type"
	}
	return path
}
