package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Spin outcomes
const (
	OutcomeAwarded       = "awarded"
	OutcomeAlreadyPlayed = "already_played"
	OutcomeFallback      = "fallback"
	OutcomeError         = "error"
)

var (
	spinTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spin_requests_total",
			Help: "Total spin requests by outcome",
		},
		[]string{"outcome"},
	)

	spinDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spin_duration_ms",
			Help:    "Spin processing duration in milliseconds",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		},
		[]string{"outcome"},
	)

	prizeAwards = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prize_awards_total",
			Help: "Awards applied to the catalog by prize id",
		},
		[]string{"prize"},
	)

	spinRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spin_retries_total",
		Help: "Draws repeated because prize counters changed between read and write",
	})

	mirrorFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mirror_publish_failures_total",
			Help: "Failed best-effort writes to the statistics mirror",
		},
		[]string{"op"},
	)

	mirrorDrift = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mirror_drift_prizes",
		Help: "Prizes whose mirrored counters differ from the primary store at the last audit",
	})

	httpReqTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	httpReqDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_ms",
			Help:    "HTTP request duration in ms",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		},
		[]string{"path", "method"},
	)
)

// RecordSpin records one spin request
func RecordSpin(outcome string, started time.Time) {
	spinTotal.WithLabelValues(outcome).Inc()
	spinDuration.WithLabelValues(outcome).Observe(float64(time.Since(started).Milliseconds()))
}

// RecordAward counts an award applied to prizeID
func RecordAward(prizeID string) {
	prizeAwards.WithLabelValues(prizeID).Inc()
}

// RecordRetry counts a stale-counter retry
func RecordRetry() {
	spinRetries.Inc()
}

// RecordMirrorFailure counts a failed mirror operation
func RecordMirrorFailure(op string) {
	mirrorFailures.WithLabelValues(op).Inc()
}

// SetMirrorDrift sets the number of drifted prizes found by the last audit
func SetMirrorDrift(n int) {
	mirrorDrift.Set(float64(n))
}

// RecordHTTP records one served HTTP request
func RecordHTTP(path, method string, status int, started time.Time) {
	if path == "" {
		path = "unmatched"
	}
	httpReqTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	httpReqDuration.WithLabelValues(path, method).Observe(float64(time.Since(started).Milliseconds()))
}
