package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records cart reconciliation outcomes.
type SyncMetrics struct {
	duration  *prometheus.HistogramVec
	success   *prometheus.CounterVec
	failure   *prometheus.CounterVec
	conflicts prometheus.Counter
	trimmed   *prometheus.CounterVec
	retries   prometheus.Counter
}

// NewSyncMetrics registers the cart sync metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_sync_duration_seconds",
		Help:    "Duration of cart sync operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"strategy"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_success",
		Help: "Successfully committed cart syncs.",
	}, []string{"strategy"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_failure",
		Help: "Failed cart syncs by error code.",
	}, []string{"strategy", "code"})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_sync_quantity_conflicts",
		Help: "Quantity conflicts resolved during item-level merges.",
	})
	trimmed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_trimmed_items",
		Help: "Items dropped during catalog validation, by reason.",
	}, []string{"reason"})
	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_sync_commit_retries",
		Help: "Optimistic write retries caused by version conflicts.",
	})
	reg.MustRegister(duration, success, failure, conflicts, trimmed, retries)
	return &SyncMetrics{
		duration:  duration,
		success:   success,
		failure:   failure,
		conflicts: conflicts,
		trimmed:   trimmed,
		retries:   retries,
	}
}

// ObserveDuration records the duration for the given strategy.
func (s *SyncMetrics) ObserveDuration(strategy string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(strategy)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the strategy.
func (s *SyncMetrics) IncSuccess(strategy string) {
	if s == nil || s.success == nil {
		return
	}
	s.success.WithLabelValues(normalizeLabel(strategy)).Inc()
}

// IncFailure increments the failure counter for the strategy and error code.
func (s *SyncMetrics) IncFailure(strategy, code string) {
	if s == nil || s.failure == nil {
		return
	}
	s.failure.WithLabelValues(normalizeLabel(strategy), normalizeLabel(code)).Inc()
}

// AddConflicts counts resolved quantity conflicts.
func (s *SyncMetrics) AddConflicts(n int) {
	if s == nil || s.conflicts == nil || n <= 0 {
		return
	}
	s.conflicts.Add(float64(n))
}

// IncTrimmed counts one dropped item with its reason.
func (s *SyncMetrics) IncTrimmed(reason string) {
	if s == nil || s.trimmed == nil {
		return
	}
	s.trimmed.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncRetry counts one optimistic write retry.
func (s *SyncMetrics) IncRetry() {
	if s == nil || s.retries == nil {
		return
	}
	s.retries.Inc()
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
