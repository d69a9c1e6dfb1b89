package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/systmms/opsync/internal/logging"
)

var (
	providerCallsTotal *prometheus.CounterVec
	cacheHitsTotal     prometheus.Counter
	targetsTotal       *prometheus.CounterVec
	providerCallTime   *prometheus.HistogramVec

	// Registration guard
	metricsOnce       sync.Once
	metricsRegistered bool
)

// InitMetrics registers all Prometheus metrics. Safe to call more than
// once; only the first call registers. Recording before registration is
// a no-op, so library code can record unconditionally.
func InitMetrics() {
	metricsOnce.Do(func() {
		providerCallsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsync_provider_calls_total",
				Help: "Total number of provider invocations, by outcome",
			},
			[]string{"provider", "outcome"},
		)

		cacheHitsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "opsync_cache_hits_total",
				Help: "Total number of lookups served from the run cache",
			},
		)

		targetsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsync_targets_total",
				Help: "Total number of processed targets, by type and outcome",
			},
			[]string{"type", "outcome"},
		)

		providerCallTime = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "opsync_provider_call_duration_seconds",
				Help:    "Duration of provider invocations in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"provider"},
		)

		metricsRegistered = true
	})
}

// RecordProviderCall records one provider invocation and its duration.
// Outcome is one of "success", "not_found", "error".
func RecordProviderCall(provider, outcome string, durationSeconds float64) {
	if !metricsRegistered {
		return
	}

	if providerCallsTotal != nil {
		providerCallsTotal.WithLabelValues(provider, outcome).Inc()
	}

	if providerCallTime != nil {
		providerCallTime.WithLabelValues(provider).Observe(durationSeconds)
	}
}

// RecordCacheHit records a lookup served without a provider call.
func RecordCacheHit() {
	if !metricsRegistered || cacheHitsTotal == nil {
		return
	}
	cacheHitsTotal.Inc()
}

// RecordTarget records one target's outcome. Outcome is one of "success",
// "failed", "skipped".
func RecordTarget(targetType, outcome string) {
	if !metricsRegistered || targetsTotal == nil {
		return
	}
	targetsTotal.WithLabelValues(targetType, outcome).Inc()
}

// Dump logs every opsync metric family through the debug channel. Called at
// the end of a run when --debug is on.
func Dump(logger *logging.Logger) {
	if !metricsRegistered || logger == nil {
		return
	}

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		logger.Debug("metrics gather failed: %v", err)
		return
	}

	for _, fam := range families {
		if !strings.HasPrefix(fam.GetName(), "opsync_") {
			continue
		}
		for _, m := range fam.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			label := ""
			if len(labels) > 0 {
				label = "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				logger.Debug("%s%s %v", fam.GetName(), label, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				logger.Debug("%s%s count=%d sum=%v", fam.GetName(), label,
					m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum())
			}
		}
	}
}

// GetProviderCallsTotal returns the provider call counter for testing.
func GetProviderCallsTotal() *prometheus.CounterVec {
	return providerCallsTotal
}

// GetCacheHitsTotal returns the cache hit counter for testing.
func GetCacheHitsTotal() prometheus.Counter {
	return cacheHitsTotal
}

// GetTargetsTotal returns the target outcome counter for testing.
func GetTargetsTotal() *prometheus.CounterVec {
	return targetsTotal
}

// IsMetricsRegistered returns whether metrics have been initialized.
func IsMetricsRegistered() bool {
	return metricsRegistered
}
