package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ConversionMetrics holds the collectors of the rate resolution path.
// A nil *ConversionMetrics is valid and records nothing.
type ConversionMetrics struct {
	ConversionsTotal      *prometheus.CounterVec
	CacheLookupsTotal     *prometheus.CounterVec
	ProviderFetchesTotal  *prometheus.CounterVec
	ProviderFetchDuration *prometheus.HistogramVec
	BreakerState          prometheus.Gauge
}

// NewConversionMetrics registers the collectors on registerer
func NewConversionMetrics(registerer prometheus.Registerer) *ConversionMetrics {
	factory := promauto.With(registerer)

	return &ConversionMetrics{
		ConversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "currency_conversions_total",
				Help: "Currency conversions by target currency and outcome",
			},
			[]string{"currency", "outcome"},
		),

		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_cache_lookups_total",
				Help: "Rate cache lookups split into hits and misses",
			},
			[]string{"result"},
		),

		ProviderFetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_provider_fetches_total",
				Help: "Calls to the external rate provider by result",
			},
			[]string{"result"},
		),

		ProviderFetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rate_provider_fetch_duration_seconds",
				Help:    "Latency of calls to the external rate provider",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms, 20ms, 40ms...
			},
			[]string{"result"},
		),

		BreakerState: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rate_provider_breaker_state",
				Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open",
			},
		),
	}
}

// ObserveConversion counts one finished conversion
func (conversionMetrics *ConversionMetrics) ObserveConversion(currency, outcome string) {
	if conversionMetrics == nil {
		return
	}
	conversionMetrics.ConversionsTotal.WithLabelValues(currency, outcome).Inc()
}

// ObserveCacheLookup counts a cache hit or miss
func (conversionMetrics *ConversionMetrics) ObserveCacheLookup(hit bool) {
	if conversionMetrics == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	conversionMetrics.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveProviderFetch records the result and latency of one provider call
func (conversionMetrics *ConversionMetrics) ObserveProviderFetch(result string, elapsed time.Duration) {
	if conversionMetrics == nil {
		return
	}
	conversionMetrics.ProviderFetchesTotal.WithLabelValues(result).Inc()
	conversionMetrics.ProviderFetchDuration.WithLabelValues(result).Observe(elapsed.Seconds())
}

// SetBreakerState publishes the numeric breaker state
func (conversionMetrics *ConversionMetrics) SetBreakerState(state int) {
	if conversionMetrics == nil {
		return
	}
	conversionMetrics.BreakerState.Set(float64(state))
}
