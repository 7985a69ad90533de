package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Invocations          *prometheus.CounterVec
	InvocationDuration   prometheus.Histogram
	BlockedURLs          prometheus.Counter
	TokenRefreshes       prometheus.Counter
	TokenRefreshFailures prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Invocations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "conduit_invocations_total",
			Help: "Total number of outbound API invocations by upstream status class",
		}, []string{"status_class"}),
		InvocationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "conduit_invocation_duration_seconds",
			Help:    "End-to-end duration of outbound API invocations",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		BlockedURLs: promauto.NewCounter(prometheus.CounterOpts{
			Name: "conduit_blocked_urls_total",
			Help: "Total number of outbound URLs rejected by the SSRF gate",
		}),
		TokenRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "conduit_oauth2_token_refreshes_total",
			Help: "Total number of OAuth2 client-credentials token requests",
		}),
		TokenRefreshFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "conduit_oauth2_token_refresh_failures_total",
			Help: "Total number of failed OAuth2 token requests",
		}),
	}
}

func (m *Metrics) ObserveInvocation(start time.Time, statusCode int) {
	if m == nil {
		return
	}
	m.InvocationDuration.Observe(time.Since(start).Seconds())
	m.Invocations.WithLabelValues(strconv.Itoa(statusCode/100) + "xx").Inc()
}

func (m *Metrics) IncrementBlockedURL() {
	if m == nil {
		return
	}
	m.BlockedURLs.Inc()
}

func (m *Metrics) IncrementTokenRefresh() {
	if m == nil {
		return
	}
	m.TokenRefreshes.Inc()
}

func (m *Metrics) IncrementTokenRefreshFailure() {
	if m == nil {
		return
	}
	m.TokenRefreshFailures.Inc()
}
