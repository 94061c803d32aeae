package monitoring

import (
	"time"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var Provider = wire.NewSet(NewMetrics)

// Metrics holds all Prometheus metrics for the dispatch layer.
type Metrics struct {
	EngineRequestsTotal   *prometheus.CounterVec
	EngineRequestDuration *prometheus.HistogramVec
	HealthProbesTotal     *prometheus.CounterVec
	SelectionsTotal       *prometheus.CounterVec
	SettlementsTotal      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		EngineRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_engine_requests_total",
			Help: "Outbound validation engine calls by operation and outcome",
		}, []string{"op", "outcome"}),
		EngineRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dispatch_engine_request_duration_seconds",
			Help:    "Outbound validation engine call latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		HealthProbesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_health_probes_total",
			Help: "Health monitor probe results",
		}, []string{"outcome"}),
		SelectionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_selections_total",
			Help: "Weighted server selections by target URL",
		}, []string{"server"}),
		SettlementsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_job_settlements_total",
			Help: "Terminal job settlements by side effect and outcome",
		}, []string{"effect", "outcome"}),
	}
}

func (m *Metrics) ObserveEngineRequest(op string, err error, d time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.EngineRequestsTotal.WithLabelValues(op, outcome).Inc()
	m.EngineRequestDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) IncHealthProbe(healthy bool) {
	outcome := "healthy"
	if !healthy {
		outcome = "unhealthy"
	}
	m.HealthProbesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncSelection(serverURL string) {
	m.SelectionsTotal.WithLabelValues(serverURL).Inc()
}

func (m *Metrics) IncSettlement(effect string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.SettlementsTotal.WithLabelValues(effect, outcome).Inc()
}
