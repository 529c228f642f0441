package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	RouteDecisions      *prometheus.CounterVec
	ActiveNegotiations  prometheus.Gauge
	ReservationAttempts *prometheus.CounterVec
	WSMessages          *prometheus.CounterVec
	TurnLatency         prometheus.Histogram

	turnWindow *turnWindow
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		RouteDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_decisions_total",
			Help:      "Intent routing decisions by route.",
		}, []string{"route"}),
		ActiveNegotiations: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_negotiations",
			Help:      "Number of suspended booking negotiations awaiting human input.",
		}),
		ReservationAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservation_attempts_total",
			Help:      "Completed-draft reservation attempts by outcome.",
		}, []string{"outcome"}),
		WSMessages: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket chat messages by direction and type.",
		}, []string{"direction", "type"}),
		TurnLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_latency_ms",
			Help:      "Latency of one assistant turn in milliseconds.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2000, 5000, 10000},
		}),
		turnWindow: newTurnWindow(256),
	}
}

func (m *Metrics) ObserveTurn(stage string, d time.Duration) {
	ms := float64(d.Milliseconds())
	if stage == StageTurnTotal {
		m.TurnLatency.Observe(ms)
	}
	m.turnWindow.Observe(stage, ms)
}

func (m *Metrics) TurnSnapshot() TurnSnapshot {
	return m.turnWindow.Snapshot()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
