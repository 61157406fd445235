package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricPrefix = "alarmd_"

const (
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	webhookSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "webhook_sends_total",
			Help: "Total webhook calls to the bridge by result",
		},
		[]string{"result"},
	)
	webhookLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    metricPrefix + "webhook_latency_seconds",
			Help:    "Bridge round-trip latency for webhook calls",
			Buckets: prometheus.DefBuckets,
		},
	)
	zoneActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: metricPrefix + "zone_active",
			Help: "Current logical state per zone accessory (1 active, 0 inactive)",
		},
		[]string{"accessory"},
	)
	escalations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "security_escalations_total",
			Help: "Security escalation attempts by outcome",
		},
		[]string{"outcome"},
	)
)

// ObserveSend records one webhook call and its round-trip time.
func ObserveSend(result string, seconds float64) {
	webhookSends.WithLabelValues(result).Inc()
	webhookLatency.Observe(seconds)
}

// SetZoneActive records the last observed logical state of a zone.
func SetZoneActive(accessory string, active bool) {
	v := 0.0
	if active {
		v = 1.0
	}
	zoneActive.WithLabelValues(accessory).Set(v)
}

// IncEscalation counts one escalation attempt outcome.
func IncEscalation(outcome string) {
	escalations.WithLabelValues(outcome).Inc()
}
