package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ClientMetrics counts what the orchestration engine does. The registry is
// private so tests can create instances freely.
type ClientMetrics struct {
	registry *prometheus.Registry

	operationTotal    *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	busyRejections    prometheus.Counter
	playbackTotal     *prometheus.CounterVec
	historyRefresh    *prometheus.CounterVec
}

func NewClientMetrics(service string) *ClientMetrics {
	registry := prometheus.NewRegistry()

	operationTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docvoice",
			Subsystem: "pipeline",
			Name:      "operations_total",
			Help:      "Total pipeline operations by outcome.",
		},
		[]string{"service", "operation", "status"},
	)
	operationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docvoice",
			Subsystem: "pipeline",
			Name:      "operation_duration_seconds",
			Help:      "Pipeline operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "operation"},
	)
	busyRejections := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docvoice",
			Subsystem: "pipeline",
			Name:      "busy_rejections_total",
			Help:      "Trigger attempts rejected because another operation was in flight.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	playbackTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docvoice",
			Subsystem: "speech",
			Name:      "playbacks_total",
			Help:      "Playback starts by channel and outcome.",
		},
		[]string{"service", "channel", "status"},
	)
	historyRefresh := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docvoice",
			Subsystem: "history",
			Name:      "refresh_total",
			Help:      "History refresh attempts by outcome.",
		},
		[]string{"service", "status"},
	)

	registry.MustRegister(
		operationTotal,
		operationDuration,
		busyRejections,
		playbackTotal,
		historyRefresh,
	)

	return &ClientMetrics{
		registry:          registry,
		operationTotal:    operationTotal,
		operationDuration: operationDuration,
		busyRejections:    busyRejections,
		playbackTotal:     playbackTotal,
		historyRefresh:    historyRefresh,
	}
}

func (m *ClientMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ClientMetrics) ObserveOperation(service, operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.operationTotal.WithLabelValues(service, operation, status).Inc()
	m.operationDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

func (m *ClientMetrics) RecordBusyRejection() {
	m.busyRejections.Inc()
}

func (m *ClientMetrics) RecordPlayback(service, channel string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.playbackTotal.WithLabelValues(service, channel, status).Inc()
}

func (m *ClientMetrics) RecordHistoryRefresh(service string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.historyRefresh.WithLabelValues(service, status).Inc()
}
