package infrastructure

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "luna"

// PrometheusMetricsCollector implements the MetricsCollector port with Prometheus counters
type PrometheusMetricsCollector struct {
	cacheRequests      *prometheus.CounterVec
	cyclesCreated      prometheus.Counter
	admissionsRejected *prometheus.CounterVec
	irregularities     *prometheus.CounterVec
	notifications      *prometheus.CounterVec
	emailJobs          *prometheus.CounterVec
}

// NewPrometheusMetricsCollector registers the collectors on reg
func NewPrometheusMetricsCollector(reg prometheus.Registerer) *PrometheusMetricsCollector {
	factory := promauto.With(reg)

	return &PrometheusMetricsCollector{
		cacheRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "user_cache_requests_total",
				Help:      "User directory cache lookups by result",
			},
			[]string{"result"},
		),
		cyclesCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "cycles_created_total",
				Help:      "Cycles admitted and stored",
			},
		),
		admissionsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "cycle_admissions_rejected_total",
				Help:      "Cycle creations rejected by admission control",
			},
			[]string{"rule"},
		),
		irregularities: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "irregularities_detected_total",
				Help:      "Irregularities recorded by type",
			},
			[]string{"type"},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "notifications_total",
				Help:      "Push notification attempts by kind and outcome",
			},
			[]string{"kind", "sent"},
		),
		emailJobs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "email_jobs_total",
				Help:      "Outbound email jobs by status",
			},
			[]string{"status"},
		),
	}
}

func (m *PrometheusMetricsCollector) RecordCacheHit(ctx context.Context) {
	m.cacheRequests.WithLabelValues("hit").Inc()
}

func (m *PrometheusMetricsCollector) RecordCacheMiss(ctx context.Context) {
	m.cacheRequests.WithLabelValues("miss").Inc()
}

func (m *PrometheusMetricsCollector) RecordCycleCreated(ctx context.Context) {
	m.cyclesCreated.Inc()
}

func (m *PrometheusMetricsCollector) RecordAdmissionRejected(ctx context.Context, rule string) {
	m.admissionsRejected.WithLabelValues(rule).Inc()
}

func (m *PrometheusMetricsCollector) RecordIrregularity(ctx context.Context, irregularityType string) {
	m.irregularities.WithLabelValues(irregularityType).Inc()
}

func (m *PrometheusMetricsCollector) RecordNotification(ctx context.Context, kind string, sent bool) {
	m.notifications.WithLabelValues(kind, strconv.FormatBool(sent)).Inc()
}

func (m *PrometheusMetricsCollector) RecordEmailJob(ctx context.Context, status string) {
	m.emailJobs.WithLabelValues(status).Inc()
}
