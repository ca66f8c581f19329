package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/graphadmin-backend/internal/domain"
)

// Metrics owns a private registry so several instances (tests, CLI) never collide on the
// default one.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	uploads        *prometheus.CounterVec
	uploadEntities *prometheus.CounterVec
	uploadWarnings *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphadmin",
			Name:      "api_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "graphadmin",
			Name:      "api_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "graphadmin",
			Name:      "api_inflight_requests",
			Help:      "HTTP requests currently being served.",
		}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphadmin",
			Name:      "graph_uploads_total",
			Help:      "Graph uploads by node type and outcome code.",
		}, []string{"node_type", "outcome"}),
		uploadEntities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphadmin",
			Name:      "graph_upload_entities_total",
			Help:      "Entities committed by node type.",
		}, []string{"node_type"}),
		uploadWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphadmin",
			Name:      "graph_upload_warnings_total",
			Help:      "Per-field upload warnings by code.",
		}, []string{"code"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.uploads,
		m.uploadEntities,
		m.uploadWarnings,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) APIInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) APIInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

// ObserveUpload records one ApplyMappings outcome. err nil counts as "ok"; otherwise the
// error code is the outcome label.
func (m *Metrics) ObserveUpload(nodeType string, report *domain.UploadReport, err error) {
	if m == nil {
		return
	}
	if err != nil {
		outcome := string(domain.CodeOf(err))
		if outcome == "" {
			outcome = string(domain.CodeInternal)
		}
		m.uploads.WithLabelValues(nodeType, outcome).Inc()
		return
	}
	m.uploads.WithLabelValues(nodeType, "ok").Inc()
	if report == nil {
		return
	}
	m.uploadEntities.WithLabelValues(nodeType).Add(float64(report.NodeCount))
	for _, w := range report.Warnings {
		m.uploadWarnings.WithLabelValues(string(w.Code)).Inc()
	}
}
