package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ReportsSubmitted    prometheus.Counter
	IngestRollbacks     prometheus.Counter
	CapaCreated         prometheus.Counter
	CapaClosed          prometheus.Counter
	EnrichmentFallbacks prometheus.Counter
	RequestDuration     *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		ReportsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sitewise_reports_submitted_total",
			Help: "Total number of inspection reports committed",
		}),
		IngestRollbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sitewise_report_ingest_rollbacks_total",
			Help: "Total number of report submissions rolled back",
		}),
		CapaCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sitewise_capa_created_total",
			Help: "Total number of CAPA actions created",
		}),
		CapaClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sitewise_capa_closed_total",
			Help: "Total number of CAPA actions closed",
		}),
		EnrichmentFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sitewise_enrichment_fallbacks_total",
			Help: "Total number of AI analysis calls degraded to the fallback payload",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sitewise_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status class",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// NewForTest creates metrics on a private registry so parallel tests never
// collide on the default one.
func NewForTest() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		ReportsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "sitewise_reports_submitted_total",
			Help: "Total number of inspection reports committed",
		}),
		IngestRollbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "sitewise_report_ingest_rollbacks_total",
			Help: "Total number of report submissions rolled back",
		}),
		CapaCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "sitewise_capa_created_total",
			Help: "Total number of CAPA actions created",
		}),
		CapaClosed: factory.NewCounter(prometheus.CounterOpts{
			Name: "sitewise_capa_closed_total",
			Help: "Total number of CAPA actions closed",
		}),
		EnrichmentFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "sitewise_enrichment_fallbacks_total",
			Help: "Total number of AI analysis calls degraded to the fallback payload",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sitewise_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status class",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
