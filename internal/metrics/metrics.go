// Package metrics holds the Prometheus collectors of the file service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "file_service"

// Metrics groups every collector, registered on one registerer
type Metrics struct {
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	Uploads          *prometheus.CounterVec
	ScanVerdicts     *prometheus.CounterVec
	VariantsCreated  prometheus.Counter
	GrantCacheHits   prometheus.Counter
	GrantCacheMisses prometheus.Counter
	EventsPublished  *prometheus.CounterVec
	RetentionPurged  prometheus.Counter
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		Uploads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Uploads by final outcome.",
		}, []string{"outcome"}),
		ScanVerdicts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_verdicts_total",
			Help:      "Malware scan verdicts.",
		}, []string{"verdict"}),
		VariantsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_variants_total",
			Help:      "Image variants generated.",
		}),
		GrantCacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grant_cache_hits_total",
			Help:      "Share grant cache hits.",
		}),
		GrantCacheMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grant_cache_misses_total",
			Help:      "Share grant cache misses.",
		}),
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Lifecycle events by type and result.",
		}, []string{"type", "result"}),
		RetentionPurged: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retention_purged_total",
			Help:      "Files hard-deleted by the retention sweep.",
		}),
	}
}
