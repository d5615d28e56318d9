package metrics

import (
	"net/http"
	"time"

	"github.com/lvs170603/Quantum-Observer/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter publishes dashboard figures as Prometheus metrics on its own
// registry.
type Exporter struct {
	registry *prometheus.Registry

	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
	liveJobs      *prometheus.GaugeVec
	totalJobs     *prometheus.GaugeVec
	successRate   *prometheus.GaugeVec
	avgWait       *prometheus.GaugeVec
	openSessions  *prometheus.GaugeVec
	queueDepth    *prometheus.GaugeVec
	errorRate     *prometheus.GaugeVec
	jobsByStatus  *prometheus.GaugeVec
}

// NewExporter creates an exporter with Go runtime collectors registered.
func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qo_snapshot_fetches_total",
				Help: "Snapshot fetches by source and outcome",
			},
			[]string{"source", "success"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "qo_snapshot_fetch_duration_seconds",
				Help:    "Snapshot fetch duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
			},
			[]string{"source"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qo_cache_lookups_total",
				Help: "Snapshot cache lookups by result",
			},
			[]string{"result"},
		),
		liveJobs: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "qo_live_jobs", Help: "Jobs currently running or queued"},
			[]string{"mode"},
		),
		totalJobs: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "qo_total_jobs", Help: "Jobs in the latest snapshot"},
			[]string{"mode"},
		),
		successRate: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "qo_success_rate_percent", Help: "Completed share of finished jobs"},
			[]string{"mode"},
		),
		avgWait: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "qo_avg_wait_seconds", Help: "Mean queue wait of started jobs"},
			[]string{"mode"},
		),
		openSessions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "qo_open_sessions", Help: "Open sessions reported by the source"},
			[]string{"mode"},
		),
		queueDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "qo_backend_queue_depth", Help: "Pending jobs per backend"},
			[]string{"mode", "backend"},
		),
		errorRate: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "qo_backend_error_rate", Help: "Reported error rate per backend"},
			[]string{"mode", "backend"},
		),
		jobsByStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "qo_jobs", Help: "Jobs in the latest snapshot by status"},
			[]string{"mode", "status"},
		),
	}

	e.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		e.fetches, e.fetchDuration, e.cacheLookups,
		e.liveJobs, e.totalJobs, e.successRate, e.avgWait, e.openSessions,
		e.queueDepth, e.errorRate, e.jobsByStatus,
	)
	return e
}

// ObserveFetch records one snapshot fetch.
func (e *Exporter) ObserveFetch(source string, d time.Duration, err error) {
	success := "true"
	if err != nil {
		success = "false"
	}
	e.fetches.WithLabelValues(source, success).Inc()
	e.fetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

// ObserveCache records one cache lookup.
func (e *Exporter) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	e.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveDashboard sets the gauges from a freshly computed dashboard.
func (e *Exporter) ObserveDashboard(mode string, m models.Metrics, jobs []models.Job, backends []models.Backend) {
	e.liveJobs.WithLabelValues(mode).Set(float64(m.LiveJobs))
	e.totalJobs.WithLabelValues(mode).Set(float64(m.TotalJobs))
	e.successRate.WithLabelValues(mode).Set(m.SuccessRate)
	e.avgWait.WithLabelValues(mode).Set(m.AvgWaitTime)
	e.openSessions.WithLabelValues(mode).Set(float64(m.OpenSessions))

	counts := make(map[models.JobStatus]int, len(models.AllStatuses))
	for _, j := range jobs {
		counts[j.Status]++
	}
	for _, s := range models.AllStatuses {
		e.jobsByStatus.WithLabelValues(mode, string(s)).Set(float64(counts[s]))
	}

	e.queueDepth.DeletePartialMatch(prometheus.Labels{"mode": mode})
	e.errorRate.DeletePartialMatch(prometheus.Labels{"mode": mode})
	for _, b := range backends {
		e.queueDepth.WithLabelValues(mode, b.Name).Set(float64(b.QueueDepth))
		e.errorRate.WithLabelValues(mode, b.Name).Set(b.ErrorRate)
	}
}

// Registry returns the exporter's registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler serves the registry in the Prometheus text format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
