// Package metrics exposes Prometheus instruments on a private registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	Projections        prometheus.Counter
	ProjectionDuration prometheus.Histogram
	ProjectedDays      prometheus.Gauge
	CacheLookups       *prometheus.CounterVec // result label: hit|miss

	OverlayChanges *prometheus.CounterVec // op label: add|delete
	PublishErrors  prometheus.Counter

	BudgetSpent       prometheus.Gauge
	BudgetPercentUsed prometheus.Gauge

	SnapshotsStored *prometheus.CounterVec // trigger label: overlay|schedule|startup
	SnapshotErrors  prometheus.Counter
	SnapshotsSynced prometheus.Counter
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Projections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripcal_projections_total",
			Help: "Total calendar projections computed.",
		}),
		ProjectionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tripcal_projection_duration_seconds",
			Help:    "Duration of a calendar projection.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
		}),
		ProjectedDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tripcal_projected_days",
			Help: "Number of days in the last projected calendar.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tripcal_projection_cache_lookups_total",
			Help: "Projection cache lookups by result.",
		}, []string{"result"}),
		OverlayChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tripcal_overlay_changes_total",
			Help: "User overlay changes by operation.",
		}, []string{"op"}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripcal_publish_errors_total",
			Help: "Overlay change events that could not be published.",
		}),
		BudgetSpent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tripcal_budget_spent",
			Help: "Estimated total spend in the reference currency.",
		}),
		BudgetPercentUsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tripcal_budget_percent_used",
			Help: "Estimated spend as a percentage of the budget.",
		}),
		SnapshotsStored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tripcal_snapshots_stored_total",
			Help: "Budget snapshots stored by trigger.",
		}, []string{"trigger"}),
		SnapshotErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripcal_snapshot_errors_total",
			Help: "Budget snapshot failures.",
		}),
		SnapshotsSynced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripcal_snapshots_synced_total",
			Help: "Budget snapshots appended to the spreadsheet.",
		}),
	}

	reg.MustRegister(
		c.Projections, c.ProjectionDuration, c.ProjectedDays, c.CacheLookups,
		c.OverlayChanges, c.PublishErrors,
		c.BudgetSpent, c.BudgetPercentUsed,
		c.SnapshotsStored, c.SnapshotErrors, c.SnapshotsSynced,
	)
	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// CacheHit and CacheMiss are nil-safe so callers can run without metrics.
func (c *Collector) CacheHit() {
	if c != nil {
		c.CacheLookups.WithLabelValues("hit").Inc()
	}
}

func (c *Collector) CacheMiss() {
	if c != nil {
		c.CacheLookups.WithLabelValues("miss").Inc()
	}
}

// ObserveProjection records one computed projection.
func (c *Collector) ObserveProjection(seconds float64, days int) {
	if c == nil {
		return
	}
	c.Projections.Inc()
	c.ProjectionDuration.Observe(seconds)
	c.ProjectedDays.Set(float64(days))
}

func (c *Collector) ObserveBudget(spent, percentUsed float64) {
	if c == nil {
		return
	}
	c.BudgetSpent.Set(spent)
	c.BudgetPercentUsed.Set(percentUsed)
}

func (c *Collector) OverlayChanged(op string) {
	if c != nil {
		c.OverlayChanges.WithLabelValues(op).Inc()
	}
}

func (c *Collector) PublishFailed() {
	if c != nil {
		c.PublishErrors.Inc()
	}
}

func (c *Collector) SnapshotStored(trigger string) {
	if c != nil {
		c.SnapshotsStored.WithLabelValues(trigger).Inc()
	}
}

func (c *Collector) SnapshotFailed() {
	if c != nil {
		c.SnapshotErrors.Inc()
	}
}

func (c *Collector) SnapshotSynced() {
	if c != nil {
		c.SnapshotsSynced.Inc()
	}
}
