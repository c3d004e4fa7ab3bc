package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "snapconnect"

// Metrics groups the lifecycle collectors. Each instance owns its registry so
// tests can build as many as they need.
type Metrics struct {
	Registry *prometheus.Registry

	ItemsCreated        *prometheus.CounterVec
	Views               prometheus.Counter
	SaveToggles         *prometheus.CounterVec
	Finalized           *prometheus.CounterVec
	FinalizeBlocked     prometheus.Counter
	MediaDeleteFailures prometheus.Counter
	PendingFinalization prometheus.Gauge
	SweepDuration       prometheus.Histogram
	EventsPublished     *prometheus.CounterVec
	SubscribersDropped  prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ItemsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_created_total",
			Help:      "Content items created, by kind.",
		}, []string{"kind"}),
		Views: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "views_recorded_total",
			Help:      "First views recorded on content items.",
		}),
		SaveToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "save_toggles_total",
			Help:      "Save flag changes, by resulting state.",
		}, []string{"state"}),
		Finalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_finalized_total",
			Help:      "Content items expired, by rule and trigger.",
		}, []string{"reason", "trigger"}),
		FinalizeBlocked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "finalize_blocked_total",
			Help:      "Finalizations skipped because the item was saved in the meantime.",
		}),
		MediaDeleteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_delete_failures_total",
			Help:      "Items expired whose media blob could not be deleted.",
		}),
		PendingFinalization: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_finalization",
			Help:      "Eligible items waiting for a scope exit or sweep.",
		}),
		SweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of periodic sweeps.",
			Buckets:   prometheus.DefBuckets,
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "realtime_events_published_total",
			Help:      "Realtime events published, by kind.",
		}, []string{"kind"}),
		SubscribersDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "realtime_subscribers_dropped_total",
			Help:      "Subscribers disconnected because their queue was full.",
		}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ItemsCreated,
		m.Views,
		m.SaveToggles,
		m.Finalized,
		m.FinalizeBlocked,
		m.MediaDeleteFailures,
		m.PendingFinalization,
		m.SweepDuration,
		m.EventsPublished,
		m.SubscribersDropped,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
