// Package telemetry exposes Prometheus metrics for the simulation loop and
// the HTTP API.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every collector the engine reports to. Each instance owns
// its registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	Ticks              prometheus.Counter
	Playtime           prometheus.Gauge
	EventsMaterialized prometheus.Counter
	FlightsSettled     prometheus.Counter
	SettlementsSkipped *prometheus.CounterVec
	ContractsExpired   prometheus.Counter
	AssetsRemoved      *prometheus.CounterVec
	ActiveSchedules    prometheus.Gauge
	PendingEvents      prometheus.Gauge
	APIRequests        *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	APIActiveRequests  prometheus.Gauge
}

// New creates and registers the collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "airline", Name: "ticks_total",
			Help: "Simulation ticks processed.",
		}),
		Playtime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "airline", Name: "playtime_ticks",
			Help: "Current simulation time in ticks.",
		}),
		EventsMaterialized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "airline", Name: "schedule_events_materialized_total",
			Help: "Flight occurrences enqueued by the daily materializer.",
		}),
		FlightsSettled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "airline", Name: "flights_settled_total",
			Help: "Flight occurrences paid out.",
		}),
		SettlementsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airline", Name: "settlements_skipped_total",
			Help: "Due events dropped without settlement, by reason.",
		}, []string{"reason"}),
		ContractsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "airline", Name: "contracts_expired_total",
			Help: "Accepted contracts that ran out.",
		}),
		AssetsRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airline", Name: "assets_removed_total",
			Help: "Assets removed from the hangar, by reason.",
		}, []string{"reason"}),
		ActiveSchedules: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "airline", Name: "active_schedules",
			Help: "Schedules currently in the repository.",
		}),
		PendingEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "airline", Name: "pending_schedule_events",
			Help: "Materialized occurrences waiting to fire.",
		}),
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airline", Name: "api_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		APIRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "airline", Name: "api_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		APIActiveRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "airline", Name: "api_active_requests",
			Help: "HTTP requests currently being served.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Ticks, m.Playtime, m.EventsMaterialized, m.FlightsSettled,
		m.SettlementsSkipped, m.ContractsExpired, m.AssetsRemoved,
		m.ActiveSchedules, m.PendingEvents,
		m.APIRequests, m.APIRequestDuration, m.APIActiveRequests,
	)
	return m
}

// Handler exposes the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
