// Package metrics collects prometheus metrics for HTTP traffic and event
// activity.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phillip/helping-hands-go/models"
)

// Collector implements services.Recorder and feeds the HTTP middleware.
type Collector struct {
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	eventsCreated *prometheus.CounterVec
	joins         prometheus.Counter
	joinRejected  *prometheus.CounterVec
	usersSynced   prometheus.Counter
}

// NewCollector registers every metric on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpinghands_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "helpinghands_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		eventsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpinghands_events_created_total",
			Help: "Events created by event type.",
		}, []string{"event_type"}),
		joins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "helpinghands_event_joins_total",
			Help: "Successful event joins.",
		}),
		joinRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpinghands_event_join_rejections_total",
			Help: "Rejected event joins by reason code.",
		}, []string{"code"}),
		usersSynced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "helpinghands_users_synced_total",
			Help: "User profile syncs.",
		}),
	}

	reg.MustRegister(
		c.requests,
		c.latency,
		c.eventsCreated,
		c.joins,
		c.joinRejected,
		c.usersSynced,
	)
	return c
}

// ObserveRequest records one finished HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int, d time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) EventCreated(eventType models.EventType) {
	c.eventsCreated.WithLabelValues(string(eventType)).Inc()
}

func (c *Collector) EventJoined() { c.joins.Inc() }

func (c *Collector) JoinRejected(code string) {
	c.joinRejected.WithLabelValues(code).Inc()
}

func (c *Collector) UserSynced() { c.usersSynced.Inc() }

// Handler serves the registry for prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
