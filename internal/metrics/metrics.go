// Package metrics exposes session health as Prometheus metrics.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/mmcdole/twitchpanel/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Poll result labels
const (
	resultOK          = "ok"
	resultAuth        = "auth_required"
	resultUnavailable = "unavailable"
	resultError       = "error"
)

// Metrics holds Prometheus counters and gauges for one session
type Metrics struct {
	registry      *prometheus.Registry
	pollsTotal    *prometheus.CounterVec
	pollDuration  prometheus.Histogram
	liveStreams   prometheus.Gauge
	selected      prometheus.Gauge
	chatOpen      prometheus.Gauge
	lastSuccess   prometheus.Gauge
	requestsTotal prometheus.Counter
	errorsTotal   prometheus.Counter
}

// New creates and registers the session metrics on a private registry
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		pollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "twitchpanel_polls_total",
			Help: "Directory polls by result",
		}, []string{"result"}),
		pollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "twitchpanel_poll_duration_seconds",
			Help:    "Time spent fetching the followed-streams directory",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		liveStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twitchpanel_live_streams",
			Help: "Followed streams live in the latest snapshot",
		}),
		selected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twitchpanel_selected_streams",
			Help: "Streams currently in the grid",
		}),
		chatOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twitchpanel_chat_open",
			Help: "1 when a chat is open",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twitchpanel_last_successful_poll_timestamp_seconds",
			Help: "Unix time of the last successful poll",
		}),
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "twitchpanel_http_requests_total",
			Help: "Total number of HTTP requests received by the metrics server",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "twitchpanel_http_errors_total",
			Help: "Total number of HTTP responses with error status (4xx or 5xx)",
		}),
	}

	registry.MustRegister(
		m.pollsTotal,
		m.pollDuration,
		m.liveStreams,
		m.selected,
		m.chatOpen,
		m.lastSuccess,
		m.requestsTotal,
		m.errorsTotal,
	)
	return m
}

// ObservePoll records one poll. live is only meaningful when err is nil.
func (m *Metrics) ObservePoll(err error, duration time.Duration, live int) {
	m.pollDuration.Observe(duration.Seconds())
	m.pollsTotal.WithLabelValues(pollResult(err)).Inc()
	if err == nil {
		m.liveStreams.Set(float64(live))
		m.lastSuccess.SetToCurrentTime()
	}
}

func pollResult(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, domain.ErrAuthRequired):
		return resultAuth
	case errors.Is(err, domain.ErrDirectoryUnavailable):
		return resultUnavailable
	default:
		return resultError
	}
}

// SetSelection sets the selection gauges
func (m *Metrics) SetSelection(selected int, chatOpen bool) {
	m.selected.Set(float64(selected))
	if chatOpen {
		m.chatOpen.Set(1)
	} else {
		m.chatOpen.Set(0)
	}
}

// IncRequests increments the total request counter
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	inner := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		inner.ServeHTTP(w, r)
	})
}
