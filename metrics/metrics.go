// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Rejection reasons used as the "reason" label
const (
	ReasonBlacklisted = "blacklisted"
	ReasonRateLimited = "rate_limited"
)

type collector struct {
	requests      *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	penalties     prometheus.Counter
	spins         prometheus.Counter
	onlineUsers   prometheus.Gauge
	broadcastSent *prometheus.CounterVec
}

// Metrics owns a private registry so several instances can coexist in tests.
// All methods are safe on a nil receiver.
type Metrics struct {
	registry  *prometheus.Registry
	collector *collector
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	c := &collector{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "what_to_eat_http_requests_total", Help: "HTTP requests by method and status"},
			[]string{"method", "status"}),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "what_to_eat_admission_rejections_total", Help: "Requests refused by the admission gate"},
			[]string{"reason"}),
		penalties: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "what_to_eat_blacklist_entries_total", Help: "Blacklist entries created"}),
		spins: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "what_to_eat_spins_total", Help: "Successful weighted draws"}),
		onlineUsers: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "what_to_eat_online_users", Help: "Clients with an open realtime connection"}),
		broadcastSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "what_to_eat_broadcast_frames_total", Help: "Realtime frames delivered by event"},
			[]string{"event"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.requests,
		c.rejections,
		c.penalties,
		c.spins,
		c.onlineUsers,
		c.broadcastSent,
	)

	return &Metrics{registry: registry, collector: c}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method string, status int) {
	if m == nil {
		return
	}
	m.collector.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

func (m *Metrics) Rejected(reason string) {
	if m == nil {
		return
	}
	m.collector.rejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) PenaltyAdded() {
	if m == nil {
		return
	}
	m.collector.penalties.Inc()
}

func (m *Metrics) Spun() {
	if m == nil {
		return
	}
	m.collector.spins.Inc()
}

func (m *Metrics) SetOnline(n int) {
	if m == nil {
		return
	}
	m.collector.onlineUsers.Set(float64(n))
}

func (m *Metrics) FramesSent(event string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.collector.broadcastSent.WithLabelValues(event).Add(float64(n))
}
