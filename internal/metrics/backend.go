package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/52poke/kvgate/internal/cache"
)

const (
	OutcomeOK       = "ok"
	OutcomeMiss     = "miss"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

type Metrics struct {
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kvgate",
			Subsystem: "backend",
			Name:      "calls_total",
			Help:      "Backend cache calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kvgate",
			Subsystem: "backend",
			Name:      "call_duration_seconds",
			Help:      "Backend cache call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	registry.MustRegister(m.calls, m.latency)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Wrap returns a Backend that records every call made through it.
func (m *Metrics) Wrap(b cache.Backend) cache.Backend {
	return &instrumented{next: b, m: m}
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	m.latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	m.calls.WithLabelValues(op, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, cache.ErrNotFound):
		return OutcomeMiss
	case errors.Is(err, cache.ErrRejected):
		return OutcomeRejected
	default:
		return OutcomeError
	}
}

type instrumented struct {
	next cache.Backend
	m    *Metrics
}

func (i *instrumented) Get(ctx context.Context, key string) (string, error) {
	start := time.Now()
	v, err := i.next.Get(ctx, key)
	i.m.observe("get", start, err)
	return v, err
}

func (i *instrumented) Set(ctx context.Context, key, value string, ttl *int32) error {
	start := time.Now()
	err := i.next.Set(ctx, key, value, ttl)
	i.m.observe("set", start, err)
	return err
}

func (i *instrumented) Del(ctx context.Context, key string) error {
	start := time.Now()
	err := i.next.Del(ctx, key)
	i.m.observe("del", start, err)
	return err
}
