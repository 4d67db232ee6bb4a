// Package metrics exposes the daemon's Prometheus metrics.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TomasB/geolookup/pkg/geoip"
	"github.com/TomasB/geolookup/pkg/geoip/database"
)

const namespace = "geolookup"

// Lookup results used as label values.
const (
	ResultOK           = "ok"
	ResultNotFound     = "not_found"
	ResultInvalid      = "invalid"
	ResultTypeMismatch = "type_mismatch"
	ResultError        = "error"
)

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	lookups        *prometheus.CounterVec
	lookupDuration *prometheus.HistogramVec
	reloads        *prometheus.CounterVec
	databaseBuild  prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Number of lookups by transport, kind and result.",
		}, []string{"transport", "kind", "result"}),
		lookupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Duration of database lookups.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		}, []string{"kind"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_reloads_total",
			Help:      "Number of database reloads by result.",
		}, []string{"result"}),
		databaseBuild: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "database_build_timestamp_seconds",
			Help:      "Build time of the loaded database.",
		}),
	}

	m.registry.MustRegister(
		m.lookups,
		m.lookupDuration,
		m.reloads,
		m.databaseBuild,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveLookup records a finished lookup.
func (m *Metrics) ObserveLookup(transport, kind string, d time.Duration, err error) {
	m.lookups.WithLabelValues(transport, kind, Result(err)).Inc()
	m.lookupDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveReload records a database reload and, on success, the new build time.
func (m *Metrics) ObserveReload(buildEpoch uint, err error) {
	if err != nil {
		m.reloads.WithLabelValues(ResultError).Inc()
		return
	}
	m.reloads.WithLabelValues(ResultOK).Inc()
	m.databaseBuild.Set(float64(buildEpoch))
}

// Result classifies a lookup error.
func Result(err error) string {
	var (
		notFound *geoip.AddressNotFoundError
		mismatch *geoip.DatabaseTypeError
	)
	switch {
	case err == nil:
		return ResultOK
	case errors.As(err, &notFound):
		return ResultNotFound
	case errors.Is(err, geoip.ErrInvalidAddress), errors.Is(err, database.ErrUnknownKind):
		return ResultInvalid
	case errors.As(err, &mismatch):
		return ResultTypeMismatch
	default:
		return ResultError
	}
}
