package server

import (
	"net/http"

	"github.com/woozymasta/geoanchor/internal/calib"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "geoanchor"

// Metrics holds the server collectors on a private registry.
type Metrics struct {
	Registry           *prometheus.Registry
	Projections        *prometheus.CounterVec
	Calibrations       prometheus.Counter
	MalformedTransform prometheus.Counter
	Calibrated         prometheus.Gauge
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Projections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "projections_total",
			Help:      "Local-frame projections by result status.",
		}, []string{"status"}),
		Calibrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "calibrations_total",
			Help:      "Successful calibration updates.",
		}),
		MalformedTransform: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "malformed_transforms_total",
			Help:      "Rejected content transforms.",
		}),
		Calibrated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "calibrated",
			Help:      "1 when a calibration is set.",
		}),
	}

	m.Registry.MustRegister(m.Projections, m.Calibrations, m.MalformedTransform, m.Calibrated)
	return m
}

// ObserveProjection counts a projection result.
func (m *Metrics) ObserveProjection(p calib.Projection) {
	m.Projections.WithLabelValues(p.Status.String()).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
