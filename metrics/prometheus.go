// Package metrics exports cache decorator events as Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements accesscache.Recorder with counter vectors
// labelled by decorator namespace.
type PrometheusRecorder struct {
	hitsTotal          *prometheus.CounterVec
	missesTotal        *prometheus.CounterVec
	invalidationsTotal *prometheus.CounterVec
	backendErrorsTotal *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them with reg. A nil reg
// leaves them unregistered, which is handy in tests.
func NewRecorder(reg prometheus.Registerer, namespace string) (*PrometheusRecorder, error) {
	r := &PrometheusRecorder{
		hitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Searches served from the cache",
			},
			[]string{"access_point"},
		),
		missesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Searches that reached the backend",
			},
			[]string{"access_point"},
		),
		invalidationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_invalidations_total",
				Help:      "Cache invalidations by cause",
			},
			[]string{"access_point", "reason"},
		),
		backendErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backend_errors_total",
				Help:      "Backend searches that failed",
			},
			[]string{"access_point"},
		),
	}

	if reg == nil {
		return r, nil
	}
	for _, c := range r.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *PrometheusRecorder) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		r.hitsTotal,
		r.missesTotal,
		r.invalidationsTotal,
		r.backendErrorsTotal,
	}
}

func (r *PrometheusRecorder) Hit(namespace string) {
	r.hitsTotal.WithLabelValues(namespace).Inc()
}

func (r *PrometheusRecorder) Miss(namespace string) {
	r.missesTotal.WithLabelValues(namespace).Inc()
}

func (r *PrometheusRecorder) Invalidation(namespace, reason string) {
	r.invalidationsTotal.WithLabelValues(namespace, reason).Inc()
}

func (r *PrometheusRecorder) BackendError(namespace string) {
	r.backendErrorsTotal.WithLabelValues(namespace).Inc()
}
