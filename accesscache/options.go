package accesscache

import "go.uber.org/zap"

// Option configures a CachedAccessPoint.
type Option func(*CachedAccessPoint)

// WithLogger sets the logger. Hits, misses and invalidations are logged at
// debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *CachedAccessPoint) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(recorder Recorder) Option {
	return func(c *CachedAccessPoint) {
		if recorder != nil {
			c.recorder = recorder
		}
	}
}

// WithNamespace sets the key prefix. Two decorators sharing a cache service
// must use different namespaces. The name is query-escaped, so "a" and
// "a::b" stay apart when either is invalidated.
func WithNamespace(namespace string) Option {
	return func(c *CachedAccessPoint) {
		c.namespace = namespace
	}
}

// Recorder receives cache events, see package metrics.
type Recorder interface {
	Hit(namespace string)
	Miss(namespace string)
	Invalidation(namespace, reason string)
	BackendError(namespace string)
}

type nopRecorder struct{}

func (nopRecorder) Hit(string)                  {}
func (nopRecorder) Miss(string)                 {}
func (nopRecorder) Invalidation(string, string) {}
func (nopRecorder) BackendError(string)         {}
