package classanno

import (
	"github.com/hupe1980/classanno/annotation"
	"github.com/hupe1980/classanno/artifact"
	"github.com/hupe1980/classanno/cache"
	"github.com/hupe1980/classanno/resource"
)

type options struct {
	filter           annotation.Filter
	cache            cache.IndexCache
	resolver         artifact.Resolver
	logger           *Logger
	metricsCollector MetricsCollector
	resources        *resource.Controller
}

func defaultOptions() options {
	return options{
		filter:           annotation.DefaultFilter(),
		cache:            cache.NewConcurrent(),
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
}

// Option configures a Deserializer.
type Option func(*options)

// WithFilter sets the filter that decides which annotations are special.
// If nil is passed, annotation.DefaultFilter is used.
func WithFilter(f annotation.Filter) Option {
	return func(o *options) {
		if f == nil {
			f = annotation.DefaultFilter()
		}
		o.filter = f
	}
}

// WithCache sets the index cache. The default is cache.NewConcurrent.
//
// cache.NewMap reproduces unsynchronized single-threaded semantics;
// cache.PassThrough scans on every request.
func WithCache(c cache.IndexCache) Option {
	return func(o *options) {
		if c != nil {
			o.cache = c
		}
	}
}

// WithResolver sets how containers are mapped to artifacts. Without a
// resolver every container is unresolvable and all member lookups are
// empty.
func WithResolver(r artifact.Resolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

// WithArtifacts resolves containers from a fixed set of artifacts, keyed by
// their class name.
func WithArtifacts(arts ...*artifact.Artifact) Option {
	return func(o *options) {
		s := make(artifact.Static, len(arts))
		for _, a := range arts {
			s[a.Handle().ClassName] = a
		}
		o.resolver = s
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithResourceController bounds memory held by raw bytes and the number of
// concurrent preload scans.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}
