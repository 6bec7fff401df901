package classanno

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordScan is called after each artifact scan.
	RecordScan(duration time.Duration, err error)

	// RecordCacheLookup is called once per index request. hit is false when
	// the request ran a scan.
	RecordCacheLookup(hit bool)

	// RecordLookup is called after each member lookup. found reports
	// whether any annotation was returned.
	RecordLookup(found bool)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordScan(time.Duration, error) {}
func (NoopMetricsCollector) RecordCacheLookup(bool)          {}
func (NoopMetricsCollector) RecordLookup(bool)               {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	ScanCount      atomic.Int64
	ScanErrors     atomic.Int64
	ScanTotalNanos atomic.Int64
	CacheHits      atomic.Int64
	CacheMisses    atomic.Int64
	LookupCount    atomic.Int64
	LookupFound    atomic.Int64
}

// RecordScan implements MetricsCollector.
func (b *BasicMetricsCollector) RecordScan(duration time.Duration, err error) {
	b.ScanCount.Add(1)
	b.ScanTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ScanErrors.Add(1)
	}
}

// RecordCacheLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheLookup(hit bool) {
	if hit {
		b.CacheHits.Add(1)
	} else {
		b.CacheMisses.Add(1)
	}
}

// RecordLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLookup(found bool) {
	b.LookupCount.Add(1)
	if found {
		b.LookupFound.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		ScanCount:   b.ScanCount.Load(),
		ScanErrors:  b.ScanErrors.Load(),
		CacheHits:   b.CacheHits.Load(),
		CacheMisses: b.CacheMisses.Load(),
		LookupCount: b.LookupCount.Load(),
		LookupFound: b.LookupFound.Load(),
	}
	if s.ScanCount > 0 {
		s.ScanAvgNanos = b.ScanTotalNanos.Load() / s.ScanCount
	}
	return s
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ScanCount    int64
	ScanErrors   int64
	ScanAvgNanos int64
	CacheHits    int64
	CacheMisses  int64
	LookupCount  int64
	LookupFound  int64
}
