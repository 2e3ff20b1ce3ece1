package trsgd

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/hupe1980/trsgd/learner"
)

// MetricsCollector receives training events.
// Implement it to export metrics, e.g. to Prometheus.
type MetricsCollector interface {
	// RecordDigest is called after each digested record.
	RecordDigest(err error)

	// RecordSkip is called for each record rejected by the extractor.
	RecordSkip()

	// RecordReseek is called after the sampler moved to source.
	RecordReseek(source string)

	// RecordReport is called with the statistics of each report window.
	RecordReport(s learner.Stats)

	// RecordSave is called after each model save.
	RecordSave(weights int, duration time.Duration, err error)

	// RecordLoad is called after each model load.
	RecordLoad(weights int, duration time.Duration, err error)
}

// NoopMetricsCollector discards all events.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordDigest(error)                    {}
func (NoopMetricsCollector) RecordSkip()                           {}
func (NoopMetricsCollector) RecordReseek(string)                   {}
func (NoopMetricsCollector) RecordReport(learner.Stats)            {}
func (NoopMetricsCollector) RecordSave(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordLoad(int, time.Duration, error) {}

// BasicMetricsCollector keeps counters in memory.
type BasicMetricsCollector struct {
	DigestCount  atomic.Int64
	DigestErrors atomic.Int64
	SkipCount    atomic.Int64
	ReseekCount  atomic.Int64
	ReportCount  atomic.Int64
	Removed      atomic.Int64
	SaveCount    atomic.Int64
	SaveErrors   atomic.Int64
	LoadCount    atomic.Int64
	LoadErrors   atomic.Int64

	lastLoss atomic.Uint64
	lastSize atomic.Int64
}

// RecordDigest implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDigest(err error) {
	b.DigestCount.Add(1)
	if err != nil {
		b.DigestErrors.Add(1)
	}
}

// RecordSkip implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSkip() {
	b.SkipCount.Add(1)
}

// RecordReseek implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReseek(string) {
	b.ReseekCount.Add(1)
}

// RecordReport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReport(s learner.Stats) {
	b.ReportCount.Add(1)
	b.Removed.Add(int64(s.Removed))
	b.lastLoss.Store(math.Float64bits(s.Loss))
	b.lastSize.Store(int64(s.Size))
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(_ int, _ time.Duration, err error) {
	b.SaveCount.Add(1)
	if err != nil {
		b.SaveErrors.Add(1)
	}
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(_ int, _ time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector.
type BasicMetricsStats struct {
	DigestCount  int64
	DigestErrors int64
	SkipCount    int64
	ReseekCount  int64
	ReportCount  int64
	Removed      int64
	SaveCount    int64
	SaveErrors   int64
	LoadCount    int64
	LoadErrors   int64
	LastLoss     float64
	LastSize     int64
}

// GetStats returns a snapshot of the counters.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		DigestCount:  b.DigestCount.Load(),
		DigestErrors: b.DigestErrors.Load(),
		SkipCount:    b.SkipCount.Load(),
		ReseekCount:  b.ReseekCount.Load(),
		ReportCount:  b.ReportCount.Load(),
		Removed:      b.Removed.Load(),
		SaveCount:    b.SaveCount.Load(),
		SaveErrors:   b.SaveErrors.Load(),
		LoadCount:    b.LoadCount.Load(),
		LoadErrors:   b.LoadErrors.Load(),
		LastLoss:     math.Float64frombits(b.lastLoss.Load()),
		LastSize:     b.lastSize.Load(),
	}
}
