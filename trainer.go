package trsgd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/trsgd/feature"
	"github.com/hupe1980/trsgd/learner"
	"github.com/hupe1980/trsgd/sampler"
)

// ctxCheckEvery is the number of records between context checks.
const ctxCheckEvery = 1024

// RunSummary describes a finished Run.
type RunSummary struct {
	RunID    string
	Records  uint64
	Skipped  uint64
	Reseeks  int
	Reports  int
	Duration time.Duration
	Final    learner.Stats
}

// Trainer drives a learner over records drawn from a sampler.
// A Trainer is not safe for concurrent use.
type Trainer struct {
	sampler   *sampler.Sampler
	extractor feature.Extractor
	learner   *learner.Learner
	opts      options
	logger    *Logger
	metrics   MetricsCollector
	rec       feature.Record
}

// NewTrainer wires a sampler, an extractor and a learner.
func NewTrainer(s *sampler.Sampler, x feature.Extractor, l *learner.Learner, optFns ...Option) (*Trainer, error) {
	switch {
	case s == nil:
		return nil, ErrNilSampler
	case x == nil:
		return nil, ErrNilExtractor
	case l == nil:
		return nil, ErrNilLearner
	}
	o := applyOptions(optFns)
	return &Trainer{
		sampler:   s,
		extractor: x,
		learner:   l,
		opts:      o,
		logger:    o.logger.WithRunID(o.runID),
		metrics:   o.metricsCollector,
	}, nil
}

// RunID returns the identifier attached to logs and reports.
func (t *Trainer) RunID() string { return t.opts.runID }

// Learner returns the trained learner.
func (t *Trainer) Learner() *learner.Learner { return t.learner }

// Run reseeks, then digests n records. It stops early with ctx.Err() when ctx is
// done, returning the summary of the records processed so far.
func (t *Trainer) Run(ctx context.Context, n uint64) (RunSummary, error) {
	start := time.Now()
	sum := RunSummary{RunID: t.opts.runID}
	finish := func(err error) (RunSummary, error) {
		if t.learner.Stats().SumWeight > 0 {
			t.report(ctx)
			sum.Reports++
		}
		sum.Duration = time.Since(start)
		sum.Final = t.learner.Stats()
		return sum, err
	}

	if err := t.reseek(ctx); err != nil {
		return finish(err)
	}
	sum.Reseeks++

	for i := uint64(1); i <= n; i++ {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return finish(err)
			}
		}

		ok, err := t.step()
		if err != nil {
			return finish(err)
		}
		if ok {
			sum.Records++
		} else {
			sum.Skipped++
		}

		if t.opts.reportEvery > 0 && i%t.opts.reportEvery == 0 && i < n {
			t.report(ctx)
			sum.Reports++
		}
		if t.opts.reseekEvery > 0 && i%t.opts.reseekEvery == 0 && i < n {
			if err := t.reseek(ctx); err != nil {
				return finish(err)
			}
			sum.Reseeks++
		}
	}
	return finish(nil)
}

// step processes one record and reports whether it was digested.
func (t *Trainer) step() (bool, error) {
	line, err := t.sampler.Next()
	if err != nil {
		return false, err
	}
	if err := t.extractor.Extract(line, &t.rec); err != nil {
		if t.opts.skipMalformed && errors.Is(err, feature.ErrMalformedRecord) {
			t.metrics.RecordSkip()
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", t.sampler.Current(), err)
	}
	_, err = t.learner.Digest(&t.rec, true)
	t.metrics.RecordDigest(err)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (t *Trainer) reseek(ctx context.Context) error {
	if err := t.sampler.Reseek(); err != nil {
		return err
	}
	src := t.sampler.Current()
	t.metrics.RecordReseek(src)
	t.logger.WithSource(src).DebugContext(ctx, "reseek")
	return nil
}

// report publishes and resets the window statistics. A failed report write is
// logged and training continues.
func (t *Trainer) report(ctx context.Context) {
	s := t.learner.Stats()
	t.learner.ResetStats()
	t.logger.LogReport(ctx, s)
	t.metrics.RecordReport(s)
	if t.opts.reporter == nil {
		return
	}
	if err := t.opts.reporter.Write(newReport(t.opts.runID, t.sampler.Current(), s)); err != nil {
		t.logger.WarnContext(ctx, "report not written", "iter", s.Iteration, "error", err)
	}
}
