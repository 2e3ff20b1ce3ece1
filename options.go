package trsgd

import (
	"log/slog"

	"github.com/google/uuid"
)

const (
	// DefaultReseekEvery is the number of records between sampler reseeks.
	DefaultReseekEvery = 300000

	// DefaultReportEvery is the number of records between progress reports.
	DefaultReportEvery = DefaultReseekEvery
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	reseekEvery      uint64
	reportEvery      uint64
	reporter         *Reporter
	runID            string
	skipMalformed    bool
}

// Option configures a Trainer.
type Option func(*options)

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
//	t, _ := trsgd.NewTrainer(s, x, l, trsgd.WithLogger(trsgd.NewJSONLogger(slog.LevelInfo)))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel is shorthand for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithReseekEvery sets how many records are read between reseeks.
// Zero reseeks only once, at the start of each Run.
func WithReseekEvery(n uint64) Option {
	return func(o *options) {
		o.reseekEvery = n
	}
}

// WithReportEvery sets how many records are read between progress reports.
// Zero reports only at the end of each Run.
func WithReportEvery(n uint64) Option {
	return func(o *options) {
		o.reportEvery = n
	}
}

// WithReporter appends each progress report to r.
func WithReporter(r *Reporter) Option {
	return func(o *options) {
		o.reporter = r
	}
}

// WithRunID tags logs and reports with id. By default a random UUID is used.
func WithRunID(id string) Option {
	return func(o *options) {
		o.runID = id
	}
}

// WithSkipMalformed makes Run skip records the extractor rejects instead of
// failing.
func WithSkipMalformed(skip bool) Option {
	return func(o *options) {
		o.skipMalformed = skip
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		reseekEvery:      DefaultReseekEvery,
		reportEvery:      DefaultReportEvery,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}
	return o
}
