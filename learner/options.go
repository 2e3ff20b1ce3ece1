package learner

import "log/slog"

const (
	// DefaultMaxSpaces is the default bound on feature spaces.
	DefaultMaxSpaces = 256

	// DefaultSpaceCapacity is the initial slot count of a new space table.
	DefaultSpaceCapacity = 1 << 8
)

type options struct {
	logger        *slog.Logger
	maxSpaces     int
	spaceCapacity int
}

// Option configures a Learner.
type Option func(*options)

// WithLogger sets the logger used for diagnostics. nil discards them.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMaxSpaces bounds the number of feature spaces.
func WithMaxSpaces(n int) Option {
	return func(o *options) {
		o.maxSpaces = n
	}
}

// WithSpaceCapacity sets the initial capacity of new space tables.
// It must be a power of two.
func WithSpaceCapacity(c int) Option {
	return func(o *options) {
		o.spaceCapacity = c
	}
}

func applyOptions(opts []Option) options {
	o := options{
		maxSpaces:     DefaultMaxSpaces,
		spaceCapacity: DefaultSpaceCapacity,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}
