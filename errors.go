package trsgd

import (
	"errors"

	"github.com/hupe1980/trsgd/feature"
	"github.com/hupe1980/trsgd/learner"
	"github.com/hupe1980/trsgd/paramstore"
	"github.com/hupe1980/trsgd/sampler"
)

var (
	// ErrNilSampler is returned by NewTrainer without a sampler.
	ErrNilSampler = errors.New("trsgd: nil sampler")
	// ErrNilExtractor is returned by NewTrainer without an extractor.
	ErrNilExtractor = errors.New("trsgd: nil extractor")
	// ErrNilLearner is returned by NewTrainer without a learner.
	ErrNilLearner = errors.New("trsgd: nil learner")
)

// Errors of the underlying packages, re-exported for errors.Is checks.
var (
	ErrCorrupted         = paramstore.ErrCorrupted
	ErrNotLive           = paramstore.ErrNotLive
	ErrTableFull         = paramstore.ErrTableFull
	ErrProbeExhausted    = paramstore.ErrProbeExhausted
	ErrMalformedTable    = paramstore.ErrMalformed
	ErrNonFiniteValue    = paramstore.ErrNonFinite
	ErrMalformedModel    = learner.ErrMalformed
	ErrNonFiniteModel    = learner.ErrNonFinite
	ErrTooManySpaces     = learner.ErrTooManySpaces
	ErrInvalidParams     = learner.ErrInvalidParams
	ErrMissingTerminator = sampler.ErrMissingTerminator
	ErrInvalidWeight     = sampler.ErrInvalidWeight
	ErrNoSources         = sampler.ErrNoSources
	ErrMalformedRecord   = feature.ErrMalformedRecord
)

var fatal = []error{
	ErrCorrupted,
	ErrNotLive,
	ErrTableFull,
	ErrProbeExhausted,
	ErrMalformedTable,
	ErrNonFiniteValue,
	ErrMalformedModel,
	ErrNonFiniteModel,
	ErrMissingTerminator,
}

// IsFatal reports whether err means the model, a persisted file or a source is
// unusable and training must stop.
func IsFatal(err error) bool {
	for _, target := range fatal {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
