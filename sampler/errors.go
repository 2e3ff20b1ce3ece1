package sampler

import "errors"

var (
	// ErrMissingTerminator is returned for sources that do not end with '\n'.
	ErrMissingTerminator = errors.New("sampler: source does not end with a newline")

	// ErrInvalidWeight is returned for weights that are not positive and finite.
	ErrInvalidWeight = errors.New("sampler: invalid source weight")

	// ErrNoSources is returned when sampling without any source.
	ErrNoSources = errors.New("sampler: no sources")

	// ErrMalformedList is returned for unparsable source lists.
	ErrMalformedList = errors.New("sampler: malformed source list")
)
