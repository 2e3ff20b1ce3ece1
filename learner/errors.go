package learner

import (
	"errors"
	"fmt"
)

var (
	// ErrTooManySpaces is returned when a learner would exceed its space limit.
	ErrTooManySpaces = errors.New("learner: too many feature spaces")

	// ErrInvalidParams is returned by Params.Validate.
	ErrInvalidParams = errors.New("learner: invalid parameters")

	// ErrMalformed is returned for unparsable parameter or model files.
	ErrMalformed = errors.New("learner: malformed file")

	// ErrNonFinite is returned when a restored intercept is NaN or infinite.
	ErrNonFinite = errors.New("learner: non-finite value")
)

// ParseError reports a malformed line in a parameter or model file.
type ParseError struct {
	Line  int
	Msg   string
	cause error
}

func (e *ParseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("learner: line %d: %s: %v", e.Line, e.Msg, e.cause)
	}
	return fmt.Sprintf("learner: line %d: %s", e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.cause }

// Is makes every ParseError match ErrMalformed.
func (e *ParseError) Is(target error) bool { return target == ErrMalformed }
