package trsgd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/trsgd/paramstore"
)

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(&paramstore.CorruptedError{Index: 3, State: 9}))
	assert.True(t, IsFatal(fmt.Errorf("space 2: %w", paramstore.ErrNotLive)))
	assert.True(t, IsFatal(ErrMalformedModel))
	assert.True(t, IsFatal(ErrMissingTerminator))
	assert.False(t, IsFatal(ErrMalformedRecord))
	assert.False(t, IsFatal(errors.New("network down")))
	assert.False(t, IsFatal(nil))
}
