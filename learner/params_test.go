package learner

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams_WriteTo(t *testing.T) {
	var buf bytes.Buffer
	_, err := DefaultParams().WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "K: 100\nstepsize: 1e-01\nthreshold: 1e+03\ng: 1e-02\npower_eta: 5e-01\n", buf.String())

	p, err := ReadParams(&buf)
	require.NoError(t, err)
	assert.Equal(t, DefaultParams(), p)
}

func TestReadParams_PrintfStyle(t *testing.T) {
	text := "K: 10\nstepsize: 2.000000e-01\nthreshold: 5.000000e+02\ng: 1.000000e-03\npower_eta: 6.000000e-01\n"
	p, err := ReadParams(strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, Params{K: 10, StepSize: 0.2, Threshold: 500, Gravity: 1e-3, PowerEta: 0.6}, p)
}

func TestReadParams_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		err  error
	}{
		{"empty", "", ErrMalformed},
		{"bad K", "K: x\n", ErrMalformed},
		{"wrong order", "K: 1\nthreshold: 1\nstepsize: 1\ng: 1\npower_eta: 1\n", ErrMalformed},
		{"truncated", "K: 1\nstepsize: 1\n", ErrMalformed},
		{"bad float", "K: 1\nstepsize: 1\nthreshold: one\ng: 1\npower_eta: 1\n", ErrMalformed},
		{"zero K", "K: 0\nstepsize: 1\nthreshold: 1\ng: 1\npower_eta: 1\n", ErrInvalidParams},
		{"negative", "K: 1\nstepsize: -1\nthreshold: 1\ng: 1\npower_eta: 1\n", ErrInvalidParams},
		{"inf", "K: 1\nstepsize: 1\nthreshold: inf\ng: 1\npower_eta: 1\n", ErrInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadParams(strings.NewReader(tt.text))
			assert.ErrorIs(t, err, tt.err)
		})
	}

	_, err := ReadParams(strings.NewReader("K: 1\nthreshold: 1\n"))
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)
}
