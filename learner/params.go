package learner

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/hupe1980/trsgd/paramstore"
)

// Params are the hyperparameters of truncated SGD.
type Params struct {
	// K is the truncation period in updates.
	K uint32
	// StepSize is the base learning rate.
	StepSize float64
	// Threshold bounds the weights affected by truncation.
	Threshold float64
	// Gravity is the truncation strength.
	Gravity float64
	// PowerEta is the learning-rate decay exponent.
	PowerEta float64
}

// DefaultParams returns the stock hyperparameters.
func DefaultParams() Params {
	return Params{
		K:         100,
		StepSize:  0.1,
		Threshold: 1e3,
		Gravity:   1e-2,
		PowerEta:  0.5,
	}
}

// Validate checks that p can drive a learner.
func (p Params) Validate() error {
	if p.K == 0 {
		return fmt.Errorf("%w: K must be positive", ErrInvalidParams)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"stepsize", p.StepSize},
		{"threshold", p.Threshold},
		{"g", p.Gravity},
		{"power_eta", p.PowerEta},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return fmt.Errorf("%w: %s = %v", ErrInvalidParams, f.name, f.v)
		}
	}
	return nil
}

// WriteTo writes p in the parameter file format:
//
//	K: 100
//	stepsize: 1e-01
//	threshold: 1e+03
//	g: 1e-02
//	power_eta: 5e-01
func (p Params) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, 0, 128)
	buf = append(buf, "K: "...)
	buf = strconv.AppendUint(buf, uint64(p.K), 10)
	buf = append(buf, '\n')
	for _, f := range p.floatFields() {
		buf = append(buf, f.name...)
		buf = append(buf, ": "...)
		buf = strconv.AppendFloat(buf, *f.v, 'e', -1, 64)
		buf = append(buf, '\n')
	}
	n, err := w.Write(buf)
	return int64(n), err
}

type floatField struct {
	name string
	v    *float64
}

func (p *Params) floatFields() []floatField {
	return []floatField{
		{"stepsize", &p.StepSize},
		{"threshold", &p.Threshold},
		{"g", &p.Gravity},
		{"power_eta", &p.PowerEta},
	}
}

// ReadParams parses a parameter file. The five fields must appear in the order
// written by WriteTo. The result is validated.
func ReadParams(r io.Reader) (Params, error) {
	br := bufio.NewReader(r)
	var p Params

	k, err := readField(br, 1, "K")
	if err != nil {
		return Params{}, err
	}
	kv, err := strconv.ParseUint(k, 10, 32)
	if err != nil {
		return Params{}, &ParseError{Line: 1, Msg: "K", cause: err}
	}
	p.K = uint32(kv)

	for i, f := range p.floatFields() {
		line := i + 2
		text, err := readField(br, line, f.name)
		if err != nil {
			return Params{}, err
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Params{}, &ParseError{Line: line, Msg: f.name, cause: err}
		}
		*f.v = v
	}

	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// readField reads a "name: value" line and returns the trimmed value.
func readField(br *bufio.Reader, line int, name string) (string, error) {
	text, err := paramstore.ReadLine(br)
	if err != nil {
		return "", &ParseError{Line: line, Msg: "expected " + name, cause: err}
	}
	v, ok := strings.CutPrefix(text, name+":")
	if !ok {
		return "", &ParseError{Line: line, Msg: fmt.Sprintf("expected %s, got %q", name, text)}
	}
	return strings.TrimSpace(v), nil
}
