package sampler

import (
	"bytes"
	"fmt"
	"math"
	"math/rand/v2"
)

// Source is a weighted byte range of newline-terminated records.
type Source struct {
	Name   string
	Data   []byte
	Weight float64

	cumProb float64
}

// Mass is the unnormalized sampling mass weight × size.
func (s *Source) Mass() float64 { return s.Weight * float64(len(s.Data)) }

// CumProb is the cumulative probability of this source and all heavier ones.
func (s *Source) CumProb() float64 { return s.cumProb }

// Sampler picks records across weighted sources.
type Sampler struct {
	rng     *rand.Rand
	sources []*Source
	cur     *Source
	pos     int
}

// New returns a sampler drawing from rng.
func New(rng *rand.Rand) *Sampler {
	return &Sampler{rng: rng}
}

// NewSeeded returns a sampler with a PCG generator seeded by seed.
func NewSeeded(seed uint64) *Sampler {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// AddSource registers data under name. data must end with '\n'.
// The first source added holds the cursor until the first Reseek.
func (s *Sampler) AddSource(name string, data []byte, weight float64) error {
	if len(data) == 0 || data[len(data)-1] != '\n' {
		return fmt.Errorf("%w: %s", ErrMissingTerminator, name)
	}
	if !(weight > 0) || math.IsInf(weight, 0) {
		return fmt.Errorf("%w: %s: %v", ErrInvalidWeight, name, weight)
	}

	src := &Source{Name: name, Data: data, Weight: weight}
	mass := src.Mass()
	i := 0
	for i < len(s.sources) && s.sources[i].Mass() > mass {
		i++
	}
	s.sources = append(s.sources, nil)
	copy(s.sources[i+1:], s.sources[i:])
	s.sources[i] = src

	var total float64
	for _, o := range s.sources {
		total += o.Mass()
	}
	var cum float64
	for _, o := range s.sources {
		cum += o.Mass()
		o.cumProb = cum / total
	}

	if s.cur == nil {
		s.cur = src
		s.pos = 0
	}
	return nil
}

// Sources returns the registered sources in descending order of mass.
func (s *Sampler) Sources() []Source {
	out := make([]Source, len(s.sources))
	for i, src := range s.sources {
		out[i] = *src
	}
	return out
}

// Current returns the name of the source under the cursor, or "".
func (s *Sampler) Current() string {
	if s.cur == nil {
		return ""
	}
	return s.cur.Name
}

// Reseek moves the cursor to the start of a random record of a source chosen
// by mass.
func (s *Sampler) Reseek() error {
	if len(s.sources) == 0 {
		return ErrNoSources
	}
	var src *Source
	for src == nil {
		u := s.rng.Float64()
		for _, o := range s.sources {
			if o.cumProb > u {
				src = o
				break
			}
		}
	}

	off := s.rng.IntN(len(src.Data))
	off += bytes.IndexByte(src.Data[off:], '\n') + 1
	if off >= len(src.Data) {
		off = 0
	}
	s.cur = src
	s.pos = off
	return nil
}

// Next returns the record under the cursor without its terminator and advances.
// The returned slice aliases the source data.
func (s *Sampler) Next() ([]byte, error) {
	if s.cur == nil {
		return nil, ErrNoSources
	}
	data := s.cur.Data
	i := bytes.IndexByte(data[s.pos:], '\n')
	line := data[s.pos : s.pos+i]
	s.pos += i + 1
	if s.pos >= len(data) {
		s.pos = 0
	}
	return line, nil
}
