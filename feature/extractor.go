package feature

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/hupe1980/trsgd/paramstore"
)

// ErrMalformedRecord is returned when a line cannot be turned into a record.
var ErrMalformedRecord = errors.New("feature: malformed record")

// Extractor turns one raw record line (without terminator) into rec.
// rec is reset by the extractor before it is filled.
type Extractor interface {
	Extract(line []byte, rec *Record) error
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(line []byte, rec *Record) error

// Extract calls f(line, rec).
func (f ExtractorFunc) Extract(line []byte, rec *Record) error { return f(line, rec) }

// TSVExtractor parses tab-separated records of the form
// label, weight, then any number of space:token[:value] features.
type TSVExtractor struct {
	// MaxSpace, when non-zero, rejects features whose space id is >= MaxSpace.
	MaxSpace uint32
}

// HashToken maps a token to a 62-bit feature key.
func HashToken(token []byte) uint64 {
	return xxhash.Sum64(token) & paramstore.KeyMask
}

// Extract implements Extractor.
func (x TSVExtractor) Extract(line []byte, rec *Record) error {
	rec.Reset()
	line = bytes.TrimSuffix(line, []byte{'\r'})

	field, rest, ok := bytes.Cut(line, []byte{'\t'})
	label, err := parseLabel(field)
	if err != nil {
		return err
	}
	rec.Label = label

	rec.Weight = 1
	if ok {
		field, rest, ok = bytes.Cut(rest, []byte{'\t'})
		if len(field) > 0 {
			w, err := strconv.ParseFloat(string(field), 64)
			if err != nil || !(w >= 0) || math.IsInf(w, 0) {
				return fmt.Errorf("%w: weight %q", ErrMalformedRecord, field)
			}
			rec.Weight = w
		}
	}

	for ok {
		field, rest, ok = bytes.Cut(rest, []byte{'\t'})
		if len(field) == 0 {
			continue
		}
		if err := x.addFeature(field, rec); err != nil {
			return err
		}
	}
	return nil
}

func (x TSVExtractor) addFeature(field []byte, rec *Record) error {
	spaceText, tok, ok := bytes.Cut(field, []byte{':'})
	if !ok || len(tok) == 0 {
		return fmt.Errorf("%w: feature %q", ErrMalformedRecord, field)
	}
	space, err := strconv.ParseUint(string(spaceText), 10, 32)
	if err != nil {
		return fmt.Errorf("%w: feature space %q", ErrMalformedRecord, spaceText)
	}
	if x.MaxSpace != 0 && uint32(space) >= x.MaxSpace {
		return fmt.Errorf("%w: feature space %d out of range", ErrMalformedRecord, space)
	}

	value := float32(1)
	if i := bytes.LastIndexByte(tok, ':'); i >= 0 {
		if v, err := strconv.ParseFloat(string(tok[i+1:]), 32); err == nil {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: feature value %q", ErrMalformedRecord, field)
			}
			value = float32(v)
			tok = tok[:i]
		}
	}

	var key uint64
	if hex, ok := bytes.CutPrefix(tok, []byte{'#'}); ok {
		k, err := strconv.ParseUint(string(hex), 16, 64)
		if err != nil {
			return fmt.Errorf("%w: literal key %q", ErrMalformedRecord, tok)
		}
		key = k & paramstore.KeyMask
	} else {
		key = HashToken(tok)
	}
	rec.Add(uint32(space), value, key)
	return nil
}

func parseLabel(b []byte) (float64, error) {
	switch string(b) {
	case "1", "+1":
		return 1, nil
	case "0", "-1":
		return -1, nil
	default:
		return 0, fmt.Errorf("%w: label %q", ErrMalformedRecord, b)
	}
}
