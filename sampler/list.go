package sampler

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// SourceSpec is one entry of a source list.
type SourceSpec struct {
	Path   string
	Weight float64
}

// ReadSourceList parses lines of the form "path weight". Blank lines and lines
// starting with '#' are skipped.
func ReadSourceList(r io.Reader) ([]SourceSpec, error) {
	var specs []SourceSpec
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: line %d: want \"path weight\", got %q", ErrMalformedList, n, line)
		}
		w, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: weight %q", ErrMalformedList, n, fields[1])
		}
		specs = append(specs, SourceSpec{Path: fields[0], Weight: w})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return specs, nil
}
