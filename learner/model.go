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

const (
	spacesHeader    = "n_space: "
	interceptHeader = "intercept: "
	endMarker       = "=== END ==="
)

func spaceHeader(i int) string { return fmt.Sprintf("=== Space %d ===", i) }

// Save writes the model to w and returns the number of weights written:
//
//	n_space: 2
//	intercept: 5e-02
//	=== Space 0 ===
//	map_size: 1
//	0x2a	5e-02	1e+00
//	=== Space 1 ===
//	map_size: 0
//	=== END ===
func (l *Learner) Save(w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 64)
	buf = append(buf, spacesHeader...)
	buf = strconv.AppendInt(buf, int64(len(l.spaces)), 10)
	buf = append(buf, '\n')
	buf = append(buf, interceptHeader...)
	buf = strconv.AppendFloat(buf, l.intercept, 'e', -1, 64)
	buf = append(buf, '\n')
	if _, err := bw.Write(buf); err != nil {
		return 0, err
	}

	total := 0
	for i, m := range l.spaces {
		if _, err := bw.WriteString(spaceHeader(i) + "\n"); err != nil {
			return total, err
		}
		n, err := m.Save(bw)
		total += n
		if err != nil {
			return total, fmt.Errorf("space %d: %w", i, err)
		}
	}
	if _, err := bw.WriteString(endMarker + "\n"); err != nil {
		return total, err
	}
	return total, bw.Flush()
}

// Load replaces the model with the one read from r and returns the number of
// weights restored. If the file holds a different number of spaces than the
// learner, the larger count is kept and a warning is logged; spaces missing from
// the file keep their current weights. The learner is left
// untouched when an error is returned.
func (l *Learner) Load(r io.Reader) (int, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	line := 0
	next := func(what string) (string, error) {
		line++
		text, err := paramstore.ReadLine(br)
		if err != nil {
			return "", &ParseError{Line: line, Msg: "expected " + what, cause: err}
		}
		return text, nil
	}

	text, err := next("space count")
	if err != nil {
		return 0, err
	}
	rest, ok := strings.CutPrefix(text, spacesHeader)
	if !ok {
		return 0, &ParseError{Line: line, Msg: fmt.Sprintf("bad header %q", text)}
	}
	nSpace, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil || nSpace < 0 {
		return 0, &ParseError{Line: line, Msg: fmt.Sprintf("bad space count %q", rest)}
	}
	if nSpace > l.opts.maxSpaces {
		return 0, fmt.Errorf("%w: model has %d (max %d)", ErrTooManySpaces, nSpace, l.opts.maxSpaces)
	}

	text, err = next("intercept")
	if err != nil {
		return 0, err
	}
	rest, ok = strings.CutPrefix(text, interceptHeader)
	if !ok {
		return 0, &ParseError{Line: line, Msg: fmt.Sprintf("bad intercept line %q", text)}
	}
	intercept, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
	if err != nil {
		return 0, &ParseError{Line: line, Msg: "intercept", cause: err}
	}
	if math.IsNaN(intercept) || math.IsInf(intercept, 0) {
		return 0, fmt.Errorf("%w: intercept %v", ErrNonFinite, intercept)
	}

	if nSpace != len(l.spaces) {
		l.logger.Warn("model space count differs", "model", nSpace, "learner", len(l.spaces))
	}

	spaces := make([]*paramstore.Map[float32], 0, max(nSpace, len(l.spaces)))
	total := 0
	for i := range nSpace {
		text, err := next("space header")
		if err != nil {
			return 0, err
		}
		if text != spaceHeader(i) {
			return 0, &ParseError{Line: line, Msg: fmt.Sprintf("expected %q, got %q", spaceHeader(i), text)}
		}
		m, err := l.newSpace()
		if err != nil {
			return 0, err
		}
		n, err := m.Load(br)
		if err != nil {
			return 0, fmt.Errorf("space %d: %w", i, err)
		}
		line += n + 1
		total += n
		spaces = append(spaces, m)
	}
	text, err = next("end marker")
	if err != nil {
		return 0, err
	}
	if text != endMarker {
		return 0, &ParseError{Line: line, Msg: fmt.Sprintf("expected %q, got %q", endMarker, text)}
	}

	// Spaces the file does not cover come back empty.
	for len(spaces) < len(l.spaces) {
		m, err := l.newSpace()
		if err != nil {
			return 0, err
		}
		spaces = append(spaces, m)
	}
	l.spaces = spaces
	l.intercept = intercept
	return total, nil
}
