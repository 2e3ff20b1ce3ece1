package paramstore

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const sizeHeader = "map_size: "

// Save writes the live entries of m to w and returns how many were written.
func (m *Map[T]) Save(w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	bits := floatBits[T]()

	buf := make([]byte, 0, 64)
	buf = append(buf, sizeHeader...)
	buf = strconv.AppendInt(buf, int64(m.live), 10)
	buf = append(buf, '\n')
	if _, err := bw.Write(buf); err != nil {
		return 0, err
	}

	n := 0
	for key, vals := range m.All() {
		buf = append(buf[:0], "0x"...)
		buf = strconv.AppendUint(buf, key, 16)
		for _, v := range vals {
			buf = append(buf, '\t')
			buf = strconv.AppendFloat(buf, float64(v), 'e', -1, bits)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return n, err
		}
		n++
	}
	return n, bw.Flush()
}

// Load replaces the contents of m with the entries read from r and returns how many
// entries were declared. The table is pre-sized to hold them without rehashing.
func (m *Map[T]) Load(r *bufio.Reader) (int, error) {
	line, err := ReadLine(r)
	if err != nil {
		return 0, fmt.Errorf("%w: reading header: %v", ErrMalformed, err)
	}
	rest, ok := strings.CutPrefix(line, sizeHeader)
	if !ok {
		return 0, fmt.Errorf("%w: bad header %q", ErrMalformed, line)
	}
	count, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil || count < 0 {
		return 0, fmt.Errorf("%w: bad entry count %q", ErrMalformed, rest)
	}

	fresh, err := New[T](m.width, min(nextPowerOfTwo(4*count), MaxCapacity))
	if err != nil {
		return 0, err
	}
	*m = *fresh

	bits := floatBits[T]()
	for i := 0; i < count; i++ {
		line, err := ReadLine(r)
		if err != nil {
			return i, fmt.Errorf("%w: entry %d: %v", ErrMalformed, i, err)
		}
		fields := strings.Split(line, "\t")
		if len(fields) != m.width+1 {
			return i, fmt.Errorf("%w: entry %d: want %d values, got %d", ErrMalformed, i, m.width, len(fields)-1)
		}
		hex, ok := strings.CutPrefix(strings.TrimSpace(fields[0]), "0x")
		if !ok {
			return i, fmt.Errorf("%w: entry %d: key %q", ErrMalformed, i, fields[0])
		}
		key, err := strconv.ParseUint(hex, 16, 64)
		if err != nil {
			return i, fmt.Errorf("%w: entry %d: key %q", ErrMalformed, i, fields[0])
		}

		dst, err := m.GetOrInsert(key)
		if err != nil {
			return i, err
		}
		for j, f := range fields[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), bits)
			if err != nil && !isRangeError(err) {
				return i, fmt.Errorf("%w: entry %d: value %q", ErrMalformed, i, f)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return i, &NonFiniteError{Key: key & KeyMask, Index: j, Value: v}
			}
			dst[j] = T(v)
		}
	}
	return count, nil
}

// ReadLine reads one newline-terminated line, stripping the terminator.
// A final line without terminator is returned as is.
func ReadLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// floatBits is the precision used to format and parse values of T.
func floatBits[T Number]() int {
	var zero T
	switch any(zero).(type) {
	case float32:
		return 32
	default:
		return 64
	}
}

// isRangeError reports out-of-range parses, which ParseFloat maps to ±Inf.
func isRangeError(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}
