// Package codec selects the encoding of progress reports.
//
// Reports are appended one value per line, so a codec must produce single-line
// output. Tools reading reports back resolve the codec with ByName.
package codec

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	// ErrUnknown is returned by ByName for unregistered names.
	ErrUnknown = errors.New("codec: unknown codec")
	// ErrMultiline is returned by AppendLine when an encoding spans lines.
	ErrMultiline = errors.New("codec: encoding contains a newline")
)

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is the codec used for new reports.
var Default Codec = GoJSON{}

var builtin = []Codec{JSON{}, GoJSON{}}

// Names lists the built-in codec names.
func Names() []string {
	names := make([]string, len(builtin))
	for i, c := range builtin {
		names[i] = c.Name()
	}
	return names
}

// ByName resolves a built-in codec. The empty name selects Default.
func ByName(name string) (Codec, error) {
	if name == "" {
		return Default, nil
	}
	for _, c := range builtin {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w %q (have %v)", ErrUnknown, name, Names())
}

// AppendLine appends the encoding of v and a trailing newline to dst.
func AppendLine(dst []byte, c Codec, v any) ([]byte, error) {
	data, err := c.Marshal(v)
	if err != nil {
		return dst, fmt.Errorf("%s: %w", c.Name(), err)
	}
	if bytes.IndexByte(data, '\n') >= 0 {
		return dst, fmt.Errorf("%w: %s", ErrMultiline, c.Name())
	}
	dst = append(dst, data...)
	return append(dst, '\n'), nil
}
