// Package sampler draws records from several newline-delimited byte sources
// with probability proportional to weight × size.
//
// Each source is an immutable byte slice, typically a read-only file mapping,
// whose last byte is '\n'. The sampler keeps a cursor into one source. Next
// returns the record under the cursor and advances it, wrapping around at the end
// of the source. Reseek moves the cursor to a random record boundary in a source
// chosen by mass, so that over many reseeks each source i is visited with
// probability w_i·s_i / Σ w_j·s_j.
//
//	s := sampler.NewSeeded(1)
//	_ = s.AddSource("train.tsv", data, 1.0)
//	_ = s.Reseek()
//	line, _ := s.Next()
//
// A Sampler is not safe for concurrent use.
package sampler
