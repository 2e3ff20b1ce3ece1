// Package feature defines the sparse record consumed by the learner and the
// extractors that build records from raw text lines.
//
// A Record is an ordered list of (space, value, key) triples with a label in
// {-1, +1} and an instance weight. Keys are opaque 62-bit hashes; the learner never
// interprets them.
//
// TSVExtractor parses a generic line format:
//
//	<label>\t<weight>\t<space>:<token>[:<value>]\t...
//
// Tokens are hashed with xxhash64. A token written as #<hex> is used as a literal key.
package feature
