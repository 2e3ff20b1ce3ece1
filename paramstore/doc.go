// Package paramstore implements the sparse key/value table that backs model weights.
//
// A Map is an open-addressing hash table from a 62-bit key to a small, fixed-width
// vector of numbers. It is built for feature spaces that are effectively unbounded:
// keys arrive and disappear continuously, so the table must survive heavy
// insert/delete churn without unbounded growth.
//
// # Layout
//
// Slots live in one array, values in a second flat array holding width values per
// slot. Every slot carries an explicit state:
//
//   - empty: never used since the last rehash
//   - tombstone: deleted, but still part of probe chains
//   - live: holds a key and its value vector
//
// Keys are normalised to their low 62 bits (KeyMask). The two high bits never take
// part in key identity, so k and k|1<<63 address the same entry.
//
// # Probing and Growth
//
// Lookups start at key&mask and probe triangularly (index += misses), which visits
// every slot of a power-of-two table within capacity probes. After every insert the
// table guarantees
//
//	2*(live+tombstones) <= capacity
//
// An insert that would break this first rehashes: the table grows (x4 below 1<<24
// slots, x2 above) when more than a quarter of it is live, and is otherwise
// compacted in place to reclaim tombstones.
//
// # Iteration
//
// Positions (Pos) walk live slots in array order:
//
//	for p := m.Begin(); p != m.End(); {
//	    if shouldDrop(m.Values(p)) {
//	        p, _ = m.Erase(p) // Erase returns the next live position
//	        continue
//	    }
//	    p = m.Next(p)
//	}
//
// Erasing through the returned position is the only mutation allowed while
// scanning. All returns the same sequence as an iter.Seq2.
//
// # Persistence
//
// Save writes a "map_size: N" header followed by one line per live entry:
// the key in hexadecimal, then each value in exponential notation, tab separated.
// Load discards the current contents and restores such a stream, rejecting
// malformed lines and non-finite values.
//
// A Map is not safe for concurrent use.
package paramstore
