package feature

// Feature is one sparse coordinate of a record.
type Feature struct {
	Space uint32
	Value float32
	Key   uint64
}

// Record is a labelled, weighted list of features.
type Record struct {
	Features []Feature
	// Label is -1 or +1.
	Label float64
	// Weight scales the record's loss and gradient.
	Weight float64
}

// Add appends a feature.
func (r *Record) Add(space uint32, value float32, key uint64) {
	r.Features = append(r.Features, Feature{Space: space, Value: value, Key: key})
}

// Reset clears the record, keeping the feature buffer for reuse.
func (r *Record) Reset() {
	r.Features = r.Features[:0]
	r.Label = 0
	r.Weight = 0
}

// Len returns the number of features.
func (r *Record) Len() int { return len(r.Features) }
