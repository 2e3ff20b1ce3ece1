package paramstore

import (
	"fmt"
	"iter"
)

const (
	// KeyMask selects the 62-bit key payload. The two high bits are ignored.
	KeyMask uint64 = 1<<62 - 1

	// MaxCapacity is the largest table the Map will grow to.
	MaxCapacity = 1 << 30

	// fastGrowthLimit is the capacity below which the table grows x4 instead of x2.
	fastGrowthLimit = 1 << 24
)

// Number is the set of element types a Map can store.
type Number interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint32 | ~uint64
}

type slotState uint8

const (
	stateEmpty slotState = iota
	stateTombstone
	stateLive
)

type slot struct {
	key   uint64
	state slotState
}

// Pos is a slot position used for iteration and positional erase.
type Pos int

// Map is an open-addressing table from 62-bit keys to fixed-width value vectors.
type Map[T Number] struct {
	slots      []slot
	values     []T
	zero       []T
	width      int
	mask       uint64
	live       int
	tombstones int
}

// New creates a Map whose entries hold width values, with the given initial capacity.
// capacity must be a power of two.
func New[T Number](width, capacity int) (*Map[T], error) {
	if width <= 0 {
		return nil, ErrInvalidWidth
	}
	if !isPowerOfTwo(capacity) || capacity > MaxCapacity {
		return nil, fmt.Errorf("%w: %d", ErrNotPowerOfTwo, capacity)
	}
	return &Map[T]{
		slots:  make([]slot, capacity),
		values: make([]T, capacity*width),
		zero:   make([]T, width),
		width:  width,
		mask:   uint64(capacity - 1),
	}, nil
}

// Len returns the number of live entries.
func (m *Map[T]) Len() int { return m.live }

// Cap returns the number of slots.
func (m *Map[T]) Cap() int { return len(m.slots) }

// Tombstones returns the number of deleted slots still occupying probe positions.
func (m *Map[T]) Tombstones() int { return m.tombstones }

// Width returns the number of values per entry.
func (m *Map[T]) Width() int { return m.width }

func (m *Map[T]) vals(i int) []T {
	off := i * m.width
	return m.values[off : off+m.width : off+m.width]
}

// find probes for key. found is the live slot holding key or -1; free is the first
// empty or tombstone slot seen on the way, or -1.
func (m *Map[T]) find(key uint64) (found, free int, err error) {
	found, free = -1, -1
	idx := key & m.mask
	for misses := uint64(0); misses < uint64(len(m.slots)); {
		s := &m.slots[idx]
		switch s.state {
		case stateEmpty:
			if free < 0 {
				free = int(idx)
			}
			return -1, free, nil
		case stateTombstone:
			if free < 0 {
				free = int(idx)
			}
			// A key never lives past its own tombstone.
			if s.key == key {
				return -1, free, nil
			}
		case stateLive:
			if s.key == key {
				return int(idx), free, nil
			}
		default:
			return -1, -1, &CorruptedError{Index: int(idx), State: uint8(s.state)}
		}
		misses++
		idx = (idx + misses) & m.mask
	}
	return -1, free, nil
}

// Get returns the values stored under key, or a zero vector if key is absent.
// The returned slice must not be modified.
func (m *Map[T]) Get(key uint64) ([]T, error) {
	found, _, err := m.find(key & KeyMask)
	if err != nil {
		return nil, err
	}
	if found < 0 {
		return m.zero, nil
	}
	return m.vals(found), nil
}

// Lookup returns the position of key if it is live.
func (m *Map[T]) Lookup(key uint64) (Pos, bool, error) {
	found, _, err := m.find(key & KeyMask)
	if err != nil {
		return m.End(), false, err
	}
	if found < 0 {
		return m.End(), false, nil
	}
	return Pos(found), true, nil
}

// GetOrInsert returns the mutable values of key, inserting a zero vector when absent.
// The slice stays valid until the next insert, which may rehash the table.
func (m *Map[T]) GetOrInsert(key uint64) ([]T, error) {
	key &= KeyMask
	for {
		found, free, err := m.find(key)
		if err != nil {
			return nil, err
		}
		if found >= 0 {
			return m.vals(found), nil
		}
		if free < 0 {
			return nil, fmt.Errorf("%w: key %#x", ErrProbeExhausted, key)
		}

		occupied := m.live + m.tombstones
		if m.slots[free].state == stateEmpty {
			occupied++
		}
		if 2*occupied > len(m.slots) {
			capacity, err := m.nextCapacity()
			if err != nil {
				return nil, err
			}
			if err := m.Rehash(capacity); err != nil {
				return nil, err
			}
			continue
		}

		if m.slots[free].state == stateTombstone {
			m.tombstones--
		}
		m.slots[free] = slot{key: key, state: stateLive}
		m.live++
		return m.vals(free), nil
	}
}

// nextCapacity picks the size of the table an overfull insert rehashes into.
func (m *Map[T]) nextCapacity() (int, error) {
	return growCapacity(len(m.slots), m.live)
}

// growCapacity grows a table of capacity slots holding live entries when more than a
// quarter of it is live, or when it cannot take one more entry; otherwise it keeps the
// size so the rehash only drops tombstones.
func growCapacity(capacity, live int) (int, error) {
	fits := 2*(live+1) <= capacity
	if 4*live <= capacity && fits {
		return capacity, nil
	}
	factor := 4
	if capacity >= fastGrowthLimit {
		factor = 2
	}
	next := min(capacity*factor, MaxCapacity)
	if next <= capacity {
		if fits {
			return capacity, nil
		}
		return 0, ErrTableFull
	}
	return next, nil
}

// Erase deletes the live entry at pos and returns the next live position.
func (m *Map[T]) Erase(pos Pos) (Pos, error) {
	i := int(pos)
	if i < 0 || i >= len(m.slots) || m.slots[i].state != stateLive {
		return pos, fmt.Errorf("%w: %d", ErrNotLive, i)
	}
	m.slots[i].state = stateTombstone
	clear(m.vals(i))
	m.live--
	m.tombstones++
	return m.Next(pos), nil
}

// EraseKey deletes key and reports whether it was present.
func (m *Map[T]) EraseKey(key uint64) (bool, error) {
	pos, ok, err := m.Lookup(key)
	if err != nil || !ok {
		return false, err
	}
	if _, err := m.Erase(pos); err != nil {
		return false, err
	}
	return true, nil
}

// Rehash rebuilds the table with the given capacity, re-inserting every live entry.
// The receiver is only replaced once the new table is complete.
func (m *Map[T]) Rehash(capacity int) error {
	fresh, err := New[T](m.width, capacity)
	if err != nil {
		return err
	}
	for i := range m.slots {
		switch m.slots[i].state {
		case stateEmpty, stateTombstone:
		case stateLive:
			dst, err := fresh.GetOrInsert(m.slots[i].key)
			if err != nil {
				return err
			}
			copy(dst, m.vals(i))
		default:
			return &CorruptedError{Index: i, State: uint8(m.slots[i].state)}
		}
	}
	*m = *fresh
	return nil
}

// Clear removes every entry, keeping the capacity.
func (m *Map[T]) Clear() {
	if m.live+m.tombstones == 0 {
		return
	}
	clear(m.slots)
	clear(m.values)
	m.live = 0
	m.tombstones = 0
}

// Begin returns the first live position, or End if the map is empty.
func (m *Map[T]) Begin() Pos { return m.Next(-1) }

// End returns the position past the last slot.
func (m *Map[T]) End() Pos { return Pos(len(m.slots)) }

// Next returns the first live position after pos.
func (m *Map[T]) Next(pos Pos) Pos {
	i := int(pos) + 1
	for i < len(m.slots) && m.slots[i].state != stateLive {
		i++
	}
	return Pos(i)
}

// Key returns the key stored at pos.
func (m *Map[T]) Key(pos Pos) uint64 { return m.slots[pos].key }

// Values returns the mutable values stored at pos.
func (m *Map[T]) Values(pos Pos) []T { return m.vals(int(pos)) }

// All iterates over live entries in slot order.
func (m *Map[T]) All() iter.Seq2[uint64, []T] {
	return func(yield func(uint64, []T) bool) {
		for p := m.Begin(); p != m.End(); p = m.Next(p) {
			if !yield(m.slots[p].key, m.vals(int(p))) {
				return
			}
		}
	}
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// nextPowerOfTwo returns the smallest power of two >= n, and 1 for n <= 1.
func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
