package paramstore

import (
	"bufio"
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMap[T Number](t *testing.T, width, capacity int) *Map[T] {
	t.Helper()
	m, err := New[T](width, capacity)
	require.NoError(t, err)
	return m
}

func get[T Number](t *testing.T, m *Map[T], key uint64) []T {
	t.Helper()
	v, err := m.Get(key)
	require.NoError(t, err)
	return v
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		capacity int
		err      error
	}{
		{"zero width", 0, 8, ErrInvalidWidth},
		{"zero capacity", 2, 0, ErrNotPowerOfTwo},
		{"not power of two", 2, 12, ErrNotPowerOfTwo},
		{"too large", 2, MaxCapacity * 2, ErrNotPowerOfTwo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New[float32](tt.width, tt.capacity)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	m := newMap[float32](t, 2, 1)
	assert.Equal(t, 1, m.Cap())
	assert.Equal(t, 0, m.Len())
}

func TestMap_ConcreteExample(t *testing.T) {
	m := newMap[float32](t, 2, 8)
	for k := uint64(1); k <= 5; k++ {
		v, err := m.GetOrInsert(k)
		require.NoError(t, err)
		v[0] = 1.0
	}
	ok, err := m.EraseKey(3)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, []float32{0, 0}, get(t, m, 3))
	assert.Equal(t, []float32{1, 0}, get(t, m, 4))
	assert.Equal(t, 4, m.Len())

	var saved bytes.Buffer
	n, err := m.Save(&saved)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	restored := newMap[float32](t, 2, 8)
	_, err = restored.Load(bufio.NewReader(&saved))
	require.NoError(t, err)
	assert.Equal(t, 4, restored.Len())
	_, found, err := restored.Lookup(3)
	require.NoError(t, err)
	assert.False(t, found)
	for _, k := range []uint64{1, 2, 4, 5} {
		assert.Equal(t, []float32{1, 0}, get(t, restored, k), "key %d", k)
	}
}

func TestMap_GetDoesNotInsert(t *testing.T) {
	m := newMap[float64](t, 3, 4)
	assert.Equal(t, []float64{0, 0, 0}, get(t, m, 99))
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 0, m.Tombstones())
}

func TestMap_KeyMasking(t *testing.T) {
	m := newMap[float32](t, 1, 8)
	v, err := m.GetOrInsert(7 | 1<<63)
	require.NoError(t, err)
	v[0] = 2

	assert.Equal(t, []float32{2}, get(t, m, 7))
	assert.Equal(t, []float32{2}, get(t, m, 7|1<<62))
	assert.Equal(t, 1, m.Len())

	for key := range m.All() {
		assert.Equal(t, uint64(7), key)
	}
}

func TestMap_ModelCheck(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	m := newMap[float32](t, 2, 4)
	ref := make(map[uint64]float32)

	for i := 0; i < 20000; i++ {
		key := rng.Uint64N(512)
		if rng.IntN(3) == 0 {
			ok, err := m.EraseKey(key)
			require.NoError(t, err)
			_, present := ref[key]
			assert.Equal(t, present, ok)
			delete(ref, key)
			continue
		}
		v, err := m.GetOrInsert(key)
		require.NoError(t, err)
		v[0] += 1
		ref[key]++

		require.LessOrEqual(t, 2*(m.Len()+m.Tombstones()), m.Cap(), "occupancy after insert %d", i)
	}

	assert.Equal(t, len(ref), m.Len())
	for key := uint64(0); key < 512; key++ {
		assert.Equal(t, ref[key], get(t, m, key)[0], "key %d", key)
	}

	seen := 0
	for key, vals := range m.All() {
		assert.Equal(t, ref[key], vals[0])
		seen++
	}
	assert.Equal(t, len(ref), seen)
}

func TestMap_GrowAndCompact(t *testing.T) {
	m := newMap[float32](t, 1, 8)
	for k := uint64(0); k < 5; k++ {
		_, err := m.GetOrInsert(k)
		require.NoError(t, err)
	}
	// 5 live entries do not fit 8 slots: grown x4.
	assert.Equal(t, 32, m.Cap())

	for k := uint64(0); k < 5; k++ {
		_, err := m.EraseKey(k)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, m.Tombstones())

	// Churn with few live keys compacts instead of growing.
	for k := uint64(100); k < 1000; k++ {
		_, err := m.GetOrInsert(k)
		require.NoError(t, err)
		_, err = m.EraseKey(k)
		require.NoError(t, err)
	}
	assert.Equal(t, 32, m.Cap())
	assert.Equal(t, 0, m.Len())
}

func TestMap_TinyCapacity(t *testing.T) {
	m := newMap[float32](t, 1, 1)
	for k := uint64(1); k <= 10; k++ {
		v, err := m.GetOrInsert(k)
		require.NoError(t, err)
		v[0] = float32(k)
	}
	assert.Equal(t, 10, m.Len())
	for k := uint64(1); k <= 10; k++ {
		assert.Equal(t, float32(k), get(t, m, k)[0])
	}
}

func TestMap_Rehash(t *testing.T) {
	m := newMap[float32](t, 2, 16)
	for k := uint64(0); k < 6; k++ {
		v, err := m.GetOrInsert(k * 16)
		require.NoError(t, err)
		v[0], v[1] = float32(k), -float32(k)
	}
	_, err := m.EraseKey(0)
	require.NoError(t, err)

	require.NoError(t, m.Rehash(64))
	assert.Equal(t, 64, m.Cap())
	assert.Equal(t, 5, m.Len())
	assert.Equal(t, 0, m.Tombstones())
	for k := uint64(1); k < 6; k++ {
		assert.Equal(t, []float32{float32(k), -float32(k)}, get(t, m, k*16))
	}

	err = m.Rehash(48)
	assert.ErrorIs(t, err, ErrNotPowerOfTwo)
	assert.Equal(t, 64, m.Cap())
}

func TestMap_RehashCorruptedKeepsTable(t *testing.T) {
	m := newMap[float32](t, 1, 8)
	_, err := m.GetOrInsert(1)
	require.NoError(t, err)
	m.slots[5].state = 7

	err = m.Rehash(16)
	var ce *CorruptedError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 5, ce.Index)
	assert.Equal(t, 8, m.Cap())
	assert.Equal(t, 1, m.Len())
}

func TestMap_CorruptedProbe(t *testing.T) {
	m := newMap[float32](t, 1, 8)
	m.slots[3].state = 2 | 0x80

	_, err := m.Get(3)
	assert.ErrorIs(t, err, ErrCorrupted)
	_, err = m.GetOrInsert(3)
	assert.ErrorIs(t, err, ErrCorrupted)
}

func TestMap_EraseNotLive(t *testing.T) {
	m := newMap[float32](t, 1, 8)
	v, err := m.GetOrInsert(2)
	require.NoError(t, err)
	v[0] = 1

	pos, ok, err := m.Lookup(2)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = m.Erase(pos)
	require.NoError(t, err)
	_, err = m.Erase(pos)
	assert.ErrorIs(t, err, ErrNotLive)
	_, err = m.Erase(m.End())
	assert.ErrorIs(t, err, ErrNotLive)
	_, err = m.Erase(-1)
	assert.ErrorIs(t, err, ErrNotLive)

	// Tombstone values are zeroed and reinsertion reuses the slot.
	assert.Equal(t, []float32{0}, m.Values(pos))
	_, err = m.GetOrInsert(2)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Tombstones())
	assert.Equal(t, []float32{0}, get(t, m, 2))
}

func TestMap_EraseWhileScanning(t *testing.T) {
	m := newMap[float32](t, 1, 64)
	for k := uint64(0); k < 20; k++ {
		v, err := m.GetOrInsert(k)
		require.NoError(t, err)
		v[0] = float32(k)
	}

	visited := 0
	for p := m.Begin(); p != m.End(); {
		visited++
		if int(m.Values(p)[0])%2 == 0 {
			var err error
			p, err = m.Erase(p)
			require.NoError(t, err)
			continue
		}
		p = m.Next(p)
	}
	assert.Equal(t, 20, visited)
	assert.Equal(t, 10, m.Len())
	for key, vals := range m.All() {
		assert.Equal(t, uint64(1), key%2)
		assert.Equal(t, float32(key), vals[0])
	}
}

func TestMap_IterationRestartsAndStops(t *testing.T) {
	m := newMap[float32](t, 1, 16)
	for k := uint64(0); k < 4; k++ {
		_, err := m.GetOrInsert(k)
		require.NoError(t, err)
	}

	count := func() int {
		n := 0
		for range m.All() {
			n++
		}
		return n
	}
	assert.Equal(t, 4, count())
	assert.Equal(t, 4, count())

	n := 0
	for range m.All() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestMap_Clear(t *testing.T) {
	m := newMap[uint32](t, 2, 8)
	v, err := m.GetOrInsert(1)
	require.NoError(t, err)
	v[1] = 3
	_, err = m.GetOrInsert(2)
	require.NoError(t, err)
	_, err = m.EraseKey(2)
	require.NoError(t, err)

	m.Clear()
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 0, m.Tombstones())
	assert.Equal(t, 8, m.Cap())
	assert.Equal(t, []uint32{0, 0}, get(t, m, 1))
	assert.Equal(t, m.End(), m.Begin())
}

func TestGrowCapacity(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		live     int
		want     int
		err      error
	}{
		{"compact", 32, 8, 32, nil},
		{"grow x4", 32, 9, 128, nil},
		{"grow when nothing fits", 1, 0, 4, nil},
		{"grow x2 above limit", fastGrowthLimit, fastGrowthLimit/4 + 1, 2 * fastGrowthLimit, nil},
		{"clamped to max", MaxCapacity / 2, MaxCapacity / 8 * 3, MaxCapacity, nil},
		{"compact at max", MaxCapacity, MaxCapacity / 4 * 3 / 2, MaxCapacity, nil},
		{"full at max", MaxCapacity, MaxCapacity / 2, 0, ErrTableFull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := growCapacity(tt.capacity, tt.live)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
