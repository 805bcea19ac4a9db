package memofib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable(t *testing.T) {
	tbl, err := NewTable(41)
	require.NoError(t, err)

	assert.Equal(t, 41, tbl.Len())
	assert.Equal(t, 2, tbl.Computed())
	assert.Equal(t, []int{0, 1}, tbl.Indices())

	for i := range 2 {
		v, ok := tbl.Lookup(i)
		assert.True(t, ok)
		assert.Equal(t, int64(1), v)
	}

	_, ok := tbl.Lookup(2)
	assert.False(t, ok)

	slots := tbl.Slots()
	assert.Len(t, slots, 41)
	assert.Equal(t, int64(1), slots[0])
	assert.Equal(t, int64(1), slots[1])
	assert.Equal(t, int64(0), slots[40])
}

func TestNewTable_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{-1, 0, 1, 1 << 40} {
		_, err := NewTable(capacity)
		assert.ErrorIs(t, err, ErrInvalidCapacity, "capacity=%d", capacity)
	}
}

func TestTable_LookupOutOfRange(t *testing.T) {
	tbl, err := NewTable(3)
	require.NoError(t, err)

	_, ok := tbl.Lookup(-1)
	assert.False(t, ok)
	_, ok = tbl.Lookup(3)
	assert.False(t, ok)
}

func TestTableFromSlots(t *testing.T) {
	tbl, err := TableFromSlots([]int64{0, 7, 2, 0, 5})
	require.NoError(t, err)

	// Base cases are always reseeded.
	v, ok := tbl.Lookup(0)
	assert.True(t, ok)
	assert.Equal(t, int64(1), v)
	v, ok = tbl.Lookup(1)
	assert.True(t, ok)
	assert.Equal(t, int64(1), v)

	v, ok = tbl.Lookup(2)
	assert.True(t, ok)
	assert.Equal(t, int64(2), v)

	_, ok = tbl.Lookup(3)
	assert.False(t, ok, "zero is the uncomputed sentinel")

	assert.Equal(t, []int{0, 1, 2, 4}, tbl.Indices())
	assert.Equal(t, []int64{1, 1, 2, 0, 5}, tbl.Slots())
}

func TestTable_ComputedZeroIsNotEmpty(t *testing.T) {
	tbl, err := NewTable(4)
	require.NoError(t, err)

	tbl.store(3, 0)

	v, ok := tbl.Lookup(3)
	assert.True(t, ok)
	assert.Equal(t, int64(0), v)
}

func TestTable_ResetAndClone(t *testing.T) {
	tbl, err := NewTable(10)
	require.NoError(t, err)

	_, err = MemoFib(9, tbl)
	require.NoError(t, err)
	assert.Equal(t, 10, tbl.Computed())

	clone := tbl.Clone()
	tbl.Reset()

	assert.Equal(t, 2, tbl.Computed())
	assert.Equal(t, []int64{1, 1, 0, 0, 0, 0, 0, 0, 0, 0}, tbl.Slots())

	assert.Equal(t, 10, clone.Computed())
	v, ok := clone.Lookup(9)
	assert.True(t, ok)
	assert.Equal(t, int64(55), v)
}
