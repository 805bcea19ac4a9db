package memofib

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/memofib/internal/conv"
)

// Table is a caller-owned memo buffer with one slot per index in [0, Len()).
//
// Every slot is either uncomputed or holds a computed value. Slot state is
// tracked in a roaring bitmap rather than inferred from the stored value, so
// a computed zero or negative value (possible under OverflowWrap) is never
// mistaken for an empty slot.
//
// Slots 0 and 1 are seeded to 1. A Table is not safe for concurrent use;
// it belongs to a single computation chain.
type Table struct {
	values   []int64
	computed *roaring.Bitmap
}

// NewTable creates a table with capacity slots and seeds the base cases.
func NewTable(capacity int) (*Table, error) {
	if _, err := conv.IntToUint32(capacity); err != nil || capacity < 2 {
		return nil, ErrInvalidCapacity
	}

	t := &Table{
		values:   make([]int64, capacity),
		computed: roaring.New(),
	}
	t.seed()

	return t, nil
}

// TableFromSlots builds a table from the zero-sentinel slot layout where a
// positive value means computed and zero means uncomputed.
//
// Slots 0 and 1 are always seeded to 1 regardless of their input value.
// The input slice is copied.
func TableFromSlots(slots []int64) (*Table, error) {
	t, err := NewTable(len(slots))
	if err != nil {
		return nil, err
	}

	for i := 2; i < len(slots); i++ {
		if slots[i] > 0 {
			t.store(i, slots[i])
		}
	}

	return t, nil
}

func (t *Table) seed() {
	t.store(0, 1)
	t.store(1, 1)
}

// Len returns the capacity of the table.
func (t *Table) Len() int {
	return len(t.values)
}

// Lookup returns the value at index i and whether it has been computed.
// Out of range indices report false.
func (t *Table) Lookup(i int) (int64, bool) {
	if !t.inRange(i) || !t.computed.Contains(uint32(i)) {
		return 0, false
	}
	return t.values[i], true
}

// Computed returns the number of computed slots, base cases included.
func (t *Table) Computed() int {
	return int(t.computed.GetCardinality())
}

// Indices returns the computed indices in ascending order.
func (t *Table) Indices() []int {
	out := make([]int, 0, t.computed.GetCardinality())
	it := t.computed.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// Slots returns a copy of the table in the zero-sentinel layout.
// Uncomputed slots are reported as 0.
func (t *Table) Slots() []int64 {
	out := make([]int64, len(t.values))
	it := t.computed.Iterator()
	for it.HasNext() {
		i := it.Next()
		out[i] = t.values[i]
	}
	return out
}

// Reset marks every slot except the base cases as uncomputed.
func (t *Table) Reset() {
	clear(t.values)
	t.computed.Clear()
	t.seed()
}

// Clone returns an independent copy of the table.
func (t *Table) Clone() *Table {
	values := make([]int64, len(t.values))
	copy(values, t.values)

	return &Table{
		values:   values,
		computed: t.computed.Clone(),
	}
}

func (t *Table) inRange(i int) bool {
	return i >= 0 && i < len(t.values)
}

func (t *Table) store(i int, v int64) {
	t.values[i] = v
	t.computed.Add(uint32(i))
}
