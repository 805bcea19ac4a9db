package memofib

import (
	"context"
	"math"
	"testing"

	"github.com/hupe1980/memofib/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(t *testing.T, capacity int) *Table {
	t.Helper()
	tbl, err := NewTable(capacity)
	require.NoError(t, err)
	return tbl
}

func TestMemoFib_MatchesBottomUp(t *testing.T) {
	for n := 0; n <= 40; n++ {
		tbl := newTable(t, 41)

		got, err := MemoFib(n, tbl)
		require.NoError(t, err)
		assert.Equal(t, testutil.BottomUp(n), got, "n=%d", n)
	}
}

func TestMemoFib_Forty(t *testing.T) {
	tbl := newTable(t, 41)

	got, err := MemoFib(40, tbl)
	require.NoError(t, err)
	assert.Equal(t, testutil.BottomUp(40), got)
	assert.Equal(t, int64(165580141), got)
}

func TestMemoFib_Boundaries(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	calc := New(WithMetricsCollector(metrics))
	tbl := newTable(t, 2)

	for _, n := range []int{0, 1} {
		got, err := calc.Fib(n, tbl)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got)
	}

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.Lookups, "base cases do not recurse")
	assert.Equal(t, int64(0), stats.Misses)
}

func TestMemoFib_TableInvariant(t *testing.T) {
	tbl := newTable(t, 41)

	_, err := MemoFib(30, tbl)
	require.NoError(t, err)

	seq := testutil.Sequence(40)
	for i := range tbl.Len() {
		v, ok := tbl.Lookup(i)
		if i <= 30 {
			require.True(t, ok, "slot %d visited", i)
			assert.Equal(t, seq[i], v, "slot %d", i)
		} else {
			assert.False(t, ok, "slot %d beyond n stays uncomputed", i)
		}
	}
}

func TestMemoFib_CacheHit(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	calc := New(WithMetricsCollector(metrics))
	tbl := newTable(t, 41)

	first, err := calc.Fib(40, tbl)
	require.NoError(t, err)

	// One miss per index 2..40, one hit per base case read plus each n-2 read.
	stats := metrics.GetStats()
	assert.Equal(t, int64(39), stats.Misses)
	assert.Equal(t, int64(40), stats.Hits)

	second, err := calc.Fib(40, tbl)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	after := metrics.GetStats()
	assert.Equal(t, stats.Lookups+1, after.Lookups, "second call is a single lookup")
	assert.Equal(t, stats.Misses, after.Misses)
}

func TestMemoFib_Idempotent(t *testing.T) {
	tbl := newTable(t, 41)

	want, err := MemoFib(25, tbl)
	require.NoError(t, err)

	for range 5 {
		got, err := MemoFib(25, tbl)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestMemoFib_ReusesPartialTable(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	calc := New(WithMetricsCollector(metrics))
	tbl := newTable(t, 41)

	_, err := calc.Fib(20, tbl)
	require.NoError(t, err)
	before := metrics.GetStats()

	got, err := calc.Fib(22, tbl)
	require.NoError(t, err)
	assert.Equal(t, testutil.BottomUp(22), got)

	after := metrics.GetStats()
	assert.Equal(t, int64(2), after.Misses-before.Misses, "only slots 21 and 22 are new")
}

func TestMemoFib_OutOfRange(t *testing.T) {
	tbl := newTable(t, 41)

	for _, n := range []int{-1, 41, 1000} {
		_, err := MemoFib(n, tbl)
		require.ErrorIs(t, err, ErrOutOfRange, "n=%d", n)

		var oor *IndexOutOfRangeError
		require.ErrorAs(t, err, &oor)
		assert.Equal(t, n, oor.Index)
		assert.Equal(t, 41, oor.Capacity)
	}

	assert.Equal(t, 2, tbl.Computed(), "failed calls leave the table untouched")
}

func TestMemoFib_NilTable(t *testing.T) {
	_, err := MemoFib(3, nil)
	assert.ErrorIs(t, err, ErrNilTable)
}

func TestMemoFib_LegacySlots(t *testing.T) {
	// Zero-sentinel layout with only slots 0 and 1 seeded.
	slots := make([]int64, 41)
	slots[0], slots[1] = 1, 1

	tbl, err := TableFromSlots(slots)
	require.NoError(t, err)

	got, err := MemoFib(40, tbl)
	require.NoError(t, err)
	assert.Equal(t, int64(165580141), got)
	assert.Equal(t, testutil.Sequence(40), tbl.Slots())
}

func TestOverflow_ErrorPolicy(t *testing.T) {
	tbl := newTable(t, 100)

	got, err := MemoFib(MaxIndex, tbl)
	require.NoError(t, err)
	assert.Equal(t, testutil.BottomUp(MaxIndex), got)

	_, err = MemoFib(MaxIndex+1, tbl)
	require.ErrorIs(t, err, ErrOverflow)

	var ov *IntegerOverflowError
	require.ErrorAs(t, err, &ov)
	assert.Equal(t, MaxIndex+1, ov.Index)

	_, ok := tbl.Lookup(MaxIndex + 1)
	assert.False(t, ok, "overflowing slot stays uncomputed")
}

func TestOverflow_ErrorPolicyFromFreshTable(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	calc := New(WithMetricsCollector(metrics))
	tbl := newTable(t, 100)

	_, err := calc.Fib(99, tbl)
	require.ErrorIs(t, err, ErrOverflow)
	assert.Equal(t, 2, tbl.Computed())
	assert.Equal(t, int64(0), metrics.GetStats().Misses, "known overflow fails without recursing")
}

func TestOverflow_WrapPolicy(t *testing.T) {
	calc := New(WithOverflowPolicy(OverflowWrap))
	tbl := newTable(t, 200)

	got, err := calc.Fib(199, tbl)
	require.NoError(t, err)
	assert.Equal(t, testutil.BottomUpWrapping(199), got)

	seq := testutil.Sequence(199)
	for i := range 200 {
		v, ok := tbl.Lookup(i)
		require.True(t, ok)
		assert.Equal(t, seq[i], v, "slot %d", i)
	}

	// Wrapped values can be negative; they are still cache hits.
	wrapped, ok := tbl.Lookup(MaxIndex + 1)
	require.True(t, ok)
	assert.Less(t, wrapped, int64(0))
}

func TestFib_DeepRecursionUsesStrides(t *testing.T) {
	n := 3*maxRecursionDepth + 17
	calc := New(WithOverflowPolicy(OverflowWrap))
	tbl := newTable(t, n+1)

	got, err := calc.Fib(n, tbl)
	require.NoError(t, err)
	assert.Equal(t, testutil.BottomUpWrapping(n), got)
	assert.Equal(t, n+1, tbl.Computed())
}

func TestCompute(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	calc := New(WithMetricsCollector(metrics))

	res, err := calc.Compute(context.Background(), 40)
	require.NoError(t, err)
	assert.Equal(t, 40, res.N)
	assert.Equal(t, int64(165580141), res.Value)
	require.NotNil(t, res.Table)
	assert.Equal(t, 41, res.Table.Len())

	res, err = calc.Compute(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Value)

	_, err = calc.Compute(context.Background(), -1)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = calc.Compute(context.Background(), 1<<40)
	assert.ErrorIs(t, err, ErrOverflow)

	stats := metrics.GetStats()
	assert.Equal(t, int64(4), stats.ComputeCount)
	assert.Equal(t, int64(2), stats.ComputeErrors)
}

func TestCompute_IndexBeyondTableRange(t *testing.T) {
	calc := New(WithOverflowPolicy(OverflowWrap))

	for _, n := range []int{math.MaxInt, math.MaxUint32, 1 << 40} {
		res, err := calc.Compute(context.Background(), n)
		require.ErrorIs(t, err, ErrInvalidCapacity, "n=%d", n)
		assert.Nil(t, res.Table)
	}

	assert.Equal(t, int64(0), tableBytes(math.MaxInt))
	assert.Equal(t, int64(41*8), tableBytes(40))
	assert.Equal(t, int64(2*8), tableBytes(0))
}

func TestCompute_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Compute(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseOverflowPolicy(t *testing.T) {
	p, err := ParseOverflowPolicy("wrap")
	require.NoError(t, err)
	assert.Equal(t, OverflowWrap, p)
	assert.Equal(t, "wrap", p.String())

	p, err = ParseOverflowPolicy("ERROR")
	require.NoError(t, err)
	assert.Equal(t, OverflowError, p)

	_, err = ParseOverflowPolicy("saturate")
	assert.Error(t, err)
}
