package table

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readfix-core/memstat"
)

func TestPrimeLadder(t *testing.T) {
	require.NotEmpty(t, ladder)
	assert.Equal(t, uint64(1021), ladder[0])
	for i, p := range ladder {
		require.True(t, new(big.Int).SetUint64(p).ProbablyPrime(0), "%d", p)
		if i > 0 {
			require.Greater(t, p, ladder[i-1])
		}
	}
	assert.Equal(t, uint64(1021), PrimeAbove(0))
	assert.Greater(t, PrimeAbove(1021), uint64(1021))
	assert.Equal(t, ladder[len(ladder)-1], PrimeAbove(^uint64(0)))
}

func TestInsertAndFind(t *testing.T) {
	tb := New(1000, nil)
	assert.Equal(t, uint64(1021), tb.Cap())

	for k := uint64(1); k <= 500; k++ {
		for i := uint64(0); i < k%7+1; i++ {
			require.True(t, tb.InsertOrIncrement(k*7919))
		}
	}
	assert.Equal(t, int64(500), tb.Len())
	for k := uint64(1); k <= 500; k++ {
		c, ok := tb.Count(k * 7919)
		require.True(t, ok)
		require.Equal(t, int(k%7+1), c)
	}
	_, ok := tb.Count(3)
	assert.False(t, ok)
}

func TestCountSaturates(t *testing.T) {
	tb := New(0, nil)
	for i := 0; i < 300; i++ {
		tb.InsertOrIncrement(42)
	}
	c, ok := tb.Count(42)
	require.True(t, ok)
	assert.Equal(t, 254, c)
}

func TestInsertReportsFull(t *testing.T) {
	tb := New(0, nil)
	limit := int(MaxLoad * float64(tb.Cap()))
	for k := 0; k < limit; k++ {
		require.True(t, tb.InsertOrIncrement(uint64(k)), "key %d", k)
	}
	assert.False(t, tb.InsertOrIncrement(uint64(limit)))
	// repeated keys keep reporting full
	assert.False(t, tb.InsertOrIncrement(0))
}

func TestReservedKeysPanic(t *testing.T) {
	tb := New(0, nil)
	assert.Panics(t, func() { tb.InsertOrIncrement(Empty) })
	assert.Panics(t, func() { tb.InsertOrIncrement(Removed) })
}

func TestConcurrentInsert(t *testing.T) {
	tb := New(4000, nil)
	const workers = 8
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := uint64(0); k < 2000; k++ {
				tb.InsertOrIncrement(k)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(2000), tb.Len())
	for k := uint64(0); k < 2000; k++ {
		c, ok := tb.Count(k)
		require.True(t, ok)
		require.Equal(t, workers, c)
	}
}

func TestRetainFrequent(t *testing.T) {
	var ledger memstat.Ledger
	tb := New(5000, &ledger)
	peak := tb.Peak()

	want := map[uint64]bool{}
	for k := uint64(0); k < 3000; k++ {
		n := int(k % 6)
		for i := 0; i <= n; i++ {
			tb.InsertOrIncrement(k)
		}
		if n+1 >= 4 {
			want[k] = true
		}
	}

	tb.RetainFrequent(4)
	assert.Equal(t, int64(len(want)), tb.Len())
	assert.Equal(t, PrimeAbove(uint64(RetainGrowth*float64(len(want)))), tb.Cap())
	assert.Equal(t, peak, tb.Peak())

	for k := uint64(0); k < 3000; k++ {
		c, ok := tb.Count(k)
		require.Equal(t, want[k], ok, "key %d", k)
		if ok {
			require.Zero(t, c)
		}
	}
	assert.Equal(t, int64(tb.Cap())*(slotBytes+sideBytes), ledger.Current())
}

func frequentTable(t *testing.T, keys ...uint64) *Table {
	t.Helper()
	tb := New(0, nil)
	for _, k := range keys {
		tb.InsertOrIncrement(k)
	}
	tb.RetainFrequent(1)
	return tb
}

func attachN(tb *Table, key, gap uint64, n, strong, maxVariants int) {
	for i := 0; i < n; i++ {
		tb.AttachVariant(key, gap, strong, maxVariants)
	}
}

func TestAttachVariantCounts(t *testing.T) {
	tb := frequentTable(t, 10)
	attachN(tb, 10, 0x3, 5, 4, 8)
	attachN(tb, 10, 0xC, 2, 4, 8)
	attachN(tb, 99, 0xC, 2, 4, 8) // unknown key

	assert.Equal(t, []Variant{{Gap: 0x3, Count: 5}, {Gap: 0xC, Count: 2}}, tb.Variants(10))
	assert.False(t, tb.Ambiguous(10))
	assert.Nil(t, tb.Variants(99))
}

func TestAttachVariantTwoStrongMakesAmbiguous(t *testing.T) {
	tb := frequentTable(t, 10)
	attachN(tb, 10, 0x3, 4, 4, 8)
	attachN(tb, 10, 0xC, 3, 4, 8)
	require.False(t, tb.Ambiguous(10))

	tb.AttachVariant(10, 0xC, 4, 8)
	assert.True(t, tb.Ambiguous(10))
	assert.Empty(t, tb.Variants(10))

	// ambiguous keys ignore further observations
	attachN(tb, 10, 0x3, 3, 4, 8)
	assert.Empty(t, tb.Variants(10))
}

func TestAttachVariantEvictsWeakest(t *testing.T) {
	tb := frequentTable(t, 10)
	attachN(tb, 10, 1, 3, 100, 3)
	attachN(tb, 10, 2, 1, 100, 3)
	attachN(tb, 10, 3, 1, 100, 3)

	tb.AttachVariant(10, 4, 100, 3)
	assert.Equal(t, []Variant{{Gap: 1, Count: 3}, {Gap: 4, Count: 1}, {Gap: 3, Count: 1}}, tb.Variants(10))

	tb.AttachVariant(10, 5, 100, 3)
	assert.Equal(t, []Variant{{Gap: 1, Count: 3}, {Gap: 5, Count: 1}, {Gap: 3, Count: 1}}, tb.Variants(10))
}

func TestAttachVariantConcurrent(t *testing.T) {
	tb := frequentTable(t, 7, 8)
	const workers = 8
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(gap uint64) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				tb.AttachVariant(7, gap, 1000, workers)
				tb.AttachVariant(8, gap, 1000, workers)
			}
		}(uint64(w + 1))
	}
	wg.Wait()

	for _, key := range []uint64{7, 8} {
		vs := tb.Variants(key)
		require.Len(t, vs, workers)
		seen := map[uint64]bool{}
		for _, v := range vs {
			assert.Equal(t, uint8(50), v.Count)
			seen[v.Gap] = true
		}
		assert.Len(t, seen, workers)
	}
}

func TestResolveAmbiguity(t *testing.T) {
	tb := frequentTable(t, 1, 2, 3, 4, 5)
	const freq, errc = 8, 3

	attachN(tb, 1, 0xA, 10, 100, 8) // clean winner
	attachN(tb, 1, 0xB, 2, 100, 8)

	attachN(tb, 2, 0xA, 10, 100, 8) // two error-level variants
	attachN(tb, 2, 0xB, 3, 100, 8)

	attachN(tb, 3, 0xA, 7, 100, 8) // nothing truth-level

	attachN(tb, 4, 0xA, 9, 100, 8) // no runner-up

	// 5 never saw a gap

	removed := tb.ResolveAmbiguity(freq, errc)
	assert.Equal(t, 3, removed)
	assert.Equal(t, int64(2), tb.Len())

	assert.Equal(t, []Variant{{Gap: 0xA, Count: 5}}, tb.Variants(1))
	assert.Equal(t, []Variant{{Gap: 0xA, Count: 9}}, tb.Variants(4))
	for _, k := range []uint64{2, 3, 5} {
		_, ok := tb.Count(k)
		assert.False(t, ok, "key %d", k)
	}
}

func TestResolveScoreCapped(t *testing.T) {
	tb := frequentTable(t, 1)
	attachN(tb, 1, 0xA, 300, 1000, 8)
	tb.ResolveAmbiguity(4, 4)
	// count saturates at 255, no runner-up
	assert.Equal(t, []Variant{{Gap: 0xA, Count: 255}}, tb.Variants(1))
}

func TestLookupCorrection(t *testing.T) {
	diff := NewDiffTable()
	tb := frequentTable(t, 1, 2, 3)
	attachN(tb, 1, 0b00_0000_11, 12, 100, 8)
	attachN(tb, 1, 0b00_0000_10, 2, 100, 8)
	attachN(tb, 2, 0x1, 5, 5, 8)
	attachN(tb, 2, 0x2, 5, 5, 8)
	attachN(tb, 3, 0x1, 12, 100, 8)
	tb.ResolveAmbiguity(8, 4)

	assert.Equal(t, Lookup{Status: NotFound}, tb.LookupCorrection(99, 0, 4, diff))
	assert.Equal(t, Lookup{Status: Ambiguous}, tb.LookupCorrection(2, 0x1, 4, diff))
	assert.Equal(t, Lookup{Status: AlreadyCorrect}, tb.LookupCorrection(1, 0b11, 4, diff))

	want := Lookup{Status: Correct, Gap: 0b11, Score: 6}
	got := tb.LookupCorrection(1, 0b10, 2, diff)
	assert.Equal(t, want, got)
	assert.Equal(t, got, tb.LookupCorrection(1, 0b10, 2, diff))

	// two differing bases against maxBitDiff 2
	assert.Equal(t, Lookup{Status: TooDifferent}, tb.LookupCorrection(1, 0b1100_00, 2, diff))
	assert.Equal(t, Correct, tb.LookupCorrection(1, 0b1100_00, 3, diff).Status)
	assert.Equal(t, "too-different", TooDifferent.String())
}

func TestDiffTable(t *testing.T) {
	d := NewDiffTable()
	assert.Equal(t, 0, d.Diff(5, 5))
	assert.Equal(t, 1, d.Diff(0, 3))
	assert.Equal(t, 1, d.Diff(0, 1))
	assert.Equal(t, 2, d.Diff(0, 0b0101))
	assert.Equal(t, 32, d.Diff(0, ^uint64(0)))
	assert.Equal(t, 2, d.Diff(1<<62, 1))
}

func TestLifecycle(t *testing.T) {
	var ledger memstat.Ledger
	tb := New(2000, &ledger)
	first := tb.Cap()
	tb.InsertOrIncrement(1)

	tb.RecreateAtDoublePeak()
	assert.Equal(t, PrimeAbove(2*first), tb.Cap())
	assert.Equal(t, tb.Cap(), tb.Peak())
	assert.Zero(t, tb.Len())
	_, ok := tb.Count(1)
	assert.False(t, ok)

	doubled := tb.Cap()
	tb.InsertOrIncrement(1)
	tb.RetainFrequent(1)
	assert.Less(t, tb.Cap(), doubled)

	tb.RecreateAtPeak()
	assert.Equal(t, doubled, tb.Cap())
	assert.Equal(t, int64(doubled)*slotBytes, ledger.Current())

	tb.Clear()
	assert.Zero(t, tb.Cap())
	assert.Zero(t, ledger.Current())
	assert.GreaterOrEqual(t, ledger.Peak(), int64(doubled)*slotBytes)
}
