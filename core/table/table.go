// core/table/table.go
package table

import (
	"sync"
	"sync/atomic"

	"readfix-core/memstat"
)

// Slot layout: the top 8 bits hold the count, the low 56 bits the value.
const (
	valueBits = 56
	valueMask = 1<<valueBits - 1

	// Empty and Removed are the reserved slot values. Keys must be below Removed.
	Empty   uint64 = valueMask
	Removed uint64 = valueMask - 1

	// AmbiguousCount marks a k-mer whose context is not trustworthy.
	AmbiguousCount = 255
	maxCount       = 254

	// MaxLoad is the occupancy above which insertion reports a full table.
	MaxLoad = 0.85
	// RetainGrowth sizes the table built by RetainFrequent.
	RetainGrowth = 1.7
	// hashFraction picks the multiplier prime relative to the table size.
	hashFraction = 0.6

	slotBytes    = 8
	sideBytes    = 24 + 8 // variant slice header and lock
	variantBytes = 16
)

const noSlot = ^uint64(0)

// Table is an open-addressing table of k-mer counts with a variant side table.
//
// Probing starts at key*m mod size, m a prime near 0.6*size, and walks forward
// linearly. InsertOrIncrement is safe for concurrent use; it updates slots with
// compare-and-swap and never blocks. AttachVariant is safe for concurrent use
// and locks only the slot it mutates. Everything else expects exclusive access.
type Table struct {
	slots []atomic.Uint64
	size  uint64
	mult  uint64
	limit int64
	live  atomic.Int64
	peak  uint64

	variants [][]Variant
	locks    []sync.Mutex

	ledger *memstat.Ledger
}

// New returns an empty table whose size is the smallest ladder prime above
// minCapacity. ledger may be nil.
func New(minCapacity uint64, ledger *memstat.Ledger) *Table {
	t := &Table{ledger: ledger}
	t.alloc(PrimeAbove(minCapacity))
	t.peak = t.size
	return t
}

func (t *Table) alloc(size uint64) {
	t.slots = make([]atomic.Uint64, size)
	for i := range t.slots {
		t.slots[i].Store(Empty)
	}
	t.size = size
	t.mult = PrimeAbove(uint64(hashFraction * float64(size)))
	t.limit = int64(MaxLoad * float64(size))
	t.live.Store(0)
	t.ledger.Alloc(int64(size) * slotBytes)
}

// Cap is the number of slots.
func (t *Table) Cap() uint64 { return t.size }

// Len is the number of live k-mers.
func (t *Table) Len() int64 { return t.live.Load() }

// Peak is the largest size this table has been allocated or grown to.
func (t *Table) Peak() uint64 { return t.peak }

func unpack(s uint64) (count int, value uint64) {
	return int(s >> valueBits), s & valueMask
}

func pack(count int, value uint64) uint64 {
	return uint64(count)<<valueBits | value
}

func probe(slots []atomic.Uint64, size, mult, key uint64) (pos uint64, found bool) {
	pos = key * mult % size
	tomb := noSlot
	for n := uint64(0); n < size; n++ {
		_, v := unpack(slots[pos].Load())
		switch {
		case v == key:
			return pos, true
		case v == Empty:
			if tomb != noSlot {
				return tomb, false
			}
			return pos, false
		case v == Removed && tomb == noSlot:
			tomb = pos
		}
		if pos++; pos == size {
			pos = 0
		}
	}
	return tomb, false
}

// findSlot returns the slot holding key, or the slot a new key would take.
// pos is noSlot when the table has neither the key nor room for it.
func (t *Table) findSlot(key uint64) (pos uint64, found bool) {
	return probe(t.slots, t.size, t.mult, key)
}

// InsertOrIncrement counts one occurrence of key. It returns false once more
// than MaxLoad of the slots are live; the caller must then drop the table's
// contents and redo the whole pass on a larger table.
func (t *Table) InsertOrIncrement(key uint64) bool {
	if key >= Removed {
		panic("table: key collides with reserved values")
	}
	for {
		pos, found := t.findSlot(key)
		if pos == noSlot {
			return false
		}
		s := &t.slots[pos]
		if found {
			for {
				old := s.Load()
				if c, _ := unpack(old); c >= maxCount || s.CompareAndSwap(old, old+1<<valueBits) {
					break
				}
			}
			return t.live.Load() <= t.limit
		}
		old := s.Load()
		if _, v := unpack(old); v != Empty && v != Removed {
			continue // another writer took the slot; probe again
		}
		if !s.CompareAndSwap(old, pack(1, key)) {
			continue
		}
		return t.live.Add(1) <= t.limit
	}
}

// Count returns the count stored for key.
func (t *Table) Count(key uint64) (int, bool) {
	pos, found := t.findSlot(key)
	if !found {
		return 0, false
	}
	c, _ := unpack(t.slots[pos].Load())
	return c, true
}

// RetainFrequent replaces the table by one about RetainGrowth times the
// number of keys counted at least minCount times, holding exactly those keys
// with their count reset to zero, and an empty variant side table.
func (t *Table) RetainFrequent(minCount int) {
	var frequent uint64
	for i := range t.slots {
		c, v := unpack(t.slots[i].Load())
		if v != Empty && v != Removed && c >= minCount {
			frequent++
		}
	}

	nt := &Table{ledger: t.ledger, peak: t.peak}
	nt.alloc(PrimeAbove(uint64(RetainGrowth * float64(frequent))))
	for i := range t.slots {
		c, v := unpack(t.slots[i].Load())
		if v == Empty || v == Removed || c < minCount {
			continue
		}
		pos, _ := probe(nt.slots, nt.size, nt.mult, v)
		nt.slots[pos].Store(pack(0, v))
	}
	nt.live.Store(int64(frequent))

	t.Clear()
	t.slots, t.size, t.mult, t.limit = nt.slots, nt.size, nt.mult, nt.limit
	t.live.Store(nt.live.Load())
	t.peak = max(t.peak, t.size)

	t.variants = make([][]Variant, t.size)
	t.locks = make([]sync.Mutex, t.size)
	t.ledger.Alloc(int64(t.size) * sideBytes)
}

// Clear releases all slots and the variant side table. The peak size is kept.
func (t *Table) Clear() {
	if t.slots != nil {
		t.ledger.Free(int64(t.size) * slotBytes)
	}
	if t.variants != nil {
		var entries int64
		for _, vs := range t.variants {
			entries += int64(len(vs))
		}
		t.ledger.Free(int64(t.size)*sideBytes + entries*variantBytes)
	}
	t.slots, t.variants, t.locks = nil, nil, nil
	t.size, t.mult, t.limit = 0, 0, 0
	t.live.Store(0)
}

// RecreateAtPeak replaces the table by an empty one of the peak size.
func (t *Table) RecreateAtPeak() {
	t.Clear()
	t.alloc(t.peak)
}

// RecreateAtDoublePeak replaces the table by an empty one at least twice the
// peak size and makes that the new peak.
func (t *Table) RecreateAtDoublePeak() {
	t.Clear()
	t.peak = PrimeAbove(2 * t.peak)
	t.alloc(t.peak)
}
