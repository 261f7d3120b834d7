// core/table/variants.go
package table

// Variant is one gap value observed next to a k-mer. After ResolveAmbiguity
// the single remaining variant carries a confidence score in Count.
type Variant struct {
	Gap   uint64
	Count uint8
}

// AttachVariant records one observation of gap next to key. Unknown and
// ambiguous keys are ignored. A key whose list holds two or more variants
// seen at least strong times becomes ambiguous and loses its list. When the
// list already holds maxVariants entries a new gap replaces the least
// frequent entry, the earliest one on ties.
func (t *Table) AttachVariant(key, gap uint64, strong, maxVariants int) {
	pos, found := t.findSlot(key)
	if !found {
		return
	}
	mu := &t.locks[pos]
	mu.Lock()
	defer mu.Unlock()

	if c, _ := unpack(t.slots[pos].Load()); c == AmbiguousCount {
		return
	}

	vs := t.variants[pos]
	seen := false
	for i := range vs {
		if vs[i].Gap == gap {
			if vs[i].Count < 255 {
				vs[i].Count++
			}
			seen = true
			break
		}
	}
	if !seen {
		switch {
		case len(vs) < maxVariants:
			t.ledger.Alloc(variantBytes)
			vs = append(vs, Variant{Gap: gap, Count: 1})
			t.variants[pos] = vs
		case len(vs) > 0:
			weakest := 0
			for i := 1; i < len(vs); i++ {
				if vs[i].Count < vs[weakest].Count {
					weakest = i
				}
			}
			vs[weakest] = Variant{Gap: gap, Count: 1}
		}
	}

	strongN := 0
	for _, v := range vs {
		if int(v.Count) >= strong {
			strongN++
		}
	}
	if strongN >= 2 {
		t.markAmbiguous(pos, key)
	}
}

func (t *Table) markAmbiguous(pos, value uint64) {
	t.slots[pos].Store(pack(AmbiguousCount, value))
	t.ledger.Free(int64(len(t.variants[pos])) * variantBytes)
	t.variants[pos] = nil
}

// ResolveAmbiguity collapses every variant list to its winner. Variants seen
// at least errCount times are error-level, those seen at least freqCount times
// truth-level. Keys with two or more error-level variants, or no truth-level
// variant, become ambiguous tombstones. Otherwise the most frequent
// truth-level variant is kept with score count/max(best sub-error count, 1),
// capped at 255. It returns the number of keys removed.
func (t *Table) ResolveAmbiguity(freqCount, errCount int) int {
	removed := 0
	for i := range t.slots {
		c, v := unpack(t.slots[i].Load())
		if v == Empty || v == Removed || c == AmbiguousCount {
			continue
		}
		vs := t.variants[i]
		aboveErr, aboveFreq, win := 0, 0, -1
		runnerUp := 1
		for j, x := range vs {
			n := int(x.Count)
			if n >= errCount {
				aboveErr++
			} else {
				runnerUp = max(runnerUp, n)
			}
			if n >= freqCount {
				aboveFreq++
				if win < 0 || x.Count > vs[win].Count {
					win = j
				}
			}
		}
		if aboveErr >= 2 || aboveFreq == 0 {
			t.markAmbiguous(uint64(i), Removed)
			t.live.Add(-1)
			removed++
			continue
		}
		score := min(int(vs[win].Count)/runnerUp, 255)
		t.ledger.Free(int64(len(vs)-1) * variantBytes)
		t.variants[i] = []Variant{{Gap: vs[win].Gap, Count: uint8(score)}}
	}
	return removed
}

// Variants returns a copy of the variant list of key.
func (t *Table) Variants(key uint64) []Variant {
	pos, found := t.findSlot(key)
	if !found || t.variants == nil {
		return nil
	}
	mu := &t.locks[pos]
	mu.Lock()
	defer mu.Unlock()
	return append([]Variant(nil), t.variants[pos]...)
}

// Ambiguous reports whether key is present and marked ambiguous.
func (t *Table) Ambiguous(key uint64) bool {
	c, ok := t.Count(key)
	return ok && c == AmbiguousCount
}
