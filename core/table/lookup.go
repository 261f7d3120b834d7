// core/table/lookup.go
package table

// Status is the outcome of LookupCorrection.
type Status int

const (
	NotFound Status = iota
	Ambiguous
	TooDifferent
	AlreadyCorrect
	Correct
)

func (s Status) String() string {
	switch s {
	case NotFound:
		return "not-found"
	case Ambiguous:
		return "ambiguous"
	case TooDifferent:
		return "too-different"
	case AlreadyCorrect:
		return "already-correct"
	case Correct:
		return "correct"
	}
	return "unknown"
}

// Lookup is the answer to a correction query. Gap and Score are set only for
// Correct.
type Lookup struct {
	Status Status
	Gap    uint64
	Score  uint8
}

// LookupCorrection compares the observed gap of key with the retained one.
// It reads the table only and may run concurrently with other lookups. A key
// whose list was never resolved to a single variant answers Ambiguous.
func (t *Table) LookupCorrection(key, gap uint64, maxBitDiff int, diff *DiffTable) Lookup {
	pos, found := t.findSlot(key)
	if !found {
		return Lookup{Status: NotFound}
	}
	if c, _ := unpack(t.slots[pos].Load()); c == AmbiguousCount {
		return Lookup{Status: Ambiguous}
	}
	if t.variants == nil || len(t.variants[pos]) == 0 {
		return Lookup{Status: NotFound}
	}
	vs := t.variants[pos]
	if len(vs) > 1 {
		return Lookup{Status: Ambiguous}
	}
	want := vs[0]
	if want.Gap == gap {
		return Lookup{Status: AlreadyCorrect}
	}
	if diff.Diff(gap, want.Gap) < maxBitDiff {
		return Lookup{Status: Correct, Gap: want.Gap, Score: want.Count}
	}
	return Lookup{Status: TooDifferent}
}
