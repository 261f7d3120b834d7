// Package memstat tracks estimated heap use of the large structures of a run.
// A Ledger is passed explicitly to whatever allocates; there is no global state.
package memstat

import (
	"fmt"
	"sync/atomic"
)

// Ledger counts bytes currently held and the highest count seen. A nil
// Ledger ignores every call.
type Ledger struct {
	current atomic.Int64
	peak    atomic.Int64
}

// Alloc records n bytes as allocated and updates the peak.
func (l *Ledger) Alloc(n int64) {
	if l == nil {
		return
	}
	cur := l.current.Add(n)
	for {
		p := l.peak.Load()
		if cur <= p || l.peak.CompareAndSwap(p, cur) {
			return
		}
	}
}

// Free records n bytes as released.
func (l *Ledger) Free(n int64) {
	if l == nil {
		return
	}
	l.current.Add(-n)
}

// Current is the number of bytes held now.
func (l *Ledger) Current() int64 {
	if l == nil {
		return 0
	}
	return l.current.Load()
}

// Peak is the highest Current seen.
func (l *Ledger) Peak() int64 {
	if l == nil {
		return 0
	}
	return l.peak.Load()
}

// MB formats a byte count in mebibytes.
func MB(n int64) string { return fmt.Sprintf("%.1f", float64(n)/(1<<20)) }
