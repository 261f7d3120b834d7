package memstat

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedgerPeak(t *testing.T) {
	var l Ledger
	l.Alloc(100)
	l.Alloc(50)
	l.Free(120)
	l.Alloc(10)
	assert.Equal(t, int64(40), l.Current())
	assert.Equal(t, int64(150), l.Peak())
}

func TestLedgerConcurrent(t *testing.T) {
	var l Ledger
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				l.Alloc(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(8000), l.Current())
	assert.Equal(t, int64(8000), l.Peak())
}

func TestNilLedger(t *testing.T) {
	var l *Ledger
	l.Alloc(5)
	l.Free(5)
	assert.Zero(t, l.Peak())
	assert.Equal(t, "1.0", MB(1<<20))
}
