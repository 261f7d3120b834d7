// core/table/primes.go
package table

import (
	"math/big"
	"sort"
)

// Table sizes come from an ascending ladder of primes roughly 6% apart.
const (
	ladderFirst = 1021
	ladderLast  = 1 << 40
	ladderStep  = 1.06
)

var ladder = buildLadder()

func buildLadder() []uint64 {
	var out []uint64
	for x := float64(ladderFirst); x < ladderLast; x *= ladderStep {
		p := nextPrime(uint64(x))
		if len(out) == 0 || p > out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}

func nextPrime(n uint64) uint64 {
	var b big.Int
	for {
		b.SetUint64(n)
		if b.ProbablyPrime(0) {
			return n
		}
		n++
	}
}

// PrimeAbove returns the smallest ladder prime strictly greater than n, or
// the largest ladder prime when n is beyond the ladder.
func PrimeAbove(n uint64) uint64 {
	i := sort.Search(len(ladder), func(i int) bool { return ladder[i] > n })
	if i == len(ladder) {
		return ladder[len(ladder)-1]
	}
	return ladder[i]
}
