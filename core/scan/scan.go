// core/scan/scan.go
package scan

import (
	"iter"

	"readfix-core/packed"
	"readfix-core/seed"
)

// Pair is the canonical k-mer/gap pair at one window offset. Forward reports
// whether the canonical k-mer came from the read's own strand; Gap is always
// in the same orientation as Kmer.
type Pair struct {
	Offset  int
	Kmer    uint64
	Gap     uint64
	Forward bool
}

// Eligible reports whether s can be scanned with sd: at most half the bases
// ambiguous and at least one full window long.
func Eligible(s *packed.Sequence, sd *seed.Spaced) bool {
	if s.Ambiguous() > s.Len()/2 {
		return false
	}
	return sd.Span() <= s.Len()
}

// Count is the number of window offsets of an eligible sequence.
func Count(s *packed.Sequence, sd *seed.Spaced) int {
	if !Eligible(s, sd) {
		return 0
	}
	return s.Len() - sd.Span() + 1
}

// At computes the canonical pair for the window starting at offset.
func At(s *packed.Sequence, sd *seed.Spaced, offset int) Pair {
	return FromWindow(s.Window(offset), sd, offset)
}

// FromWindow computes the canonical pair for a 32-base window whose first
// Span() bases are the ones under the seed.
func FromWindow(window uint64, sd *seed.Spaced, offset int) Pair {
	sh := uint(64 - sd.MaskBits())
	rc := packed.RevComp64(window)

	mer := window & sd.MerMask() >> sh
	merRC := rc & sd.MerMaskRC()
	if mer < merRC {
		return Pair{Offset: offset, Kmer: mer, Gap: window & sd.GapMask() >> sh, Forward: true}
	}
	return Pair{Offset: offset, Kmer: merRC, Gap: rc & sd.GapMaskRC()}
}

// Windows yields the canonical pair of every offset in order. Ineligible
// sequences yield nothing.
func Windows(s *packed.Sequence, sd *seed.Spaced) iter.Seq[Pair] {
	return func(yield func(Pair) bool) {
		n := Count(s, sd)
		for off := 0; off < n; off++ {
			if !yield(At(s, sd, off)) {
				return
			}
		}
	}
}
