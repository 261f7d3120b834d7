// core/seed/seed.go
package seed

import (
	"fmt"

	"github.com/pkg/errors"
)

// MaxLength is the longest pattern whose window (pattern plus one flanking
// base on each side) still fits a 64-bit word with room to slide.
const MaxLength = 26

var (
	ErrEmpty    = errors.New("seed: empty pattern")
	ErrTooLong  = errors.Errorf("seed: pattern longer than %d", MaxLength)
	ErrBadDigit = errors.New("seed: pattern must contain only '0' and '1'")
	ErrNoWeight = errors.New("seed: pattern has no '1' position")
)

// Spaced is an immutable spaced seed. The window it covers is Span() bases:
// one gap base, the pattern, one gap base.
//
// MerMask/GapMask are aligned to the most significant bits of a word;
// MerMaskRC/GapMaskRC to the least significant bits. The RC masks are the
// direct masks shifted down, which is only correct for palindromic patterns.
type Spaced struct {
	pattern string
	weight  int

	merMask, gapMask     uint64
	merMaskRC, gapMaskRC uint64
}

// New builds the masks for pattern.
func New(pattern string) (*Spaced, error) {
	n := len(pattern)
	if n == 0 {
		return nil, ErrEmpty
	}
	if n > MaxLength {
		return nil, errors.Wrapf(ErrTooLong, "%q", pattern)
	}

	var mer uint64
	weight := 0
	for i := 0; i < n; i++ {
		mer <<= 2
		switch pattern[i] {
		case '1':
			mer |= 3
			weight++
		case '0':
		default:
			return nil, errors.Wrapf(ErrBadDigit, "%q", pattern)
		}
	}
	if weight == 0 {
		return nil, errors.Wrapf(ErrNoWeight, "%q", pattern)
	}
	mer <<= 2 // trailing gap base

	bits := uint(2 * (n + 2))
	gap := ^mer & (uint64(1)<<bits - 1)

	s := &Spaced{pattern: pattern, weight: weight}
	s.merMask = mer << (64 - bits)
	s.gapMask = gap << (64 - bits)
	s.merMaskRC = s.merMask >> (64 - bits)
	s.gapMaskRC = s.gapMask >> (64 - bits)
	return s, nil
}

// MustNew is New for patterns known at compile time.
func MustNew(pattern string) *Spaced {
	s, err := New(pattern)
	if err != nil {
		panic(err)
	}
	return s
}

// Pattern is the 0/1 string the seed was built from.
func (s *Spaced) Pattern() string { return s.pattern }

// Len is the pattern length without the two gap bases around it.
func (s *Spaced) Len() int { return len(s.pattern) }

// Weight is the number of '1' positions.
func (s *Spaced) Weight() int { return s.weight }

// Span is the number of bases covered by one window.
func (s *Spaced) Span() int { return len(s.pattern) + 2 }

// MaskBits is the width of the window in bits.
func (s *Spaced) MaskBits() int { return 2 * s.Span() }

// MerMask and GapMask select the k-mer and gap bits of a window loaded with
// its first base in the top two bits.
func (s *Spaced) MerMask() uint64 { return s.merMask }
func (s *Spaced) GapMask() uint64 { return s.gapMask }

// MerMaskRC and GapMaskRC are the same masks aligned to the low bits, for a
// reverse-complemented window.
func (s *Spaced) MerMaskRC() uint64 { return s.merMaskRC }
func (s *Spaced) GapMaskRC() uint64 { return s.gapMaskRC }

// IsPalindrome reports whether the pattern reads the same in both directions.
// Nothing in this module enforces it; callers that accept patterns from
// outside can use it to reject unsupported seeds.
func (s *Spaced) IsPalindrome() bool {
	p := s.pattern
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		if p[i] != p[j] {
			return false
		}
	}
	return true
}

func (s *Spaced) String() string {
	return fmt.Sprintf("%s (w=%d, l=%d)", s.pattern, s.weight, len(s.pattern))
}
