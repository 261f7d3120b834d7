package packed

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRand int

func (f fixedRand) IntN(int) int { return int(f) }

func randomBases(rng *rand.Rand, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = "ACGT"[rng.IntN(4)]
	}
	return out
}

func TestByteRC(t *testing.T) {
	// AAAA -> TTTT, AAAC -> GTTT, ACGT is its own reverse complement
	assert.Equal(t, byte(255), byteRC[0])
	assert.Equal(t, byte(191), byteRC[1])
	assert.Equal(t, byte(0x1B), byteRC[0x1B])
	for b := 0; b < 256; b++ {
		require.Equal(t, byte(b), byteRC[byteRC[b]])
	}
}

func TestEncodeLayout(t *testing.T) {
	s := Encode([]byte("ACGT"), fixedRand(0))
	assert.Equal(t, []byte{0x1B}, s.Bytes())

	s = Encode([]byte("acgtAC"), fixedRand(0))
	assert.Equal(t, []byte{0x1B, 0x10}, s.Bytes())
	assert.Equal(t, 6, s.Len())
	assert.Zero(t, s.Ambiguous())
	assert.Equal(t, "ACGTAC", string(s.Decode()))
}

func TestEncodeAmbiguous(t *testing.T) {
	s := Encode([]byte("ANNT"), fixedRand(2))
	assert.Equal(t, 2, s.Ambiguous())
	assert.Equal(t, "AGGT", string(s.Decode()))

	rng := rand.New(rand.NewPCG(7, 11))
	s = Encode([]byte("NNNNNNNN"), rng)
	assert.Equal(t, 8, s.Ambiguous())
	for i := 0; i < s.Len(); i++ {
		assert.Less(t, s.Base(i), byte(4))
	}
}

func TestRevComp64(t *testing.T) {
	assert.Equal(t, ^uint64(0), RevComp64(0))
	// A on top of all-T: only the bottom base of the result is T
	assert.Equal(t, uint64(3), RevComp64(^uint64(0)>>2))

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		x := rng.Uint64()
		require.Equal(t, x, RevComp64(RevComp64(x)))
	}
}

func TestRevComp64MatchesSequence(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	text := randomBases(rng, 32)
	s := Encode(text, rng)
	rc := s.ReverseComplement()
	assert.Equal(t, rc.Window(0), RevComp64(s.Window(0)))
}

func TestReverseComplement(t *testing.T) {
	s := Encode([]byte("AACG"), fixedRand(0))
	assert.Equal(t, "CGTT", string(s.ReverseComplement().Decode()))

	s = Encode([]byte("AACGTTTGA"), fixedRand(0))
	assert.Equal(t, "TCAAACGTT", string(s.ReverseComplement().Decode()))

	rng := rand.New(rand.NewPCG(5, 6))
	for n := 1; n < 70; n++ {
		s := Encode(randomBases(rng, n), rng)
		back := s.ReverseComplement().ReverseComplement()
		require.Equal(t, s.Bytes(), back.Bytes(), "n=%d", n)
		require.Equal(t, s.Len(), back.Len())
	}
}

func TestWindow(t *testing.T) {
	text := []byte("ACGTACGTTTTTGGGGCCCCAAAATGCATGCAGATTACA")
	s := Encode(text, fixedRand(0))

	for off := 0; off <= len(text); off++ {
		w := s.Window(off)
		for i := 0; i < 32; i++ {
			want := byte(0)
			if off+i < len(text) {
				want, _ = Code(text[off+i])
			}
			got := byte(w >> (62 - 2*uint(i)) & 3)
			require.Equal(t, want, got, "offset %d base %d", off, i)
		}
	}
}

func TestStoreWindow(t *testing.T) {
	s := Encode([]byte("AAAAAAAAAA"), fixedRand(0))
	w := Encode([]byte("CGT"), fixedRand(0)).Window(0)
	s.StoreWindow(3, w, 3)
	assert.Equal(t, "AAACGTAAAA", string(s.Decode()))
	assert.Panics(t, func() { s.StoreWindow(8, w, 3) })
}

func TestSetBaseBounds(t *testing.T) {
	s := Encode([]byte("ACG"), fixedRand(0))
	s.SetBase(2, 3)
	assert.Equal(t, "ACT", string(s.Decode()))
	assert.Panics(t, func() { s.SetBase(3, 0) })
	assert.Panics(t, func() { s.Base(-1) })
}

func TestPatchText(t *testing.T) {
	text := []byte("acNgT")
	s := Encode(text, fixedRand(0))
	s.SetBase(1, 3) // c -> T
	s.SetBase(2, 1) // ambiguous position, kept as N
	n := s.PatchText(text)
	assert.Equal(t, 1, n)
	assert.Equal(t, "aTNgT", string(text))
}
