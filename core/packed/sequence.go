// core/packed/sequence.go
package packed

// Sequence is a read packed at 2 bits per base, most significant bits first.
// The final partial byte is left-aligned with zero padding.
type Sequence struct {
	n         int
	ambiguous int
	buf       []byte
}

// Rand is the source used for ambiguous bases. *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// Encode packs text. Every character outside ACGTacgt is replaced by a random
// base drawn from rng and counted as ambiguous.
func Encode(text []byte, rng Rand) *Sequence {
	s := &Sequence{n: len(text), buf: make([]byte, byteLen(len(text)))}
	for i, c := range text {
		v, ok := Code(c)
		if !ok {
			v = byte(rng.IntN(4))
			s.ambiguous++
		}
		s.buf[i>>2] |= v << (6 - 2*uint(i&3))
	}
	return s
}

func byteLen(n int) int { return (2*n + 7) / 8 }

// Len is the number of bases.
func (s *Sequence) Len() int { return s.n }

// Ambiguous is the number of bases that were not A, C, G or T on input.
func (s *Sequence) Ambiguous() int { return s.ambiguous }

// Bytes exposes the packed buffer.
func (s *Sequence) Bytes() []byte { return s.buf }

// Base returns the 2-bit code at position i.
func (s *Sequence) Base(i int) byte {
	if i < 0 || i >= s.n {
		panic("packed: base index out of range")
	}
	return s.buf[i>>2] >> (6 - 2*uint(i&3)) & 3
}

// SetBase overwrites position i with the 2-bit code v.
func (s *Sequence) SetBase(i int, v byte) {
	if i < 0 || i >= s.n {
		panic("packed: base index out of range")
	}
	sh := 6 - 2*uint(i&3)
	s.buf[i>>2] = s.buf[i>>2]&^(3<<sh) | (v&3)<<sh
}

// Window returns the 32 bases starting at offset, first base in the top two
// bits. Positions past the end read as zero.
func (s *Sequence) Window(offset int) uint64 {
	if offset < 0 || offset > s.n {
		panic("packed: window offset out of range")
	}
	first := offset >> 2
	var w uint64
	for i := 0; i < 8; i++ {
		w <<= 8
		if j := first + i; j < len(s.buf) {
			w |= uint64(s.buf[j])
		}
	}
	sh := 2 * uint(offset&3)
	if sh == 0 {
		return w
	}
	var tail uint64
	if j := first + 8; j < len(s.buf) {
		tail = uint64(s.buf[j])
	}
	return w<<sh | tail>>(8-sh)
}

// StoreWindow writes the first n bases of w back at offset.
func (s *Sequence) StoreWindow(offset int, w uint64, n int) {
	if n > 32 || offset < 0 || offset+n > s.n {
		panic("packed: store out of range")
	}
	for i := 0; i < n; i++ {
		s.SetBase(offset+i, byte(w>>(62-2*uint(i))))
	}
}

// Decode returns the upper-case text of the packed bases. Ambiguous input
// positions come back as whatever base was drawn for them.
func (s *Sequence) Decode() []byte {
	out := make([]byte, s.n)
	for i := range out {
		out[i] = Letter(s.Base(i))
	}
	return out
}

// PatchText rewrites text in place wherever the packed base differs from the
// base text already spells. Ambiguous characters and unchanged positions keep
// their original byte, including case. It returns the number of rewritten
// positions.
func (s *Sequence) PatchText(text []byte) int {
	if len(text) != s.n {
		panic("packed: text length does not match sequence")
	}
	changed := 0
	for i, c := range text {
		v, ok := Code(c)
		if !ok {
			continue
		}
		if b := s.Base(i); b != v {
			text[i] = Letter(b)
			changed++
		}
	}
	return changed
}

// ReverseComplement returns a new packed sequence holding the reverse
// complement of s.
func (s *Sequence) ReverseComplement() *Sequence {
	out := &Sequence{n: s.n, ambiguous: s.ambiguous, buf: make([]byte, len(s.buf))}
	nb := len(s.buf)
	for i := 0; i < nb; i++ {
		out.buf[i] = byteRC[s.buf[nb-1-i]]
	}
	// The padding of the last byte is now at the front as complemented bases;
	// shift the whole buffer left to drop it.
	if pad := 4*nb - s.n; pad > 0 {
		sh := 2 * uint(pad)
		for i := 0; i < nb; i++ {
			var next byte
			if i+1 < nb {
				next = out.buf[i+1]
			}
			out.buf[i] = out.buf[i]<<sh | next>>(8-sh)
		}
	}
	return out
}
