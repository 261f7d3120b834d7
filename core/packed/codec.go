// core/packed/codec.go
package packed

// Codes: A=00 C=01 G=10 T=11. Anything else has no code.
var code [256]int8

// byteRC maps a packed byte (four bases) to the packed reverse complement of
// those four bases: complement every base and reverse their order.
var byteRC [256]byte

var letters = [4]byte{'A', 'C', 'G', 'T'}

func init() {
	for i := range code {
		code[i] = -1
	}
	code['A'], code['C'], code['G'], code['T'] = 0, 1, 2, 3
	code['a'], code['c'], code['g'], code['t'] = 0, 1, 2, 3

	for b := 0; b < 256; b++ {
		var rc byte
		x := byte(b)
		for i := 0; i < 4; i++ {
			rc = rc<<2 | (3 - x&3)
			x >>= 2
		}
		byteRC[b] = rc
	}
}

// Code returns the 2-bit code of an unambiguous base.
func Code(c byte) (byte, bool) {
	v := code[c]
	if v < 0 {
		return 0, false
	}
	return byte(v), true
}

// Letter returns the upper-case base for a 2-bit code.
func Letter(v byte) byte { return letters[v&3] }

// RevComp64 reverse-complements the 32 bases held in x (most significant
// base first). The result holds the reverse complement of x, so the bases that
// occupied the top of x end up, complemented, at the bottom.
func RevComp64(x uint64) uint64 {
	var y uint64
	for i := 0; i < 8; i++ {
		y = y<<8 | uint64(byteRC[byte(x)])
		x >>= 8
	}
	return y
}
