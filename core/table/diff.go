// core/table/diff.go
package table

// DiffTable counts, for every 16-bit value, how many of its eight 2-bit
// blocks are non-zero. Applied to x^y it counts differing bases.
type DiffTable [1 << 16]uint8

// NewDiffTable fills the table once; it is read-only afterwards.
func NewDiffTable() *DiffTable {
	var d DiffTable
	for x := range d {
		var n uint8
		for v := x; v != 0; v >>= 2 {
			if v&3 != 0 {
				n++
			}
		}
		d[x] = n
	}
	return &d
}

// Diff is the number of 2-bit positions where x and y differ.
func (d *DiffTable) Diff(x, y uint64) int {
	z := x ^ y
	return int(d[uint16(z)]) + int(d[uint16(z>>16)]) + int(d[uint16(z>>32)]) + int(d[uint16(z>>48)])
}
