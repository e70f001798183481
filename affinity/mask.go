package affinity

import (
	"math/bits"
	"strconv"
)

// Mask is a CPU affinity mask, bit i representing logical CPU i. A core id is
// a Mask with exactly one bit set.
type Mask uint64

// CPU returns the single-bit mask for logical CPU index i, or 0 if i is out
// of range.
func CPU(i int) Mask {
	if i < 0 || i >= 64 {
		return 0
	}
	return 1 << uint(i)
}

// Count returns the number of set bits.
func (m Mask) Count() int { return bits.OnesCount64(uint64(m)) }

// Lowest returns the lowest set bit, or 0.
func (m Mask) Lowest() Mask { return m & -m }

// Index returns the index of the lowest set bit, or -1 if m is 0.
func (m Mask) Index() int {
	if m == 0 {
		return -1
	}
	return bits.TrailingZeros64(uint64(m))
}

// Has reports whether every bit of other is set in m.
func (m Mask) Has(other Mask) bool { return other != 0 && m&other == other }

// Bits returns the set bits of m, as single-bit masks, in ascending order.
func (m Mask) Bits() []Mask {
	out := make([]Mask, 0, m.Count())
	for m != 0 {
		low := m.Lowest()
		out = append(out, low)
		m &^= low
	}
	return out
}

// String formats the mask as hexadecimal, e.g. "0x5".
func (m Mask) String() string {
	return "0x" + strconv.FormatUint(uint64(m), 16)
}
