package affinity

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestMask(t *testing.T) {
	m := Mask(0b1011_0100)
	assert.Equal(t, 4, m.Count())
	assert.Equal(t, Mask(0b100), m.Lowest())
	assert.Equal(t, 2, m.Index())
	assert.Equal(t, "0xb4", m.String())
	assert.True(t, m.Has(0b100100))
	assert.False(t, m.Has(0b1))
	assert.False(t, m.Has(0))
	if diff := cmp.Diff([]Mask{0b100, 0b1_0000, 0b10_0000, 0b1000_0000}, m.Bits()); diff != "" {
		t.Errorf("Bits() mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, Mask(0), Mask(0).Lowest())
	assert.Equal(t, -1, Mask(0).Index())
	assert.Empty(t, Mask(0).Bits())
}

func TestCPU(t *testing.T) {
	assert.Equal(t, Mask(1), CPU(0))
	assert.Equal(t, Mask(1)<<63, CPU(63))
	assert.Equal(t, Mask(0), CPU(64))
	assert.Equal(t, Mask(0), CPU(-1))
	assert.Equal(t, 63, CPU(63).Index())
}
