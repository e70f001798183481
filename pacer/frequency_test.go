package pacer

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClampFrequency(t *testing.T) {
	for _, tc := range [...]struct {
		name string
		in   float64
		want float64
	}{
		{`negative`, -5, 0},
		{`zero`, 0, 0},
		{`below min`, 0.5, 0},
		{`nan`, math.NaN(), 0},
		{`min`, 1, 1},
		{`typical`, 60, 60},
		{`fractional`, 59.94, 59.94},
		{`max`, 500, 500},
		{`above max`, 501, 500},
		{`inf`, math.Inf(1), 500},
		{`negative inf`, math.Inf(-1), 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClampFrequency(tc.in))
		})
	}
}

func TestPeriodOf(t *testing.T) {
	assert.Equal(t, time.Duration(0), periodOf(0))
	assert.Equal(t, 20*time.Millisecond, periodOf(50))
	assert.Equal(t, 2*time.Millisecond, periodOf(MaxUpdateFrequency))
	assert.Equal(t, time.Second, periodOf(MinUpdateFrequency))
	assert.Equal(t, time.Duration(16666666), periodOf(60))
}
