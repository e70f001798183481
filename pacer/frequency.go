package pacer

import (
	"math"
	"time"
)

const (
	// MaxUpdateFrequency is the highest supported update frequency, in Hz.
	MaxUpdateFrequency = 500.0
	// MinUpdateFrequency is the lowest capped update frequency, in Hz.
	// Anything lower disables the cap.
	MinUpdateFrequency = 1.0
)

// ClampFrequency normalises an update frequency. Values below
// [MinUpdateFrequency], including NaN, become 0 (uncapped), and values
// above [MaxUpdateFrequency] become MaxUpdateFrequency.
func ClampFrequency(hz float64) float64 {
	switch {
	case math.IsNaN(hz) || hz < MinUpdateFrequency:
		return 0
	case hz > MaxUpdateFrequency:
		return MaxUpdateFrequency
	default:
		return hz
	}
}

// periodOf returns the target period for a clamped frequency, 0 meaning
// uncapped.
func periodOf(hz float64) time.Duration {
	if hz <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / hz)
}
