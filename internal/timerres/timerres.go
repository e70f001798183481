// Package timerres raises the host timer resolution, where the platform
// supports it, for the duration of a frame-paced loop.
package timerres

import (
	"fmt"
	"time"
)

// DefaultPeriod is the scheduler period requested by frame-paced loops.
const DefaultPeriod = 8 * time.Millisecond

// Begin requests a timer resolution of period (rounded down to whole
// milliseconds, minimum 1ms). The returned func restores the previous
// resolution, and must be called exactly once, on success. On platforms
// without an adjustable timer, Begin is a no-op that never fails.
func Begin(period time.Duration) (restore func(), err error) {
	ms := uint32(period / time.Millisecond)
	if ms == 0 {
		ms = 1
	}
	if err := beginPeriod(ms); err != nil {
		return nil, fmt.Errorf("timerres: begin period %dms: %w", ms, err)
	}
	return func() { endPeriod(ms) }, nil
}
