//go:build !linux && !windows

package affinity

import "runtime"

// systemPinner reports one core per logical CPU, and cannot pin threads.
type systemPinner struct{}

func (systemPinner) ProcessMask() (Mask, error) {
	n := min(runtime.NumCPU(), 64)
	if n == 64 {
		return ^Mask(0), nil
	}
	return Mask(1)<<uint(n) - 1, nil
}

func (systemPinner) SetThreadMask(Mask) (func() error, error) {
	return func() error { return nil }, nil
}
