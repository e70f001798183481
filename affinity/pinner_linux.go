//go:build linux

package affinity

import (
	"os"

	"golang.org/x/sys/unix"
)

type systemPinner struct{}

// ProcessMask reads the affinity of the main thread, which is the process
// mask unless something re-pinned it.
func (systemPinner) ProcessMask() (Mask, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(os.Getpid(), &set); err != nil {
		return 0, err
	}
	return fromCPUSet(&set), nil
}

// SetThreadMask captures the calling thread's full CPU set, which may
// extend past the 64 CPUs a [Mask] holds, so that restoring it is exact.
func (systemPinner) SetThreadMask(mask Mask) (func() error, error) {
	// pid 0 is the calling thread
	var prev unix.CPUSet
	if err := unix.SchedGetaffinity(0, &prev); err != nil {
		return nil, err
	}
	var set unix.CPUSet
	set.Zero()
	for _, b := range mask.Bits() {
		set.Set(b.Index())
	}
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return nil, err
	}
	return func() error { return unix.SchedSetaffinity(0, &prev) }, nil
}

func fromCPUSet(set *unix.CPUSet) Mask {
	var m Mask
	for i := range 64 {
		if set.IsSet(i) {
			m |= CPU(i)
		}
	}
	return m
}
