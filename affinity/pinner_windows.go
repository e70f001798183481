//go:build windows

package affinity

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32                   = windows.NewLazySystemDLL("kernel32.dll")
	procGetProcessAffinityMask = kernel32.NewProc("GetProcessAffinityMask")
	procSetThreadAffinityMask  = kernel32.NewProc("SetThreadAffinityMask")
)

type systemPinner struct{}

func (systemPinner) ProcessMask() (Mask, error) {
	var process, system uintptr
	r, _, err := procGetProcessAffinityMask.Call(
		uintptr(windows.CurrentProcess()),
		uintptr(unsafe.Pointer(&process)),
		uintptr(unsafe.Pointer(&system)),
	)
	if r == 0 {
		return 0, err
	}
	return Mask(process), nil
}

// SetThreadMask restores the mask SetThreadAffinityMask reports as the
// previous one.
func (systemPinner) SetThreadMask(mask Mask) (func() error, error) {
	prev, err := setThreadAffinityMask(uintptr(mask))
	if err != nil {
		return nil, err
	}
	return func() error {
		_, err := setThreadAffinityMask(prev)
		return err
	}, nil
}

func setThreadAffinityMask(mask uintptr) (uintptr, error) {
	r, _, err := procSetThreadAffinityMask.Call(uintptr(windows.CurrentThread()), mask)
	if r == 0 {
		return 0, err
	}
	return r, nil
}
