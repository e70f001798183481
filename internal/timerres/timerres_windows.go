//go:build windows

package timerres

import (
	"fmt"

	"golang.org/x/sys/windows"
)

var (
	winmm               = windows.NewLazySystemDLL("winmm.dll")
	procTimeBeginPeriod = winmm.NewProc("timeBeginPeriod")
	procTimeEndPeriod   = winmm.NewProc("timeEndPeriod")
)

// Supported reports whether the host timer resolution is adjustable.
const Supported = true

func beginPeriod(ms uint32) error {
	if err := procTimeBeginPeriod.Find(); err != nil {
		return err
	}
	r, _, _ := procTimeBeginPeriod.Call(uintptr(ms))
	if r != 0 {
		return fmt.Errorf("timeBeginPeriod returned %d", r)
	}
	return nil
}

func endPeriod(ms uint32) {
	_, _, _ = procTimeEndPeriod.Call(uintptr(ms))
}
