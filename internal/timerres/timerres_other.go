//go:build !windows

package timerres

// Supported reports whether the host timer resolution is adjustable.
const Supported = false

func beginPeriod(uint32) error { return nil }

func endPeriod(uint32) {}
