// Package goid identifies the calling goroutine.
package goid

import (
	"runtime"
	"sync/atomic"
)

// Get returns the current goroutine's id, parsed from the stack header.
// It returns 0 if the header cannot be parsed.
func Get() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	const prefix = "goroutine "
	if n <= len(prefix) || string(buf[:len(prefix)]) != prefix {
		return 0
	}
	var id uint64
	for i := len(prefix); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}

// Owner records the goroutine that owns a resource, for re-entrancy checks.
// The zero value has no owner.
type Owner struct {
	id atomic.Uint64
}

// Claim marks the calling goroutine as the owner.
func (x *Owner) Claim() { x.id.Store(Get()) }

// Release clears the owner.
func (x *Owner) Release() { x.id.Store(0) }

// IsCurrent reports whether the calling goroutine is the owner.
func (x *Owner) IsCurrent() bool {
	id := x.id.Load()
	return id != 0 && id == Get()
}
