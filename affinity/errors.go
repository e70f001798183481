package affinity

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCoreAvailable indicates no allowed core satisfied an allocation
	// request. This is a configuration error, e.g. a requested mask that does
	// not intersect the process mask.
	ErrNoCoreAvailable = errors.New("affinity: no core available")

	// ErrUnknownCore is returned when freeing a core the manager never
	// tracked.
	ErrUnknownCore = errors.New("affinity: unknown core")

	// ErrEmptyMask is returned by [NewManager] if the process is allowed no
	// cores.
	ErrEmptyMask = errors.New("affinity: empty process affinity mask")
)

// AllocationError describes a failed [Manager.AllocateCore].
type AllocationError struct {
	Err       error
	Requested Mask
	Allowed   Mask
	// Core is the selected core, if selection succeeded but pinning failed.
	Core Mask
}

func (e *AllocationError) Error() string {
	if e.Core != 0 {
		return fmt.Sprintf("affinity: pin core %s (requested %s, allowed %s): %v", e.Core, e.Requested, e.Allowed, e.Err)
	}
	return fmt.Sprintf("affinity: allocate core (requested %s, allowed %s): %v", e.Requested, e.Allowed, e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }
