//go:build linux

package affinity

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func currentThreadSet(t *testing.T) unix.CPUSet {
	t.Helper()
	var set unix.CPUSet
	require.NoError(t, unix.SchedGetaffinity(0, &set))
	return set
}

func TestSystemPinner_pinsCallingThread(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	m, err := NewManager()
	require.NoError(t, err)
	original := currentThreadSet(t)
	defer func() { _ = unix.SchedSetaffinity(0, &original) }()

	core, err := m.AllocateCore(0)
	require.NoError(t, err)
	set := currentThreadSet(t)
	assert.Equal(t, core, fromCPUSet(&set))
	assert.Equal(t, 1, set.Count())
	assert.Equal(t, 1, m.Counts()[core])

	require.NoError(t, m.FreeCore(core))
	assert.Equal(t, original, currentThreadSet(t), "free must restore the exact cpu set")
	assert.Equal(t, 0, m.Counts()[core])
}

func TestSystemPinner_restoresNarrowedThread(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	original := currentThreadSet(t)
	defer func() { _ = unix.SchedSetaffinity(0, &original) }()
	allowed := fromCPUSet(&original)
	if allowed.Count() < 2 {
		t.Skip(`needs at least two cpus`)
	}

	// narrow the thread to its highest cpu, then pin and restore
	highest := allowed.Bits()[allowed.Count()-1]
	var narrowed unix.CPUSet
	narrowed.Set(highest.Index())
	require.NoError(t, unix.SchedSetaffinity(0, &narrowed))

	restore, err := SystemPinner().SetThreadMask(allowed.Lowest())
	require.NoError(t, err)
	set := currentThreadSet(t)
	assert.Equal(t, allowed.Lowest(), fromCPUSet(&set))

	require.NoError(t, restore())
	assert.Equal(t, narrowed, currentThreadSet(t))
}
