//go:build linux

package dispatch

import (
	"context"
	"testing"

	"github.com/joeycumines/go-renderloop/affinity"
	"github.com/joeycumines/go-renderloop/gfx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestDispatcher_actionsRunOnOneThread(t *testing.T) {
	m, err := affinity.NewManager()
	require.NoError(t, err)
	h := gfx.NewHeadless(1, 1)
	d := newDispatcher(t, h, m)

	tids := make(map[int]struct{})
	var pinned []affinity.Mask
	for range 50 {
		require.NoError(t, d.InvokeWait(context.Background(), func() {
			tids[unix.Gettid()] = struct{}{}
			var set unix.CPUSet
			if assert.NoError(t, unix.SchedGetaffinity(0, &set)) {
				assert.Equal(t, 1, set.Count())
				pinned = append(pinned, d.Core())
			}
		}))
	}
	require.Len(t, tids, 1)
	for tid := range tids {
		for _, bound := range h.Stats().Threads {
			assert.Equal(t, tid, bound, `context made current on another thread`)
		}
		assert.NotEqual(t, unix.Gettid(), tid)
	}
	for _, core := range pinned {
		assert.Equal(t, 1, core.Count())
	}
}
