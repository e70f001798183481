package mre

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_initialState(t *testing.T) {
	assert.False(t, New(false).IsSet())
	e := New(true)
	assert.True(t, e.IsSet())
	select {
	case <-e.C():
	default:
		t.Fatal(`expected closed channel`)
	}
}

func TestEvent_setReset(t *testing.T) {
	e := New(false)
	e.Set()
	e.Set()
	assert.True(t, e.IsSet())
	require.NoError(t, e.Wait(context.Background()))

	e.Reset()
	e.Reset()
	assert.False(t, e.IsSet())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, e.Wait(ctx), context.DeadlineExceeded)
}

func TestEvent_releasesAllWaiters(t *testing.T) {
	e := New(false)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, e.Wait(context.Background()))
		}()
	}
	time.Sleep(10 * time.Millisecond)
	e.Set()
	wg.Wait()
}

func TestEvent_staleChannelAfterReset(t *testing.T) {
	e := New(false)
	before := e.C()
	e.Set()
	e.Reset()
	after := e.C()
	select {
	case <-before:
	default:
		t.Fatal(`channel observed before the set should be closed`)
	}
	select {
	case <-after:
		t.Fatal(`channel obtained after the reset should be open`)
	default:
	}
}
