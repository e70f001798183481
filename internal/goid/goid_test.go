package goid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	a := Get()
	assert.NotZero(t, a)
	assert.Equal(t, a, Get())

	ch := make(chan uint64)
	go func() { ch <- Get() }()
	b := <-ch
	assert.NotZero(t, b)
	assert.NotEqual(t, a, b)
}

func TestOwner(t *testing.T) {
	var o Owner
	assert.False(t, o.IsCurrent())

	o.Claim()
	assert.True(t, o.IsCurrent())

	ch := make(chan bool)
	go func() { ch <- o.IsCurrent() }()
	assert.False(t, <-ch)

	o.Release()
	assert.False(t, o.IsCurrent())
}
