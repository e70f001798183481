package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joeycumines/go-renderloop/dispatch"
)

// addVectors sets out[i] = a[i] + b[i].
func addVectors(a, b, out []float32) {
	for i := range out {
		out[i] = a[i] + b[i]
	}
}

// computeJob runs one vector addition of size elements on d's owner thread,
// returning the time spent there.
func computeJob(ctx context.Context, d *dispatch.Dispatcher, size int) (time.Duration, error) {
	a := make([]float32, size)
	b := make([]float32, size)
	out := make([]float32, size)
	for i := range size {
		a[i] = float32(i)
		b[i] = float32(size - i)
	}
	var elapsed time.Duration
	if err := d.InvokeWait(ctx, func() {
		start := time.Now()
		addVectors(a, b, out)
		elapsed = time.Since(start)
	}); err != nil {
		return 0, err
	}
	for i, v := range out {
		if v != float32(size) {
			return elapsed, fmt.Errorf("compute: element %d is %v, expected %d", i, v, size)
		}
	}
	return elapsed, nil
}
