package pacer

const (
	// slowCounterMax bounds the slow update counter.
	slowCounterMax = 80
	// slowThreshold is the count above which the loop is running slowly.
	slowThreshold = 45
)

// slowCounter is a saturating counter of updates that overran the target
// period, each on-time update cancelling one overrun. Owner thread only.
type slowCounter struct {
	n int
}

// observe records an update, reporting whether the loop is now running
// slowly.
func (x *slowCounter) observe(overran bool) bool {
	if overran {
		if x.n < slowCounterMax {
			x.n++
		}
	} else if x.n > 0 {
		x.n--
	}
	return x.slow()
}

func (x *slowCounter) slow() bool { return x.n > slowThreshold }
