package window

import (
	"math/rand"
	"time"
)

// backoff is truncated binary exponential backoff with up to 25 % jitter,
// used between failed window sessions.
type backoff struct {
	min     time.Duration
	max     time.Duration
	current time.Duration
}

func newBackoff(min, max time.Duration) *backoff {
	return &backoff{min: min, max: max}
}

// next returns the wait before the next attempt: min first, then doubling
// up to max, plus jitter so windows retrying together spread out.
func (b *backoff) next() time.Duration {
	switch {
	case b.current < b.min:
		b.current = b.min
	case b.current*2 > b.max:
		b.current = b.max
	default:
		b.current *= 2
	}
	return b.current + time.Duration(rand.Int63n(int64(b.current)/4+1))
}

// reset starts the sequence over from min.  Sessions that stayed up longer
// than max call it so a later failure is retried quickly.
func (b *backoff) reset() {
	b.current = 0
}
