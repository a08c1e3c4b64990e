package runutil

import (
	"math"
	"math/rand"
	"time"
)

// Backoff computes the wait time before the given attempt. Attempt zero must
// return 0s, so the first try starts immediately. Combine the result with
// [Wait] for a cancelable sleep.
type Backoff interface {
	Duration(int) time.Duration
}

// StaticBackoff waits the same duration before every retry.
type StaticBackoff struct {
	Sleep time.Duration
}

func (b StaticBackoff) Duration(attempt int) time.Duration {
	if attempt == 0 {
		return 0
	}
	return b.Sleep
}

// ExponentialBackoff doubles the wait time per attempt up to Max and smears
// it with jitter, following
// https://aws.amazon.com/blogs/architecture/exponential-backoff-and-jitter/
type ExponentialBackoff struct {
	Initial          time.Duration
	Max              time.Duration
	JitterProportion float64
}

func (b ExponentialBackoff) Duration(attempt int) time.Duration {
	if attempt == 0 {
		return time.Duration(0)
	}

	var (
		maxWait   = math.Pow(2., float64(attempt-1))
		minWait   = maxWait * (1. - b.JitterProportion)
		jitter    = maxWait * b.JitterProportion * rand.Float64()
		totalWait = minWait + jitter
	)

	// Cap before multiplying with Initial. Initial is in nanoseconds, so a
	// large exponent overflows time.Duration and ends up without any wait.
	totalWait = min(totalWait, float64(b.Max)/float64(b.Initial))

	return time.Duration(float64(b.Initial) * totalWait)
}
