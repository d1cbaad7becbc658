package resilience

import (
	"context"
	"math"
	"time"
)

// BackoffFunc returns the delay to wait before the given 1-based attempt.
type BackoffFunc func(attempt int) time.Duration

// ExponentialBackoff waits base^(attempt-2) seconds before attempt 2 and later.
// The first attempt never waits. A non-positive base disables waiting.
func ExponentialBackoff(base float64) BackoffFunc {
	return func(attempt int) time.Duration {
		if attempt < 2 || base <= 0 {
			return 0
		}
		seconds := math.Pow(base, float64(attempt-2))
		if math.IsInf(seconds, 0) || math.IsNaN(seconds) || seconds > maxBackoffSeconds {
			seconds = maxBackoffSeconds
		}
		return time.Duration(seconds * float64(time.Second))
	}
}

const maxBackoffSeconds = float64(time.Hour / time.Second)

// FallbackBudget bounds cache fallbacks that run after the caller's context has ended.
const FallbackBudget = 30 * time.Second

// RetryBudget is the longest a retry loop of the given attempts can take when every
// attempt runs to its timeout.
func RetryBudget(attempts int, timeout time.Duration, backoff BackoffFunc) time.Duration {
	var total time.Duration
	for attempt := 1; attempt <= attempts; attempt++ {
		total += timeout
		if backoff != nil {
			total += backoff(attempt)
		}
	}
	return total
}

// Sleeper blocks between attempts. The returned error is non-nil only when ctx ends first.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// TimerSleeper sleeps on a timer and returns early when ctx is done.
type TimerSleeper struct{}

func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
