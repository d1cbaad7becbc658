package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExponentialBackoff_SeededAtFirstRetry(t *testing.T) {
	t.Parallel()

	backoff := ExponentialBackoff(2)
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 1, want: 0},
		{attempt: 2, want: time.Second},
		{attempt: 3, want: 2 * time.Second},
		{attempt: 4, want: 4 * time.Second},
	}
	for _, tc := range cases {
		if got := backoff(tc.attempt); got != tc.want {
			t.Fatalf("attempt %d: got %s, want %s", tc.attempt, got, tc.want)
		}
	}
}

func TestExponentialBackoff_FractionalBase(t *testing.T) {
	t.Parallel()

	backoff := ExponentialBackoff(1.5)
	if got := backoff(3); got != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s before attempt 3, got %s", got)
	}
}

func TestExponentialBackoff_CapsHugeDelays(t *testing.T) {
	t.Parallel()

	if got := ExponentialBackoff(10)(100); got != time.Hour {
		t.Fatalf("expected delay capped at 1h, got %s", got)
	}
	if got := ExponentialBackoff(0)(5); got != 0 {
		t.Fatalf("expected zero delay for non-positive base, got %s", got)
	}
}

func TestRetryBudget_SumsTimeoutsAndWaits(t *testing.T) {
	t.Parallel()

	got := RetryBudget(3, 30*time.Second, ExponentialBackoff(2))
	if want := 93 * time.Second; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
	if got := RetryBudget(2, time.Second, nil); got != 2*time.Second {
		t.Fatalf("expected timeouts only without backoff, got %s", got)
	}
}

func TestTimerSleeper_ReturnsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := TimerSleeper{}.Sleep(ctx, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTimerSleeper_Sleeps(t *testing.T) {
	t.Parallel()

	if err := (TimerSleeper{}).Sleep(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("unexpected sleep error: %v", err)
	}
}
