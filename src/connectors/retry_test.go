package connectors

import (
	"testing"
	"time"
)

// TestRetryPolicyBackoff verifies the delay doubles on each retry starting
// from the base delay.
func TestRetryPolicyBackoff(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: 1 * time.Second}

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
	}

	for _, tc := range cases {
		if got := policy.Backoff(tc.attempt); got != tc.want {
			t.Fatalf("attempt %d: expected backoff %v, got %v", tc.attempt, tc.want, got)
		}
	}
}

// TestRetryPolicyWaitUsesInjectedSleep confirms Wait calls the injected
// sleep with the computed backoff instead of sleeping for real.
func TestRetryPolicyWaitUsesInjectedSleep(t *testing.T) {
	var slept []time.Duration
	policy := RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		Sleep:       func(d time.Duration) { slept = append(slept, d) },
	}

	policy.Wait(1)
	policy.Wait(2)

	if len(slept) != 2 {
		t.Fatalf("expected 2 sleeps, got %d", len(slept))
	}
	if slept[0] != 500*time.Millisecond || slept[1] != 1*time.Second {
		t.Fatalf("unexpected sleep durations: %v", slept)
	}
}
