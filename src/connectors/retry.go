package connectors

import (
	"time"

	logger "github.com/sirupsen/logrus"
)

// RetryPolicy is a bounded retry budget with exponential backoff. Sleep is
// injectable so tests run without real delays.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Sleep       func(time.Duration)
}

// DefaultRetryPolicy: 3 attempts, backoff 1s doubling each retry.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		Sleep:       time.Sleep,
	}
}

// Backoff returns the delay to wait after a failed attempt (1-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	return d
}

// Wait sleeps for the backoff of the given attempt.
func (p RetryPolicy) Wait(attempt int) {
	d := p.Backoff(attempt)
	logger.WithFields(map[string]interface{}{
		"attempt": attempt,
		"backoff": d.String(),
	}).Warn("retrying after transport failure")

	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	sleep(d)
}
