package apiclient

import "time"

// RetryPolicy decides how many times a request is reissued and how long the
// client waits between attempts. The zero value never retries.
type RetryPolicy struct {
	// MaxRetries is the number of reissues after the first attempt.
	MaxRetries int

	// Backoff returns the delay before reissuing after a given attempt.
	Backoff func(attempt int) time.Duration

	// RetryableStatus reports whether a status code is worth retrying.
	RetryableStatus func(status int) bool
}

// DefaultRetryPolicy returns the standard policy: exponential backoff with
// retries on 429 and any 5xx status.
func DefaultRetryPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:      maxRetries,
		Backoff:         ExponentialBackoff,
		RetryableStatus: TransientStatus,
	}
}

// ExponentialBackoff returns 2^attempt seconds: 1s, 2s, 4s, 8s, ...
// No jitter and no cap; the retry budget bounds it in practice.
func ExponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

// TransientStatus reports whether a status is considered likely to succeed
// on retry: 429 or any server error.
func TransientStatus(status int) bool {
	return status == 429 || status >= 500
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	if p.Backoff == nil {
		return ExponentialBackoff(attempt)
	}
	return p.Backoff(attempt)
}

func (p RetryPolicy) retryable(status int) bool {
	if p.RetryableStatus == nil {
		return TransientStatus(status)
	}
	return p.RetryableStatus(status)
}
