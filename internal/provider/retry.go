package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"verifbench/internal/agent"
)

// maxAttempts is the fixed retry ceiling for provider calls.
const maxAttempts = 5

// defaultRetryDelay is the initial backoff delay; it doubles per attempt.
const defaultRetryDelay = 500 * time.Millisecond

// ErrRetriesExhausted marks a provider call that failed after the ceiling.
var ErrRetriesExhausted = errors.New("provider retry budget exhausted")

// TransportError is a typed failure at the provider HTTP boundary.
// Status is zero for network-level failures.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("provider returned %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("provider transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// retryable reports whether a failure is worth another attempt: network
// errors, rate limiting, and provider-side 5xx responses.
func retryable(err error) bool {
	var transport *TransportError
	if !errors.As(err, &transport) {
		return false
	}
	if transport.Status == 0 {
		return true
	}
	return transport.Status == http.StatusTooManyRequests || transport.Status >= 500
}

// withRetries runs call with bounded exponential backoff. A successful retry
// is transparent to the caller; exhausting the ceiling wraps the last error
// in ErrRetriesExhausted.
func withRetries(ctx context.Context, baseDelay time.Duration, call func(ctx context.Context) (agent.TurnOutput, error)) (agent.TurnOutput, error) {
	if baseDelay <= 0 {
		baseDelay = defaultRetryDelay
	}
	delay := baseDelay
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		output, err := call(ctx)
		if err == nil {
			return output, nil
		}
		lastErr = err
		if !retryable(err) {
			return agent.TurnOutput{}, err
		}
		if attempt == maxAttempts {
			break
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return agent.TurnOutput{}, ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	return agent.TurnOutput{}, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, maxAttempts, lastErr)
}
