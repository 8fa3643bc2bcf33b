package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const defaultQueueWait = 30 * time.Second

// admission bounds how many generations run at once. A nil *admission
// admits everything.
type admission struct {
	slots   chan struct{}
	maxWait time.Duration
}

func newAdmission(n int, maxWait time.Duration) *admission {
	if n <= 0 {
		return nil
	}
	if maxWait <= 0 {
		maxWait = defaultQueueWait
	}
	return &admission{slots: make(chan struct{}, n), maxWait: maxWait}
}

// acquire reserves a generation slot. Returns a release func to be deferred.
func (a *admission) acquire(ctx context.Context) (func(), error) {
	if a == nil {
		return func() {}, nil
	}
	// Fast path: respect an already-canceled context
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}
	select {
	case a.slots <- struct{}{}:
		return func() { <-a.slots }, nil
	default:
	}
	timer := time.NewTimer(a.maxWait)
	defer timer.Stop()
	select {
	case a.slots <- struct{}{}:
		return func() { <-a.slots }, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		IncrementBackpressure("queue_timeout")
		return func() {}, tooBusyError{wait: a.maxWait}
	}
}

// tooBusyError signals that no slot freed up in time; it maps to 429.
type tooBusyError struct{ wait time.Duration }

func (e tooBusyError) Error() string {
	return fmt.Sprintf("too busy: no generation slot within %s", e.wait)
}

func (e tooBusyError) StatusCode() int { return http.StatusTooManyRequests }

// retryAfterSeconds rounds d up to whole seconds for a Retry-After header.
func retryAfterSeconds(d time.Duration) int {
	n := int((d + time.Second - 1) / time.Second)
	if n < 1 {
		n = 1
	}
	return n
}

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	var tb tooBusyError
	return errors.As(err, &tb)
}
