package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Sentinel errors for upstream failures. Use errors.Is() in calling code;
// the transport layer maps them to 504 and 502 respectively.
var (
	// ErrTimeout indicates the retry sequence was exhausted by timeouts.
	// Callers may retry the whole query.
	ErrTimeout = errors.New("upstream timeout")

	// ErrUpstream indicates a non-timeout transport or status failure
	// after exhausting retries.
	ErrUpstream = errors.New("upstream error")
)

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// classify wraps err with the matching sentinel once retries are spent.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isTimeout(err) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

// isTimeout reports whether err is a deadline or network timeout, which
// gets its own error class distinct from generic upstream failures.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
