package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks malformed period specs and parameters.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUpstreamFetch marks failures of the transaction source.
	ErrUpstreamFetch = errors.New("upstream fetch failure")
)

// InvalidArgument wraps ErrInvalidArgument with a formatted reason.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// FetchError reports a transaction source failure for one period.
// errors.Is(err, ErrUpstreamFetch) holds, and Unwrap exposes the source error.
type FetchError struct {
	Source string
	Period string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch transactions from %s for %s: %v", e.Source, e.Period, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrUpstreamFetch }
