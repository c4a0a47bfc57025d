package utils

import (
	"context"
	"errors"
	"time"

	"git.nurpath.academy/nurpath/portal/src/oops"
)

// Returns the provided value, or a default value if the input was zero.
func OrDefault[T comparable](v T, def T) T {
	var zero T
	if v == zero {
		return def
	} else {
		return v
	}
}

func IntMin(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func IntMax(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func IntClamp(min, t, max int) int {
	return IntMax(min, IntMin(t, max))
}

func P[T any](v T) *T {
	return &v
}

/*
Recover a panic and convert it to a returned error. Call it like so:

	func MyFunc() (err error) {
		defer utils.RecoverPanicAsError(&err)
	}

If an error was already set when the panic happened, the result wraps that
error and describes the panic in its message, so errors.Is still finds the
original.
*/
func RecoverPanicAsError(err *error) {
	if r := recover(); r != nil {
		if *err != nil {
			*err = oops.New(*err, "panic recovered as error (%v)", r)
			return
		}

		if rerr, ok := r.(error); ok {
			*err = oops.New(rerr, "panic recovered as error")
		} else {
			*err = oops.New(nil, "panic recovered as error: %v", r)
		}
	}
}

var ErrSleepInterrupted = errors.New("sleep interrupted by context cancellation")

func SleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ErrSleepInterrupted
	case <-time.After(d):
		return nil
	}
}
