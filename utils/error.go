package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/gridstore-io/gridlink/utils/logger"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// ErrExec executes the functions concurrently and returns the first error,
// cancelling the ones that have not started yet.
func ErrExec(functions ...func() error) error {
	group, ctx := errgroup.WithContext(context.Background())

	for _, one := range functions {
		one := one
		group.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return one()
			}
		})
	}

	return group.Wait()
}

// ErrExecSequential runs the functions in order, accumulating every error.
func ErrExecSequential(functions ...func() error) error {
	var multErr error
	for _, one := range functions {
		if err := one(); err != nil {
			multErr = multierror.Append(multErr, err)
		}
	}
	return multErr
}

// RetryExec retries a function up to retries additional attempts, doubling
// the delay after each failure. Cancellation is honored between attempts,
// never mid-call.
func RetryExec(ctx context.Context, retries int, delay time.Duration, function func() error) error {
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		err = function()
		if err == nil {
			return nil
		}
		if attempt == retries {
			break
		}
		logger.Warnf("attempt %d failed, retrying in %s: %s", attempt+1, delay, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return fmt.Errorf("failed after %d retries: %w", retries, err)
}

// ErrExecFormat wraps the error returned from a function with the provided
// format string.
func ErrExecFormat(format string, function func() error) func() error {
	return func() error {
		if err := function(); err != nil {
			return fmt.Errorf(format, err)
		}
		return nil
	}
}
