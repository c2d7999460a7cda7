package harness

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// TrialFunc runs one trial and returns an error if its check did not hold.
type TrialFunc func(ctx context.Context, trial int) error

// Summary counts the outcome of [Trials].
type Summary struct {
	Completed int
	Failed    int
}

// Trials calls fn up to n times. Failed trials do not stop the sequence; a
// done ctx does. The returned error aggregates every failed trial, plus
// ctx.Err() if the sequence was cut short.
func Trials(ctx context.Context, n int, fn TrialFunc) (Summary, error) {
	var (
		sum  Summary
		merr *multierror.Error
	)

	for trial := range n {
		if err := ctx.Err(); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("trials stopped after %d: %w", sum.Completed, err))

			break
		}

		err := fn(ctx, trial)

		sum.Completed++

		if err != nil {
			sum.Failed++
			merr = multierror.Append(merr, fmt.Errorf("trial %d: %w", trial, err))
		}
	}

	return sum, merr.ErrorOrNil()
}
