// Package errorspkg provides common app errors.
package errorspkg

import (
	"context"
	"errors"
)

var (
	// ErrInternal indicates internal server error.
	ErrInternal = errors.New("internal")
	// ErrCanceled indicates that the request was abandoned before it could be applied.
	ErrCanceled = errors.New("request canceled")
)

// CheckContext returns ErrCanceled once ctx is done.
func CheckContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return ErrCanceled
		}

		return ErrInternal
	}

	return nil
}
