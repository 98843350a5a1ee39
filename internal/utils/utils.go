package utils

import (
	"context"
	"time"
)

var after = time.After

// WaitFor pauses for d. It returns early with the context error when ctx is
// done first.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-after(d):
		return nil
	}
}
