package dbpkg

import (
	"context"
	"time"
)

// WithTimeout bounds a store call. A non-positive d leaves ctx unchanged.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, d)
}
