package usecase

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// runCountdown reports each remaining value starting at from, waits one
// interval between ticks and returns true once the countdown ran to
// completion. Cancellation stops the countdown without firing.
func runCountdown(
	ctx context.Context,
	clock clockwork.Clock,
	from int,
	interval time.Duration,
	tick func(remaining int),
) bool {
	for remaining := from; remaining > 0; remaining-- {
		tick(remaining)
		select {
		case <-clock.After(interval):
		case <-ctx.Done():
			return false
		}
	}
	return true
}
