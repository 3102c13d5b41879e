package pipeline

import (
	"math/rand/v2"
	"time"

	"github.com/dgallion1/agendagen/internal/printengine"
)

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	return printengine.IsRetryable(err)
}

// backoffUnit scales the retry schedule; tests shrink it.
var backoffUnit = time.Second

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * backoffUnit
	if base > 30*backoffUnit {
		base = 30 * backoffUnit
	}
	jitter := time.Duration(rand.Int64N(int64(base)/2 + 1))
	return base + jitter
}

const MaxRetries = 3
