package ratelimiter

import (
	"context"
	"time"
)

// Store keeps bucket state. The memory and Redis stores both refill lazily
// on access, so no background refill process is needed.
type Store interface {
	// ConsumeTokens takes tokens from the bucket under key. A negative
	// remaining count means the bucket did not have enough and nothing was
	// taken.
	ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (remaining int, resetAt time.Time, err error)

	Reset(ctx context.Context, key string) error
}
