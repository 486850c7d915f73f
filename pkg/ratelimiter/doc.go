// Package ratelimiter provides token bucket rate limiting with in-memory and
// Redis storage and an HTTP middleware.
//
// A bucket holds up to Capacity tokens and regains RefillRate tokens every
// RefillInterval. Each attempt takes one token; a denied attempt takes none.
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       5,
//		RefillRate:     1,
//		RefillInterval: time.Minute,
//	}, ratelimiter.WithKeyPrefix("tfa:user:"))
//
//	result, err := limiter.Allow(ctx, userID.String())
//	if !result.Allowed() {
//		// retry after result.RetryAfter()
//	}
//
// Use RedisStore when several processes must share a limit. Its Lua script
// applies the same refill rules as MemoryStore in one round trip.
//
// Middleware sets X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset
// and, when denied, Retry-After. Composite joins several KeyFunc results and
// hashes keys longer than 64 characters with FNV-1a.
package ratelimiter
