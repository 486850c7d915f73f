package ratelimiter

import "time"

// Config describes one token bucket. Tags carry no prefix; nest the struct
// with envPrefix to configure several buckets side by side.
type Config struct {
	// Capacity is the burst size.
	Capacity int `env:"CAPACITY" envDefault:"5"`
	// RefillRate tokens are credited every RefillInterval.
	RefillRate     int           `env:"REFILL_RATE" envDefault:"1"`
	RefillInterval time.Duration `env:"REFILL_INTERVAL" envDefault:"1m"`
}

// Result reports the bucket after a check. Remaining goes negative on denial
// and tells how far short the request fell.
type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

func (r *Result) Allowed() bool { return r.Remaining >= 0 }

// RetryAfter is zero for allowed requests, otherwise the wait until the next
// refill.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(time.Until(r.ResetAt), 0)
}
