package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// staleAfter is how long an untouched bucket is kept. Any bucket idle that
// long has refilled completely, so dropping it loses nothing.
const staleAfter = time.Hour

type memBucket struct {
	tokens   int
	refilled time.Time
	touched  time.Time
}

// refill credits whole intervals elapsed since the last refill. The credit is
// capped so a long idle period cannot overflow the count.
func (b *memBucket) refill(now time.Time, cfg Config) {
	limit := int64(cfg.Capacity/cfg.RefillRate + 1)
	intervals := int(min(int64(now.Sub(b.refilled)/cfg.RefillInterval), limit))
	if intervals <= 0 {
		return
	}

	b.tokens = min(b.tokens+intervals*cfg.RefillRate, cfg.Capacity)
	if b.tokens == cfg.Capacity {
		b.refilled = now
		return
	}
	b.refilled = b.refilled.Add(time.Duration(intervals) * cfg.RefillInterval)
}

// MemoryStore keeps buckets in process memory. It suits a single replica and
// tests; replicas behind a load balancer need RedisStore to share budgets.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*memBucket
	now     func() time.Time

	sweepEvery time.Duration
	done       chan struct{}
	closeOnce  sync.Once
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets how often idle buckets are dropped. Zero disables
// the background sweep.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		ms.sweepEvery = interval
	}
}

// WithStoreClock overrides time.Now.
func WithStoreClock(now func() time.Time) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if now != nil {
			ms.now = now
		}
	}
}

// NewMemoryStore creates a MemoryStore. Call Close to stop its sweeper.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		buckets:    make(map[string]*memBucket),
		now:        time.Now,
		sweepEvery: 5 * time.Minute,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ms)
	}

	if ms.sweepEvery > 0 {
		go ms.sweepLoop()
	}
	return ms
}

// ConsumeTokens implements Store. A denied request leaves the bucket as is.
func (ms *MemoryStore) ConsumeTokens(_ context.Context, key string, tokens int, config Config) (int, time.Time, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	b, ok := ms.buckets[key]
	if !ok {
		b = &memBucket{tokens: config.Capacity, refilled: now}
		ms.buckets[key] = b
	}
	b.refill(now, config)
	b.touched = now

	resetAt := b.refilled.Add(config.RefillInterval)
	if b.tokens < tokens {
		return b.tokens - tokens, resetAt, nil
	}
	b.tokens -= tokens
	return b.tokens, resetAt, nil
}

// Reset forgets the bucket under key.
func (ms *MemoryStore) Reset(_ context.Context, key string) error {
	ms.mu.Lock()
	delete(ms.buckets, key)
	ms.mu.Unlock()
	return nil
}

// Close stops the background sweep. It is safe to call more than once.
func (ms *MemoryStore) Close() {
	ms.closeOnce.Do(func() { close(ms.done) })
}

func (ms *MemoryStore) sweepLoop() {
	ticker := time.NewTicker(ms.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ms.done:
			return
		case <-ticker.C:
			ms.sweep()
		}
	}
}

func (ms *MemoryStore) sweep() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	cutoff := ms.now().Add(-staleAfter)
	for key, b := range ms.buckets {
		if b.touched.Before(cutoff) {
			delete(ms.buckets, key)
		}
	}
}
