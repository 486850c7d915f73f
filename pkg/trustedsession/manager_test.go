package trustedsession_test

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/trustedsession"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestManager_Create(t *testing.T) {
	t.Parallel()

	t.Run("issues an opaque token and stores its hash", func(t *testing.T) {
		t.Parallel()

		store := trustedsession.NewMemoryStore()
		c := newClock()
		mgr := trustedsession.New(trustedsession.WithStore(store), trustedsession.WithClock(c.Now))

		userID := uuid.New()
		token, sess, err := mgr.Create(context.Background(), userID, 0, trustedsession.Meta{UserAgent: "curl", IP: "10.0.0.1"})
		require.NoError(t, err)

		raw, err := base64.RawURLEncoding.DecodeString(token)
		require.NoError(t, err)
		assert.Len(t, raw, trustedsession.TokenSize)

		assert.Equal(t, trustedsession.HashToken(token), sess.ID)
		assert.NotEqual(t, token, sess.ID)
		assert.Equal(t, userID, sess.UserID)
		assert.Equal(t, c.Now().Add(24*time.Hour), sess.ExpiresAt)
		assert.True(t, sess.ExpiresAt.After(sess.CreatedAt))
		assert.Equal(t, "curl", sess.UserAgent)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("tokens are unique", func(t *testing.T) {
		t.Parallel()

		mgr := trustedsession.New()
		userID := uuid.New()
		seen := make(map[string]bool)
		for range 50 {
			token, _, err := mgr.Create(context.Background(), userID, time.Hour, trustedsession.Meta{})
			require.NoError(t, err)
			assert.False(t, seen[token])
			seen[token] = true
		}
	})

	t.Run("rejects bad input", func(t *testing.T) {
		t.Parallel()

		mgr := trustedsession.New()

		_, _, err := mgr.Create(context.Background(), uuid.Nil, time.Hour, trustedsession.Meta{})
		assert.ErrorIs(t, err, trustedsession.ErrInvalidSession)

		_, _, err = mgr.Create(context.Background(), uuid.New(), -time.Second, trustedsession.Meta{})
		assert.ErrorIs(t, err, trustedsession.ErrInvalidTTL)

		_, _, err = mgr.Create(context.Background(), uuid.New(), 365*24*time.Hour, trustedsession.Meta{})
		assert.ErrorIs(t, err, trustedsession.ErrInvalidTTL)
	})

	t.Run("wraps store failures", func(t *testing.T) {
		t.Parallel()

		store := &MockStore{}
		store.On("Create", mock.Anything, mock.Anything).Return(errors.New("down"))

		mgr := trustedsession.New(trustedsession.WithStore(store))
		_, _, err := mgr.Create(context.Background(), uuid.New(), time.Hour, trustedsession.Meta{})
		assert.ErrorIs(t, err, trustedsession.ErrFailedToCreate)
		store.AssertExpectations(t)
	})
}

func TestManager_Verify(t *testing.T) {
	t.Parallel()

	t.Run("valid before expiry, invalid after", func(t *testing.T) {
		t.Parallel()

		c := newClock()
		mgr := trustedsession.New(trustedsession.WithClock(c.Now))
		userID := uuid.New()

		token, _, err := mgr.Create(context.Background(), userID, time.Hour, trustedsession.Meta{})
		require.NoError(t, err)

		v, err := mgr.Verify(context.Background(), token)
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.True(t, v.Valid)
		assert.Equal(t, userID, v.UserID)

		c.Advance(time.Hour - time.Second)
		v, err = mgr.Verify(context.Background(), token)
		require.NoError(t, err)
		assert.True(t, v.Valid)

		c.Advance(time.Second)
		v, err = mgr.Verify(context.Background(), token)
		require.NoError(t, err)
		require.NotNil(t, v, "expired but unswept session must still be recognized")
		assert.False(t, v.Valid)
		assert.Equal(t, userID, v.UserID)
	})

	t.Run("unknown and malformed tokens are absent", func(t *testing.T) {
		t.Parallel()

		mgr := trustedsession.New()
		for _, token := range []string{"", "short", base64.RawURLEncoding.EncodeToString(make([]byte, trustedsession.TokenSize))} {
			v, err := mgr.Verify(context.Background(), token)
			require.NoError(t, err)
			assert.Nil(t, v)
		}
	})

	t.Run("store fault is an error, not absence", func(t *testing.T) {
		t.Parallel()

		store := &MockStore{}
		store.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

		mgr := trustedsession.New(trustedsession.WithStore(store))
		token := base64.RawURLEncoding.EncodeToString(make([]byte, trustedsession.TokenSize))

		v, err := mgr.Verify(context.Background(), token)
		assert.Nil(t, v)
		assert.ErrorIs(t, err, trustedsession.ErrFailedToLoad)
	})
}

func TestManager_RevokeAll(t *testing.T) {
	t.Parallel()

	t.Run("removes only the user's sessions", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		mgr := trustedsession.New()
		alice, bob := uuid.New(), uuid.New()

		t1, _, err := mgr.Create(ctx, alice, time.Hour, trustedsession.Meta{})
		require.NoError(t, err)
		t2, _, err := mgr.Create(ctx, alice, time.Hour, trustedsession.Meta{})
		require.NoError(t, err)
		tb, _, err := mgr.Create(ctx, bob, time.Hour, trustedsession.Meta{})
		require.NoError(t, err)

		n, err := mgr.RevokeAll(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		for _, tok := range []string{t1, t2} {
			v, err := mgr.Verify(ctx, tok)
			require.NoError(t, err)
			assert.Nil(t, v)
		}

		v, err := mgr.Verify(ctx, tb)
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.True(t, v.Valid)
	})

	t.Run("sessions created after revocation survive", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		mgr := trustedsession.New()
		userID := uuid.New()

		_, _, err := mgr.Create(ctx, userID, time.Hour, trustedsession.Meta{})
		require.NoError(t, err)

		_, err = mgr.RevokeAll(ctx, userID)
		require.NoError(t, err)

		token, _, err := mgr.Create(ctx, userID, time.Hour, trustedsession.Meta{})
		require.NoError(t, err)

		v, err := mgr.Verify(ctx, token)
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.True(t, v.Valid)
	})
}

func TestManager_ListAndSweep(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newClock()
	store := trustedsession.NewMemoryStore()
	mgr := trustedsession.New(trustedsession.WithStore(store), trustedsession.WithClock(c.Now))
	userID := uuid.New()

	_, _, err := mgr.Create(ctx, userID, time.Minute, trustedsession.Meta{})
	require.NoError(t, err)
	_, long, err := mgr.Create(ctx, userID, time.Hour, trustedsession.Meta{})
	require.NoError(t, err)

	c.Advance(2 * time.Minute)

	live, err := mgr.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, long.ID, live[0].ID)

	var wg sync.WaitGroup
	counts := make([]int, 5)
	for i := range counts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := mgr.SweepExpired(ctx)
			assert.NoError(t, err)
			counts[i] = n
		}()
	}
	wg.Wait()

	total := 0
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, store.Len())

	n, err := mgr.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
