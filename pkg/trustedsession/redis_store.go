package trustedsession

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/twofactor/pkg/logger"
)

// RedisStore implements Store on Redis.
//
// Each session is a JSON value under its own key. A set per user indexes the
// user's sessions and a sorted set scored by expiry drives DeleteExpired.
// Session keys outlive ExpiresAt by the retention period so an expired token
// is still recognized as expired until it is swept.
type RedisStore struct {
	db        redis.UniversalClient
	prefix    string
	retention time.Duration
	logger    *slog.Logger
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix sets the key namespace. Default is "tfa:trusted".
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithRetention sets how long an expired session key is kept before Redis
// evicts it on its own. Default is 24h.
func WithRetention(d time.Duration) RedisOption {
	return func(s *RedisStore) {
		if d > 0 {
			s.retention = d
		}
	}
}

// WithRedisLogger sets the logger for best-effort index maintenance.
func WithRedisLogger(l *slog.Logger) RedisOption {
	return func(s *RedisStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewRedisStore creates a Store backed by the given client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		db:        client,
		prefix:    "tfa:trusted",
		retention: 24 * time.Hour,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) sessionKey(id string) string {
	return s.prefix + ":s:" + id
}

func (s *RedisStore) userKey(userID uuid.UUID) string {
	return s.prefix + ":u:" + userID.String()
}

func (s *RedisStore) expiryKey() string {
	return s.prefix + ":exp"
}

func expiryMember(userID uuid.UUID, id string) string {
	return userID.String() + "|" + id
}

func (s *RedisStore) Create(ctx context.Context, session *Session) error {
	if session == nil || session.ID == "" {
		return ErrInvalidSession
	}

	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	ttl := time.Until(session.ExpiresAt) + s.retention
	if ttl <= 0 {
		ttl = s.retention
	}

	_, err = s.db.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.sessionKey(session.ID), data, ttl)
		pipe.SAdd(ctx, s.userKey(session.UserID), session.ID)
		pipe.ZAdd(ctx, s.expiryKey(), redis.Z{
			Score:  float64(session.ExpiresAt.UnixMilli()),
			Member: expiryMember(session.UserID, session.ID),
		})
		return nil
	})
	return err
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.db.Get(ctx, s.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, errors.Join(ErrFailedToDecodeSession, err)
	}
	return &session, nil
}

func (s *RedisStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]Session, error) {
	ids, err := s.db.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.sessionKey(id)
	}

	values, err := s.db.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]Session, 0, len(values))
	var stale []any
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var session Session
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			return nil, errors.Join(ErrFailedToDecodeSession, err)
		}
		out = append(out, session)
	}

	// Keys evicted by Redis leave dangling index entries.
	if len(stale) > 0 {
		if err := s.db.SRem(ctx, s.userKey(userID), stale...).Err(); err != nil {
			s.logger.WarnContext(ctx, "failed to drop stale session index entries",
				logger.UserID(userID),
				slog.Int("count", len(stale)),
				logger.Error(err),
				logger.Component("trustedsession"),
			)
		}
	}

	return out, nil
}

func (s *RedisStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	ids, err := s.db.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, len(ids))
	members := make([]any, len(ids))
	expiry := make([]any, len(ids))
	for i, id := range ids {
		keys[i] = s.sessionKey(id)
		members[i] = id
		expiry[i] = expiryMember(userID, id)
	}

	var del *redis.IntCmd
	_, err = s.db.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, keys...)
		// SRem rather than Del keeps sessions created after SMembers.
		pipe.SRem(ctx, s.userKey(userID), members...)
		pipe.ZRem(ctx, s.expiryKey(), expiry...)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(del.Val()), nil
}

func (s *RedisStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	members, err := s.db.ZRangeByScore(ctx, s.expiryKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, err
	}
	if len(members) == 0 {
		return 0, nil
	}

	dels := make([]*redis.IntCmd, 0, len(members))
	_, err = s.db.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, m := range members {
			uid, id, ok := strings.Cut(m, "|")
			if !ok {
				pipe.ZRem(ctx, s.expiryKey(), m)
				continue
			}
			dels = append(dels, pipe.Del(ctx, s.sessionKey(id)))
			pipe.SRem(ctx, s.prefix+":u:"+uid, id)
			pipe.ZRem(ctx, s.expiryKey(), m)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	n := 0
	for _, d := range dels {
		n += int(d.Val())
	}
	return n, nil
}
