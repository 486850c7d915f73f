// Package trustedsession issues short-lived tokens that let a device which
// already passed a second-factor challenge skip further challenges.
//
// A token is 32 random bytes encoded as unpadded base64url. Only its SHA-256
// is stored, so a leaked store does not yield usable tokens.
//
//	mgr := trustedsession.New(trustedsession.WithStore(trustedsession.NewRedisStore(rdb)))
//	token, sess, err := mgr.Create(ctx, userID, 0, trustedsession.Meta{IP: ip})
//	v, err := mgr.Verify(ctx, token) // nil when unknown, v.Valid false when expired
//
// RevokeAll removes the sessions a user holds at call time; sessions created
// afterwards survive. SweepExpired may run from several processes at once.
//
// Stores: MemoryStore for tests and single-process use, RedisStore, and the
// Postgres implementation in pkg/pgstore.
package trustedsession
