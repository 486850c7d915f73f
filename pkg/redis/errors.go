package redis

import "errors"

var (
	ErrEmptyConnectionURL           = errors.New("redis: REDIS_URL is empty")
	ErrFailedToParseRedisConnString = errors.New("redis: cannot parse REDIS_URL")
	ErrRedisNotReady                = errors.New("redis: server not ready before retries ran out")
	ErrHealthcheckFailed            = errors.New("redis: ping failed")
)
