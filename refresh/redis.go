package refresh

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix is the key namespace used when none is configured.
const DefaultPrefix = "refresh_token"

const (
	rotateStatusNotFound int64 = 0
	rotateStatusMismatch int64 = 2
	rotateStatusRotated  int64 = 3
)

const rotateScript = `
local current = redis.call("GET", KEYS[1])
if not current then
  return 0
end
if current ~= ARGV[1] then
  return 2
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 3
`

var rotateLua = redis.NewScript(rotateScript)

// RedisStore is the ephemeral backend. The raw token lives at
// "<prefix>:<subject>" and Redis expires it after the refresh TTL.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisStore{redis: client, prefix: prefix}
}

func (s *RedisStore) key(subjectID string) string {
	return s.prefix + ":" + subjectID
}

func (s *RedisStore) Put(ctx context.Context, subjectID, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("refresh ttl must be positive")
	}
	if err := s.redis.Set(ctx, s.key(subjectID), token, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, subjectID string) (string, error) {
	val, err := s.redis.Get(ctx, s.key(subjectID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return val, nil
}

func (s *RedisStore) Matches(ctx context.Context, subjectID, presented string) (bool, error) {
	stored, err := s.Get(ctx, subjectID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1, nil
}

func (s *RedisStore) Rotate(ctx context.Context, subjectID, presented, next string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("refresh ttl must be positive")
	}

	code, err := rotateLua.Run(
		ctx,
		s.redis,
		[]string{s.key(subjectID)},
		presented,
		next,
		ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch code {
	case rotateStatusRotated:
		return nil
	case rotateStatusNotFound:
		return ErrNotFound
	case rotateStatusMismatch:
		return ErrMismatch
	default:
		return fmt.Errorf("%w: unexpected rotate status %d", ErrUnavailable, code)
	}
}

func (s *RedisStore) Delete(ctx context.Context, subjectID string) error {
	if err := s.redis.Del(ctx, s.key(subjectID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
