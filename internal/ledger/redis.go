package ledger

import (
	"context"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisStore keeps counters in one Redis hash per day, making the ledger safe to
// share across multiple service instances. Hash fields are "<service>:success",
// "<service>:failure", and "<service>:last_error". Day keys expire after 48 hours
// so stale records clean themselves up.
type RedisStore struct {
	client    goredis.Cmdable
	keyPrefix string
}

var _ Store = (*RedisStore)(nil)

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix sets the Redis key prefix (default "cps:usage:").
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.keyPrefix = prefix }
}

// NewRedisStore creates a Redis-backed store. The client must be a connected
// *goredis.Client or *goredis.ClusterClient.
func NewRedisStore(client goredis.Cmdable, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client:    client,
		keyPrefix: "cps:usage:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) dayKey(day time.Time) string {
	return s.keyPrefix + DayKey(day)
}

func (s *RedisStore) Increment(ctx context.Context, service string, day time.Time, success bool, errDetail string) error {
	key := s.dayKey(day)

	field := service + ":failure"
	if success {
		field = service + ":success"
	}
	if err := s.client.HIncrBy(ctx, key, field, 1).Err(); err != nil {
		return err
	}

	if errDetail != "" {
		if err := s.client.HSet(ctx, key, service+":last_error", errDetail).Err(); err != nil {
			return err
		}
	}

	return s.client.Expire(ctx, key, 48*time.Hour).Err()
}

func (s *RedisStore) Counts(ctx context.Context, day time.Time) (map[string]Counts, error) {
	fields, err := s.client.HGetAll(ctx, s.dayKey(day)).Result()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]Counts)
	for field, value := range fields {
		service, kind, ok := strings.Cut(field, ":")
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		c := counts[service]
		switch kind {
		case "success":
			c.Success = n
		case "failure":
			c.Failure = n
		default:
			continue
		}
		counts[service] = c
	}
	return counts, nil
}
