package presence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "online:"

// unmarkScript deletes the key only while it still holds the departing
// handle, so a reconnect that already overwrote the entry is kept.
var unmarkScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// RedisRegistry keeps one online:<user> key per reachable user.
type RedisRegistry struct {
	rdb *redis.Client
}

func NewRedisRegistry(rdb *redis.Client) *RedisRegistry {
	return &RedisRegistry{rdb: rdb}
}

func (r *RedisRegistry) Mark(ctx context.Context, user, handle string) error {
	if err := r.rdb.Set(ctx, keyPrefix+user, handle, 0).Err(); err != nil {
		return fmt.Errorf("mark %s online: %w", user, err)
	}
	return nil
}

func (r *RedisRegistry) Unmark(ctx context.Context, user, handle string) error {
	if err := unmarkScript.Run(ctx, r.rdb, []string{keyPrefix + user}, handle).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("unmark %s: %w", user, err)
	}
	return nil
}

func (r *RedisRegistry) Lookup(ctx context.Context, user string) (string, bool, error) {
	handle, err := r.rdb.Get(ctx, keyPrefix+user).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup %s: %w", user, err)
	}
	return handle, true, nil
}

func (r *RedisRegistry) Online(ctx context.Context) ([]string, error) {
	var users []string
	iter := r.rdb.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		users = append(users, strings.TrimPrefix(iter.Val(), keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan online users: %w", err)
	}
	return users, nil
}
