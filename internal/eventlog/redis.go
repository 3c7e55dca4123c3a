package eventlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisLog publishes events to a redis stream. The stream plays the
// role of a single log topic; the chat id travels as an entry field so
// downstream consumers can partition on it.
type RedisLog struct {
	rdb    *redis.Client
	stream string
}

func NewRedisLog(rdb *redis.Client, stream string) *RedisLog {
	return &RedisLog{rdb: rdb, stream: stream}
}

func (l *RedisLog) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = l.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: l.stream,
		Values: map[string]any{
			"chat_id": ev.ChatID,
			"payload": payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", l.stream, err)
	}
	return nil
}
