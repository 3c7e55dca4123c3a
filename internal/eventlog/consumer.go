package eventlog

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ageniuscoder/blinkchat/internal/store"
)

// appender is the slice of the message store the consumer needs.
type appender interface {
	IdempotentAppend(ctx context.Context, m store.Message) error
}

// Consumer drains the event stream through a consumer group and
// persists messages the direct path did not. Delivery is at-least-once:
// a restart resumes from the group's pending/last-delivered position and
// may redeliver, which IdempotentAppend absorbs.
type Consumer struct {
	rdb    *redis.Client
	stream string
	group  string
	name   string
	store  appender
}

func NewConsumer(rdb *redis.Client, stream, group, name string, st appender) *Consumer {
	return &Consumer{rdb: rdb, stream: stream, group: group, name: name, store: st}
}

// Run blocks until ctx is cancelled. The group is created from "$"
// (new events only); a group that already exists is reused.
func (c *Consumer) Run(ctx context.Context) error {
	err := c.rdb.XGroupCreateMkStream(ctx, c.stream, c.group, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}

	for {
		res, err := c.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.name,
			Streams:  []string{c.stream, ">"},
			Count:    16,
			Block:    5 * time.Second,
		}).Result()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			log.Printf("[eventlog] read group: %v", err)
			continue
		}

		for _, stream := range res {
			for _, entry := range stream.Messages {
				if err := c.handleEntry(ctx, entry); err != nil {
					// The direct path already persisted this message
					// (or the payload is malformed); skipping keeps
					// the partition moving.
					log.Printf("[eventlog] entry %s skipped: %v", entry.ID, err)
				}
				if err := c.rdb.XAck(ctx, c.stream, c.group, entry.ID).Err(); err != nil {
					log.Printf("[eventlog] ack %s: %v", entry.ID, err)
				}
			}
		}
	}
}

func (c *Consumer) handleEntry(ctx context.Context, entry redis.XMessage) error {
	payload, ok := entry.Values["payload"].(string)
	if !ok {
		return errors.New("entry has no payload field")
	}
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return err
	}
	return c.Handle(ctx, ev)
}

// Handle applies one event. Events flagged as already persisted by the
// direct path are skipped; everything else is merged idempotently, so
// redelivery never produces a second record.
func (c *Consumer) Handle(ctx context.Context, ev Event) error {
	if ev.AlreadySaved {
		return nil
	}
	return c.store.IdempotentAppend(ctx, ev.Message)
}
