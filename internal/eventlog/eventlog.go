// Package eventlog is the replicated secondary persistence path. Every
// accepted message is published to a durable, replayable log keyed by
// conversation; a background consumer drains the log and persists
// anything the direct write path did not. The direct path is the source
// of truth; the log exists for redundancy and as a seam for future
// consumers (analytics, notifications).
package eventlog

import (
	"context"
	"sync"

	"github.com/ageniuscoder/blinkchat/internal/store"
)

type Event struct {
	ChatID  string        `json:"chatId"`
	Message store.Message `json:"message"`
	// AlreadySaved marks events whose message the gateway persisted
	// directly; the consumer skips these.
	AlreadySaved bool `json:"alreadySaved"`
}

type Log interface {
	Publish(ctx context.Context, ev Event) error
}

// NopLog discards every published event. It stands in when no broker
// is configured; the direct write path already persists each message,
// so dropping the mirror copy loses nothing.
type NopLog struct{}

func NewNopLog() NopLog { return NopLog{} }

func (NopLog) Publish(ctx context.Context, ev Event) error { return nil }

// MemoryLog records published events in order so tests can assert on
// what the gateway mirrored. Not for production use; it never drains.
type MemoryLog struct {
	mu     sync.Mutex
	events []Event

	// PublishErr, when set, makes every Publish fail. Lets tests
	// exercise the log-and-continue contract.
	PublishErr error
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

func (l *MemoryLog) Publish(ctx context.Context, ev Event) error {
	if l.PublishErr != nil {
		return l.PublishErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
	return nil
}

func (l *MemoryLog) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), l.events...)
}
