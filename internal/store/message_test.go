package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ageniuscoder/blinkchat/internal/chatid"
	"github.com/ageniuscoder/blinkchat/internal/storage/sqlite"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	sq, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sq.Db.Close() })
	if err := sq.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(sq.Db, "sqlite")
}

func TestAppendIdsStrictlyIncreasing(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	var last int64
	seen := make(map[int64]bool)
	for i := 0; i < 50; i++ {
		m, err := st.Append(ctx, "alice", "bob", "hi", Attachment{})
		if err != nil {
			t.Fatal(err)
		}
		if m.ID <= last {
			t.Fatalf("id %d not strictly greater than previous %d", m.ID, last)
		}
		if seen[m.ID] {
			t.Fatalf("duplicate id %d", m.ID)
		}
		seen[m.ID] = true
		last = m.ID
	}
}

func TestAppendReturnsFullRecord(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	att := Attachment{URL: "/uploads/pic.png", Type: "image/png", Name: "pic.png"}
	m, err := st.Append(ctx, "bob", "alice", "look", att)
	if err != nil {
		t.Fatal(err)
	}
	if m.ChatID != chatid.ChatID("alice", "bob") {
		t.Errorf("ChatID = %q, want %q", m.ChatID, chatid.ChatID("alice", "bob"))
	}
	if m.ID == 0 || m.CreatedAt.IsZero() {
		t.Errorf("record missing generated fields: %+v", m)
	}

	got, err := st.Find(ctx, m.ChatID, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Sender != "bob" || got.Receiver != "alice" || got.Content != "look" || got.Attachment != att {
		t.Errorf("Find = %+v, want persisted record", got)
	}
}

func TestIdempotentAppendIsNoOpOnExisting(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	m, err := st.Append(ctx, "alice", "bob", "first draft", Attachment{})
	if err != nil {
		t.Fatal(err)
	}

	// Re-delivering the same record, even with different content, must
	// leave the store unchanged.
	dup := m
	dup.Content = "tampered"
	for i := 0; i < 2; i++ {
		if err := st.IdempotentAppend(ctx, dup); err != nil {
			t.Fatal(err)
		}
	}

	msgs, err := st.History(ctx, m.ChatID, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Fatalf("history has %d messages, want 1", len(msgs))
	}
	if msgs[0].Content != "first draft" {
		t.Errorf("content = %q, want first draft", msgs[0].Content)
	}
}

func TestIdempotentAppendInsertsNewRecord(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	m := Message{
		ChatID:    chatid.ChatID("alice", "bob"),
		ID:        123456789,
		Sender:    "alice",
		Receiver:  "bob",
		Content:   "replayed",
		CreatedAt: time.Now().UTC(),
	}
	if err := st.IdempotentAppend(ctx, m); err != nil {
		t.Fatal(err)
	}
	got, err := st.Find(ctx, m.ChatID, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "replayed" || got.ID != m.ID {
		t.Errorf("Find = %+v, want supplied record", got)
	}
}

func TestHistoryAscendingAndPerViewer(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	conv := chatid.ChatID("alice", "bob")

	m1, _ := st.Append(ctx, "alice", "bob", "one", Attachment{})
	m2, _ := st.Append(ctx, "bob", "alice", "two", Attachment{})
	m3, _ := st.Append(ctx, "alice", "bob", "three", Attachment{})

	msgs, err := st.History(ctx, conv, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 3 {
		t.Fatalf("history has %d messages, want 3", len(msgs))
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].ID <= msgs[i-1].ID {
			t.Errorf("history not ascending at %d: %d then %d", i, msgs[i-1].ID, msgs[i].ID)
		}
	}

	// Bob hides m2; only bob's view changes.
	if err := st.HideForViewer(ctx, conv, m2.ID, "bob"); err != nil {
		t.Fatal(err)
	}
	// Hiding twice has no further effect.
	if err := st.HideForViewer(ctx, conv, m2.ID, "bob"); err != nil {
		t.Fatal(err)
	}

	bobView, _ := st.History(ctx, conv, "bob")
	if len(bobView) != 2 || bobView[0].ID != m1.ID || bobView[1].ID != m3.ID {
		t.Errorf("bob's history = %v, want m1 and m3", ids(bobView))
	}
	aliceView, _ := st.History(ctx, conv, "alice")
	if len(aliceView) != 3 {
		t.Errorf("alice's history has %d messages, want 3", len(aliceView))
	}
	if aliceView[1].Content != "two" {
		t.Errorf("m2 content changed for alice: %q", aliceView[1].Content)
	}
}

func TestEraseForEveryoneIsTerminal(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	conv := chatid.ChatID("alice", "bob")

	m, err := st.Append(ctx, "alice", "bob", "secret", Attachment{URL: "/u/f.png", Type: "image/png", Name: "f.png"})
	if err != nil {
		t.Fatal(err)
	}

	if err := st.EraseForEveryone(ctx, conv, m.ID); err != nil {
		t.Fatal(err)
	}

	got, err := st.Find(ctx, conv, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Erased || got.Content != "" || got.Attachment != (Attachment{}) {
		t.Errorf("message not cleared after erase: %+v", got)
	}

	// Erased messages disappear from every viewer's history.
	for _, viewer := range []string{"alice", "bob"} {
		msgs, _ := st.History(ctx, conv, viewer)
		if len(msgs) != 0 {
			t.Errorf("%s still sees %d messages after erase", viewer, len(msgs))
		}
	}

	// Later mutations never bring the content back.
	if err := st.HideForViewer(ctx, conv, m.ID, "bob"); err != nil {
		t.Fatal(err)
	}
	if err := st.EraseForEveryone(ctx, conv, m.ID); err != nil {
		t.Fatal(err)
	}
	if err := st.IdempotentAppend(ctx, Message{ChatID: conv, ID: m.ID, Sender: "alice", Receiver: "bob", Content: "secret", CreatedAt: m.CreatedAt}); err != nil {
		t.Fatal(err)
	}
	got, _ = st.Find(ctx, conv, m.ID)
	if !got.Erased || got.Content != "" {
		t.Errorf("erase not terminal: %+v", got)
	}
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	conv := chatid.ChatID("alice", "bob")

	if _, err := st.Find(ctx, conv, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find unknown = %v, want ErrNotFound", err)
	}
	if err := st.HideForViewer(ctx, conv, 42, "alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("HideForViewer unknown = %v, want ErrNotFound", err)
	}
	if err := st.EraseForEveryone(ctx, conv, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("EraseForEveryone unknown = %v, want ErrNotFound", err)
	}
}

func ids(msgs []Message) []int64 {
	out := make([]int64, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}
