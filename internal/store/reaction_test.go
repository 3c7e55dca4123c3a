package store

import (
	"context"
	"errors"
	"testing"

	"github.com/ageniuscoder/blinkchat/internal/chatid"
)

func TestToggleAddRemove(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	conv := chatid.ChatID("alice", "bob")

	m, err := st.Append(ctx, "alice", "bob", "hi", Attachment{})
	if err != nil {
		t.Fatal(err)
	}

	current, err := st.ToggleReaction(ctx, conv, m.ID, "bob", "👍")
	if err != nil {
		t.Fatal(err)
	}
	if current != "👍" {
		t.Errorf("first toggle = %q, want 👍", current)
	}

	// Same emoji again removes it.
	current, err = st.ToggleReaction(ctx, conv, m.ID, "bob", "👍")
	if err != nil {
		t.Fatal(err)
	}
	if current != "" {
		t.Errorf("second toggle = %q, want none", current)
	}
	reactions, _ := st.ReactionsFor(ctx, conv, m.ID)
	if len(reactions) != 0 {
		t.Errorf("reactions after remove = %v, want none", reactions)
	}
}

func TestToggleReplaces(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	conv := chatid.ChatID("alice", "bob")

	m, _ := st.Append(ctx, "alice", "bob", "hi", Attachment{})

	st.ToggleReaction(ctx, conv, m.ID, "bob", "👍")
	current, err := st.ToggleReaction(ctx, conv, m.ID, "bob", "❤️")
	if err != nil {
		t.Fatal(err)
	}
	if current != "❤️" {
		t.Errorf("replace toggle = %q, want ❤️", current)
	}

	reactions, _ := st.ReactionsFor(ctx, conv, m.ID)
	if len(reactions) != 1 || reactions[0].Emoji != "❤️" || reactions[0].User != "bob" {
		t.Errorf("reactions = %+v, want single ❤️ from bob", reactions)
	}
}

func TestOneSlotPerUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	conv := chatid.ChatID("alice", "bob")

	m, _ := st.Append(ctx, "alice", "bob", "hi", Attachment{})

	st.ToggleReaction(ctx, conv, m.ID, "alice", "😀")
	st.ToggleReaction(ctx, conv, m.ID, "bob", "👍")
	st.ToggleReaction(ctx, conv, m.ID, "bob", "❤️")

	reactions, _ := st.ReactionsFor(ctx, conv, m.ID)
	if len(reactions) != 2 {
		t.Fatalf("reactions = %+v, want one per user", reactions)
	}
	byUser := map[string]string{}
	for _, r := range reactions {
		byUser[r.User] = r.Emoji
	}
	if byUser["alice"] != "😀" || byUser["bob"] != "❤️" {
		t.Errorf("byUser = %v", byUser)
	}
}

func TestToggleUnknownMessage(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, err := st.ToggleReaction(ctx, chatid.ChatID("alice", "bob"), 42, "bob", "👍")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("toggle on unknown message = %v, want ErrNotFound", err)
	}
}
