package chatid

import "testing"

func TestChatIDCommutative(t *testing.T) {
	if ChatID("alice", "bob") != ChatID("bob", "alice") {
		t.Errorf("ChatID is not commutative: %q vs %q", ChatID("alice", "bob"), ChatID("bob", "alice"))
	}
	if got := ChatID("alice", "bob"); got != "alice_bob" {
		t.Errorf("ChatID(alice, bob) = %q, want alice_bob", got)
	}
}

func TestChatIDDistinctPairs(t *testing.T) {
	if ChatID("alice", "bob") == ChatID("alice", "carol") {
		t.Error("distinct pairs must not share a chat id")
	}
	if ChatID("a", "bc") == ChatID("ab", "c") {
		t.Error("pair boundary must be unambiguous")
	}
}

func TestChatIDDeterministic(t *testing.T) {
	first := ChatID("zoe", "adam")
	for i := 0; i < 10; i++ {
		if got := ChatID("zoe", "adam"); got != first {
			t.Fatalf("ChatID not deterministic: %q then %q", first, got)
		}
	}
}
