// Package chatid derives the stable identifier for a two-party
// conversation. Either participant must arrive at the same key, so the
// pair is sorted before joining.
package chatid

// ChatID returns the conversation key for the two user ids. It is
// commutative: ChatID(a, b) == ChatID(b, a). User ids never contain "_",
// so distinct unordered pairs never collide.
func ChatID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "_" + b
}
