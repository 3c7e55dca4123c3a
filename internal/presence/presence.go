// Package presence tracks which users currently have a reachable live
// connection. Entries live only as long as the connection; nothing here
// survives a restart, and absence of an entry only means "skip live
// fan-out", never "the user will not see the message". History covers
// the missed delivery.
package presence

import "context"

// Registry maps a user id to the handle of their live connection. One
// handle per user: a second connection for the same user overwrites the
// first (last-writer-wins).
type Registry interface {
	// Mark records handle as the user's current connection.
	Mark(ctx context.Context, user, handle string) error
	// Unmark removes the user's entry, but only if handle still owns
	// it. A disconnect racing a reconnect must not unmark the newer
	// connection.
	Unmark(ctx context.Context, user, handle string) error
	// Lookup returns the user's current handle, if any.
	Lookup(ctx context.Context, user string) (string, bool, error)
	// Online lists every user currently marked.
	Online(ctx context.Context) ([]string, error)
}
