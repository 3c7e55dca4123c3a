// Package store is the durable message and reaction store. It runs on
// either sqlite or postgres through database/sql; the schema lives with
// the storage backends.
//
// Messages are never physically removed. Per-viewer deletion appends the
// viewer to an insert-only hidden set, and delete-for-everyone flips an
// irreversible erased flag and clears the content fields. Both are
// applied at read time by History.
package store

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"
)

var ErrNotFound = errors.New("message not found")

type Store struct {
	db     *sql.DB
	driver string
	ids    idAllocator
}

// New wraps an open database handle. driver is "sqlite" or "postgres"
// and only affects placeholder syntax.
func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

// q rewrites ? placeholders to $n for postgres. Queries are written in
// sqlite style throughout the package.
func (s *Store) q(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
