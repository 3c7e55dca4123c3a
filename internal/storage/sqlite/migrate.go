package sqlite

import "strings"

// Schema is embedded so the binary needs no schema file next to it.
const schema = `
CREATE TABLE IF NOT EXISTS messages (
	chat_id TEXT NOT NULL,
	message_id INTEGER NOT NULL,
	sender TEXT NOT NULL,
	receiver TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	attachment_url TEXT NOT NULL DEFAULT '',
	attachment_type TEXT NOT NULL DEFAULT '',
	attachment_name TEXT NOT NULL DEFAULT '',
	erased INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (chat_id, message_id)
);

CREATE TABLE IF NOT EXISTS message_hidden (
	chat_id TEXT NOT NULL,
	message_id INTEGER NOT NULL,
	viewer TEXT NOT NULL,
	PRIMARY KEY (chat_id, message_id, viewer)
);

CREATE TABLE IF NOT EXISTS reactions (
	chat_id TEXT NOT NULL,
	message_id INTEGER NOT NULL,
	username TEXT NOT NULL,
	emoji TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (chat_id, message_id, username)
);
`

func (s *Sqlite) Migrate() error {
	for _, stmt := range strings.Split(schema, ";") {
		st := strings.TrimSpace(stmt)
		if st == "" {
			continue
		}
		if _, err := s.Db.Exec(st); err != nil {
			return err
		}
	}
	return nil
}
