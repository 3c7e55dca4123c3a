package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ageniuscoder/blinkchat/internal/chatid"
)

type Attachment struct {
	URL  string `json:"attachmentUrl,omitempty"`
	Type string `json:"attachmentType,omitempty"`
	Name string `json:"attachmentName,omitempty"`
}

type Message struct {
	ChatID string `json:"chatId"`
	// Serialized as a string: ids exceed the 2^53 integers a JS
	// client can hold exactly.
	ID         int64      `json:"messageId,string"`
	Sender     string     `json:"senderId"`
	Receiver   string     `json:"receiverId"`
	Content    string     `json:"content"`
	Attachment Attachment `json:"attachment"`
	Erased     bool       `json:"erased"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Append persists a new message and returns the full record, including
// the generated id and timestamp. The insert is a single statement, so
// it either fully happens or not at all.
func (s *Store) Append(ctx context.Context, sender, receiver, content string, att Attachment) (Message, error) {
	m := Message{
		ChatID:     chatid.ChatID(sender, receiver),
		ID:         s.ids.next(),
		Sender:     sender,
		Receiver:   receiver,
		Content:    content,
		Attachment: att,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO messages (chat_id, message_id, sender, receiver, content,
			attachment_url, attachment_type, attachment_name, erased, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`),
		m.ChatID, m.ID, m.Sender, m.Receiver, m.Content,
		m.Attachment.URL, m.Attachment.Type, m.Attachment.Name,
		m.CreatedAt.UnixMilli())
	if err != nil {
		return Message{}, fmt.Errorf("append message: %w", err)
	}
	return m, nil
}

// IdempotentAppend writes the supplied record as-is, keeping its id and
// timestamp. If a record with the same (chat_id, message_id) already
// exists this is a no-op; the event log consumer relies on that to
// replay events safely.
func (s *Store) IdempotentAppend(ctx context.Context, m Message) error {
	erased := 0
	if m.Erased {
		erased = 1
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO messages (chat_id, message_id, sender, receiver, content,
			attachment_url, attachment_type, attachment_name, erased, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (chat_id, message_id) DO NOTHING`),
		m.ChatID, m.ID, m.Sender, m.Receiver, m.Content,
		m.Attachment.URL, m.Attachment.Type, m.Attachment.Name,
		erased, m.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("idempotent append: %w", err)
	}
	return nil
}

// History returns the conversation ascending by message id, excluding
// messages erased for everyone and messages the viewer deleted for
// themselves. Filtering happens here at read time; rows are never
// deleted.
func (s *Store) History(ctx context.Context, chatID, viewer string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT chat_id, message_id, sender, receiver, content,
			attachment_url, attachment_type, attachment_name, erased, created_at
		FROM messages m
		WHERE chat_id = ? AND erased = 0
		  AND NOT EXISTS (
			SELECT 1 FROM message_hidden h
			WHERE h.chat_id = m.chat_id AND h.message_id = m.message_id AND h.viewer = ?)
		ORDER BY message_id ASC`),
		chatID, viewer)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var list []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// HideForViewer appends viewer to the message's hidden set. Hiding the
// same message twice has no further effect, and entries are never
// removed.
func (s *Store) HideForViewer(ctx context.Context, chatID string, messageID int64, viewer string) error {
	if _, err := s.Find(ctx, chatID, messageID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO message_hidden (chat_id, message_id, viewer)
		VALUES (?, ?, ?)
		ON CONFLICT (chat_id, message_id, viewer) DO NOTHING`),
		chatID, messageID, viewer)
	if err != nil {
		return fmt.Errorf("hide for viewer: %w", err)
	}
	return nil
}

// EraseForEveryone marks the message erased and clears its content and
// attachment. The transition is terminal: the cleared fields are never
// repopulated. Sender authorization is the caller's job.
func (s *Store) EraseForEveryone(ctx context.Context, chatID string, messageID int64) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE messages
		SET erased = 1, content = '', attachment_url = '', attachment_type = '', attachment_name = ''
		WHERE chat_id = ? AND message_id = ?`),
		chatID, messageID)
	if err != nil {
		return fmt.Errorf("erase message: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Find(ctx context.Context, chatID string, messageID int64) (Message, error) {
	row := s.db.QueryRowContext(ctx, s.q(`
		SELECT chat_id, message_id, sender, receiver, content,
			attachment_url, attachment_type, attachment_name, erased, created_at
		FROM messages WHERE chat_id = ? AND message_id = ?`),
		chatID, messageID)
	return scanMessage(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(r rowScanner) (Message, error) {
	var m Message
	var erased int
	var createdMs int64
	err := r.Scan(&m.ChatID, &m.ID, &m.Sender, &m.Receiver, &m.Content,
		&m.Attachment.URL, &m.Attachment.Type, &m.Attachment.Name, &erased, &createdMs)
	if errors.Is(err, sql.ErrNoRows) {
		return Message{}, ErrNotFound
	}
	if err != nil {
		return Message{}, fmt.Errorf("scan message: %w", err)
	}
	m.Erased = erased != 0
	m.CreatedAt = time.UnixMilli(createdMs).UTC()
	return m, nil
}
