package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Reaction struct {
	ChatID    string    `json:"chatId"`
	MessageID int64     `json:"messageId,string"`
	User      string    `json:"userId"`
	Emoji     string    `json:"reaction"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToggleReaction applies the single-slot toggle for (message, user):
// no existing reaction adds one, the same emoji removes it, a different
// emoji replaces it. Returns the user's reaction after the toggle, ""
// when none. The read-then-write runs in one transaction so concurrent
// toggles by the same user cannot leave two live rows.
func (s *Store) ToggleReaction(ctx context.Context, chatID string, messageID int64, user, emoji string) (string, error) {
	if _, err := s.Find(ctx, chatID, messageID); err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin toggle: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, s.q(`
		SELECT emoji FROM reactions
		WHERE chat_id = ? AND message_id = ? AND username = ?`),
		chatID, messageID, user).Scan(&current)

	result := ""
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, s.q(`
			INSERT INTO reactions (chat_id, message_id, username, emoji, created_at)
			VALUES (?, ?, ?, ?, ?)`),
			chatID, messageID, user, emoji, time.Now().UTC().UnixMilli())
		result = emoji
	case err != nil:
		return "", fmt.Errorf("read reaction: %w", err)
	case current == emoji:
		_, err = tx.ExecContext(ctx, s.q(`
			DELETE FROM reactions
			WHERE chat_id = ? AND message_id = ? AND username = ?`),
			chatID, messageID, user)
	default:
		_, err = tx.ExecContext(ctx, s.q(`
			UPDATE reactions SET emoji = ?, created_at = ?
			WHERE chat_id = ? AND message_id = ? AND username = ?`),
			emoji, time.Now().UTC().UnixMilli(), chatID, messageID, user)
		result = emoji
	}
	if err != nil {
		return "", fmt.Errorf("toggle reaction: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit toggle: %w", err)
	}
	return result, nil
}

// ReactionsFor lists the live reactions on a message.
func (s *Store) ReactionsFor(ctx context.Context, chatID string, messageID int64) ([]Reaction, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT chat_id, message_id, username, emoji, created_at
		FROM reactions WHERE chat_id = ? AND message_id = ?
		ORDER BY created_at ASC`),
		chatID, messageID)
	if err != nil {
		return nil, fmt.Errorf("query reactions: %w", err)
	}
	defer rows.Close()

	var list []Reaction
	for rows.Next() {
		var r Reaction
		var createdMs int64
		if err := rows.Scan(&r.ChatID, &r.MessageID, &r.User, &r.Emoji, &createdMs); err != nil {
			return nil, fmt.Errorf("scan reaction: %w", err)
		}
		r.CreatedAt = time.UnixMilli(createdMs).UTC()
		list = append(list, r)
	}
	return list, rows.Err()
}
