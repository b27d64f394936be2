package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"barber-bot/internal/phone"
)

// FindChatByPhone returns the latest chat row for a phone number. The
// number is normalized before lookup; older rows for the same number are
// ignored. Returns ErrNotFound when no chat exists.
func (r *Repository) FindChatByPhone(ctx context.Context, phoneNumber string) (*Chat, error) {
	const q = `
SELECT id, phone, status, last_message, last_interaction, created_at
FROM chats
WHERE phone = $1
ORDER BY id DESC
LIMIT 1;
`
	row := r.pool.QueryRow(ctx, q, phone.Normalize(phoneNumber))

	var c Chat
	if err := row.Scan(&c.ID, &c.Phone, &c.Status, &c.LastMessage, &c.LastInteraction, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find chat by phone: %w", err)
	}
	return &c, nil
}

// CreateChat inserts a new chat for the phone number with status
// awaiting_barber and returns the inserted row.
func (r *Repository) CreateChat(ctx context.Context, phoneNumber, message string) (*Chat, error) {
	const q = `
INSERT INTO chats (phone, status, last_message, last_interaction)
VALUES ($1, $2, $3, NOW())
RETURNING id, phone, status, last_message, last_interaction, created_at;
`
	row := r.pool.QueryRow(ctx, q, phone.Normalize(phoneNumber), StatusAwaitingBarber, message)

	var c Chat
	if err := row.Scan(&c.ID, &c.Phone, &c.Status, &c.LastMessage, &c.LastInteraction, &c.CreatedAt); err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return &c, nil
}

// UpdateChatMessage stores the latest inbound text and interaction time
// for an existing chat. Status is left untouched.
func (r *Repository) UpdateChatMessage(ctx context.Context, chatID int64, message string) error {
	const q = `
UPDATE chats
SET last_message = $2, last_interaction = NOW()
WHERE id = $1;
`
	ct, err := r.pool.Exec(ctx, q, chatID, message)
	if err != nil {
		return fmt.Errorf("update chat message: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("update chat message %d: %w", chatID, ErrNotFound)
	}
	return nil
}

// MarkChatAttended sets the chat status to attended unconditionally and
// stamps the barber's text as the last message.
func (r *Repository) MarkChatAttended(ctx context.Context, chatID int64, message string) error {
	const q = `
UPDATE chats
SET status = $2, last_message = $3, last_interaction = NOW()
WHERE id = $1;
`
	ct, err := r.pool.Exec(ctx, q, chatID, StatusAttended, message)
	if err != nil {
		return fmt.Errorf("mark chat attended: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("mark chat attended %d: %w", chatID, ErrNotFound)
	}
	return nil
}
