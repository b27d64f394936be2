package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"barber-bot/internal/phone"
)

// Timestamps are generated in Go rather than with CURRENT_TIMESTAMP so the
// driver round-trips them as time.Time values.

// -- Chats --

func (r *SQLiteRepository) FindChatByPhone(ctx context.Context, phoneNumber string) (*Chat, error) {
	const q = `
SELECT id, phone, status, last_message, last_interaction, created_at
FROM chats
WHERE phone = ?
ORDER BY id DESC
LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, phone.Normalize(phoneNumber))

	var c Chat
	if err := row.Scan(&c.ID, &c.Phone, &c.Status, &c.LastMessage, &c.LastInteraction, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find chat by phone: %w", err)
	}
	return &c, nil
}

func (r *SQLiteRepository) CreateChat(ctx context.Context, phoneNumber, message string) (*Chat, error) {
	now := time.Now().UTC()
	const q = `
INSERT INTO chats (phone, status, last_message, last_interaction, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id, phone, status, last_message, last_interaction, created_at;
`
	row := r.db.QueryRowContext(ctx, q, phone.Normalize(phoneNumber), StatusAwaitingBarber, message, now, now)

	var c Chat
	if err := row.Scan(&c.ID, &c.Phone, &c.Status, &c.LastMessage, &c.LastInteraction, &c.CreatedAt); err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return &c, nil
}

func (r *SQLiteRepository) UpdateChatMessage(ctx context.Context, chatID int64, message string) error {
	const q = `
UPDATE chats
SET last_message = ?, last_interaction = ?
WHERE id = ?;
`
	res, err := r.db.ExecContext(ctx, q, message, time.Now().UTC(), chatID)
	if err != nil {
		return fmt.Errorf("update chat message: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update chat message: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update chat message %d: %w", chatID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) MarkChatAttended(ctx context.Context, chatID int64, message string) error {
	const q = `
UPDATE chats
SET status = ?, last_message = ?, last_interaction = ?
WHERE id = ?;
`
	res, err := r.db.ExecContext(ctx, q, StatusAttended, message, time.Now().UTC(), chatID)
	if err != nil {
		return fmt.Errorf("mark chat attended: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark chat attended: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("mark chat attended %d: %w", chatID, ErrNotFound)
	}
	return nil
}

// -- Clients --

func (r *SQLiteRepository) ClientExists(ctx context.Context, phoneNumber string) (bool, error) {
	const q = `SELECT COUNT(*) FROM clients WHERE phone = ?;`

	var count int
	if err := r.db.QueryRowContext(ctx, q, phone.Normalize(phoneNumber)).Scan(&count); err != nil {
		return false, fmt.Errorf("client exists: %w", err)
	}
	return count > 0, nil
}

func (r *SQLiteRepository) InsertClient(ctx context.Context, phoneNumber string) error {
	// SQLite has no gen_random_uuid(), so row ids are generated here.
	const q = `
INSERT INTO clients (id, phone, created_at)
VALUES (?, ?, ?)
ON CONFLICT (phone) DO NOTHING;
`
	_, err := r.db.ExecContext(ctx, q, uuid.NewString(), phone.Normalize(phoneNumber), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// -- Catalog --

func (r *SQLiteRepository) ListServices(ctx context.Context) ([]Service, error) {
	const q = `
SELECT id, name, COALESCE(description, ''), price
FROM services
ORDER BY id ASC;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Price); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}
	return services, nil
}

func (r *SQLiteRepository) ListBarbers(ctx context.Context) ([]Barber, error) {
	const q = `
SELECT id, name, COALESCE(specialty, '')
FROM barbers
ORDER BY id ASC;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list barbers: %w", err)
	}
	defer rows.Close()

	var barbers []Barber
	for rows.Next() {
		var b Barber
		if err := rows.Scan(&b.ID, &b.Name, &b.Specialty); err != nil {
			return nil, fmt.Errorf("scan barber: %w", err)
		}
		barbers = append(barbers, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate barbers: %w", err)
	}
	return barbers, nil
}
