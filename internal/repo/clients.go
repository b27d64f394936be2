package repo

import (
	"context"
	"fmt"

	"barber-bot/internal/phone"
)

// ClientExists reports whether the phone number is present in the clients
// ledger.
func (r *Repository) ClientExists(ctx context.Context, phoneNumber string) (bool, error) {
	const q = `SELECT COUNT(*) FROM clients WHERE phone = $1;`

	var count int
	if err := r.pool.QueryRow(ctx, q, phone.Normalize(phoneNumber)).Scan(&count); err != nil {
		return false, fmt.Errorf("client exists: %w", err)
	}
	return count > 0, nil
}

// InsertClient registers a phone number in the clients ledger. Inserting
// an already-known number is a no-op, not an error.
func (r *Repository) InsertClient(ctx context.Context, phoneNumber string) error {
	const q = `
INSERT INTO clients (phone)
VALUES ($1)
ON CONFLICT (phone) DO NOTHING;
`
	if _, err := r.pool.Exec(ctx, q, phone.Normalize(phoneNumber)); err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}
