package repo

import (
	"context"
	"errors"
	"io/fs"
)

// ErrNotFound indicates the requested row does not exist. Callers use it
// to tell "no such conversation" apart from a storage fault.
var ErrNotFound = errors.New("repo: not found")

// Store defines the interface for data persistence.
type Store interface {
	// Lifecycle
	Close()
	Ping(ctx context.Context) error
	RunMigrations(ctx context.Context, filesystem fs.FS) error

	// Chats
	FindChatByPhone(ctx context.Context, phoneNumber string) (*Chat, error)
	CreateChat(ctx context.Context, phoneNumber, message string) (*Chat, error)
	UpdateChatMessage(ctx context.Context, chatID int64, message string) error
	MarkChatAttended(ctx context.Context, chatID int64, message string) error

	// Clients
	ClientExists(ctx context.Context, phoneNumber string) (bool, error)
	InsertClient(ctx context.Context, phoneNumber string) error

	// Catalog
	ListServices(ctx context.Context) ([]Service, error)
	ListBarbers(ctx context.Context) ([]Barber, error)
}

var (
	_ Store = (*Repository)(nil)
	_ Store = (*SQLiteRepository)(nil)
)
