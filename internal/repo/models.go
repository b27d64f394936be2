package repo

import "time"

// Chat status values. StatusNew is transient only: no row is ever written
// with it, chats are created directly as StatusAwaitingBarber.
const (
	StatusNew            = "new"
	StatusAwaitingBarber = "awaiting_barber"
	StatusAttended       = "attended"
)

// Chat represents a row in the chats table. A phone number may accumulate
// multiple rows over time; the highest id is the authoritative one.
type Chat struct {
	ID              int64
	Phone           string
	Status          string
	LastMessage     string
	LastInteraction time.Time
	CreatedAt       time.Time
}

// Client represents a row in the clients existence ledger.
type Client struct {
	ID        string
	Phone     string
	CreatedAt time.Time
}

// Service represents an offering from the services catalog.
type Service struct {
	ID          int64
	Name        string
	Description string
	Price       float64
}

// Barber represents a staff member from the barbers catalog.
type Barber struct {
	ID        int64
	Name      string
	Specialty string
}
