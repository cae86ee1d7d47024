// Package store provides the record storage boundary for the assistant.
// Tools perform user-scoped reads and writes through the Store interface;
// the resolver searches it. An in-memory implementation backs tests and
// single-instance deployments, a pgx-backed implementation backs production.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get* methods when no record matches the id
// within the acting user's scope.
var ErrNotFound = errors.New("record not found")

// ─── Record types ─────────────────────────────────────────────────────────────

type Contact struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ContactID string    `json:"contact_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// PropertyStatus values follow the listing lifecycle.
const (
	PropertyListed        = "listed"
	PropertyUnderContract = "under_contract"
	PropertySold          = "sold"
	PropertyWithdrawn     = "withdrawn"
)

type Property struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Address   string    `json:"address"`
	City      string    `json:"city,omitempty"`
	Status    string    `json:"status"`
	Price     int64     `json:"price,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Deal stages, in pipeline order.
const (
	DealLead      = "lead"
	DealQualified = "qualified"
	DealOffer     = "offer"
	DealClosing   = "closing"
	DealWon       = "won"
	DealLost      = "lost"
)

type Deal struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	ContactID  string    `json:"contact_id,omitempty"`
	PropertyID string    `json:"property_id,omitempty"`
	Stage      string    `json:"stage"`
	Amount     int64     `json:"amount,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CalendarEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	ContactID string    `json:"contact_id,omitempty"`
	Location  string    `json:"location,omitempty"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Canceled  bool      `json:"canceled"`
	CreatedAt time.Time `json:"created_at"`
}

// Message folders.
const (
	FolderInbox   = "inbox"
	FolderArchive = "archive"
	FolderSent    = "sent"
)

type Message struct {
	ID      string    `json:"id"`
	UserID  string    `json:"user_id"`
	From    string    `json:"from"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body,omitempty"`
	Folder  string    `json:"folder"`
	Read    bool      `json:"read"`
	SentAt  time.Time `json:"sent_at"`
}

// ─── Store interfaces ─────────────────────────────────────────────────────────

// ContactStore manages contacts and their notes.
type ContactStore interface {
	CreateContact(ctx context.Context, c *Contact) error
	GetContact(ctx context.Context, userID, id string) (*Contact, error)
	UpdateContact(ctx context.Context, c *Contact) error
	DeleteContact(ctx context.Context, userID, id string) error
	// SearchContacts matches name, email or company, case-insensitively.
	SearchContacts(ctx context.Context, userID, query string) ([]Contact, error)
	AddNote(ctx context.Context, n *Note) error
}

type PropertyStore interface {
	CreateProperty(ctx context.Context, p *Property) error
	GetProperty(ctx context.Context, userID, id string) (*Property, error)
	UpdateProperty(ctx context.Context, p *Property) error
	SearchProperties(ctx context.Context, userID, query string) ([]Property, error)
}

type DealStore interface {
	CreateDeal(ctx context.Context, d *Deal) error
	GetDeal(ctx context.Context, userID, id string) (*Deal, error)
	UpdateDeal(ctx context.Context, d *Deal) error
	DeleteDeal(ctx context.Context, userID, id string) error
	SearchDeals(ctx context.Context, userID, query string) ([]Deal, error)
	// DeleteDealsByStage removes every deal in the given stage and returns
	// how many were deleted.
	DeleteDealsByStage(ctx context.Context, userID, stage string) (int, error)
}

type CalendarStore interface {
	CreateEvent(ctx context.Context, e *CalendarEvent) error
	GetEvent(ctx context.Context, userID, id string) (*CalendarEvent, error)
	CancelEvent(ctx context.Context, userID, id string) error
	SearchEvents(ctx context.Context, userID, query string) ([]CalendarEvent, error)
	ListEvents(ctx context.Context, userID string, from, to time.Time) ([]CalendarEvent, error)
}

type InboxStore interface {
	CreateMessage(ctx context.Context, m *Message) error
	GetMessage(ctx context.Context, userID, id string) (*Message, error)
	ListMessages(ctx context.Context, userID, folder string, limit int) ([]Message, error)
	ArchiveMessage(ctx context.Context, userID, id string) error
	// ArchiveOlderThan moves inbox messages sent before the cutoff to the
	// archive folder and returns how many were moved.
	ArchiveOlderThan(ctx context.Context, userID string, cutoff time.Time) (int, error)
}

// Store is the full record storage capability the assistant operates on.
// Handler and tool code depends on this interface so the in-memory
// implementation can stand in for PostgreSQL in tests.
type Store interface {
	ContactStore
	PropertyStore
	DealStore
	CalendarStore
	InboxStore

	// Ping checks whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}
