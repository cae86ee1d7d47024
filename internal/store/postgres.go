package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// PostgresStore is the pgx-backed Store used in production. Every query is
// scoped by user_id; a row owned by another user is indistinguishable from a
// missing row.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects, pings and migrates.
func NewPostgresStore(ctx context.Context, connURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connURL)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}
	log.Info().Msg("postgres store initialized")
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS contacts (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL DEFAULT '',
			phone      TEXT NOT NULL DEFAULT '',
			company    TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_contacts_user ON contacts (user_id);

		CREATE TABLE IF NOT EXISTS contact_notes (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			contact_id TEXT NOT NULL,
			body       TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS properties (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			address    TEXT NOT NULL,
			city       TEXT NOT NULL DEFAULT '',
			status     TEXT NOT NULL DEFAULT 'listed',
			price      BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_properties_user ON properties (user_id);

		CREATE TABLE IF NOT EXISTS deals (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL,
			title       TEXT NOT NULL,
			contact_id  TEXT NOT NULL DEFAULT '',
			property_id TEXT NOT NULL DEFAULT '',
			stage       TEXT NOT NULL DEFAULT 'lead',
			amount      BIGINT NOT NULL DEFAULT 0,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_deals_user ON deals (user_id);

		CREATE TABLE IF NOT EXISTS calendar_events (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			title      TEXT NOT NULL,
			contact_id TEXT NOT NULL DEFAULT '',
			location   TEXT NOT NULL DEFAULT '',
			starts_at  TIMESTAMPTZ NOT NULL,
			ends_at    TIMESTAMPTZ NOT NULL,
			canceled   BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_events_user ON calendar_events (user_id);

		CREATE TABLE IF NOT EXISTS messages (
			id        TEXT PRIMARY KEY,
			user_id   TEXT NOT NULL,
			from_addr TEXT NOT NULL DEFAULT '',
			to_addr   TEXT NOT NULL DEFAULT '',
			subject   TEXT NOT NULL DEFAULT '',
			body      TEXT NOT NULL DEFAULT '',
			folder    TEXT NOT NULL DEFAULT 'inbox',
			read      BOOLEAN NOT NULL DEFAULT FALSE,
			sent_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_messages_user ON messages (user_id, folder);
	`
	_, err := s.pool.Exec(ctx, ddl)
	return err
}

func (s *PostgresStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// ─── Contacts ─────────────────────────────────────────────────────────────────

func (s *PostgresStore) CreateContact(ctx context.Context, c *Contact) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	_, err := s.pool.Exec(ctx,
		`INSERT INTO contacts (id, user_id, name, email, phone, company, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.UserID, c.Name, c.Email, c.Phone, c.Company, c.CreatedAt, c.UpdatedAt)
	return err
}

func (s *PostgresStore) GetContact(ctx context.Context, userID, id string) (*Contact, error) {
	var c Contact
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, name, email, phone, company, created_at, updated_at
		 FROM contacts WHERE id = $1 AND user_id = $2`, id, userID).
		Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *PostgresStore) UpdateContact(ctx context.Context, c *Contact) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE contacts SET name = $3, email = $4, phone = $5, company = $6, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2`,
		c.ID, c.UserID, c.Name, c.Email, c.Phone, c.Company)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteContact(ctx context.Context, userID, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM contacts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SearchContacts(ctx context.Context, userID, query string) ([]Contact, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, name, email, phone, company, created_at, updated_at
		 FROM contacts
		 WHERE user_id = $1 AND (name ILIKE $2 OR email ILIKE $2 OR company ILIKE $2)
		 ORDER BY name`, userID, "%"+query+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) AddNote(ctx context.Context, n *Note) error {
	if _, err := s.GetContact(ctx, n.UserID, n.ContactID); err != nil {
		return err
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO contact_notes (id, user_id, contact_id, body, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		n.ID, n.UserID, n.ContactID, n.Body, n.CreatedAt)
	return err
}

// ─── Properties ───────────────────────────────────────────────────────────────

func (s *PostgresStore) CreateProperty(ctx context.Context, p *Property) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = PropertyListed
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := s.pool.Exec(ctx,
		`INSERT INTO properties (id, user_id, address, city, status, price, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.UserID, p.Address, p.City, p.Status, p.Price, p.CreatedAt, p.UpdatedAt)
	return err
}

func (s *PostgresStore) GetProperty(ctx context.Context, userID, id string) (*Property, error) {
	var p Property
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, address, city, status, price, created_at, updated_at
		 FROM properties WHERE id = $1 AND user_id = $2`, id, userID).
		Scan(&p.ID, &p.UserID, &p.Address, &p.City, &p.Status, &p.Price, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *PostgresStore) UpdateProperty(ctx context.Context, p *Property) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE properties SET address = $3, city = $4, status = $5, price = $6, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2`,
		p.ID, p.UserID, p.Address, p.City, p.Status, p.Price)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SearchProperties(ctx context.Context, userID, query string) ([]Property, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, address, city, status, price, created_at, updated_at
		 FROM properties
		 WHERE user_id = $1 AND (address ILIKE $2 OR city ILIKE $2)
		 ORDER BY address`, userID, "%"+query+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Property
	for rows.Next() {
		var p Property
		if err := rows.Scan(&p.ID, &p.UserID, &p.Address, &p.City, &p.Status, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ─── Deals ────────────────────────────────────────────────────────────────────

func (s *PostgresStore) CreateDeal(ctx context.Context, d *Deal) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Stage == "" {
		d.Stage = DealLead
	}
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now
	_, err := s.pool.Exec(ctx,
		`INSERT INTO deals (id, user_id, title, contact_id, property_id, stage, amount, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID, d.UserID, d.Title, d.ContactID, d.PropertyID, d.Stage, d.Amount, d.CreatedAt, d.UpdatedAt)
	return err
}

func (s *PostgresStore) GetDeal(ctx context.Context, userID, id string) (*Deal, error) {
	var d Deal
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, title, contact_id, property_id, stage, amount, created_at, updated_at
		 FROM deals WHERE id = $1 AND user_id = $2`, id, userID).
		Scan(&d.ID, &d.UserID, &d.Title, &d.ContactID, &d.PropertyID, &d.Stage, &d.Amount, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (s *PostgresStore) UpdateDeal(ctx context.Context, d *Deal) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE deals SET title = $3, contact_id = $4, property_id = $5, stage = $6, amount = $7, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2`,
		d.ID, d.UserID, d.Title, d.ContactID, d.PropertyID, d.Stage, d.Amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteDeal(ctx context.Context, userID, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM deals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SearchDeals(ctx context.Context, userID, query string) ([]Deal, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, title, contact_id, property_id, stage, amount, created_at, updated_at
		 FROM deals WHERE user_id = $1 AND title ILIKE $2 ORDER BY title`,
		userID, "%"+query+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Deal
	for rows.Next() {
		var d Deal
		if err := rows.Scan(&d.ID, &d.UserID, &d.Title, &d.ContactID, &d.PropertyID, &d.Stage, &d.Amount, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteDealsByStage(ctx context.Context, userID, stage string) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM deals WHERE user_id = $1 AND stage = $2`, userID, stage)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// ─── Calendar ─────────────────────────────────────────────────────────────────

func (s *PostgresStore) CreateEvent(ctx context.Context, e *CalendarEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO calendar_events (id, user_id, title, contact_id, location, starts_at, ends_at, canceled, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.UserID, e.Title, e.ContactID, e.Location, e.StartsAt, e.EndsAt, e.Canceled, e.CreatedAt)
	return err
}

func (s *PostgresStore) GetEvent(ctx context.Context, userID, id string) (*CalendarEvent, error) {
	var e CalendarEvent
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, title, contact_id, location, starts_at, ends_at, canceled, created_at
		 FROM calendar_events WHERE id = $1 AND user_id = $2`, id, userID).
		Scan(&e.ID, &e.UserID, &e.Title, &e.ContactID, &e.Location, &e.StartsAt, &e.EndsAt, &e.Canceled, &e.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (s *PostgresStore) CancelEvent(ctx context.Context, userID, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE calendar_events SET canceled = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SearchEvents(ctx context.Context, userID, query string) ([]CalendarEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, title, contact_id, location, starts_at, ends_at, canceled, created_at
		 FROM calendar_events
		 WHERE user_id = $1 AND canceled = FALSE AND (title ILIKE $2 OR location ILIKE $2)
		 ORDER BY starts_at`, userID, "%"+query+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CalendarEvent
	for rows.Next() {
		var e CalendarEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.ContactID, &e.Location, &e.StartsAt, &e.EndsAt, &e.Canceled, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListEvents(ctx context.Context, userID string, from, to time.Time) ([]CalendarEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, title, contact_id, location, starts_at, ends_at, canceled, created_at
		 FROM calendar_events
		 WHERE user_id = $1 AND canceled = FALSE AND starts_at >= $2 AND starts_at < $3
		 ORDER BY starts_at`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CalendarEvent
	for rows.Next() {
		var e CalendarEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.ContactID, &e.Location, &e.StartsAt, &e.EndsAt, &e.Canceled, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ─── Inbox ────────────────────────────────────────────────────────────────────

func (s *PostgresStore) CreateMessage(ctx context.Context, m *Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Folder == "" {
		m.Folder = FolderInbox
	}
	if m.SentAt.IsZero() {
		m.SentAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO messages (id, user_id, from_addr, to_addr, subject, body, folder, read, sent_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.UserID, m.From, m.To, m.Subject, m.Body, m.Folder, m.Read, m.SentAt)
	return err
}

func (s *PostgresStore) GetMessage(ctx context.Context, userID, id string) (*Message, error) {
	var m Message
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, from_addr, to_addr, subject, body, folder, read, sent_at
		 FROM messages WHERE id = $1 AND user_id = $2`, id, userID).
		Scan(&m.ID, &m.UserID, &m.From, &m.To, &m.Subject, &m.Body, &m.Folder, &m.Read, &m.SentAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (s *PostgresStore) ListMessages(ctx context.Context, userID, folder string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, from_addr, to_addr, subject, body, folder, read, sent_at
		 FROM messages WHERE user_id = $1 AND folder = $2
		 ORDER BY sent_at DESC LIMIT $3`, userID, folder, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.From, &m.To, &m.Subject, &m.Body, &m.Folder, &m.Read, &m.SentAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ArchiveMessage(ctx context.Context, userID, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE messages SET folder = 'archive' WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ArchiveOlderThan(ctx context.Context, userID string, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE messages SET folder = 'archive'
		 WHERE user_id = $1 AND folder = 'inbox' AND sent_at < $2`, userID, cutoff)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
