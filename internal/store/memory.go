package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a thread-safe in-memory Store. It backs tests and
// zero-config single-instance deployments.
type MemoryStore struct {
	mu         sync.RWMutex
	contacts   map[string]*Contact
	notes      map[string]*Note
	properties map[string]*Property
	deals      map[string]*Deal
	events     map[string]*CalendarEvent
	messages   map[string]*Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		contacts:   make(map[string]*Contact),
		notes:      make(map[string]*Note),
		properties: make(map[string]*Property),
		deals:      make(map[string]*Deal),
		events:     make(map[string]*CalendarEvent),
		messages:   make(map[string]*Message),
	}
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
func (s *MemoryStore) Close() error               { return nil }

func matches(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// ─── Contacts ─────────────────────────────────────────────────────────────────

func (s *MemoryStore) CreateContact(_ context.Context, c *Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	s.contacts[c.ID] = &cp
	return nil
}

func (s *MemoryStore) GetContact(_ context.Context, userID, id string) (*Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[id]
	if !ok || c.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) UpdateContact(_ context.Context, c *Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.contacts[c.ID]
	if !ok || cur.UserID != c.UserID {
		return ErrNotFound
	}
	c.CreatedAt = cur.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	cp := *c
	s.contacts[c.ID] = &cp
	return nil
}

func (s *MemoryStore) DeleteContact(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[id]
	if !ok || c.UserID != userID {
		return ErrNotFound
	}
	delete(s.contacts, id)
	return nil
}

func (s *MemoryStore) SearchContacts(_ context.Context, userID, query string) ([]Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Contact
	for _, c := range s.contacts {
		if c.UserID == userID && matches(query, c.Name, c.Email, c.Company) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) AddNote(_ context.Context, n *Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[n.ContactID]
	if !ok || c.UserID != n.UserID {
		return ErrNotFound
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.CreatedAt = time.Now().UTC()
	cp := *n
	s.notes[n.ID] = &cp
	return nil
}

// ─── Properties ───────────────────────────────────────────────────────────────

func (s *MemoryStore) CreateProperty(_ context.Context, p *Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = PropertyListed
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	cp := *p
	s.properties[p.ID] = &cp
	return nil
}

func (s *MemoryStore) GetProperty(_ context.Context, userID, id string) (*Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.properties[id]
	if !ok || p.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) UpdateProperty(_ context.Context, p *Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.properties[p.ID]
	if !ok || cur.UserID != p.UserID {
		return ErrNotFound
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	s.properties[p.ID] = &cp
	return nil
}

func (s *MemoryStore) SearchProperties(_ context.Context, userID, query string) ([]Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Property
	for _, p := range s.properties {
		if p.UserID == userID && matches(query, p.Address, p.City) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out, nil
}

// ─── Deals ────────────────────────────────────────────────────────────────────

func (s *MemoryStore) CreateDeal(_ context.Context, d *Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.Stage == "" {
		d.Stage = DealLead
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	cp := *d
	s.deals[d.ID] = &cp
	return nil
}

func (s *MemoryStore) GetDeal(_ context.Context, userID, id string) (*Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.deals[id]
	if !ok || d.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *MemoryStore) UpdateDeal(_ context.Context, d *Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.deals[d.ID]
	if !ok || cur.UserID != d.UserID {
		return ErrNotFound
	}
	d.CreatedAt = cur.CreatedAt
	d.UpdatedAt = time.Now().UTC()
	cp := *d
	s.deals[d.ID] = &cp
	return nil
}

func (s *MemoryStore) DeleteDeal(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deals[id]
	if !ok || d.UserID != userID {
		return ErrNotFound
	}
	delete(s.deals, id)
	return nil
}

func (s *MemoryStore) SearchDeals(_ context.Context, userID, query string) ([]Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Deal
	for _, d := range s.deals {
		if d.UserID == userID && matches(query, d.Title) {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *MemoryStore) DeleteDealsByStage(_ context.Context, userID, stage string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, d := range s.deals {
		if d.UserID == userID && d.Stage == stage {
			delete(s.deals, id)
			n++
		}
	}
	return n, nil
}

// ─── Calendar ─────────────────────────────────────────────────────────────────

func (s *MemoryStore) CreateEvent(_ context.Context, e *CalendarEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.CreatedAt = time.Now().UTC()
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (s *MemoryStore) GetEvent(_ context.Context, userID, id string) (*CalendarEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok || e.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *MemoryStore) CancelEvent(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok || e.UserID != userID {
		return ErrNotFound
	}
	e.Canceled = true
	return nil
}

func (s *MemoryStore) SearchEvents(_ context.Context, userID, query string) ([]CalendarEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []CalendarEvent
	for _, e := range s.events {
		if e.UserID == userID && !e.Canceled && matches(query, e.Title, e.Location) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (s *MemoryStore) ListEvents(_ context.Context, userID string, from, to time.Time) ([]CalendarEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []CalendarEvent
	for _, e := range s.events {
		if e.UserID == userID && !e.Canceled && !e.StartsAt.Before(from) && e.StartsAt.Before(to) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

// ─── Inbox ────────────────────────────────────────────────────────────────────

func (s *MemoryStore) CreateMessage(_ context.Context, m *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Folder == "" {
		m.Folder = FolderInbox
	}
	if m.SentAt.IsZero() {
		m.SentAt = time.Now().UTC()
	}
	cp := *m
	s.messages[m.ID] = &cp
	return nil
}

func (s *MemoryStore) GetMessage(_ context.Context, userID, id string) (*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	if !ok || m.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *MemoryStore) ListMessages(_ context.Context, userID, folder string, limit int) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Message
	for _, m := range s.messages {
		if m.UserID == userID && m.Folder == folder {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) ArchiveMessage(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok || m.UserID != userID {
		return ErrNotFound
	}
	m.Folder = FolderArchive
	return nil
}

func (s *MemoryStore) ArchiveOlderThan(_ context.Context, userID string, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.messages {
		if m.UserID == userID && m.Folder == FolderInbox && m.SentAt.Before(cutoff) {
			m.Folder = FolderArchive
			n++
		}
	}
	return n, nil
}
