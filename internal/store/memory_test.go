package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/foyerhq/foyer/internal/store"
)

func newTestStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	s := store.NewMemoryStore()
	t.Cleanup(func() { s.Close() })
	return s
}

// ─── Contacts ─────────────────────────────────────────────────────────────────

func TestContactCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := &store.Contact{UserID: "u1", Name: "Alice Chen", Email: "alice@example.com"}
	if err := s.CreateContact(ctx, c); err != nil {
		t.Fatalf("CreateContact() error = %v", err)
	}
	if c.ID == "" {
		t.Fatal("CreateContact() should assign an id")
	}

	got, err := s.GetContact(ctx, "u1", c.ID)
	if err != nil {
		t.Fatalf("GetContact() error = %v", err)
	}
	if got.Name != "Alice Chen" {
		t.Errorf("GetContact().Name = %q, want %q", got.Name, "Alice Chen")
	}

	got.Phone = "555-0100"
	if err := s.UpdateContact(ctx, got); err != nil {
		t.Fatalf("UpdateContact() error = %v", err)
	}
	got2, _ := s.GetContact(ctx, "u1", c.ID)
	if got2.Phone != "555-0100" {
		t.Errorf("phone not updated, got %q", got2.Phone)
	}

	if err := s.DeleteContact(ctx, "u1", c.ID); err != nil {
		t.Fatalf("DeleteContact() error = %v", err)
	}
	if _, err := s.GetContact(ctx, "u1", c.ID); err != store.ErrNotFound {
		t.Errorf("GetContact() after delete = %v, want ErrNotFound", err)
	}
}

func TestContactUserScoping(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := &store.Contact{UserID: "u1", Name: "Bob"}
	if err := s.CreateContact(ctx, c); err != nil {
		t.Fatalf("CreateContact() error = %v", err)
	}

	// Another user cannot see, update or delete the record.
	if _, err := s.GetContact(ctx, "u2", c.ID); err != store.ErrNotFound {
		t.Errorf("cross-user GetContact() = %v, want ErrNotFound", err)
	}
	if err := s.DeleteContact(ctx, "u2", c.ID); err != store.ErrNotFound {
		t.Errorf("cross-user DeleteContact() = %v, want ErrNotFound", err)
	}
	found, _ := s.SearchContacts(ctx, "u2", "Bob")
	if len(found) != 0 {
		t.Errorf("cross-user SearchContacts() found %d, want 0", len(found))
	}
}

func TestSearchContacts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	names := []string{"Charlie Temp", "Charlie Temp", "Unique Alice"}
	for _, n := range names {
		if err := s.CreateContact(ctx, &store.Contact{UserID: "u1", Name: n}); err != nil {
			t.Fatalf("CreateContact(%q) error = %v", n, err)
		}
	}

	tests := []struct {
		query string
		want  int
	}{
		{"charlie temp", 2},
		{"unique", 1},
		{"alice", 1},
		{"nobody", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := s.SearchContacts(ctx, "u1", tt.query)
			if err != nil {
				t.Fatalf("SearchContacts() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("SearchContacts(%q) = %d results, want %d", tt.query, len(got), tt.want)
			}
		})
	}
}

func TestAddNoteRequiresContact(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.AddNote(ctx, &store.Note{UserID: "u1", ContactID: "missing", Body: "hi"})
	if err != store.ErrNotFound {
		t.Errorf("AddNote() for missing contact = %v, want ErrNotFound", err)
	}
}

// ─── Deals ────────────────────────────────────────────────────────────────────

func TestDeleteDealsByStage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stages := []string{store.DealLost, store.DealLost, store.DealWon}
	for i, st := range stages {
		d := &store.Deal{UserID: "u1", Title: "Deal", Stage: st}
		if i == 2 {
			d.Title = "Keeper"
		}
		if err := s.CreateDeal(ctx, d); err != nil {
			t.Fatalf("CreateDeal() error = %v", err)
		}
	}
	// Different user's lost deal must survive.
	if err := s.CreateDeal(ctx, &store.Deal{UserID: "u2", Title: "Other", Stage: store.DealLost}); err != nil {
		t.Fatalf("CreateDeal() error = %v", err)
	}

	n, err := s.DeleteDealsByStage(ctx, "u1", store.DealLost)
	if err != nil {
		t.Fatalf("DeleteDealsByStage() error = %v", err)
	}
	if n != 2 {
		t.Errorf("DeleteDealsByStage() = %d, want 2", n)
	}

	remaining, _ := s.SearchDeals(ctx, "u1", "keeper")
	if len(remaining) != 1 {
		t.Errorf("won deal should survive, found %d", len(remaining))
	}
	other, _ := s.SearchDeals(ctx, "u2", "other")
	if len(other) != 1 {
		t.Errorf("other user's deal should survive, found %d", len(other))
	}
}

// ─── Calendar ─────────────────────────────────────────────────────────────────

func TestCancelEventExcludedFromSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := &store.CalendarEvent{
		UserID:   "u1",
		Title:    "Showing at 12 Elm St",
		StartsAt: time.Now().Add(time.Hour),
		EndsAt:   time.Now().Add(2 * time.Hour),
	}
	if err := s.CreateEvent(ctx, e); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	if err := s.CancelEvent(ctx, "u1", e.ID); err != nil {
		t.Fatalf("CancelEvent() error = %v", err)
	}

	found, _ := s.SearchEvents(ctx, "u1", "showing")
	if len(found) != 0 {
		t.Errorf("canceled event should not appear in search, found %d", len(found))
	}
	got, err := s.GetEvent(ctx, "u1", e.ID)
	if err != nil {
		t.Fatalf("GetEvent() error = %v", err)
	}
	if !got.Canceled {
		t.Error("event should be marked canceled")
	}
}

// ─── Inbox ────────────────────────────────────────────────────────────────────

func TestArchiveOlderThan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := time.Now().UTC().Add(-72 * time.Hour)
	recent := time.Now().UTC().Add(-time.Hour)
	msgs := []*store.Message{
		{UserID: "u1", Subject: "old one", SentAt: old},
		{UserID: "u1", Subject: "old two", SentAt: old},
		{UserID: "u1", Subject: "fresh", SentAt: recent},
	}
	for _, m := range msgs {
		if err := s.CreateMessage(ctx, m); err != nil {
			t.Fatalf("CreateMessage() error = %v", err)
		}
	}

	n, err := s.ArchiveOlderThan(ctx, "u1", time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("ArchiveOlderThan() error = %v", err)
	}
	if n != 2 {
		t.Errorf("ArchiveOlderThan() = %d, want 2", n)
	}

	inbox, _ := s.ListMessages(ctx, "u1", store.FolderInbox, 0)
	if len(inbox) != 1 {
		t.Errorf("inbox should have 1 message left, got %d", len(inbox))
	}
	archived, _ := s.ListMessages(ctx, "u1", store.FolderArchive, 0)
	if len(archived) != 2 {
		t.Errorf("archive should have 2 messages, got %d", len(archived))
	}
}
