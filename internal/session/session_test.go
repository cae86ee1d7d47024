package session_test

import (
	"fmt"
	"testing"

	"github.com/foyerhq/foyer/internal/approval"
	"github.com/foyerhq/foyer/internal/session"
)

func TestGetOrCreateStable(t *testing.T) {
	m := session.NewManager()

	first := m.GetOrCreate("u1", "c1")
	second := m.GetOrCreate("u1", "c1")
	if first.ID != second.ID {
		t.Error("same (user, conversation) should return the same session")
	}

	other := m.GetOrCreate("u2", "c1")
	if other.ID == first.ID {
		t.Error("sessions must be scoped per user")
	}
}

func TestEmptyConversationIDGenerates(t *testing.T) {
	m := session.NewManager()

	a := m.GetOrCreate("u1", "")
	b := m.GetOrCreate("u1", "")
	if a.ConversationID == "" || b.ConversationID == "" {
		t.Fatal("expected generated conversation IDs")
	}
	if a.ConversationID == b.ConversationID {
		t.Error("each empty-ID call should start a fresh conversation")
	}
}

func TestHistoryAppendAndTrim(t *testing.T) {
	m := session.NewManager()
	m.GetOrCreate("u1", "c1")

	for i := 0; i < session.DefaultMaxHistory+10; i++ {
		m.AppendTurn("u1", "c1", session.RoleUser, fmt.Sprintf("msg %d", i))
	}

	hist := m.History("u1", "c1")
	if len(hist) != session.DefaultMaxHistory {
		t.Fatalf("history length = %d, want %d", len(hist), session.DefaultMaxHistory)
	}
	if hist[len(hist)-1].Content != fmt.Sprintf("msg %d", session.DefaultMaxHistory+9) {
		t.Errorf("trim should drop the oldest turns, last = %q", hist[len(hist)-1].Content)
	}
}

func TestHistoryIsCopy(t *testing.T) {
	m := session.NewManager()
	m.GetOrCreate("u1", "c1")
	m.AppendTurn("u1", "c1", session.RoleUser, "original")

	hist := m.History("u1", "c1")
	hist[0].Content = "mutated"

	if m.History("u1", "c1")[0].Content != "original" {
		t.Error("History must return a copy")
	}
}

func TestTakePendingConsumesOnce(t *testing.T) {
	m := session.NewManager()
	m.GetOrCreate("u1", "c1")

	pa := &approval.PendingAction{ID: "pa-1", ToolName: "contact.delete"}
	m.SetPending("u1", "c1", pa)

	if got := m.Pending("u1", "c1"); got == nil || got.ID != "pa-1" {
		t.Fatalf("Pending() = %+v, want staged action", got)
	}
	if got := m.TakePending("u1", "c1"); got == nil || got.ID != "pa-1" {
		t.Fatalf("TakePending() = %+v, want staged action", got)
	}
	if got := m.TakePending("u1", "c1"); got != nil {
		t.Error("second TakePending should return nil")
	}
}
