package approval_test

import (
	"errors"
	"testing"
	"time"

	"github.com/foyerhq/foyer/internal/approval"
	"github.com/foyerhq/foyer/internal/tools"
)

func deleteDef() tools.Definition {
	return tools.Definition{
		Name:             "contact.delete",
		Domain:           tools.DomainContact,
		RequiresApproval: true,
		ApprovalType:     tools.ApprovalDestructive,
		ConfirmationPrompt: func(input map[string]any) string {
			name, _ := input["contact"].(string)
			return "Permanently delete contact \"" + name + "\"?"
		},
	}
}

func TestStageRendersPrompt(t *testing.T) {
	g := approval.NewGate(0)
	pa := g.Stage(deleteDef(), map[string]any{"contact": "Bob"})

	if pa.ID == "" {
		t.Error("staged action should have an id")
	}
	if pa.Status != approval.StatusPending {
		t.Errorf("Status = %q, want pending", pa.Status)
	}
	if pa.Prompt != `Permanently delete contact "Bob"? (destructive action)` {
		t.Errorf("unexpected prompt: %q", pa.Prompt)
	}
	if pa.Input["contact"] != "Bob" {
		t.Error("input snapshot missing")
	}
}

func TestStageSnapshotsInput(t *testing.T) {
	g := approval.NewGate(0)
	input := map[string]any{"contact": "Bob"}
	pa := g.Stage(deleteDef(), input)

	input["contact"] = "Mallory"
	if pa.Input["contact"] != "Bob" {
		t.Error("staged input should be a snapshot, not a live reference")
	}
}

func TestApproveAndDismiss(t *testing.T) {
	g := approval.NewGate(0)

	pa := g.Stage(deleteDef(), map[string]any{"contact": "Bob"})
	if err := g.Approve(pa); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if pa.Status != approval.StatusApproved {
		t.Errorf("Status = %q, want approved", pa.Status)
	}
	// Terminal states reject further decisions.
	if err := g.Dismiss(pa); !errors.Is(err, approval.ErrAlreadyResolved) {
		t.Errorf("Dismiss() after approve = %v, want ErrAlreadyResolved", err)
	}

	pa2 := g.Stage(deleteDef(), map[string]any{"contact": "Carol"})
	if err := g.Dismiss(pa2); err != nil {
		t.Fatalf("Dismiss() error = %v", err)
	}
	if pa2.Status != approval.StatusDismissed {
		t.Errorf("Status = %q, want dismissed", pa2.Status)
	}
	if err := g.Approve(pa2); !errors.Is(err, approval.ErrAlreadyResolved) {
		t.Errorf("Approve() after dismiss = %v, want ErrAlreadyResolved", err)
	}
}

func TestLazyExpiry(t *testing.T) {
	g := approval.NewGate(10 * time.Minute)
	now := time.Now()
	g.SetClock(func() time.Time { return now })

	pa := g.Stage(deleteDef(), map[string]any{"contact": "Bob"})

	now = now.Add(11 * time.Minute)
	if err := g.Approve(pa); !errors.Is(err, approval.ErrExpired) {
		t.Fatalf("Approve() after TTL = %v, want ErrExpired", err)
	}
	if pa.Status != approval.StatusExpired {
		t.Errorf("Status = %q, want expired", pa.Status)
	}
	if !g.Expired(pa) {
		t.Error("Expired() should report true")
	}
}
