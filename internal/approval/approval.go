// Package approval stages risky tool calls for human confirmation. A staged
// call holds a snapshot of its input; the side effect runs only after the
// user affirms, and a dismissed or expired action discards the snapshot.
package approval

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/foyerhq/foyer/internal/tools"
)

// PendingAction statuses. Pending is the only non-terminal state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusDismissed Status = "dismissed"
	StatusExpired   Status = "expired"
)

// DefaultTTL is how long a staged action waits for confirmation before it
// lapses to expired.
const DefaultTTL = 10 * time.Minute

var (
	// ErrExpired is returned when a decision arrives after the TTL.
	ErrExpired = errors.New("pending action expired")
	// ErrAlreadyResolved is returned when a decision arrives for an action
	// that already reached a terminal state.
	ErrAlreadyResolved = errors.New("pending action already resolved")
)

// PendingAction is a staged, not-yet-executed tool call.
type PendingAction struct {
	ID           string             `json:"id"`
	ToolName     string             `json:"tool_name"`
	Input        map[string]any     `json:"input"`
	Prompt       string             `json:"prompt"`
	ApprovalType tools.ApprovalType `json:"approval_type"`
	Status       Status             `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
	ExpiresAt    time.Time          `json:"expires_at"`
}

// Gate decides whether a call executes immediately or is staged. It holds no
// storage of its own; staged actions live on the session.
type Gate struct {
	ttl time.Duration
	now func() time.Time
}

func NewGate(ttl time.Duration) *Gate {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Gate{ttl: ttl, now: time.Now}
}

// Stage creates a pending action for def with the given resolved input
// snapshot, rendering the confirmation prompt.
func (g *Gate) Stage(def tools.Definition, input map[string]any) *PendingAction {
	prompt := fmt.Sprintf("Run %s?", def.Name)
	if def.ConfirmationPrompt != nil {
		prompt = def.ConfirmationPrompt(input)
	}
	if def.ApprovalType == tools.ApprovalDestructive {
		prompt += " (destructive action)"
	}

	snapshot := make(map[string]any, len(input))
	for k, v := range input {
		snapshot[k] = v
	}

	created := g.now()
	pa := &PendingAction{
		ID:           uuid.NewString(),
		ToolName:     def.Name,
		Input:        snapshot,
		Prompt:       prompt,
		ApprovalType: def.ApprovalType,
		Status:       StatusPending,
		CreatedAt:    created,
		ExpiresAt:    created.Add(g.ttl),
	}
	log.Info().
		Str("action_id", pa.ID).
		Str("tool", def.Name).
		Str("approval_type", string(def.ApprovalType)).
		Msg("tool call staged for approval")
	return pa
}

// Approve transitions a pending action to approved. Expiry is checked lazily
// here; there is no background sweep.
func (g *Gate) Approve(pa *PendingAction) error {
	if err := g.checkPending(pa); err != nil {
		return err
	}
	pa.Status = StatusApproved
	return nil
}

// Dismiss transitions a pending action to dismissed, discarding the staged
// input from further use.
func (g *Gate) Dismiss(pa *PendingAction) error {
	if err := g.checkPending(pa); err != nil {
		return err
	}
	pa.Status = StatusDismissed
	return nil
}

func (g *Gate) checkPending(pa *PendingAction) error {
	if pa.Status != StatusPending {
		return fmt.Errorf("%w: status is %s", ErrAlreadyResolved, pa.Status)
	}
	if g.now().After(pa.ExpiresAt) {
		pa.Status = StatusExpired
		return ErrExpired
	}
	return nil
}

// Expired reports whether the action has lapsed, marking it if so.
func (g *Gate) Expired(pa *PendingAction) bool {
	if pa.Status == StatusExpired {
		return true
	}
	if pa.Status == StatusPending && g.now().After(pa.ExpiresAt) {
		pa.Status = StatusExpired
		return true
	}
	return false
}

// SetClock overrides the time source. Tests only.
func (g *Gate) SetClock(now func() time.Time) { g.now = now }
