// Package tools defines the tool contract, the registry and the idempotency
// guard. A Definition describes one operation the model may invoke.
package tools

import "context"

// Tool domains. A domain groups related tools into a bundle.
const (
	DomainContact  = "contact"
	DomainProperty = "property"
	DomainDeal     = "deal"
	DomainCalendar = "calendar"
	DomainInbox    = "inbox"
)

// ApprovalType only affects confirmation wording and telemetry; both types
// follow the same staging state machine.
type ApprovalType string

const (
	ApprovalStandard    ApprovalType = "standard"
	ApprovalDestructive ApprovalType = "destructive"
)

// ExecutionContext identifies the acting user and conversation for one call.
// Tools receive it read-only and must not mutate it.
type ExecutionContext struct {
	UserID            string
	ConversationID    string
	ApprovalConfirmed bool
}

// EntityRef declares an input field that carries a human reference (a name,
// an address) the execution service must resolve to an id before dispatch.
// If IDParam is already populated the reference is trusted as-is.
type EntityRef struct {
	Kind    string // resolver entity kind
	Param   string // input field holding the human reference
	IDParam string // input field the resolved id is written to
}

// Definition describes one executable operation. Name is namespaced
// "domain.verb" and unique within a registry.
type Definition struct {
	Name        string
	Domain      string
	Description string

	// InputSchema is a JSON-schema object projected to the model provider.
	InputSchema map[string]any

	// Permissions required of the acting user. Enforced by the transport
	// layer; carried here so the catalogue is self-describing.
	Permissions []string

	RequiresApproval bool
	ApprovalType     ApprovalType

	// ConfirmationPrompt renders the question shown to the user before an
	// approval-gated call runs. Required when RequiresApproval is set.
	ConfirmationPrompt func(input map[string]any) string

	// IdempotencyKey derives the "same logical request" key. Nil means the
	// tool is not deduplicated.
	IdempotencyKey func(ec ExecutionContext, input map[string]any) string

	// Async tools return a started job immediately; work settles later.
	Async bool

	// EntityRefs lists the name/alias fields to resolve before dispatch.
	EntityRefs []EntityRef

	// Execute performs the operation. Side effects must occur only when the
	// returned error is nil.
	Execute func(ctx context.Context, ec ExecutionContext, input map[string]any) (any, error)

	// Rollback, when set, compensates a failed Execute that may have left
	// partial effects behind. Best effort.
	Rollback func(ctx context.Context, ec ExecutionContext, input map[string]any) error

	// AuditLog formats the audit record line for this call.
	AuditLog func(input map[string]any, output any) string
}

// Result is the settled outcome of one dispatched call.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	// Code distinguishes validation failures from execution failures so the
	// orchestrator can phrase its reply without parsing error text.
	Code string `json:"code,omitempty"`
}

// Result codes.
const (
	CodeValidationFailed = "validation_failed"
	CodeExecutionFailed  = "execution_failed"
)

// FunctionSchema is the neutral {name, description, parameters} projection
// an external function-calling model consumes. The registry's projection is
// the only place tool definitions touch the model-provider boundary.
type FunctionSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}
