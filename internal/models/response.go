package models

import "time"

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// ProductButton is a clickable entity link the front end renders inline in
// the transcript. The reply text also carries the raw
// [PRODUCT_BUTTON: label, path, id] token; this is the parsed form.
type ProductButton struct {
	Label    string `json:"label"`
	Path     string `json:"path"`
	EntityID string `json:"entity_id"`
}

// PendingActionView describes a staged tool call awaiting confirmation.
type PendingActionView struct {
	ID        string    `json:"id"`
	ToolName  string    `json:"tool_name"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// JobView describes an asynchronous tool execution.
type JobView struct {
	ID          string     `json:"id"`
	ToolName    string     `json:"tool_name"`
	Status      string     `json:"status"`
	Result      any        `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ActionDecisionResponse is returned by the approve/dismiss endpoints.
type ActionDecisionResponse struct {
	Status string   `json:"status"` // executed, accepted, dismissed, failed
	Result any      `json:"result,omitempty"`
	Error  string   `json:"error,omitempty"`
	Job    *JobView `json:"job,omitempty"`
}

// ChatResponse is returned by POST /api/v1/chat
type ChatResponse struct {
	Status         string             `json:"status"`
	ConversationID string             `json:"conversation_id"`
	Reply          string             `json:"reply"`
	Buttons        []ProductButton    `json:"buttons,omitempty"`
	PendingAction  *PendingActionView `json:"pending_action,omitempty"`
	Job            *JobView           `json:"job,omitempty"`
	ToolsUsed      []string           `json:"tools_used,omitempty"`
}
