package models

// ChatRequest for POST /api/v1/chat carries one conversational turn.
type ChatRequest struct {
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// ActionDecisionRequest for POST /api/v1/actions/{action_id}/approve and
// /api/v1/actions/{action_id}/dismiss. The caller must identify the session
// that staged the action.
type ActionDecisionRequest struct {
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id"`
}
