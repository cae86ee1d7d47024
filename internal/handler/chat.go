// Package handler contains the HTTP endpoints. Handlers decode and validate
// the request, delegate to the orchestration layer and write JSON; no
// business rules live here.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/foyerhq/foyer/internal/agent"
	"github.com/foyerhq/foyer/internal/models"
)

// ChatHandler handles POST /api/v1/chat
type ChatHandler struct {
	orch    *agent.Orchestrator
	timeout time.Duration
}

func NewChatHandler(orch *agent.Orchestrator, timeout time.Duration) *ChatHandler {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &ChatHandler{orch: orch, timeout: timeout}
}

// Chat handles one conversational turn.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.UserID == "" {
		models.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.Message == "" {
		models.WriteError(w, http.StatusBadRequest, "message is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp, err := h.orch.HandleTurn(ctx, req.UserID, req.ConversationID, req.Message)
	if err != nil {
		var rej *agent.RejectedError
		if errors.As(err, &rej) {
			models.WriteError(w, http.StatusBadRequest, rej.Reason)
			return
		}
		models.WriteError(w, http.StatusInternalServerError, "turn failed: "+err.Error())
		return
	}
	models.WriteJSON(w, http.StatusOK, resp)
}
