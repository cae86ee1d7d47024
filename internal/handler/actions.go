package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foyerhq/foyer/internal/approval"
	"github.com/foyerhq/foyer/internal/executor"
	"github.com/foyerhq/foyer/internal/jobs"
	"github.com/foyerhq/foyer/internal/models"
	"github.com/foyerhq/foyer/internal/session"
	"github.com/foyerhq/foyer/internal/tools"
)

// ActionsHandler handles the explicit approve/dismiss endpoints. They exist
// for front ends that render staged actions as buttons instead of relying on
// a conversational yes/no.
type ActionsHandler struct {
	exec     *executor.Service
	sessions *session.Manager
}

func NewActionsHandler(exec *executor.Service, sessions *session.Manager) *ActionsHandler {
	return &ActionsHandler{exec: exec, sessions: sessions}
}

// Approve handles POST /api/v1/actions/{action_id}/approve
func (h *ActionsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	pending, req, ok := h.takeStaged(w, r)
	if !ok {
		return
	}

	ec := tools.ExecutionContext{UserID: req.UserID, ConversationID: req.ConversationID}
	resp, err := h.exec.ExecuteApproved(r.Context(), pending, ec)
	if err != nil {
		switch {
		case errors.Is(err, approval.ErrExpired):
			models.WriteError(w, http.StatusGone, "action expired before it was approved")
		case errors.Is(err, approval.ErrAlreadyResolved):
			models.WriteError(w, http.StatusConflict, "action was already decided")
		default:
			models.WriteError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	switch {
	case resp.Job != nil:
		models.WriteJSON(w, http.StatusAccepted, models.ActionDecisionResponse{
			Status: "accepted",
			Job:    jobView(*resp.Job),
		})
	case resp.Result != nil && !resp.Result.Success:
		models.WriteJSON(w, http.StatusOK, models.ActionDecisionResponse{
			Status: "failed",
			Error:  resp.Result.Error,
		})
	default:
		models.WriteJSON(w, http.StatusOK, models.ActionDecisionResponse{
			Status: "executed",
			Result: resp.Result.Data,
		})
	}
}

// Dismiss handles POST /api/v1/actions/{action_id}/dismiss
func (h *ActionsHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	pending, _, ok := h.takeStaged(w, r)
	if !ok {
		return
	}
	if err := h.exec.Gate().Dismiss(pending); err != nil {
		switch {
		case errors.Is(err, approval.ErrExpired):
			models.WriteError(w, http.StatusGone, "action already expired")
		case errors.Is(err, approval.ErrAlreadyResolved):
			models.WriteError(w, http.StatusConflict, "action was already decided")
		default:
			models.WriteError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	models.WriteJSON(w, http.StatusOK, models.ActionDecisionResponse{Status: "dismissed"})
}

// takeStaged validates the request and consumes the staged action from the
// session, so each decision is applied at most once.
func (h *ActionsHandler) takeStaged(w http.ResponseWriter, r *http.Request) (*approval.PendingAction, *models.ActionDecisionRequest, bool) {
	actionID := chi.URLParam(r, "action_id")

	var req models.ActionDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return nil, nil, false
	}
	if req.UserID == "" || req.ConversationID == "" {
		models.WriteError(w, http.StatusBadRequest, "user_id and conversation_id are required")
		return nil, nil, false
	}

	pending := h.sessions.Pending(req.UserID, req.ConversationID)
	if pending == nil || pending.ID != actionID {
		models.WriteError(w, http.StatusNotFound, "no staged action with that id")
		return nil, nil, false
	}
	h.sessions.TakePending(req.UserID, req.ConversationID)
	return pending, &req, true
}

func jobView(j jobs.Job) *models.JobView {
	return &models.JobView{
		ID:          j.ID,
		ToolName:    j.ToolName,
		Status:      string(j.Status),
		Result:      j.Result,
		Error:       j.Error,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}
}
