package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/foyerhq/foyer/internal/approval"
	"github.com/foyerhq/foyer/internal/executor"
	"github.com/foyerhq/foyer/internal/jobs"
	"github.com/foyerhq/foyer/internal/models"
	"github.com/foyerhq/foyer/internal/resolver"
	"github.com/foyerhq/foyer/internal/security"
	"github.com/foyerhq/foyer/internal/session"
	"github.com/foyerhq/foyer/internal/tools"
)

// Chat response statuses.
const (
	StatusOK              = "ok"
	StatusPendingApproval = "pending_approval"
	StatusAccepted        = "accepted"
)

// RejectedError marks a message the security screens refused. Handlers map
// it to a client error rather than a server fault.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("message rejected: %s", e.Reason)
}

// Orchestrator runs one conversational turn end to end: security screening,
// pending-approval decisions, the model loop, and reply assembly.
type Orchestrator struct {
	model     Model
	exec      *executor.Service
	registry  *tools.Registry
	sessions  *session.Manager
	pii       *security.PIIDetector
	validator *security.PromptValidator
	audit     *security.AuditLogger
}

func NewOrchestrator(
	model Model,
	exec *executor.Service,
	registry *tools.Registry,
	sessions *session.Manager,
	pii *security.PIIDetector,
	validator *security.PromptValidator,
	audit *security.AuditLogger,
) *Orchestrator {
	return &Orchestrator{
		model:     model,
		exec:      exec,
		registry:  registry,
		sessions:  sessions,
		pii:       pii,
		validator: validator,
		audit:     audit,
	}
}

// HandleTurn processes one user message and returns the assistant's reply.
func (o *Orchestrator) HandleTurn(ctx context.Context, userID, conversationID, message string) (*models.ChatResponse, error) {
	start := time.Now()

	sess := o.sessions.GetOrCreate(userID, conversationID)
	convID := sess.ConversationID

	if found, kw := o.pii.Detect(message); found {
		return nil, &RejectedError{Reason: "message contains sensitive data (" + kw + ")"}
	}
	if vr := o.validator.Validate(message); !vr.Valid {
		return nil, &RejectedError{Reason: vr.Message}
	}

	ec := tools.ExecutionContext{UserID: userID, ConversationID: convID}

	// A staged action owns the next decision. Anything that is not a clear
	// yes or no abandons it and the message is handled as a fresh request.
	if pending := o.sessions.Pending(userID, convID); pending != nil {
		switch classifyDecision(message) {
		case decisionApprove:
			o.sessions.TakePending(userID, convID)
			resp := o.runApproved(ctx, pending, ec)
			o.finishTurn(userID, convID, message, resp, nil, start)
			return resp, nil
		case decisionDecline:
			o.sessions.TakePending(userID, convID)
			if err := o.exec.Gate().Dismiss(pending); err != nil {
				log.Debug().Err(err).Str("action", pending.ID).Msg("dismiss staged action")
			}
			resp := o.reply(convID, "Okay, I've cancelled that. Nothing was changed.")
			o.finishTurn(userID, convID, message, resp, nil, start)
			return resp, nil
		default:
			o.sessions.TakePending(userID, convID)
			if err := o.exec.Gate().Dismiss(pending); err != nil {
				log.Debug().Err(err).Str("action", pending.ID).Msg("dismiss staged action")
			}
		}
	}

	var halted *models.ChatResponse
	run := func(ctx context.Context, call ToolCall) ToolOutcome {
		resp, err := o.exec.Execute(ctx, call.Name, call.Input, ec)
		if err != nil {
			var nf *resolver.NotFoundError
			if errors.As(err, &nf) {
				halted = o.reply(convID, fmt.Sprintf(
					"I couldn't find any %s matching %q. Could you check the name?", nf.Kind, nf.Query))
				return ToolOutcome{Halt: true}
			}
			var amb *resolver.AmbiguityError
			if errors.As(err, &amb) {
				halted = o.reply(convID, renderAmbiguity(amb))
				return ToolOutcome{Halt: true}
			}
			// Unknown tool or transient failure: the model gets the error and
			// may choose another tool.
			return ToolOutcome{Content: err.Error(), IsError: true}
		}

		switch {
		case resp.Pending != nil:
			o.sessions.SetPending(userID, convID, resp.Pending)
			halted = &models.ChatResponse{
				Status:         StatusPendingApproval,
				ConversationID: convID,
				Reply:          resp.Pending.Prompt + " Reply yes to confirm or no to cancel.",
				PendingAction:  pendingView(resp.Pending),
			}
			return ToolOutcome{Halt: true}
		case resp.Job != nil:
			halted = &models.ChatResponse{
				Status:         StatusAccepted,
				ConversationID: convID,
				Reply: fmt.Sprintf(
					"I've started %s in the background. I'll have the result ready shortly; ask me for it any time.",
					describeTool(resp.Job.ToolName)),
				Job: jobView(resp.Job),
			}
			return ToolOutcome{Halt: true}
		default:
			return ToolOutcome{Content: renderToolResult(resp), IsError: !resp.Result.Success}
		}
	}

	result, err := o.model.RunTurn(ctx, TurnRequest{
		System:  SystemPrompt(),
		History: o.sessions.History(userID, convID),
		Message: message,
		Tools:   tools.ToFunctionSchema(o.registry.All()),
	}, run)
	if err != nil {
		return nil, fmt.Errorf("turn failed: %w", err)
	}

	var resp *models.ChatResponse
	if result.Halted && halted != nil {
		resp = halted
	} else {
		clean, buttons := ParseButtons(result.Text)
		resp = &models.ChatResponse{
			Status:         StatusOK,
			ConversationID: convID,
			Reply:          clean,
			Buttons:        buttons,
		}
	}
	o.finishTurn(userID, convID, message, resp, result.ToolsUsed, start)
	return resp, nil
}

// runApproved executes a confirmed staged action and builds a deterministic
// reply; the model is not consulted on the confirmation path.
func (o *Orchestrator) runApproved(ctx context.Context, pending *approval.PendingAction, ec tools.ExecutionContext) *models.ChatResponse {
	convID := ec.ConversationID
	resp, err := o.exec.ExecuteApproved(ctx, pending, ec)
	if err != nil {
		switch {
		case errors.Is(err, approval.ErrExpired):
			return o.reply(convID, "That confirmation has expired, so nothing was changed. Ask me again if you still want it done.")
		case errors.Is(err, approval.ErrAlreadyResolved):
			return o.reply(convID, "That action was already decided, so I didn't run it again.")
		default:
			return o.reply(convID, "I couldn't run that action: "+err.Error())
		}
	}

	switch {
	case resp.Job != nil:
		return &models.ChatResponse{
			Status:         StatusAccepted,
			ConversationID: convID,
			Reply:          fmt.Sprintf("Confirmed. I've started %s in the background.", describeTool(resp.Job.ToolName)),
			Job:            jobView(resp.Job),
		}
	case resp.Result != nil && !resp.Result.Success:
		return o.reply(convID, "The action failed: "+resp.Result.Error)
	default:
		out := o.reply(convID, "Done. "+summarizeData(pending.ToolName, resp.Result.Data))
		if b, ok := buttonFor(resp.Result.Data); ok {
			out.Buttons = append(out.Buttons, b)
		}
		return out
	}
}

func (o *Orchestrator) reply(convID, text string) *models.ChatResponse {
	return &models.ChatResponse{Status: StatusOK, ConversationID: convID, Reply: text}
}

func (o *Orchestrator) finishTurn(userID, convID, message string, resp *models.ChatResponse, toolsUsed []string, start time.Time) {
	resp.ToolsUsed = toolsUsed
	o.sessions.AppendTurn(userID, convID, session.RoleUser, message)
	if resp.Reply != "" {
		o.sessions.AppendTurn(userID, convID, session.RoleAssistant, resp.Reply)
	}
	o.audit.LogTurn(userID, convID, toolsUsed, time.Since(start).Milliseconds())
}

// ─── decision classification ──────────────────────────────────────────────────

type decision int

const (
	decisionOther decision = iota
	decisionApprove
	decisionDecline
)

var (
	affirmations = []string{
		"yes", "y", "yeah", "yep", "confirm", "confirmed", "approve", "approved",
		"go ahead", "do it", "proceed", "sure", "ok", "okay",
	}
	negatives = []string{
		"no", "n", "nope", "cancel", "don't", "do not", "stop", "dismiss",
		"never mind", "nevermind", "abort",
	}
)

func classifyDecision(message string) decision {
	norm := strings.ToLower(strings.TrimSpace(message))
	norm = strings.TrimRight(norm, ".!?")
	norm = strings.TrimSpace(norm)
	for _, a := range affirmations {
		if norm == a {
			return decisionApprove
		}
	}
	for _, n := range negatives {
		if norm == n {
			return decisionDecline
		}
	}
	return decisionOther
}

// ─── rendering helpers ────────────────────────────────────────────────────────

// renderToolResult serializes a tool outcome for the model, appending a
// button token when the payload is an openable record.
func renderToolResult(resp *executor.Response) string {
	r := resp.Result
	if !r.Success {
		return fmt.Sprintf("error (%s): %s", r.Code, r.Error)
	}

	var sb strings.Builder
	if resp.Duplicate {
		sb.WriteString("note: this exact request was already performed moments ago; returning the original outcome\n")
	}
	data, err := json.Marshal(r.Data)
	if err != nil {
		sb.WriteString(fmt.Sprintf("%v", r.Data))
	} else {
		sb.Write(data)
	}
	if b, ok := buttonFor(r.Data); ok {
		sb.WriteString("\n")
		sb.WriteString(ButtonToken(b))
	}
	return sb.String()
}

func renderAmbiguity(amb *resolver.AmbiguityError) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "I found %d records matching %q. Which one did you mean?\n", len(amb.Candidates), amb.Query)
	for i, c := range amb.Candidates {
		fmt.Fprintf(&sb, "%d. %s", i+1, c.Label)
		if c.Detail != "" {
			fmt.Fprintf(&sb, " (%s)", c.Detail)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// describeTool turns a tool name into a short human phrase.
func describeTool(name string) string {
	parts := strings.SplitN(name, ".", 2)
	if len(parts) != 2 {
		return name
	}
	return strings.ReplaceAll(parts[1], "_", " ") + " on your " + parts[0]
}

func summarizeData(toolName string, data any) string {
	switch v := data.(type) {
	case map[string]any:
		if n, ok := v["deleted"]; ok {
			return fmt.Sprintf("Deleted %v records.", n)
		}
		if n, ok := v["archived"]; ok {
			return fmt.Sprintf("Archived %v messages.", n)
		}
	}
	if b, ok := buttonFor(data); ok {
		return b.Label + " to see the result."
	}
	return "The action completed."
}

func jobView(j *jobs.Job) *models.JobView {
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

func pendingView(pa *approval.PendingAction) *models.PendingActionView {
	return &models.PendingActionView{
		ID:        pa.ID,
		ToolName:  pa.ToolName,
		Prompt:    pa.Prompt,
		CreatedAt: pa.CreatedAt,
		ExpiresAt: pa.ExpiresAt,
	}
}
