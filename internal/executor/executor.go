// Package executor is the single entry point every tool call flows through.
// It composes entity resolution, the idempotency guard, the approval gate,
// sync/async dispatch and audit logging; nothing else in the system invokes
// a tool's Execute directly.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/foyerhq/foyer/internal/approval"
	"github.com/foyerhq/foyer/internal/jobs"
	"github.com/foyerhq/foyer/internal/resolver"
	"github.com/foyerhq/foyer/internal/security"
	"github.com/foyerhq/foyer/internal/tools"
)

// ToolNotFoundError marks a call to a name absent from the registry.
type ToolNotFoundError struct {
	Name string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool %q not found", e.Name)
}

// ErrApprovalMissing is returned when an approval-gated call claims
// confirmation for an action that was never staged. No side effect occurs.
var ErrApprovalMissing = errors.New("approval required but no staged action matches")

// Response is the immediate outcome of one call. Exactly one of Result,
// Pending or Job is set.
type Response struct {
	Result    *tools.Result
	Pending   *approval.PendingAction
	Job       *jobs.Job
	Duplicate bool
}

// Service wires the call pipeline together. Construct once at startup and
// share; it holds no per-call state.
type Service struct {
	registry *tools.Registry
	resolver *resolver.Resolver
	guard    *tools.IdempotencyGuard
	gate     *approval.Gate
	jobs     *jobs.Manager
	audit    *security.AuditLogger
}

func NewService(
	registry *tools.Registry,
	res *resolver.Resolver,
	guard *tools.IdempotencyGuard,
	gate *approval.Gate,
	jm *jobs.Manager,
	audit *security.AuditLogger,
) *Service {
	return &Service{
		registry: registry,
		resolver: res,
		guard:    guard,
		gate:     gate,
		jobs:     jm,
		audit:    audit,
	}
}

// Gate exposes the approval gate for decision endpoints.
func (s *Service) Gate() *approval.Gate { return s.gate }

// Jobs exposes the job manager for status endpoints.
func (s *Service) Jobs() *jobs.Manager { return s.jobs }

// Execute runs one call through the full pipeline. Resolution failures
// (*resolver.NotFoundError, *resolver.AmbiguityError) and unknown tools
// (*ToolNotFoundError) come back as typed errors the orchestrator must
// surface; execution failures inside the tool are normalized into a Result
// with Success=false and never escape as raw errors.
func (s *Service) Execute(ctx context.Context, toolName string, input map[string]any, ec tools.ExecutionContext) (*Response, error) {
	def, ok := s.registry.Get(toolName)
	if !ok {
		return nil, &ToolNotFoundError{Name: toolName}
	}

	resolved, err := s.resolveRefs(ctx, def, input, ec)
	if err != nil {
		// Deliberate hard stop: ambiguity and not-found propagate untouched.
		return nil, err
	}

	var key string
	if def.IdempotencyKey != nil {
		key = def.IdempotencyKey(ec, resolved)
		if prior, dup := s.guard.Lookup(key); dup {
			log.Info().Str("tool", def.Name).Msg("duplicate call suppressed")
			s.logAudit(def, resolved, ec, "duplicate", nil, 0, true, "")
			return &Response{Result: &prior, Duplicate: true}, nil
		}
	}

	if def.RequiresApproval && !ec.ApprovalConfirmed {
		pa := s.gate.Stage(def, resolved)
		s.logAudit(def, resolved, ec, "staged", nil, 0, true, "")
		return &Response{Pending: pa}, nil
	}

	if def.Async {
		// The single audit record for an async call is written at
		// settlement, when the outcome and output are known.
		job := s.jobs.Dispatch(ctx, def.Name, ec.UserID, func(jobCtx context.Context) (any, error) {
			started := time.Now()
			out, execErr := def.Execute(jobCtx, ec, resolved)
			durMs := time.Since(started).Milliseconds()
			if execErr != nil {
				s.logAudit(def, resolved, ec, "failed", nil, durMs, false, execErr.Error())
				return nil, execErr
			}
			s.logAudit(def, resolved, ec, "executed", out, durMs, true, "")
			return out, nil
		})
		// Dispatch accepted: retries of the same logical request should get
		// the started handle back, not a second job.
		s.guard.Record(key, tools.Result{Success: true, Data: map[string]any{"job_id": job.ID, "status": string(job.Status)}})
		return &Response{Job: &job}, nil
	}

	started := time.Now()
	out, execErr := def.Execute(ctx, ec, resolved)
	durMs := time.Since(started).Milliseconds()

	result := tools.Result{Success: execErr == nil, Data: out}
	if execErr != nil {
		result.Error = execErr.Error()
		var vErr *tools.ValidationError
		if errors.As(execErr, &vErr) {
			result.Code = tools.CodeValidationFailed
		} else {
			result.Code = tools.CodeExecutionFailed
			s.compensate(ctx, def, resolved, ec)
		}
	}

	s.logAudit(def, resolved, ec, outcomeOf(result), out, durMs, result.Success, result.Error)

	if result.Success {
		s.guard.Record(key, result)
	}
	return &Response{Result: &result}, nil
}

// ExecuteApproved re-invokes a previously staged call with confirmation.
// The gate transition happens first so an expired or already-resolved action
// never reaches dispatch.
func (s *Service) ExecuteApproved(ctx context.Context, pa *approval.PendingAction, ec tools.ExecutionContext) (*Response, error) {
	if pa == nil {
		return nil, ErrApprovalMissing
	}
	if err := s.gate.Approve(pa); err != nil {
		return nil, err
	}
	ec.ApprovalConfirmed = true
	return s.Execute(ctx, pa.ToolName, pa.Input, ec)
}

func (s *Service) resolveRefs(ctx context.Context, def tools.Definition, input map[string]any, ec tools.ExecutionContext) (map[string]any, error) {
	resolved := make(map[string]any, len(input))
	for k, v := range input {
		resolved[k] = v
	}
	for _, ref := range def.EntityRefs {
		if id, _ := resolved[ref.IDParam].(string); id != "" {
			continue // explicit identifier, trusted as-is
		}
		name, _ := resolved[ref.Param].(string)
		if name == "" {
			continue // nothing to resolve; input validation decides
		}
		id, err := s.resolver.Resolve(ctx, ec.UserID, ref.Kind, name)
		if err != nil {
			return nil, err
		}
		resolved[ref.IDParam] = id
	}
	return resolved, nil
}

func (s *Service) compensate(ctx context.Context, def tools.Definition, input map[string]any, ec tools.ExecutionContext) {
	if def.Rollback == nil {
		return
	}
	if err := def.Rollback(ctx, ec, input); err != nil {
		log.Error().Err(err).Str("tool", def.Name).Msg("rollback failed")
	}
}

func (s *Service) logAudit(def tools.Definition, input map[string]any, ec tools.ExecutionContext, outcome string, output any, durMs int64, success bool, errMsg string) {
	detail := ""
	if def.AuditLog != nil {
		detail = def.AuditLog(input, output)
	}
	s.audit.LogToolCall(def.Name, ec.UserID, ec.ConversationID, outcome, detail, durMs, success, errMsg)
}

func outcomeOf(r tools.Result) string {
	if r.Success {
		return "executed"
	}
	return "failed"
}
