// Package agent runs conversational turns: it drives the language model's
// tool-calling loop and routes every requested call through the execution
// pipeline, halting the loop when a call needs the user (approval, ambiguity,
// clarification) instead of the model.
package agent

import (
	"context"

	"github.com/foyerhq/foyer/internal/session"
	"github.com/foyerhq/foyer/internal/tools"
)

// ToolCall is one tool invocation requested by the model.
type ToolCall struct {
	ID    string
	Name  string
	Input map[string]any
}

// ToolOutcome is what a ToolRunner feeds back for one call. Halt stops the
// model loop immediately; the runner keeps whatever state it needs to build
// the user-facing response itself.
type ToolOutcome struct {
	Content string
	IsError bool
	Halt    bool
}

// ToolRunner executes one model-requested call.
type ToolRunner func(ctx context.Context, call ToolCall) ToolOutcome

// TurnRequest is one user turn plus the context the model needs.
type TurnRequest struct {
	System  string
	History []session.Turn
	Message string
	Tools   []tools.FunctionSchema
}

// TurnResult is the model side of a finished turn. Halted means a tool
// outcome stopped the loop and the runner owns the reply.
type TurnResult struct {
	Text      string
	ToolsUsed []string
	Halted    bool
}

// Model drives one turn of the tool-calling loop against a language model.
type Model interface {
	RunTurn(ctx context.Context, req TurnRequest, run ToolRunner) (TurnResult, error)
}
