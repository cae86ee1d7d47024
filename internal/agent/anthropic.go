package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"

	"github.com/foyerhq/foyer/internal/session"
)

// AnthropicClient implements Model against Anthropic Claude or a compatible
// provider reachable through a custom base URL.
type AnthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	maxIter   int
}

func NewAnthropicClient(apiKey, model, baseURL string, maxIter int) *AnthropicClient {
	if model == "" {
		model = "claude-sonnet-4-6"
	}
	if maxIter <= 0 {
		maxIter = 10
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)
	return &AnthropicClient{
		client:    client,
		model:     model,
		maxTokens: 4096,
		maxIter:   maxIter,
	}
}

// RunTurn loops until the model stops requesting tools, the runner halts the
// turn, or the iteration cap forces a final answer.
func (a *AnthropicClient) RunTurn(ctx context.Context, req TurnRequest, run ToolRunner) (TurnResult, error) {
	anthToolParams := make([]anthropic.ToolUnionUnionParam, len(req.Tools))
	for i, t := range req.Tools {
		anthToolParams[i] = anthropic.ToolParam{
			Name:        anthropic.String(t.Name),
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.F[interface{}](t.Parameters),
		}
	}

	messages := make([]anthropic.MessageParam, 0, len(req.History)+1)
	for _, turn := range req.History {
		if turn.Role == session.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(turn.Content)))
		} else {
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Content)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.Message)))

	var toolsUsed []string

	for iter := 0; iter < a.maxIter; iter++ {
		params := anthropic.MessageNewParams{
			Model:     anthropic.F(anthropic.Model(a.model)),
			MaxTokens: anthropic.F(int64(a.maxTokens)),
			Messages:  anthropic.F(messages),
			Tools:     anthropic.F(anthToolParams),
		}
		if req.System != "" {
			params.System = anthropic.F([]anthropic.TextBlockParam{
				anthropic.NewTextBlock(req.System),
			})
		}

		resp, err := a.client.Messages.New(ctx, params)
		if err != nil {
			return TurnResult{ToolsUsed: toolsUsed}, fmt.Errorf("model call failed: %w", err)
		}

		var textContent string
		var pendingCalls []ToolCall
		for _, block := range resp.Content {
			switch b := block.AsUnion().(type) {
			case anthropic.TextBlock:
				textContent += b.Text
			case anthropic.ToolUseBlock:
				var input map[string]any
				if err := json.Unmarshal(b.Input, &input); err != nil {
					log.Warn().Err(err).Str("tool", b.Name).Msg("failed to parse tool input")
					input = map[string]any{}
				}
				pendingCalls = append(pendingCalls, ToolCall{ID: b.ID, Name: b.Name, Input: input})
			}
		}

		log.Debug().
			Int("iter", iter).
			Str("stop_reason", string(resp.StopReason)).
			Int("tool_calls", len(pendingCalls)).
			Msg("agent iteration")

		isDone := resp.StopReason == "end_turn" ||
			resp.StopReason == "stop" ||
			resp.StopReason == "stop_sequence" ||
			resp.StopReason == "max_tokens" ||
			len(pendingCalls) == 0
		if isDone {
			return TurnResult{Text: textContent, ToolsUsed: toolsUsed}, nil
		}

		// Force a final answer near the cap to avoid runaway loops.
		if iter >= a.maxIter-3 && iter >= 2 {
			messages = append(messages, resp.ToParam())
			messages = append(messages, anthropic.NewUserMessage(
				anthropic.NewTextBlock("You have enough information. Provide your final answer now without calling any more tools."),
			))
			final := anthropic.MessageNewParams{
				Model:     anthropic.F(anthropic.Model(a.model)),
				MaxTokens: anthropic.F(int64(a.maxTokens)),
				Messages:  anthropic.F(messages),
			}
			if req.System != "" {
				final.System = anthropic.F([]anthropic.TextBlockParam{anthropic.NewTextBlock(req.System)})
			}
			finalResp, err := a.client.Messages.New(ctx, final)
			if err != nil {
				return TurnResult{Text: textContent, ToolsUsed: toolsUsed}, fmt.Errorf("final answer call failed: %w", err)
			}
			for _, block := range finalResp.Content {
				if b, ok := block.AsUnion().(anthropic.TextBlock); ok {
					textContent += b.Text
				}
			}
			return TurnResult{Text: textContent, ToolsUsed: toolsUsed}, nil
		}

		messages = append(messages, resp.ToParam())

		var toolResults []anthropic.ContentBlockParamUnion
		for _, tc := range pendingCalls {
			toolsUsed = append(toolsUsed, tc.Name)
			outcome := run(ctx, tc)
			if outcome.Halt {
				// The runner owns the reply from here; whatever text the model
				// produced alongside the call is dropped.
				return TurnResult{ToolsUsed: toolsUsed, Halted: true}, nil
			}
			toolResults = append(toolResults, anthropic.NewToolResultBlock(tc.ID, outcome.Content, outcome.IsError))
		}
		messages = append(messages, anthropic.NewUserMessage(toolResults...))
	}

	return TurnResult{ToolsUsed: toolsUsed}, fmt.Errorf("agent loop exceeded max iterations (%d)", a.maxIter)
}
