package tools

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/foyerhq/foyer/internal/store"
)

type inboxSendParams struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`
}

type inboxSummarizeParams struct {
	Limit int `json:"limit" validate:"omitempty,gt=0,lte=200"`
}

type inboxArchiveParams struct {
	OlderThanDays int `json:"older_than_days" validate:"required,gt=0"`
}

// InboxTools is the inbox domain bundle. Summarize and archive are async:
// they may scan a large mailbox, so they run off the critical path and
// report completion via job events.
func InboxTools(s store.Store) []Definition {
	return []Definition{
		{
			Name:             "inbox.send",
			Domain:           DomainInbox,
			Description:      "Send an email on the user's behalf. Requires recipient, subject and body.",
			RequiresApproval: true,
			ApprovalType:     ApprovalStandard,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"to":      map[string]any{"type": "string", "description": "Recipient email address"},
					"subject": map[string]any{"type": "string"},
					"body":    map[string]any{"type": "string"},
				},
				"required": []string{"to", "subject", "body"},
			},
			Permissions: []string{"inbox:send"},
			ConfirmationPrompt: func(input map[string]any) string {
				return fmt.Sprintf("Send email to %s with subject %q?", str(input, "to"), str(input, "subject"))
			},
			IdempotencyKey: func(ec ExecutionContext, input map[string]any) string {
				return idemKey("inbox.send", ec.UserID, str(input, "to"), str(input, "subject"))
			},
			Execute: func(ctx context.Context, ec ExecutionContext, input map[string]any) (any, error) {
				p, err := DecodeParams[inboxSendParams]("inbox.send", input)
				if err != nil {
					return nil, err
				}
				// Provider hand-off happens outside this core; the sent
				// record is the observable side effect here.
				m := &store.Message{
					UserID:  ec.UserID,
					From:    "me",
					To:      p.To,
					Subject: p.Subject,
					Body:    p.Body,
					Folder:  store.FolderSent,
					Read:    true,
				}
				if err := s.CreateMessage(ctx, m); err != nil {
					return nil, fmt.Errorf("record sent message: %w", err)
				}
				return m, nil
			},
			AuditLog: func(input map[string]any, output any) string {
				return fmt.Sprintf("sent email to %s (%q)", str(input, "to"), str(input, "subject"))
			},
		},
		{
			Name:        "inbox.summarize",
			Domain:      DomainInbox,
			Description: "Summarize the inbox: unread count, most frequent senders and recent subjects. Runs in the background.",
			Async:       true,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"limit": map[string]any{"type": "integer", "description": "How many recent messages to consider, default 50"},
				},
			},
			Permissions: []string{"inbox:read"},
			Execute: func(ctx context.Context, ec ExecutionContext, input map[string]any) (any, error) {
				p, err := DecodeParams[inboxSummarizeParams]("inbox.summarize", input)
				if err != nil {
					return nil, err
				}
				limit := p.Limit
				if limit == 0 {
					limit = 50
				}
				msgs, err := s.ListMessages(ctx, ec.UserID, store.FolderInbox, limit)
				if err != nil {
					return nil, fmt.Errorf("list inbox: %w", err)
				}
				return summarize(msgs), nil
			},
			AuditLog: func(input map[string]any, output any) string {
				return "summarized inbox"
			},
		},
		{
			Name:        "inbox.archive_batch",
			Domain:      DomainInbox,
			Description: "Archive every inbox message older than the given number of days. Runs in the background.",
			Async:       true,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"older_than_days": map[string]any{"type": "integer", "description": "Messages older than this many days are archived"},
				},
				"required": []string{"older_than_days"},
			},
			Permissions: []string{"inbox:write"},
			IdempotencyKey: func(ec ExecutionContext, input map[string]any) string {
				return idemKey("inbox.archive_batch", ec.UserID, fmt.Sprint(input["older_than_days"]))
			},
			Execute: func(ctx context.Context, ec ExecutionContext, input map[string]any) (any, error) {
				p, err := DecodeParams[inboxArchiveParams]("inbox.archive_batch", input)
				if err != nil {
					return nil, err
				}
				cutoff := time.Now().UTC().AddDate(0, 0, -p.OlderThanDays)
				n, err := s.ArchiveOlderThan(ctx, ec.UserID, cutoff)
				if err != nil {
					return nil, fmt.Errorf("archive batch: %w", err)
				}
				return map[string]any{"archived": n, "older_than_days": p.OlderThanDays}, nil
			},
			AuditLog: func(input map[string]any, output any) string {
				if out, ok := output.(map[string]any); ok {
					return fmt.Sprintf("archived %v inbox messages older than %v days", out["archived"], input["older_than_days"])
				}
				return fmt.Sprintf("archived inbox messages older than %v days", input["older_than_days"])
			},
		},
	}
}

func summarize(msgs []store.Message) map[string]any {
	unread := 0
	senders := make(map[string]int)
	var subjects []string
	for _, m := range msgs {
		if !m.Read {
			unread++
		}
		senders[m.From]++
		if len(subjects) < 10 {
			subjects = append(subjects, m.Subject)
		}
	}

	type senderCount struct {
		Sender string `json:"sender"`
		Count  int    `json:"count"`
	}
	top := make([]senderCount, 0, len(senders))
	for from, n := range senders {
		top = append(top, senderCount{Sender: from, Count: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Sender < top[j].Sender
	})
	if len(top) > 5 {
		top = top[:5]
	}

	return map[string]any{
		"total":           len(msgs),
		"unread":          unread,
		"top_senders":     top,
		"recent_subjects": subjects,
	}
}
