package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/foyerhq/foyer/internal/store"
)

type calendarScheduleParams struct {
	Title           string `json:"title" validate:"required"`
	ContactID       string `json:"contact_id"`
	Location        string `json:"location"`
	StartsAt        string `json:"starts_at" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,gt=0"`
}

type calendarCancelParams struct {
	EventID string `json:"event_id" validate:"required"`
}

// CalendarTools is the calendar domain bundle.
func CalendarTools(s store.Store) []Definition {
	return []Definition{
		{
			Name:             "calendar.schedule",
			Domain:           DomainCalendar,
			Description:      "Schedule a calendar event such as a showing or a call. Optionally link a contact by name; a note is added to their record.",
			RequiresApproval: true,
			ApprovalType:     ApprovalStandard,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":            map[string]any{"type": "string", "description": "Event title"},
					"contact":          map[string]any{"type": "string", "description": "Name of the linked contact"},
					"contact_id":       map[string]any{"type": "string"},
					"location":         map[string]any{"type": "string"},
					"starts_at":        map[string]any{"type": "string", "description": "Start time, RFC 3339 (e.g. 2026-09-01T14:00:00Z)"},
					"duration_minutes": map[string]any{"type": "integer", "description": "Duration in minutes, default 60"},
				},
				"required": []string{"title", "starts_at"},
			},
			Permissions: []string{"calendar:write"},
			EntityRefs: []EntityRef{
				{Kind: "contact", Param: "contact", IDParam: "contact_id"},
			},
			ConfirmationPrompt: func(input map[string]any) string {
				return fmt.Sprintf("Schedule %q at %s?", str(input, "title"), str(input, "starts_at"))
			},
			IdempotencyKey: func(ec ExecutionContext, input map[string]any) string {
				return idemKey("calendar.schedule", ec.UserID, str(input, "title"), str(input, "starts_at"))
			},
			Execute: func(ctx context.Context, ec ExecutionContext, input map[string]any) (any, error) {
				p, err := DecodeParams[calendarScheduleParams]("calendar.schedule", input)
				if err != nil {
					return nil, err
				}
				starts, err := time.Parse(time.RFC3339, p.StartsAt)
				if err != nil {
					return nil, &ValidationError{Tool: "calendar.schedule", Msg: fmt.Sprintf("starts_at must be RFC 3339: %v", err)}
				}
				dur := time.Duration(p.DurationMinutes) * time.Minute
				if dur == 0 {
					dur = time.Hour
				}
				e := &store.CalendarEvent{
					UserID:    ec.UserID,
					Title:     p.Title,
					ContactID: p.ContactID,
					Location:  p.Location,
					StartsAt:  starts.UTC(),
					EndsAt:    starts.UTC().Add(dur),
				}
				if err := s.CreateEvent(ctx, e); err != nil {
					return nil, fmt.Errorf("create event: %w", err)
				}
				if p.ContactID != "" {
					n := &store.Note{
						UserID:    ec.UserID,
						ContactID: p.ContactID,
						Body:      fmt.Sprintf("Scheduled %q for %s", p.Title, starts.Format("Mon Jan 2 15:04")),
					}
					if err := s.AddNote(ctx, n); err != nil {
						// Event already written; Rollback compensates.
						return nil, fmt.Errorf("add scheduling note: %w", err)
					}
				}
				return e, nil
			},
			Rollback: func(ctx context.Context, ec ExecutionContext, input map[string]any) error {
				events, err := s.SearchEvents(ctx, ec.UserID, str(input, "title"))
				if err != nil {
					return fmt.Errorf("find event to cancel: %w", err)
				}
				for _, e := range events {
					if e.Title == str(input, "title") {
						if err := s.CancelEvent(ctx, ec.UserID, e.ID); err != nil {
							return fmt.Errorf("cancel event %s: %w", e.ID, err)
						}
						log.Info().Str("event_id", e.ID).Msg("rolled back partially scheduled event")
					}
				}
				return nil
			},
			AuditLog: func(input map[string]any, output any) string {
				return fmt.Sprintf("scheduled %q at %s", str(input, "title"), str(input, "starts_at"))
			},
		},
		{
			Name:        "calendar.cancel",
			Domain:      DomainCalendar,
			Description: "Cancel a calendar event. Identify the event by its title or id.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"event":    map[string]any{"type": "string", "description": "Title of the event to cancel"},
					"event_id": map[string]any{"type": "string"},
				},
			},
			Permissions: []string{"calendar:write"},
			EntityRefs: []EntityRef{
				{Kind: "event", Param: "event", IDParam: "event_id"},
			},
			IdempotencyKey: func(ec ExecutionContext, input map[string]any) string {
				return idemKey("calendar.cancel", ec.UserID, str(input, "event_id"))
			},
			Execute: func(ctx context.Context, ec ExecutionContext, input map[string]any) (any, error) {
				p, err := DecodeParams[calendarCancelParams]("calendar.cancel", input)
				if err != nil {
					return nil, err
				}
				if err := s.CancelEvent(ctx, ec.UserID, p.EventID); err != nil {
					return nil, fmt.Errorf("cancel event: %w", err)
				}
				return map[string]any{"canceled": true, "event_id": p.EventID}, nil
			},
			AuditLog: func(input map[string]any, output any) string {
				return fmt.Sprintf("canceled event %s", str(input, "event_id"))
			},
		},
	}
}
