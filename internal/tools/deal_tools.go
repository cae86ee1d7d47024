package tools

import (
	"context"
	"fmt"

	"github.com/foyerhq/foyer/internal/store"
)

type dealCreateParams struct {
	Title      string `json:"title" validate:"required"`
	ContactID  string `json:"contact_id"`
	PropertyID string `json:"property_id"`
	Amount     int64  `json:"amount" validate:"omitempty,gte=0"`
}

type dealStageParams struct {
	DealID string `json:"deal_id" validate:"required"`
	Stage  string `json:"stage" validate:"required,oneof=lead qualified offer closing won lost"`
}

type dealBulkDeleteParams struct {
	Stage string `json:"stage" validate:"required,oneof=lead qualified offer closing won lost"`
}

// DealTools is the deal domain bundle.
func DealTools(s store.Store) []Definition {
	return []Definition{
		{
			Name:        "deal.create",
			Domain:      DomainDeal,
			Description: "Create a deal in the pipeline. Optionally link it to a contact and a property by name/address.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":       map[string]any{"type": "string", "description": "Short name of the deal"},
					"contact":     map[string]any{"type": "string", "description": "Name of the linked contact"},
					"contact_id":  map[string]any{"type": "string"},
					"property":    map[string]any{"type": "string", "description": "Address of the linked property"},
					"property_id": map[string]any{"type": "string"},
					"amount":      map[string]any{"type": "integer", "description": "Deal value in whole dollars"},
				},
				"required": []string{"title"},
			},
			Permissions: []string{"deals:write"},
			EntityRefs: []EntityRef{
				{Kind: "contact", Param: "contact", IDParam: "contact_id"},
				{Kind: "property", Param: "property", IDParam: "property_id"},
			},
			IdempotencyKey: func(ec ExecutionContext, input map[string]any) string {
				return idemKey("deal.create", ec.UserID, str(input, "title"))
			},
			Execute: func(ctx context.Context, ec ExecutionContext, input map[string]any) (any, error) {
				p, err := DecodeParams[dealCreateParams]("deal.create", input)
				if err != nil {
					return nil, err
				}
				d := &store.Deal{
					UserID:     ec.UserID,
					Title:      p.Title,
					ContactID:  p.ContactID,
					PropertyID: p.PropertyID,
					Amount:     p.Amount,
				}
				if err := s.CreateDeal(ctx, d); err != nil {
					return nil, fmt.Errorf("create deal: %w", err)
				}
				return d, nil
			},
			AuditLog: func(input map[string]any, output any) string {
				return fmt.Sprintf("created deal %q", str(input, "title"))
			},
		},
		{
			Name:        "deal.update_stage",
			Domain:      DomainDeal,
			Description: "Move a deal to a new pipeline stage: lead, qualified, offer, closing, won or lost. Identify the deal by title or id.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"deal":    map[string]any{"type": "string", "description": "Title of the deal"},
					"deal_id": map[string]any{"type": "string"},
					"stage":   map[string]any{"type": "string", "enum": []string{"lead", "qualified", "offer", "closing", "won", "lost"}},
				},
				"required": []string{"stage"},
			},
			Permissions: []string{"deals:write"},
			EntityRefs: []EntityRef{
				{Kind: "deal", Param: "deal", IDParam: "deal_id"},
			},
			Execute: func(ctx context.Context, ec ExecutionContext, input map[string]any) (any, error) {
				p, err := DecodeParams[dealStageParams]("deal.update_stage", input)
				if err != nil {
					return nil, err
				}
				d, err := s.GetDeal(ctx, ec.UserID, p.DealID)
				if err != nil {
					return nil, fmt.Errorf("load deal: %w", err)
				}
				d.Stage = p.Stage
				if err := s.UpdateDeal(ctx, d); err != nil {
					return nil, fmt.Errorf("update deal: %w", err)
				}
				return d, nil
			},
			AuditLog: func(input map[string]any, output any) string {
				return fmt.Sprintf("moved deal %s to stage %s", str(input, "deal_id"), str(input, "stage"))
			},
		},
		{
			Name:             "deal.bulk_delete",
			Domain:           DomainDeal,
			Description:      "Delete every deal in a given pipeline stage. This cannot be undone.",
			RequiresApproval: true,
			ApprovalType:     ApprovalDestructive,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"stage": map[string]any{"type": "string", "enum": []string{"lead", "qualified", "offer", "closing", "won", "lost"}},
				},
				"required": []string{"stage"},
			},
			Permissions: []string{"deals:delete"},
			ConfirmationPrompt: func(input map[string]any) string {
				return fmt.Sprintf("Delete ALL deals in stage %q? This cannot be undone.", str(input, "stage"))
			},
			IdempotencyKey: func(ec ExecutionContext, input map[string]any) string {
				return idemKey("deal.bulk_delete", ec.UserID, str(input, "stage"))
			},
			Execute: func(ctx context.Context, ec ExecutionContext, input map[string]any) (any, error) {
				p, err := DecodeParams[dealBulkDeleteParams]("deal.bulk_delete", input)
				if err != nil {
					return nil, err
				}
				n, err := s.DeleteDealsByStage(ctx, ec.UserID, p.Stage)
				if err != nil {
					return nil, fmt.Errorf("bulk delete deals: %w", err)
				}
				return map[string]any{"deleted": n, "stage": p.Stage}, nil
			},
			AuditLog: func(input map[string]any, output any) string {
				if out, ok := output.(map[string]any); ok {
					return fmt.Sprintf("bulk-deleted %v deals in stage %s", out["deleted"], str(input, "stage"))
				}
				return fmt.Sprintf("bulk-deleted deals in stage %s", str(input, "stage"))
			},
		},
	}
}
