package tools

import (
	"context"
	"fmt"

	"github.com/foyerhq/foyer/internal/store"
)

type propertyCreateParams struct {
	Address string `json:"address" validate:"required"`
	City    string `json:"city"`
	Price   int64  `json:"price" validate:"omitempty,gte=0"`
}

type propertyStatusParams struct {
	PropertyID string `json:"property_id" validate:"required"`
	Status     string `json:"status" validate:"required,oneof=listed under_contract sold withdrawn"`
}

// PropertyTools is the property domain bundle.
func PropertyTools(s store.Store) []Definition {
	return []Definition{
		{
			Name:        "property.create",
			Domain:      DomainProperty,
			Description: "Add a property listing. Requires a street address.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"address": map[string]any{"type": "string", "description": "Street address"},
					"city":    map[string]any{"type": "string"},
					"price":   map[string]any{"type": "integer", "description": "Asking price in whole dollars"},
				},
				"required": []string{"address"},
			},
			Permissions: []string{"properties:write"},
			IdempotencyKey: func(ec ExecutionContext, input map[string]any) string {
				return idemKey("property.create", ec.UserID, str(input, "address"))
			},
			Execute: func(ctx context.Context, ec ExecutionContext, input map[string]any) (any, error) {
				p, err := DecodeParams[propertyCreateParams]("property.create", input)
				if err != nil {
					return nil, err
				}
				prop := &store.Property{
					UserID:  ec.UserID,
					Address: p.Address,
					City:    p.City,
					Price:   p.Price,
				}
				if err := s.CreateProperty(ctx, prop); err != nil {
					return nil, fmt.Errorf("create property: %w", err)
				}
				return prop, nil
			},
			AuditLog: func(input map[string]any, output any) string {
				return fmt.Sprintf("created property %q", str(input, "address"))
			},
		},
		{
			Name:        "property.update_status",
			Domain:      DomainProperty,
			Description: "Move a property listing to a new status: listed, under_contract, sold or withdrawn. Identify the property by address or id.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"property":    map[string]any{"type": "string", "description": "Address of the property"},
					"property_id": map[string]any{"type": "string"},
					"status":      map[string]any{"type": "string", "enum": []string{"listed", "under_contract", "sold", "withdrawn"}},
				},
				"required": []string{"status"},
			},
			Permissions: []string{"properties:write"},
			EntityRefs: []EntityRef{
				{Kind: "property", Param: "property", IDParam: "property_id"},
			},
			Execute: func(ctx context.Context, ec ExecutionContext, input map[string]any) (any, error) {
				p, err := DecodeParams[propertyStatusParams]("property.update_status", input)
				if err != nil {
					return nil, err
				}
				prop, err := s.GetProperty(ctx, ec.UserID, p.PropertyID)
				if err != nil {
					return nil, fmt.Errorf("load property: %w", err)
				}
				prop.Status = p.Status
				if err := s.UpdateProperty(ctx, prop); err != nil {
					return nil, fmt.Errorf("update property: %w", err)
				}
				return prop, nil
			},
			AuditLog: func(input map[string]any, output any) string {
				return fmt.Sprintf("set property %s status to %s", str(input, "property_id"), str(input, "status"))
			},
		},
	}
}
