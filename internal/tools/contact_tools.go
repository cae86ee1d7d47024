package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/foyerhq/foyer/internal/store"
)

type contactCreateParams struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

type contactUpdateParams struct {
	ContactID string `json:"contact_id" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
	Name      string `json:"new_name"`
}

type contactDeleteParams struct {
	ContactID string `json:"contact_id" validate:"required"`
}

type contactNoteParams struct {
	ContactID string `json:"contact_id" validate:"required"`
	Body      string `json:"body" validate:"required"`
}

// ContactTools is the contact domain bundle.
func ContactTools(s store.Store) []Definition {
	return []Definition{
		{
			Name:        "contact.create",
			Domain:      DomainContact,
			Description: "Create a new contact. Requires a name; email, phone and company are optional.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":    map[string]any{"type": "string", "description": "Full name of the contact"},
					"email":   map[string]any{"type": "string", "description": "Email address"},
					"phone":   map[string]any{"type": "string", "description": "Phone number"},
					"company": map[string]any{"type": "string", "description": "Company or brokerage"},
				},
				"required": []string{"name"},
			},
			Permissions: []string{"contacts:write"},
			IdempotencyKey: func(ec ExecutionContext, input map[string]any) string {
				return idemKey("contact.create", ec.UserID, str(input, "name"), str(input, "email"))
			},
			Execute: func(ctx context.Context, ec ExecutionContext, input map[string]any) (any, error) {
				p, err := DecodeParams[contactCreateParams]("contact.create", input)
				if err != nil {
					return nil, err
				}
				c := &store.Contact{
					UserID:  ec.UserID,
					Name:    p.Name,
					Email:   p.Email,
					Phone:   p.Phone,
					Company: p.Company,
				}
				if err := s.CreateContact(ctx, c); err != nil {
					return nil, fmt.Errorf("create contact: %w", err)
				}
				return c, nil
			},
			AuditLog: func(input map[string]any, output any) string {
				return fmt.Sprintf("created contact %q", str(input, "name"))
			},
		},
		{
			Name:        "contact.update",
			Domain:      DomainContact,
			Description: "Update an existing contact's email, phone, company or name. Identify the contact by name or id.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"contact":    map[string]any{"type": "string", "description": "Name of the contact to update"},
					"contact_id": map[string]any{"type": "string", "description": "Contact id, if already known"},
					"email":      map[string]any{"type": "string"},
					"phone":      map[string]any{"type": "string"},
					"company":    map[string]any{"type": "string"},
					"new_name":   map[string]any{"type": "string", "description": "New name for the contact"},
				},
			},
			Permissions: []string{"contacts:write"},
			EntityRefs: []EntityRef{
				{Kind: "contact", Param: "contact", IDParam: "contact_id"},
			},
			Execute: func(ctx context.Context, ec ExecutionContext, input map[string]any) (any, error) {
				p, err := DecodeParams[contactUpdateParams]("contact.update", input)
				if err != nil {
					return nil, err
				}
				c, err := s.GetContact(ctx, ec.UserID, p.ContactID)
				if err != nil {
					return nil, fmt.Errorf("load contact: %w", err)
				}
				if p.Email != "" {
					c.Email = p.Email
				}
				if p.Phone != "" {
					c.Phone = p.Phone
				}
				if p.Company != "" {
					c.Company = p.Company
				}
				if p.Name != "" {
					c.Name = p.Name
				}
				if err := s.UpdateContact(ctx, c); err != nil {
					return nil, fmt.Errorf("update contact: %w", err)
				}
				return c, nil
			},
			AuditLog: func(input map[string]any, output any) string {
				return fmt.Sprintf("updated contact %s", str(input, "contact_id"))
			},
		},
		{
			Name:        "contact.note",
			Domain:      DomainContact,
			Description: "Add a note to a contact's record.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"contact":    map[string]any{"type": "string", "description": "Name of the contact"},
					"contact_id": map[string]any{"type": "string"},
					"body":       map[string]any{"type": "string", "description": "Note text"},
				},
				"required": []string{"body"},
			},
			Permissions: []string{"contacts:write"},
			EntityRefs: []EntityRef{
				{Kind: "contact", Param: "contact", IDParam: "contact_id"},
			},
			Execute: func(ctx context.Context, ec ExecutionContext, input map[string]any) (any, error) {
				p, err := DecodeParams[contactNoteParams]("contact.note", input)
				if err != nil {
					return nil, err
				}
				n := &store.Note{UserID: ec.UserID, ContactID: p.ContactID, Body: p.Body}
				if err := s.AddNote(ctx, n); err != nil {
					return nil, fmt.Errorf("add note: %w", err)
				}
				return n, nil
			},
			AuditLog: func(input map[string]any, output any) string {
				return fmt.Sprintf("added note to contact %s", str(input, "contact_id"))
			},
		},
		{
			Name:             "contact.delete",
			Domain:           DomainContact,
			Description:      "Permanently delete a contact. This cannot be undone.",
			RequiresApproval: true,
			ApprovalType:     ApprovalDestructive,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"contact":    map[string]any{"type": "string", "description": "Name of the contact to delete"},
					"contact_id": map[string]any{"type": "string"},
				},
			},
			Permissions: []string{"contacts:delete"},
			EntityRefs: []EntityRef{
				{Kind: "contact", Param: "contact", IDParam: "contact_id"},
			},
			ConfirmationPrompt: func(input map[string]any) string {
				name := str(input, "contact")
				if name == "" {
					name = str(input, "contact_id")
				}
				return fmt.Sprintf("Permanently delete contact %q? This cannot be undone.", name)
			},
			IdempotencyKey: func(ec ExecutionContext, input map[string]any) string {
				return idemKey("contact.delete", ec.UserID, str(input, "contact_id"))
			},
			Execute: func(ctx context.Context, ec ExecutionContext, input map[string]any) (any, error) {
				p, err := DecodeParams[contactDeleteParams]("contact.delete", input)
				if err != nil {
					return nil, err
				}
				if err := s.DeleteContact(ctx, ec.UserID, p.ContactID); err != nil {
					return nil, fmt.Errorf("delete contact: %w", err)
				}
				return map[string]any{"deleted": true, "contact_id": p.ContactID}, nil
			},
			AuditLog: func(input map[string]any, output any) string {
				return fmt.Sprintf("deleted contact %s", str(input, "contact_id"))
			},
		},
	}
}

// str reads a string field from a loose input map.
func str(input map[string]any, key string) string {
	v, _ := input[key].(string)
	return v
}

// idemKey joins the logical-request parts into a cache key.
func idemKey(parts ...string) string {
	return strings.ToLower(strings.Join(parts, "|"))
}
