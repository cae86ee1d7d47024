package tools_test

import (
	"context"
	"testing"

	"github.com/foyerhq/foyer/internal/store"
	"github.com/foyerhq/foyer/internal/tools"
)

func catalogRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	s := store.NewMemoryStore()
	r := tools.NewRegistry()
	r.RegisterAll(tools.ContactTools(s))
	r.RegisterAll(tools.PropertyTools(s))
	r.RegisterAll(tools.DealTools(s))
	r.RegisterAll(tools.CalendarTools(s))
	r.RegisterAll(tools.InboxTools(s))
	return r
}

func TestRegistryGet(t *testing.T) {
	r := catalogRegistry(t)

	def, ok := r.Get("contact.create")
	if !ok {
		t.Fatal("contact.create should be registered")
	}
	if def.Domain != tools.DomainContact {
		t.Errorf("Domain = %q, want %q", def.Domain, tools.DomainContact)
	}

	if _, ok := r.Get("contact.explode"); ok {
		t.Error("unknown tool should not resolve")
	}
}

func TestRegistryByDomain(t *testing.T) {
	r := catalogRegistry(t)

	deals := r.ByDomain(tools.DomainDeal)
	if len(deals) != 3 {
		t.Errorf("deal domain has %d tools, want 3", len(deals))
	}
	if got := r.ByDomain("nonexistent"); len(got) != 0 {
		t.Errorf("unknown domain should return empty, got %d", len(got))
	}
}

func TestRegistryForBundles(t *testing.T) {
	r := catalogRegistry(t)

	defs := r.ForBundles(tools.DomainContact, tools.DomainInbox)
	names := make(map[string]bool, len(defs))
	for _, d := range defs {
		names[d.Name] = true
	}
	if !names["contact.create"] || !names["inbox.send"] {
		t.Errorf("bundle selection missing expected tools: %v", names)
	}
	if names["deal.create"] {
		t.Error("deal.create should not be in the contact+inbox bundles")
	}
}

func TestRegistryOverwriteWarnsNotFatal(t *testing.T) {
	r := tools.NewRegistry()
	r.Register(tools.Definition{Name: "x.y", Domain: "x", Description: "first"})
	r.Register(tools.Definition{Name: "x.y", Domain: "x", Description: "second"})

	def, ok := r.Get("x.y")
	if !ok {
		t.Fatal("tool should still be registered")
	}
	if def.Description != "second" {
		t.Errorf("overwrite should keep the later definition, got %q", def.Description)
	}
	if len(r.All()) != 1 {
		t.Errorf("registry should hold one definition, got %d", len(r.All()))
	}
}

func TestToFunctionSchema(t *testing.T) {
	r := catalogRegistry(t)

	schemas := tools.ToFunctionSchema(r.All())
	if len(schemas) != len(r.All()) {
		t.Fatalf("projected %d schemas for %d tools", len(schemas), len(r.All()))
	}
	for _, fs := range schemas {
		if fs.Name == "" || fs.Description == "" {
			t.Errorf("schema missing name/description: %+v", fs)
		}
		if fs.Parameters == nil {
			t.Errorf("schema %s missing parameters", fs.Name)
		}
		if typ, _ := fs.Parameters["type"].(string); typ != "object" {
			t.Errorf("schema %s parameters type = %q, want object", fs.Name, typ)
		}
	}
}

func TestDecodeParamsValidation(t *testing.T) {
	s := store.NewMemoryStore()
	r := tools.NewRegistry()
	r.RegisterAll(tools.ContactTools(s))
	def, _ := r.Get("contact.create")
	ec := tools.ExecutionContext{UserID: "u1", ConversationID: "c1"}

	tests := []struct {
		name    string
		input   map[string]any
		wantErr bool
	}{
		{"valid", map[string]any{"name": "Alice"}, false},
		{"missing name", map[string]any{"email": "a@b.com"}, true},
		{"bad email", map[string]any{"name": "Alice", "email": "not-an-email"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := def.Execute(context.Background(), ec, tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if _, ok := err.(*tools.ValidationError); !ok {
					t.Errorf("error should be *ValidationError, got %T", err)
				}
			}
		})
	}

	// Validation failure leaves no record behind.
	found, _ := s.SearchContacts(context.Background(), "u1", "alice")
	if len(found) != 1 {
		t.Errorf("exactly the valid call should have created a contact, found %d", len(found))
	}
}
