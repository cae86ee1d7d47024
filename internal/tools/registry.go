package tools

import (
	"github.com/rs/zerolog/log"
)

// Registry is the catalogue of tool definitions, keyed by name. It is built
// once at startup and passed by reference to the execution service and the
// orchestrator; there is no package-level singleton so tests can construct
// isolated registries.
type Registry struct {
	defs  map[string]Definition
	order []string // registration order, for stable listings
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a definition. Re-registering a name overwrites the previous
// definition with a warning; the warning is the only signal, overwrites are
// not fatal.
func (r *Registry) Register(def Definition) {
	if _, exists := r.defs[def.Name]; exists {
		log.Warn().Str("tool", def.Name).Msg("tool re-registered, overwriting previous definition")
	} else {
		r.order = append(r.order, def.Name)
	}
	r.defs[def.Name] = def
}

// RegisterAll registers every definition in order.
func (r *Registry) RegisterAll(defs []Definition) {
	for _, d := range defs {
		r.Register(d)
	}
}

// Get looks up a definition by name.
func (r *Registry) Get(name string) (Definition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// ByDomain returns every definition in a domain, in registration order.
// An unknown domain returns an empty slice.
func (r *Registry) ByDomain(domain string) []Definition {
	var out []Definition
	for _, name := range r.order {
		if d := r.defs[name]; d.Domain == domain {
			out = append(out, d)
		}
	}
	return out
}

// ForBundles returns the definitions of every named domain bundle, in
// registration order. Unknown bundle names are skipped.
func (r *Registry) ForBundles(domains ...string) []Definition {
	want := make(map[string]bool, len(domains))
	for _, d := range domains {
		want[d] = true
	}
	var out []Definition
	for _, name := range r.order {
		if d := r.defs[name]; want[d.Domain] {
			out = append(out, d)
		}
	}
	return out
}

// All returns every definition in registration order.
func (r *Registry) All() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	return out
}

// ToFunctionSchema projects definitions into the neutral function-calling
// shape the model provider consumes.
func ToFunctionSchema(defs []Definition) []FunctionSchema {
	out := make([]FunctionSchema, len(defs))
	for i, d := range defs {
		params := d.InputSchema
		if params == nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		out[i] = FunctionSchema{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  params,
		}
	}
	return out
}
