// Package resolver turns human references ("Charlie Temp", "the house on
// Elm St") into durable record identifiers. It never guesses: zero matches
// and multiple matches are both typed failures the orchestrator must surface
// to the user.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/foyerhq/foyer/internal/store"
)

// Entity kinds the resolver understands.
const (
	KindContact  = "contact"
	KindProperty = "property"
	KindDeal     = "deal"
	KindEvent    = "event"
)

// Candidate is one possible match, with enough detail for a user to pick.
type Candidate struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Detail string `json:"detail,omitempty"`
}

// NotFoundError means the reference matched nothing in the user's records.
type NotFoundError struct {
	Kind  string
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found matching %q", e.Kind, e.Query)
}

// AmbiguityError means the reference matched more than one record. The
// caller must list the candidates and ask; retrying with a guessed id is a
// policy violation.
type AmbiguityError struct {
	Kind       string
	Query      string
	Candidates []Candidate
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("%d %ss match %q", len(e.Candidates), e.Kind, e.Query)
}

// Resolver searches the record store, scoped to the acting user. Concurrent
// lookups for the same (user, kind, query) share one store round trip.
type Resolver struct {
	store store.Store
	sf    singleflight.Group
}

func New(s store.Store) *Resolver {
	return &Resolver{store: s}
}

// Resolve maps a name/alias reference to exactly one record id.
// Exactly one match resolves; zero matches return *NotFoundError; more than
// one returns *AmbiguityError carrying every candidate.
func (r *Resolver) Resolve(ctx context.Context, userID, kind, ref string) (string, error) {
	query := strings.TrimSpace(ref)
	if query == "" {
		return "", &NotFoundError{Kind: kind, Query: ref}
	}

	key := userID + "\x00" + kind + "\x00" + strings.ToLower(query)
	v, err, _ := r.sf.Do(key, func() (interface{}, error) {
		return r.search(ctx, userID, kind, query)
	})
	if err != nil {
		return "", err
	}
	candidates := v.([]Candidate)

	switch len(candidates) {
	case 0:
		return "", &NotFoundError{Kind: kind, Query: query}
	case 1:
		log.Debug().
			Str("kind", kind).
			Str("query", query).
			Str("id", candidates[0].ID).
			Msg("entity resolved")
		return candidates[0].ID, nil
	default:
		return "", &AmbiguityError{Kind: kind, Query: query, Candidates: candidates}
	}
}

func (r *Resolver) search(ctx context.Context, userID, kind, query string) ([]Candidate, error) {
	switch kind {
	case KindContact:
		contacts, err := r.store.SearchContacts(ctx, userID, query)
		if err != nil {
			return nil, fmt.Errorf("search contacts: %w", err)
		}
		out := make([]Candidate, 0, len(contacts))
		for _, c := range contacts {
			out = append(out, Candidate{ID: c.ID, Label: c.Name, Detail: contactDetail(c)})
		}
		return out, nil
	case KindProperty:
		props, err := r.store.SearchProperties(ctx, userID, query)
		if err != nil {
			return nil, fmt.Errorf("search properties: %w", err)
		}
		out := make([]Candidate, 0, len(props))
		for _, p := range props {
			out = append(out, Candidate{ID: p.ID, Label: p.Address, Detail: p.City + " · " + p.Status})
		}
		return out, nil
	case KindDeal:
		deals, err := r.store.SearchDeals(ctx, userID, query)
		if err != nil {
			return nil, fmt.Errorf("search deals: %w", err)
		}
		out := make([]Candidate, 0, len(deals))
		for _, d := range deals {
			out = append(out, Candidate{ID: d.ID, Label: d.Title, Detail: d.Stage})
		}
		return out, nil
	case KindEvent:
		events, err := r.store.SearchEvents(ctx, userID, query)
		if err != nil {
			return nil, fmt.Errorf("search events: %w", err)
		}
		out := make([]Candidate, 0, len(events))
		for _, e := range events {
			out = append(out, Candidate{ID: e.ID, Label: e.Title, Detail: e.StartsAt.Format("Mon Jan 2 15:04")})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
}

func contactDetail(c store.Contact) string {
	parts := make([]string, 0, 2)
	if c.Email != "" {
		parts = append(parts, c.Email)
	}
	if c.Company != "" {
		parts = append(parts, c.Company)
	}
	return strings.Join(parts, " · ")
}
