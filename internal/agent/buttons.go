package agent

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/foyerhq/foyer/internal/models"
	"github.com/foyerhq/foyer/internal/store"
)

// Replies carry [PRODUCT_BUTTON: label, path, entityId] tokens. The front end
// renders the parsed form; the raw token stays in the text for clients that
// only show plain transcripts.
var buttonTokenRe = regexp.MustCompile(`\[PRODUCT_BUTTON:\s*([^,\]]+),\s*([^,\]]+),\s*([^,\]]+)\]`)

// ButtonToken renders the inline token for a button.
func ButtonToken(b models.ProductButton) string {
	return fmt.Sprintf("[PRODUCT_BUTTON: %s, %s, %s]", b.Label, b.Path, b.EntityID)
}

// ParseButtons extracts every button token from a reply. The returned text
// has the tokens removed and whitespace tidied.
func ParseButtons(text string) (string, []models.ProductButton) {
	var buttons []models.ProductButton
	clean := buttonTokenRe.ReplaceAllStringFunc(text, func(tok string) string {
		m := buttonTokenRe.FindStringSubmatch(tok)
		buttons = append(buttons, models.ProductButton{
			Label:    strings.TrimSpace(m[1]),
			Path:     strings.TrimSpace(m[2]),
			EntityID: strings.TrimSpace(m[3]),
		})
		return ""
	})
	clean = strings.Join(strings.Fields(clean), " ")
	return clean, buttons
}

// buttonFor maps a tool result payload to an entity button, when the payload
// is a record the user can open.
func buttonFor(data any) (models.ProductButton, bool) {
	switch v := data.(type) {
	case *store.Contact:
		return models.ProductButton{
			Label:    "View " + v.Name,
			Path:     "/contacts/" + v.ID,
			EntityID: v.ID,
		}, true
	case *store.Property:
		return models.ProductButton{
			Label:    "View " + v.Address,
			Path:     "/properties/" + v.ID,
			EntityID: v.ID,
		}, true
	case *store.Deal:
		return models.ProductButton{
			Label:    "View " + v.Title,
			Path:     "/deals/" + v.ID,
			EntityID: v.ID,
		}, true
	case *store.CalendarEvent:
		return models.ProductButton{
			Label:    "View " + v.Title,
			Path:     "/calendar/" + v.ID,
			EntityID: v.ID,
		}, true
	case *store.Message:
		return models.ProductButton{
			Label:    "Open " + v.Subject,
			Path:     "/inbox/" + v.ID,
			EntityID: v.ID,
		}, true
	}
	return models.ProductButton{}, false
}
