package security

import "strings"

// PIIDetector screens chat messages for sensitive keywords before anything
// is stored or sent to the model. Matching is case-insensitive substring;
// the keyword list comes from configuration.
type PIIDetector struct {
	keywords []string
}

func NewPIIDetector(keywords []string) *PIIDetector {
	normalized := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			normalized = append(normalized, k)
		}
	}
	return &PIIDetector{keywords: normalized}
}

// Detect reports whether the text contains a sensitive keyword, and which.
func (d *PIIDetector) Detect(text string) (bool, string) {
	lower := strings.ToLower(text)
	for _, kw := range d.keywords {
		if strings.Contains(lower, kw) {
			return true, kw
		}
	}
	return false, ""
}
