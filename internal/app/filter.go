package app

import (
	"strings"

	"github.com/desertthunder/rolodex/internal/models"
)

// Filter returns the contacts whose name or email contains query, ignoring
// case, or whose phone contains query verbatim. An empty query keeps every
// contact. Order is preserved and contacts is never modified.
func Filter(contacts []models.Contact, query string) []models.Contact {
	if query == "" {
		return contacts
	}

	folded := strings.ToLower(query)
	out := make([]models.Contact, 0, len(contacts))
	for _, c := range contacts {
		if Matches(c, query, folded) {
			out = append(out, c)
		}
	}
	return out
}

// Matches reports whether c matches query. folded must be strings.ToLower(query).
func Matches(c models.Contact, query, folded string) bool {
	switch {
	case strings.Contains(strings.ToLower(c.Name), folded):
		return true
	case c.Email != nil && strings.Contains(strings.ToLower(*c.Email), folded):
		return true
	case c.Phone != nil && strings.Contains(*c.Phone, query):
		return true
	}
	return false
}
