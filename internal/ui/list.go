package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/rolodex/internal/models"
)

var (
	_ list.Item = contactItem{}
)

// contactItem wraps [models.Contact] to implement [list.Item].
type contactItem struct {
	contact models.Contact
}

func (i contactItem) FilterValue() string { return i.contact.Name }
func (i contactItem) Title() string       { return i.contact.Name }
func (i contactItem) Description() string {
	var parts []string
	if models.Present(i.contact.Email) {
		parts = append(parts, *i.contact.Email)
	}
	if models.Present(i.contact.Phone) {
		parts = append(parts, *i.contact.Phone)
	}
	return strings.Join(parts, " • ")
}

func contactItems(contacts []models.Contact) []list.Item {
	items := make([]list.Item, len(contacts))
	for i, c := range contacts {
		items[i] = contactItem{contact: c}
	}
	return items
}

// cardLines returns the card body: the name, then every present optional
// field among email, phone, address and city.
func cardLines(c models.Contact) []string {
	lines := []string{c.Name}
	for _, f := range []struct {
		label string
		value *string
	}{
		{"email", c.Email},
		{"phone", c.Phone},
		{"address", c.Address},
		{"city", c.City},
	} {
		if models.Present(f.value) {
			lines = append(lines, styles.muted.Render(f.label+": ")+*f.value)
		}
	}
	return lines
}

// renderCard draws one contact card.
func renderCard(c models.Contact, selected bool) string {
	lines := cardLines(c)
	lines[0] = lipgloss.NewStyle().Bold(true).Render(lines[0])

	style := styles.card
	if selected {
		style = styles.selected
	}
	return style.Render(strings.Join(lines, "\n"))
}
