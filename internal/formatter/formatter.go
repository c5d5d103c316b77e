// package formatter renders contacts for the command line: a table for lists, a text card for one
// contact, and indented JSON for scripting.
package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/rolodex/internal/models"
)

// absent is shown in table cells for optional fields without a value.
const absent = "-"

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// cell returns the value of an optional field or [absent].
func cell(p *string) string {
	if !models.Present(p) {
		return absent
	}
	return strings.TrimSpace(*p)
}

// ContactTable renders contacts as a bordered table with columns: ID, Name, Email, Phone, City
func ContactTable(contacts []models.Contact) string {
	rows := make([][]string, 0, len(contacts))
	for _, c := range contacts {
		rows = append(rows, []string{c.ID, c.Name, cell(c.Email), cell(c.Phone), cell(c.City)})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("ID", "Name", "Email", "Phone", "City").
		Rows(rows...)

	return t.String()
}

// ContactCard renders one contact as plain text: the name, then each present field on its own line.
func ContactCard(c models.Contact) string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteString("\n")

	for _, f := range []struct {
		label string
		value *string
	}{
		{"Email", c.Email},
		{"Phone", c.Phone},
		{"Address", c.Address},
		{"City", c.City},
		{"Notes", c.Notes},
	} {
		if models.Present(f.value) {
			fmt.Fprintf(&b, "  %-8s %s\n", f.label+":", *f.value)
		}
	}

	if c.ID != "" {
		fmt.Fprintf(&b, "  %-8s %s\n", "ID:", c.ID)
	}
	return b.String()
}

// ContactsJSON converts contacts to indented JSON. A nil slice encodes as [].
func ContactsJSON(contacts []models.Contact) ([]byte, error) {
	if contacts == nil {
		contacts = []models.Contact{}
	}
	data, err := json.MarshalIndent(contacts, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode contacts: %w", err)
	}
	return data, nil
}

// WriteContacts writes contacts to w as JSON when asJSON is set, otherwise as a table.
//
// An empty list prints a short message instead of an empty table.
func WriteContacts(w io.Writer, contacts []models.Contact, asJSON bool) error {
	if asJSON {
		data, err := ContactsJSON(contacts)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	if len(contacts) == 0 {
		_, err := fmt.Fprintln(w, "No contacts.")
		return err
	}

	_, err := fmt.Fprintf(w, "%s\n%d contact(s)\n", ContactTable(contacts), len(contacts))
	return err
}
