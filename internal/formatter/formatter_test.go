package formatter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/desertthunder/rolodex/internal/models"
	"github.com/google/go-cmp/cmp"
)

var contacts = []models.Contact{
	{
		ID:     "c2",
		UserID: "u1",
		Name:   "Luis",
		Phone:  models.Optional("600123"),
		City:   models.Optional("Sin ciudad"),
	},
	{
		ID:      "c1",
		UserID:  "u1",
		Name:    "Ana",
		Email:   models.Optional("ana@x.com"),
		Address: new(string),
		Notes:   models.Optional("met at work"),
	},
}

func TestContactTable(t *testing.T) {
	out := ContactTable(contacts)

	for _, want := range []string{"ID", "Name", "Email", "Phone", "City", "Luis", "600123", "Sin ciudad", "Ana", "ana@x.com"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}

	lines := strings.Split(out, "\n")
	var luis string
	for _, l := range lines {
		if strings.Contains(l, "Luis") {
			luis = l
		}
	}
	if !strings.Contains(luis, absent) {
		t.Errorf("expected absent email marker in %q", luis)
	}

	if strings.Index(out, "Luis") > strings.Index(out, "Ana") {
		t.Error("expected rows in the given order")
	}
}

func TestContactCard(t *testing.T) {
	tests := []struct {
		name    string
		contact models.Contact
		want    []string
		missing []string
	}{
		{
			name:    "present fields only",
			contact: contacts[1],
			want:    []string{"Ana\n", "Email:", "ana@x.com", "Notes:", "met at work", "ID:"},
			missing: []string{"Phone:", "Address:", "City:"},
		},
		{
			name:    "city from backfill",
			contact: contacts[0],
			want:    []string{"Luis\n", "Phone:", "City:", "Sin ciudad"},
			missing: []string{"Email:", "Notes:"},
		},
		{
			name:    "unsaved contact has no id line",
			contact: models.Contact{Name: "Zoe"},
			want:    []string{"Zoe\n"},
			missing: []string{"ID:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ContactCard(tt.contact)
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("card missing %q:\n%s", w, out)
				}
			}
			for _, m := range tt.missing {
				if strings.Contains(out, m) {
					t.Errorf("card should not contain %q:\n%s", m, out)
				}
			}
		})
	}
}

func TestWriteContacts(t *testing.T) {
	t.Run("json keeps absent fields out", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteContacts(&buf, contacts, true); err != nil {
			t.Fatalf("WriteContacts failed: %v", err)
		}

		var got []map[string]any
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 contacts, got %d", len(got))
		}
		if _, ok := got[0]["email"]; ok {
			t.Error("expected no email key for Luis")
		}
		if got[1]["email"] != "ana@x.com" {
			t.Errorf("unexpected email %v", got[1]["email"])
		}
	})

	t.Run("empty json is an array", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteContacts(&buf, nil, true); err != nil {
			t.Fatalf("WriteContacts failed: %v", err)
		}
		if diff := cmp.Diff("[]\n", buf.String()); diff != "" {
			t.Errorf("output mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty table prints a message", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteContacts(&buf, []models.Contact{}, false); err != nil {
			t.Fatalf("WriteContacts failed: %v", err)
		}
		if buf.String() != "No contacts.\n" {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("table has a count", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteContacts(&buf, contacts, false); err != nil {
			t.Fatalf("WriteContacts failed: %v", err)
		}
		if !strings.HasSuffix(buf.String(), "2 contact(s)\n") {
			t.Errorf("expected count footer, got %q", buf.String())
		}
	})
}
