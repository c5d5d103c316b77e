package app

import (
	"github.com/desertthunder/rolodex/internal/models"
)

// Field indexes the editable inputs of a [Form], in display order.
type Field int

const (
	FieldName Field = iota
	FieldEmail
	FieldPhone
	FieldAddress
	FieldNotes
)

// Fields lists every editable field. City is not one of them.
var Fields = []Field{FieldName, FieldEmail, FieldPhone, FieldAddress, FieldNotes}

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldEmail:
		return "email"
	case FieldPhone:
		return "phone"
	case FieldAddress:
		return "address"
	case FieldNotes:
		return "notes"
	default:
		return ""
	}
}

// Form is the contact dialog's local state: plain text bound to each input.
type Form struct {
	ID      string
	Name    string
	Email   string
	Phone   string
	Address string
	Notes   string
}

// NewForm seeds a form from c. A nil contact opens an empty create form;
// absent optional fields are seeded as "".
func NewForm(c *models.Contact) Form {
	if c == nil {
		return Form{}
	}
	return Form{
		ID:      c.ID,
		Name:    c.Name,
		Email:   models.Value(c.Email),
		Phone:   models.Value(c.Phone),
		Address: models.Value(c.Address),
		Notes:   models.Value(c.Notes),
	}
}

// Editing reports whether the form edits an existing contact.
func (f Form) Editing() bool { return f.ID != "" }

// Get returns the text bound to field.
func (f Form) Get(field Field) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldEmail:
		return f.Email
	case FieldPhone:
		return f.Phone
	case FieldAddress:
		return f.Address
	case FieldNotes:
		return f.Notes
	}
	return ""
}

// Set binds value to field.
func (f *Form) Set(field Field, value string) {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldPhone:
		f.Phone = value
	case FieldAddress:
		f.Address = value
	case FieldNotes:
		f.Notes = value
	}
}

// Record assembles the save event: the id only when editing, the name as
// typed, and every empty optional field as absent.
func (f Form) Record() models.ContactRecord {
	return models.ContactRecord{
		ID:      f.ID,
		Name:    f.Name,
		Email:   models.Optional(f.Email),
		Phone:   models.Optional(f.Phone),
		Address: models.Optional(f.Address),
		Notes:   models.Optional(f.Notes),
	}
}

// Submit validates the form and returns its record. The only rule is a
// non-empty name; email and phone formats are not checked.
func (f Form) Submit() (models.ContactRecord, error) {
	rec := f.Record()
	if err := rec.Validate(); err != nil {
		return models.ContactRecord{}, err
	}
	return rec, nil
}
