// package models defines the data model for the contact book
package models

import (
	"time"
)

// Model defines the base interface for persistent models.
type Model interface {
	Key() string     // Key returns the unique identifier for this model
	Validate() error // Validate checks if the model's data is valid and returns an error if not
}

var (
	_ Model = (*Contact)(nil)
	_ Model = (*User)(nil)
)

// Contact is a personal contact record owned by exactly one user.
//
// Optional fields are nil when not provided; nil and "" are distinct.
type Contact struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name" validate:"required"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	City      *string   `json:"city,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Contact) Key() string     { return c.ID }
func (c *Contact) Validate() error { return validate(c) }

// Record converts the contact into the record an edit form would start from.
//
// City is not part of a record.
func (c Contact) Record() ContactRecord {
	return ContactRecord{
		ID:      c.ID,
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: c.Address,
		Notes:   c.Notes,
	}
}

// ContactRecord is what the contact form emits on save.
//
// ID is empty for a new contact. Only these fields are ever written by the
// application; id, owner, created_at and city are store-managed.
type ContactRecord struct {
	ID      string  `json:"id,omitempty"`
	Name    string  `json:"name" validate:"required"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

// IsNew reports whether saving the record creates a contact.
func (r ContactRecord) IsNew() bool { return r.ID == "" }

// Validate checks the only client-side rule: a non-empty name.
func (r ContactRecord) Validate() error { return validate(r) }

// Normalize returns r with every empty optional field made absent.
func (r ContactRecord) Normalize() ContactRecord {
	for _, p := range []**string{&r.Email, &r.Phone, &r.Address, &r.Notes} {
		*p = Optional(Value(*p))
	}
	return r
}

// Profile holds the display name shown in the header.
type Profile struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
}

// User is an account that owns contacts.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email" validate:"required,email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) Key() string     { return u.ID }
func (u *User) Validate() error { return validate(u) }

// Session is an authenticated session identified by an opaque token.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Optional returns nil for "" and a pointer to s otherwise.
func Optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Value returns the pointed-to string, or "" for nil.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Present reports whether an optional field holds a non-empty value.
func Present(p *string) bool {
	return p != nil && *p != ""
}
