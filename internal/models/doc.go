// Package models defines domain entities for the rolodex contact book.
//
// Persistent entities:
//   - [Contact] : a personal contact owned by exactly one user
//   - [User] : an account, identified by email
//   - [Profile] : per-user display name
//   - [Session] : an opaque, expiring sign-in token
//
// [ContactRecord] is the save event emitted by the contact form. It carries the
// id only when editing and never carries city, owner or timestamps.
//
// Optional text fields are *string: nil means "not provided", which is never
// the same as "". [Optional] and [Value] convert between the two at form
// boundaries.
package models
