// Package repositories implements SQLite persistence for all domain entities.
//
// Key Implementations:
//   - [ContactRepository] : owner-scoped contact CRUD, newest first
//   - [ProfileRepository] : display-name lookup and upsert
//   - [UserRepository] : accounts with email-based lookups
//   - [SessionRepository] : opaque session tokens with expiry housekeeping
//
// Row-level authorization lives here: every contact statement carries
// "user_id = ?", so a contact owned by another user behaves exactly like a
// missing one ([shared.ErrContactNotFound]). Deletes are permanent; there is
// no soft delete or history.
//
// Contacts draw a sequence number from contacts_sequence inside the insert
// transaction ([NextSequence]); it breaks created_at ties in list ordering.
package repositories
