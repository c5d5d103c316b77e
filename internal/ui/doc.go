// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI talks to a running server through the API client and offers the
// same flows as the browser:
//  1. [AuthView] : Sign in or create an account
//  2. [ListView] : Browse contacts, search as you type, see the selected card
//  3. [FormView] : Create or edit a contact (name required)
//  4. [ConfirmView] : Confirm a delete
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// State lives in an [app.Controller]; the model only renders its snapshots.
//
// Session changes arrive from an [app.Gate] through a channel, the same way
// progress updates are drained with a re-armed wait command, so signing out
// anywhere returns the TUI to the sign-in view.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
