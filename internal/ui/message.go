package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/rolodex/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgWatching MsgKind = iota
	MsgSessionStarted
	MsgSignedOut
	MsgContactsLoaded
	MsgContactSaved
	MsgContactDeleted
	MsgSignInFailed
	MsgSignOutDone
)

// Kind reports which message this is.
func (m Msg) Kind() MsgKind { return m.kind }

// err returns the error carried by result messages, if any.
func (m Msg) err() error {
	e, _ := m.data.(error)
	return e
}

// watchingMsg is the constructor for [MsgWatching]
func watchingMsg(unsubscribe func()) Msg {
	return Msg{kind: MsgWatching, data: unsubscribe}
}

// sessionStartedMsg is the constructor for [MsgSessionStarted]
func sessionStartedMsg(s models.Session) Msg {
	return Msg{kind: MsgSessionStarted, data: s}
}

// signedOutMsg is the constructor for [MsgSignedOut]
func signedOutMsg() Msg {
	return Msg{kind: MsgSignedOut}
}

// contactsLoadedMsg is the constructor for [MsgContactsLoaded]
func contactsLoadedMsg(err error) Msg {
	return Msg{kind: MsgContactsLoaded, data: err}
}

// contactSavedMsg is the constructor for [MsgContactSaved]
func contactSavedMsg(err error) Msg {
	return Msg{kind: MsgContactSaved, data: err}
}

// contactDeletedMsg is the constructor for [MsgContactDeleted]
func contactDeletedMsg(err error) Msg {
	return Msg{kind: MsgContactDeleted, data: err}
}

// signInFailedMsg is the constructor for [MsgSignInFailed]
func signInFailedMsg(err error) Msg {
	return Msg{kind: MsgSignInFailed, data: err}
}

// signOutDoneMsg is the constructor for [MsgSignOutDone]
func signOutDoneMsg(err error) Msg {
	return Msg{kind: MsgSignOutDone, data: err}
}
