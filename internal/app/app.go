// Package app holds the contact view's application state and the flows that
// change it: loading, searching, the create/edit dialog, saving, deleting and
// signing out. Views read a [State] snapshot and call [Controller] methods.
package app

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rolodex/internal/models"
	"github.com/desertthunder/rolodex/internal/notify"
	"github.com/desertthunder/rolodex/internal/shared"
)

// ContactStore is the owner-partitioned contact table.
type ContactStore interface {
	List(ctx context.Context, userID string) ([]models.Contact, error)
	Create(ctx context.Context, userID string, rec models.ContactRecord) (*models.Contact, error)
	Update(ctx context.Context, userID string, rec models.ContactRecord) (*models.Contact, error)
	Delete(ctx context.Context, userID, id string) error
}

// ProfileStore looks up the display name shown in the header.
type ProfileStore interface {
	FullName(ctx context.Context, userID string) (string, error)
}

// Notifier shows a localized toast.
type Notifier interface {
	Notify(kind notify.Kind, key notify.Key)
}

// SignOuter ends the current session.
type SignOuter interface {
	SignOut(ctx context.Context) error
}

// SignOutFunc adapts a function to [SignOuter].
type SignOutFunc func(ctx context.Context) error

func (f SignOutFunc) SignOut(ctx context.Context) error { return f(ctx) }

// Phase is the coarse data state of the view.
type Phase int

const (
	Loading Phase = iota
	Ready
)

func (p Phase) String() string {
	if p == Ready {
		return "ready"
	}
	return "loading"
}

// State is a read-only snapshot of a [Controller].
type State struct {
	Phase       Phase
	UserID      string
	Email       string
	DisplayName string
	Query       string
	Contacts    []models.Contact // every loaded contact, newest first
	Visible     []models.Contact // Contacts after the search filter
	DialogOpen  bool
	Form        Form
}

// Options configures a [Controller].
type Options struct {
	Contacts ContactStore
	Profiles ProfileStore
	Notifier Notifier
	SignOut  SignOuter
	Logger   *log.Logger
}

// Controller owns the contact view's state. It is safe for concurrent use;
// store calls run without the lock held.
type Controller struct {
	contacts ContactStore
	profiles ProfileStore
	notifier Notifier
	signOut  SignOuter
	logger   *log.Logger

	mu          sync.RWMutex
	phase       Phase
	userID      string
	email       string
	displayName string
	list        []models.Contact
	query       string
	dialogOpen  bool
	form        Form
}

// NewController creates a [Controller] in the [Loading] phase.
func NewController(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Controller{
		contacts: opts.Contacts,
		profiles: opts.Profiles,
		notifier: opts.Notifier,
		signOut:  opts.SignOut,
		logger:   shared.WithLogger(opts.Logger, "component", "contacts"),
		list:     []models.Contact{},
	}
}

// Load binds the controller to session, then loads the profile and the
// contacts. It always ends in [Ready]; a failed contact load is reported
// through the notifier and returned.
func (c *Controller) Load(ctx context.Context, session models.Session) error {
	c.Bind(session)

	c.LoadProfile(ctx)
	err := c.LoadContacts(ctx)

	c.mu.Lock()
	c.phase = Ready
	c.mu.Unlock()
	return err
}

// Bind attaches the controller to session's user without loading anything.
// Switching users clears the list, the query and the dialog.
func (c *Controller) Bind(session models.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userID != session.UserID {
		c.list = []models.Contact{}
		c.query = ""
		c.dialogOpen = false
		c.form = Form{}
	}
	c.userID = session.UserID
	c.email = session.Email
	c.phase = Loading
}

// LoadContacts replaces the list with every contact the user owns. On
// failure the previous list stays, the error is logged and a toast shown.
func (c *Controller) LoadContacts(ctx context.Context) error {
	userID := c.user()

	contacts, err := c.contacts.List(ctx, userID)
	if err != nil {
		c.logger.Error("failed to load contacts", "user", userID, "error", err)
		c.notify(notify.Error, notify.ContactsLoadFailed)
		return err
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}

	c.mu.Lock()
	c.list = contacts
	c.mu.Unlock()
	return nil
}

// LoadProfile sets the display name, falling back to the email when the
// profile is missing, blank or fails to load.
func (c *Controller) LoadProfile(ctx context.Context) {
	userID := c.user()

	name := ""
	if c.profiles != nil {
		n, err := c.profiles.FullName(ctx, userID)
		if err != nil && !errors.Is(err, shared.ErrProfileNotFound) {
			c.logger.Debug("profile lookup failed", "user", userID, "error", err)
		}
		if err == nil {
			name = strings.TrimSpace(n)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if name == "" {
		name = c.email
	}
	c.displayName = name
}

// SetQuery updates the search text. Filtering happens on read.
func (c *Controller) SetQuery(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = q
}

// Visible returns the contacts matching the current query.
func (c *Controller) Visible() []models.Contact {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Filter(c.list, c.query)
}

// Find returns the loaded contact with id.
func (c *Controller) Find(id string) (models.Contact, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ct := range c.list {
		if ct.ID == id {
			return ct, true
		}
	}
	return models.Contact{}, false
}

// OpenCreate opens the dialog with every field cleared.
func (c *Controller) OpenCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = NewForm(nil)
	c.dialogOpen = true
}

// OpenEdit opens the dialog seeded from contact.
func (c *Controller) OpenEdit(contact models.Contact) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = NewForm(&contact)
	c.dialogOpen = true
}

// CloseDialog closes the dialog without saving.
func (c *Controller) CloseDialog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialogOpen = false
	c.form = Form{}
}

// Save writes rec through to the store: an update when it carries an id,
// otherwise an insert owned by the current user. Success shows a toast and
// reloads the whole list; failure shows an error toast and leaves the list
// as it was. The dialog is closed either way.
func (c *Controller) Save(ctx context.Context, rec models.ContactRecord) error {
	defer c.CloseDialog()
	userID := c.user()

	var (
		err error
		key notify.Key
	)
	if rec.IsNew() {
		_, err = c.contacts.Create(ctx, userID, rec)
		key = notify.ContactCreated
	} else {
		_, err = c.contacts.Update(ctx, userID, rec)
		key = notify.ContactUpdated
	}

	if err != nil {
		c.logger.Error("failed to save contact", "user", userID, "id", rec.ID, "error", err)
		c.notify(notify.Error, notify.ContactSaveFailed)
		return err
	}

	c.notify(notify.Success, key)
	_ = c.LoadContacts(ctx)
	return nil
}

// Delete removes the contact with id and reloads the list; failure shows an
// error toast.
func (c *Controller) Delete(ctx context.Context, id string) error {
	userID := c.user()

	if err := c.contacts.Delete(ctx, userID, id); err != nil {
		c.logger.Error("failed to delete contact", "user", userID, "id", id, "error", err)
		c.notify(notify.Error, notify.ContactDeleteFailed)
		return err
	}

	_ = c.LoadContacts(ctx)
	return nil
}

// SignOut ends the session. Leaving the view is up to whoever watches the
// session, not the controller.
func (c *Controller) SignOut(ctx context.Context) error {
	if c.signOut == nil {
		return shared.ErrNotAuthenticated
	}
	if err := c.signOut.SignOut(ctx); err != nil {
		c.logger.Error("failed to sign out", "error", err)
		c.notify(notify.Error, notify.SignOutFailed)
		return err
	}
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	contacts := make([]models.Contact, len(c.list))
	copy(contacts, c.list)

	return State{
		Phase:       c.phase,
		UserID:      c.userID,
		Email:       c.email,
		DisplayName: c.displayName,
		Query:       c.query,
		Contacts:    contacts,
		Visible:     Filter(contacts, c.query),
		DialogOpen:  c.dialogOpen,
		Form:        c.form,
	}
}

// SetField updates one input of the open dialog.
func (c *Controller) SetField(field Field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Set(field, value)
}

func (c *Controller) user() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

func (c *Controller) notify(kind notify.Kind, key notify.Key) {
	if c.notifier != nil {
		c.notifier.Notify(kind, key)
	}
}
