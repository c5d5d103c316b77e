package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/rolodex/internal/app"
	"github.com/desertthunder/rolodex/internal/auth"
	"github.com/desertthunder/rolodex/internal/models"
	"github.com/desertthunder/rolodex/internal/notify"
	"github.com/desertthunder/rolodex/internal/shared"
	"golang.org/x/text/language"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	AuthView ViewState = iota
	ListView
	FormView
	ConfirmView
)

const (
	authEmail = iota
	authPassword
	authName
)

// Client is everything the TUI needs from the API: the contact and profile
// stores, the session source the gate watches, and the sign-in calls.
type Client interface {
	app.AuthSource
	app.ContactStore
	app.ProfileStore
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignUp(ctx context.Context, in auth.SignUpInput) (*models.Session, error)
	SignOut(ctx context.Context) error
}

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	view        ViewState
	client      Client
	ctrl        *app.Controller
	queue       *notify.Queue
	events      chan Msg
	unsubscribe func()
	state       app.State
	toasts      []notify.Toast
	contactList list.Model
	search      textinput.Model
	inputs      []textinput.Model
	focus       int
	authInputs  []textinput.Model
	authFocus   int
	signingUp   bool
	busy        bool
	width       int
	height      int
	help        help.Model
	keys        keyMap
	logger      *log.Logger
}

// NewModel creates a new TUI model over client. Toasts are localized for tag.
func NewModel(ctx context.Context, client Client, tag language.Tag, logger *log.Logger) *Model {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	queue := notify.NewQueue(tag)

	contactList := list.New(nil, list.NewDefaultDelegate(), 76, 12)
	contactList.Title = "Contacts"
	contactList.SetShowHelp(false)
	contactList.SetShowStatusBar(false)
	contactList.SetFilteringEnabled(false)

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search name, email or phone"

	inputs := make([]textinput.Model, len(app.Fields))
	for i, f := range app.Fields {
		inputs[i] = textinput.New()
		inputs[i].Prompt = ""
		inputs[i].Placeholder = f.String()
		inputs[i].Width = 36
	}

	authInputs := make([]textinput.Model, 3)
	for i, placeholder := range []string{"email", "password", "name (optional)"} {
		authInputs[i] = textinput.New()
		authInputs[i].Prompt = ""
		authInputs[i].Placeholder = placeholder
		authInputs[i].Width = 36
	}
	authInputs[authPassword].EchoMode = textinput.EchoPassword
	authInputs[authEmail].Focus()

	return &Model{
		ctx:    ctx,
		view:   AuthView,
		client: client,
		ctrl: app.NewController(app.Options{
			Contacts: client,
			Profiles: client,
			Notifier: queue,
			SignOut:  client,
			Logger:   logger,
		}),
		queue:       queue,
		events:      make(chan Msg, 16),
		contactList: contactList,
		search:      search,
		inputs:      inputs,
		authInputs:  authInputs,
		width:       80,
		height:      24,
		help:        help.New(),
		keys:        newKeyMap(),
		logger:      logger,
	}
}

// Init starts watching the session.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.watch(), m.waitForAuth(), textinput.Blink)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.contactList.SetSize(max(msg.Width-4, 20), max(msg.Height/2, 6))
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m.quit()
		}
		switch m.view {
		case AuthView:
			return m.handleAuthKeys(msg)
		case ListView:
			return m.handleListKeys(msg)
		case FormView:
			return m.handleFormKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateInputs(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgWatching:
		m.unsubscribe, _ = msg.data.(func())
		return m, nil

	case MsgSessionStarted:
		session, _ := msg.data.(models.Session)
		m.view = ListView
		m.busy = true
		m.search.SetValue("")
		return m, tea.Batch(m.waitForAuth(), m.load(session))

	case MsgSignedOut:
		m.view = AuthView
		m.busy = false
		m.resetAuth()
		m.refresh()
		return m, tea.Batch(m.waitForAuth(), m.authInputs[authEmail].Focus())

	case MsgSignInFailed:
		m.busy = false
		m.queue.Notify(notify.Error, m.authFailureKey(msg.err()))
		m.refresh()
		return m, nil

	case MsgContactsLoaded, MsgContactSaved, MsgContactDeleted, MsgSignOutDone:
		m.busy = false
		m.refresh()
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case AuthView:
		body = m.renderAuth()
	case ListView:
		body = m.renderList()
	case FormView:
		body = m.renderForm()
	case ConfirmView:
		body = m.renderConfirm()
	}

	if toast := m.renderToast(); toast != "" {
		body = fmt.Sprintf("%s\n\n%s", body, toast)
	}
	return body
}

func (m *Model) handleAuthKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.toggle):
		m.signingUp = !m.signingUp
		return m, m.focusAuth(authEmail)
	case key.Matches(msg, m.keys.submit):
		return m, m.submitAuth()
	case key.Matches(msg, m.keys.next):
		return m, m.focusAuth((m.authFocus + 1) % m.authFieldCount())
	case key.Matches(msg, m.keys.prev):
		n := m.authFieldCount()
		return m, m.focusAuth((m.authFocus + n - 1) % n)
	}

	var cmd tea.Cmd
	m.authInputs[m.authFocus], cmd = m.authInputs[m.authFocus].Update(msg)
	return m, cmd
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.search.Focused() {
		if key.Matches(msg, m.keys.back) || key.Matches(msg, m.keys.submit) {
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.ctrl.SetQuery(m.search.Value())
		m.refresh()
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m.quit()
	case key.Matches(msg, m.keys.search):
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.create):
		m.ctrl.OpenCreate()
		return m, m.openForm()
	case key.Matches(msg, m.keys.edit):
		if c, ok := m.selected(); ok {
			m.ctrl.OpenEdit(c)
			return m, m.openForm()
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if _, ok := m.selected(); ok {
			m.view = ConfirmView
		}
		return m, nil
	case key.Matches(msg, m.keys.signOut):
		return m, m.signOut()
	}

	var cmd tea.Cmd
	m.contactList, cmd = m.contactList.Update(msg)
	return m, cmd
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	last := len(m.inputs) - 1

	switch {
	case key.Matches(msg, m.keys.back):
		m.ctrl.CloseDialog()
		m.view = ListView
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.save):
		return m.submitForm()
	case key.Matches(msg, m.keys.submit):
		if m.focus == last {
			return m.submitForm()
		}
		return m, m.focusField(m.focus + 1)
	case key.Matches(msg, m.keys.next):
		return m, m.focusField((m.focus + 1) % len(m.inputs))
	case key.Matches(msg, m.keys.prev):
		return m, m.focusField((m.focus + last) % len(m.inputs))
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	m.ctrl.SetField(app.Fields[m.focus], m.inputs[m.focus].Value())
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = ListView
		c, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.busy = true
		return m, func() tea.Msg {
			return contactDeletedMsg(m.ctrl.Delete(m.ctx, c.ID))
		}
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.view = ListView
	}
	return m, nil
}

func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case AuthView:
		m.authInputs[m.authFocus], cmd = m.authInputs[m.authFocus].Update(msg)
	case FormView:
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	case ListView:
		if m.search.Focused() {
			m.search, cmd = m.search.Update(msg)
		}
	}
	return m, cmd
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	return m, tea.Quit
}

// watch subscribes the gate to the client. Gate callbacks run on whichever
// goroutine publishes, so they only hand messages to the events channel.
func (m *Model) watch() tea.Cmd {
	events := m.events
	gate := app.Gate{
		OnSession:   func(s models.Session) { send(events, sessionStartedMsg(s)) },
		OnSignedOut: func() { send(events, signedOutMsg()) },
	}
	return func() tea.Msg {
		return watchingMsg(gate.Watch(m.ctx, m.client))
	}
}

func (m *Model) waitForAuth() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.events:
			return msg
		case <-m.ctx.Done():
			return nil
		}
	}
}

func send(ch chan<- Msg, msg Msg) {
	select {
	case ch <- msg:
	default:
	}
}

func (m *Model) load(session models.Session) tea.Cmd {
	return func() tea.Msg {
		return contactsLoadedMsg(m.ctrl.Load(m.ctx, session))
	}
}

func (m *Model) signOut() tea.Cmd {
	return func() tea.Msg {
		return signOutDoneMsg(m.ctrl.SignOut(m.ctx))
	}
}

func (m *Model) submitAuth() tea.Cmd {
	if m.busy {
		return nil
	}
	m.busy = true

	email := m.authInputs[authEmail].Value()
	password := m.authInputs[authPassword].Value()
	name := m.authInputs[authName].Value()
	signingUp := m.signingUp

	return func() tea.Msg {
		var err error
		if signingUp {
			_, err = m.client.SignUp(m.ctx, auth.SignUpInput{Email: email, Password: password, FullName: name})
		} else {
			_, err = m.client.SignIn(m.ctx, email, password)
		}
		if err != nil {
			m.logger.Warn("sign in failed", "error", err)
			return signInFailedMsg(err)
		}
		return nil
	}
}

func (m *Model) submitForm() (tea.Model, tea.Cmd) {
	rec, err := m.ctrl.Snapshot().Form.Submit()
	if err != nil {
		m.queue.Notify(notify.Error, notify.ContactNameRequired)
		m.refresh()
		return m, m.focusField(0)
	}

	m.view = ListView
	m.busy = true
	return m, func() tea.Msg {
		return contactSavedMsg(m.ctrl.Save(m.ctx, rec))
	}
}

func (m *Model) authFailureKey(err error) notify.Key {
	switch {
	case errors.Is(err, shared.ErrRateLimited):
		return notify.RateLimited
	case errors.Is(err, shared.ErrEmailTaken):
		return notify.EmailTaken
	case m.signingUp:
		return notify.SignUpFailed
	default:
		return notify.SignInFailed
	}
}

// refresh copies controller state into the view and picks up new toasts.
func (m *Model) refresh() {
	m.state = m.ctrl.Snapshot()
	if toasts := m.queue.Drain(); len(toasts) > 0 {
		m.toasts = toasts
	}

	index := m.contactList.Index()
	m.contactList.SetItems(contactItems(m.state.Visible))
	if n := len(m.state.Visible); n > 0 {
		m.contactList.Select(min(index, n-1))
	}
}

func (m *Model) selected() (models.Contact, bool) {
	item, ok := m.contactList.SelectedItem().(contactItem)
	if !ok {
		return models.Contact{}, false
	}
	return item.contact, true
}

func (m *Model) openForm() tea.Cmd {
	m.refresh()
	for i, f := range app.Fields {
		m.inputs[i].SetValue(m.state.Form.Get(f))
	}
	m.view = FormView
	return m.focusField(0)
}

func (m *Model) focusField(i int) tea.Cmd {
	for j := range m.inputs {
		m.inputs[j].Blur()
	}
	m.focus = i
	return m.inputs[i].Focus()
}

func (m *Model) authFieldCount() int {
	if m.signingUp {
		return 3
	}
	return 2
}

func (m *Model) focusAuth(i int) tea.Cmd {
	for j := range m.authInputs {
		m.authInputs[j].Blur()
	}
	m.authFocus = i
	return m.authInputs[i].Focus()
}

func (m *Model) resetAuth() {
	for i := range m.authInputs {
		m.authInputs[i].SetValue("")
	}
	m.signingUp = false
	m.focusAuth(authEmail)
}

func (m *Model) renderAuth() string {
	title := "Sign in"
	if m.signingUp {
		title = "Create account"
	}

	labels := []string{"Email", "Password", "Name"}
	var rows []string
	for i := 0; i < m.authFieldCount(); i++ {
		rows = append(rows, fmt.Sprintf("%-9s %s", labels[i], m.authInputs[i].View()))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.submit, m.keys.next, m.keys.toggle})
	return fmt.Sprintf("%s\n%s\n\n%s", styles.title.Render("rolodex · "+title), strings.Join(rows, "\n"), helpView)
}

func (m *Model) renderList() string {
	header := styles.title.Render("rolodex")
	if m.state.DisplayName != "" {
		header = fmt.Sprintf("%s  %s", header, styles.muted.Render(m.state.DisplayName))
	}

	if m.state.Phase == app.Loading {
		return fmt.Sprintf("%s\n\nLoading contacts...", header)
	}

	var body string
	switch {
	case len(m.state.Contacts) == 0:
		body = styles.help.Render("No contacts yet. Press n to add one.")
	case len(m.state.Visible) == 0:
		body = styles.help.Render("No contacts match your search.")
	default:
		body = m.contactList.View()
		if c, ok := m.selected(); ok {
			body = fmt.Sprintf("%s\n%s", body, renderCard(c, true))
		}
	}

	helpView := m.help.ShortHelpView([]key.Binding{
		m.keys.search, m.keys.create, m.keys.edit, m.keys.remove, m.keys.signOut, m.keys.quit,
	})
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", header, m.search.View(), body, helpView)
}

func (m *Model) renderForm() string {
	title := "New contact"
	if m.state.Form.Editing() {
		title = "Edit contact"
	}

	rows := []string{styles.title.Render(title)}
	for i, f := range app.Fields {
		label := f.String()
		if f == app.FieldName {
			label += "*"
		}
		rows = append(rows, fmt.Sprintf("%-9s %s", label, m.inputs[i].View()))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.next, m.keys.save, m.keys.back})
	return fmt.Sprintf("%s\n\n%s", styles.dialog.Render(strings.Join(rows, "\n")), helpView)
}

func (m *Model) renderConfirm() string {
	c, _ := m.selected()
	title := styles.warn.Render(fmt.Sprintf("Delete '%s'?", c.Name))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, renderCard(c, false), helpView)
}

func (m *Model) renderToast() string {
	if len(m.toasts) == 0 {
		return ""
	}
	t := m.toasts[len(m.toasts)-1]
	switch t.Kind {
	case notify.Success:
		return styles.ok.Render("✓ " + t.Text)
	case notify.Error:
		return styles.err.Render("✗ " + t.Text)
	default:
		return styles.help.Render(t.Text)
	}
}
