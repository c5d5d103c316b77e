package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/rolodex/internal/auth"
	"github.com/desertthunder/rolodex/internal/models"
	"github.com/desertthunder/rolodex/internal/shared"
	tu "github.com/desertthunder/rolodex/internal/testing"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"
)

// fakeClient is an in-memory [Client] that publishes session changes like
// the API client does.
type fakeClient struct {
	*tu.MockContactStore
	*tu.MockProfileStore
	events     *auth.Broadcaster
	session    *models.Session
	signInErr  error
	signOutErr error
}

func newFakeClient(session *models.Session, contacts ...models.Contact) *fakeClient {
	return &fakeClient{
		MockContactStore: tu.NewMockContactStore(contacts...),
		MockProfileStore: &tu.MockProfileStore{Names: map[string]string{"u1": "Ana López"}},
		events:           auth.NewBroadcaster(),
		session:          session,
	}
}

func (f *fakeClient) Subscribe(fn func(auth.Event)) func() { return f.events.Subscribe(fn) }

func (f *fakeClient) Session(ctx context.Context) (*models.Session, error) {
	if f.session == nil {
		return nil, shared.ErrNotAuthenticated
	}
	return f.session, nil
}

func (f *fakeClient) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	f.session = &models.Session{Token: "t", UserID: "u1", Email: email}
	f.events.Publish(auth.Event{Kind: auth.SignedIn, Session: f.session})
	return f.session, nil
}

func (f *fakeClient) SignUp(ctx context.Context, in auth.SignUpInput) (*models.Session, error) {
	return f.SignIn(ctx, in.Email, in.Password)
}

func (f *fakeClient) SignOut(ctx context.Context) error {
	if f.signOutErr != nil {
		return f.signOutErr
	}
	f.session = nil
	f.events.Publish(auth.Event{Kind: auth.SignedOut})
	return nil
}

var _ Client = (*fakeClient)(nil)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	ctrlS = tea.KeyMsg{Type: tea.KeyCtrlS}
)

// press feeds msgs to the model and returns the last command.
func press(m *Model, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

// run executes cmd and feeds its message back, like the bubbletea runtime.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if msg := cmd(); msg != nil {
		m.Update(msg)
	}
}

// nextEvent delivers the next gate event, plus the contact load it triggers.
func nextEvent(t *testing.T, m *Model) {
	t.Helper()
	select {
	case msg := <-m.events:
		m.Update(msg)
		if msg.Kind() == MsgSessionStarted {
			run(t, m, m.load(msg.data.(models.Session)))
		}
	case <-time.After(time.Second):
		t.Fatal("expected a session event")
	}
}

func setupModel(t *testing.T, client *fakeClient) *Model {
	t.Helper()
	m := NewModel(context.Background(), client, language.English, shared.NewLogger(io.Discard))
	run(t, m, m.watch())
	nextEvent(t, m)
	return m
}

var (
	u1     = &models.Session{Token: "t", UserID: "u1", Email: "ana@example.com"}
	seeded = []models.Contact{
		{ID: "c2", UserID: "u1", Name: "Luis", Phone: models.Optional("600123")},
		{ID: "c1", UserID: "u1", Name: "Ana", Email: models.Optional("ana@x.com")},
	}
)

func names(contacts []models.Contact) []string {
	out := make([]string, len(contacts))
	for i, c := range contacts {
		out[i] = c.Name
	}
	return out
}

func TestGate(t *testing.T) {
	t.Run("no session shows sign in", func(t *testing.T) {
		m := setupModel(t, newFakeClient(nil))

		if m.view != AuthView {
			t.Fatalf("expected AuthView, got %d", m.view)
		}
		if m.unsubscribe == nil {
			t.Error("expected the gate subscription to be kept")
		}
		if !strings.Contains(m.View(), "Sign in") {
			t.Error("expected sign in title")
		}
	})

	t.Run("existing session loads the list", func(t *testing.T) {
		client := newFakeClient(u1, seeded...)
		m := setupModel(t, client)

		if m.view != ListView {
			t.Fatalf("expected ListView, got %d", m.view)
		}
		if diff := cmp.Diff([]string{"Luis", "Ana"}, names(m.state.Contacts)); diff != "" {
			t.Errorf("contacts mismatch (-want +got):\n%s", diff)
		}
		if m.state.DisplayName != "Ana López" {
			t.Errorf("expected profile name, got %q", m.state.DisplayName)
		}
	})

	t.Run("quit unsubscribes", func(t *testing.T) {
		client := newFakeClient(nil)
		m := setupModel(t, client)

		press(m, tea.KeyMsg{Type: tea.KeyCtrlC})
		if client.events.Len() != 0 {
			t.Errorf("expected no subscribers after quit, got %d", client.events.Len())
		}
	})
}

func TestAuthView(t *testing.T) {
	t.Run("sign in switches to the list", func(t *testing.T) {
		client := newFakeClient(nil, seeded...)
		m := setupModel(t, client)

		press(m, runes("ana@example.com"), tab, runes("correct-horse"))
		run(t, m, press(m, enter))
		nextEvent(t, m)

		if m.view != ListView {
			t.Fatalf("expected ListView, got %d", m.view)
		}
		if len(m.state.Contacts) != 2 {
			t.Errorf("expected 2 contacts, got %d", len(m.state.Contacts))
		}
	})

	t.Run("failure shows a toast", func(t *testing.T) {
		client := newFakeClient(nil)
		client.signInErr = fmt.Errorf("%w: %w", shared.ErrNotAuthenticated, shared.ErrInvalidCredentials)
		m := setupModel(t, client)

		press(m, runes("ana@example.com"), tab, runes("nope"))
		run(t, m, press(m, enter))

		if m.view != AuthView {
			t.Errorf("expected to stay on AuthView, got %d", m.view)
		}
		if !strings.Contains(m.View(), "Invalid email or password") {
			t.Errorf("expected toast, got %q", m.View())
		}
	})

	t.Run("rate limit has its own toast", func(t *testing.T) {
		client := newFakeClient(nil)
		client.signInErr = shared.ErrRateLimited
		m := setupModel(t, client)

		run(t, m, press(m, enter))
		if got := m.toasts[len(m.toasts)-1].Text; got != "Too many attempts, try again in a minute" {
			t.Errorf("unexpected toast %q", got)
		}
	})

	t.Run("toggle to sign up shows the name field", func(t *testing.T) {
		m := setupModel(t, newFakeClient(nil))

		press(m, tea.KeyMsg{Type: tea.KeyCtrlN})
		if !m.signingUp || m.authFieldCount() != 3 {
			t.Fatal("expected sign up mode")
		}
		if !strings.Contains(m.View(), "Create account") {
			t.Error("expected sign up title")
		}
	})
}

func TestListView(t *testing.T) {
	t.Run("search filters on every key", func(t *testing.T) {
		m := setupModel(t, newFakeClient(u1, seeded...))

		press(m, runes("/"), runes("6"))
		if diff := cmp.Diff([]string{"Luis"}, names(m.state.Visible)); diff != "" {
			t.Errorf("visible mismatch (-want +got):\n%s", diff)
		}

		press(m, runes("99"))
		if len(m.state.Visible) != 0 {
			t.Errorf("expected no matches, got %v", names(m.state.Visible))
		}
		if !strings.Contains(m.View(), "No contacts match your search.") {
			t.Error("expected no-match message")
		}

		press(m, esc)
		if m.search.Focused() {
			t.Error("expected esc to leave the search box")
		}
	})

	t.Run("empty list", func(t *testing.T) {
		m := setupModel(t, newFakeClient(u1))
		if !strings.Contains(m.View(), "No contacts yet.") {
			t.Error("expected empty state")
		}
	})

	t.Run("load failure keeps the list and toasts", func(t *testing.T) {
		client := newFakeClient(u1, seeded...)
		m := setupModel(t, client)

		client.ListErr = errors.New("network down")
		run(t, m, m.load(*u1))

		if len(m.state.Contacts) != 2 {
			t.Errorf("expected stale list to stay, got %d", len(m.state.Contacts))
		}
		if got := m.toasts[len(m.toasts)-1].Text; got != "Could not load your contacts" {
			t.Errorf("unexpected toast %q", got)
		}
	})
}

func TestFormView(t *testing.T) {
	t.Run("create requires a name", func(t *testing.T) {
		client := newFakeClient(u1, seeded...)
		m := setupModel(t, client)

		press(m, runes("n"))
		if m.view != FormView || m.state.Form.Editing() {
			t.Fatalf("expected create form, got view %d", m.view)
		}

		press(m, ctrlS)
		if m.view != FormView {
			t.Error("expected to stay in the form")
		}
		if got := m.toasts[len(m.toasts)-1].Text; got != "Name is required" {
			t.Errorf("unexpected toast %q", got)
		}
		if client.CallCount("create") != 0 {
			t.Error("expected no store call")
		}

		press(m, runes("Zoe"), tab, runes("zoe@x.com"))
		run(t, m, press(m, ctrlS))

		if m.view != ListView {
			t.Fatalf("expected ListView, got %d", m.view)
		}
		if diff := cmp.Diff([]string{"Zoe", "Luis", "Ana"}, names(m.state.Contacts)); diff != "" {
			t.Errorf("contacts mismatch (-want +got):\n%s", diff)
		}
		if got := m.toasts[len(m.toasts)-1].Text; got != "Contact created" {
			t.Errorf("unexpected toast %q", got)
		}
		if m.state.DialogOpen {
			t.Error("expected dialog closed")
		}
	})

	t.Run("edit seeds and updates", func(t *testing.T) {
		client := newFakeClient(u1, seeded...)
		m := setupModel(t, client)

		press(m, runes("e"))
		if m.view != FormView || m.state.Form.ID != "c2" {
			t.Fatalf("expected edit form for c2, got view %d form %+v", m.view, m.state.Form)
		}
		if got := m.inputs[2].Value(); got != "600123" {
			t.Errorf("expected phone seeded, got %q", got)
		}

		press(m, runes(" Pérez"))
		run(t, m, press(m, ctrlS))

		if m.state.Contacts[0].Name != "Luis Pérez" {
			t.Errorf("expected update, got %q", m.state.Contacts[0].Name)
		}
		if client.CallCount("update") != 1 {
			t.Errorf("expected one update, got %d", client.CallCount("update"))
		}
	})

	t.Run("enter walks the fields and saves on the last", func(t *testing.T) {
		client := newFakeClient(u1)
		m := setupModel(t, client)

		press(m, runes("n"), runes("Zoe"))
		for range len(m.inputs) - 1 {
			press(m, enter)
		}
		if m.focus != len(m.inputs)-1 {
			t.Fatalf("expected focus on notes, got %d", m.focus)
		}
		run(t, m, press(m, enter))
		if client.CallCount("create") != 1 {
			t.Error("expected save on enter in the last field")
		}
	})

	t.Run("save failure toasts and closes", func(t *testing.T) {
		client := newFakeClient(u1, seeded...)
		client.SaveErr = errors.New("boom")
		m := setupModel(t, client)

		press(m, runes("n"), runes("Zoe"))
		run(t, m, press(m, ctrlS))

		if m.view != ListView || m.state.DialogOpen {
			t.Error("expected dialog closed after failure")
		}
		if got := m.toasts[len(m.toasts)-1].Text; got != "Could not save the contact" {
			t.Errorf("unexpected toast %q", got)
		}
	})

	t.Run("esc cancels", func(t *testing.T) {
		m := setupModel(t, newFakeClient(u1, seeded...))

		press(m, runes("n"), runes("Zoe"), esc)
		if m.view != ListView || m.state.DialogOpen {
			t.Error("expected dialog closed")
		}
		if len(m.state.Contacts) != 2 {
			t.Error("expected nothing saved")
		}
	})
}

func TestConfirmView(t *testing.T) {
	t.Run("yes deletes", func(t *testing.T) {
		m := setupModel(t, newFakeClient(u1, seeded...))

		press(m, runes("d"))
		if m.view != ConfirmView {
			t.Fatalf("expected ConfirmView, got %d", m.view)
		}
		if !strings.Contains(m.View(), "Delete 'Luis'?") {
			t.Error("expected confirm prompt")
		}

		run(t, m, press(m, runes("y")))
		if diff := cmp.Diff([]string{"Ana"}, names(m.state.Contacts)); diff != "" {
			t.Errorf("contacts mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("no keeps the contact", func(t *testing.T) {
		client := newFakeClient(u1, seeded...)
		m := setupModel(t, client)

		press(m, runes("d"), runes("n"))
		if m.view != ListView || client.CallCount("delete") != 0 {
			t.Error("expected delete to be cancelled")
		}
	})

	t.Run("failure toasts", func(t *testing.T) {
		client := newFakeClient(u1, seeded...)
		client.DelErr = errors.New("boom")
		m := setupModel(t, client)

		press(m, runes("d"))
		run(t, m, press(m, runes("y")))
		if got := m.toasts[len(m.toasts)-1].Text; got != "Could not delete the contact" {
			t.Errorf("unexpected toast %q", got)
		}
	})
}

func TestSignOut(t *testing.T) {
	t.Run("returns to sign in through the gate", func(t *testing.T) {
		client := newFakeClient(u1, seeded...)
		m := setupModel(t, client)

		run(t, m, press(m, runes("o")))
		if m.view != ListView {
			t.Fatalf("expected the controller not to redirect, got %d", m.view)
		}
		nextEvent(t, m)
		if m.view != AuthView {
			t.Errorf("expected AuthView, got %d", m.view)
		}
	})

	t.Run("failure stays and toasts", func(t *testing.T) {
		client := newFakeClient(u1, seeded...)
		client.signOutErr = errors.New("offline")
		m := setupModel(t, client)

		run(t, m, press(m, runes("o")))
		if m.view != ListView {
			t.Errorf("expected ListView, got %d", m.view)
		}
		if got := m.toasts[len(m.toasts)-1].Text; got != "Could not sign out" {
			t.Errorf("unexpected toast %q", got)
		}
	})
}

func TestCardLines(t *testing.T) {
	c := models.Contact{
		Name:    "Ana",
		Phone:   models.Optional("600"),
		City:    models.Optional("Sin ciudad"),
		Address: new(string),
	}

	lines := cardLines(c)
	if len(lines) != 3 {
		t.Fatalf("expected name, phone and city, got %q", lines)
	}
	if !strings.HasSuffix(lines[1], "600") || !strings.HasSuffix(lines[2], "Sin ciudad") {
		t.Errorf("unexpected lines %q", lines)
	}

	if got := cardLines(models.Contact{Name: "Ana", Address: models.Optional(" ")}); len(got) != 2 {
		t.Errorf("expected whitespace address to be shown, got %q", got)
	}

	item := contactItem{contact: models.Contact{Name: "Luis", Email: models.Optional("l@x.com"), Phone: models.Optional("600")}}
	if got := item.Description(); got != "l@x.com • 600" {
		t.Errorf("unexpected description %q", got)
	}
}
