package web

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/rolodex/internal/auth"
	"github.com/desertthunder/rolodex/internal/models"
	"github.com/desertthunder/rolodex/internal/notify"
	"github.com/desertthunder/rolodex/internal/repositories"
	"github.com/desertthunder/rolodex/internal/server"
	"github.com/desertthunder/rolodex/internal/shared"
	"github.com/google/go-cmp/cmp"
)

const cookieName = "rolodex_session"

type fixture struct {
	router http.Handler
	auth   *auth.Service
	db     *sql.DB
}

func setup(t *testing.T, opts Options) *fixture {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := shared.NewLogger(io.Discard)
	svc := auth.NewService(db, time.Hour, logger)

	opts.Cookies = server.Cookies{Name: cookieName}
	opts.Logger = logger
	router := server.NewBasicRouter()
	router.Handler(New(db, svc, opts))
	return &fixture{router: router, auth: svc, db: db}
}

func (f *fixture) signUp(t *testing.T, email, name string) *models.Session {
	t.Helper()
	s, err := f.auth.SignUp(context.Background(), auth.SignUpInput{Email: email, Password: "correct-horse", FullName: name})
	if err != nil {
		t.Fatalf("failed to sign up: %v", err)
	}
	return s
}

func (f *fixture) get(t *testing.T, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) post(t *testing.T, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "192.0.2.1:1234"
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(s *models.Session) *http.Cookie {
	return &http.Cookie{Name: cookieName, Value: s.Token}
}

func cookieFrom(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("Location"); got != want {
		t.Fatalf("expected redirect to %s, got %s", want, got)
	}
}

func TestRequireSession(t *testing.T) {
	t.Run("no cookie redirects to auth", func(t *testing.T) {
		f := setup(t, Options{})
		assertRedirect(t, f.get(t, "/"), "/auth")
	})

	t.Run("unknown token redirects and clears cookie", func(t *testing.T) {
		f := setup(t, Options{})
		rec := f.get(t, "/", &http.Cookie{Name: cookieName, Value: "stale"})
		assertRedirect(t, rec, "/auth")
		if c := cookieFrom(rec, cookieName); c == nil || c.MaxAge >= 0 {
			t.Errorf("expected session cookie to be cleared, got %+v", c)
		}
	})

	t.Run("writes are gated too", func(t *testing.T) {
		f := setup(t, Options{})
		assertRedirect(t, f.post(t, "/contacts", url.Values{"name": {"Ana"}}), "/auth")
	})

	t.Run("live session passes", func(t *testing.T) {
		f := setup(t, Options{})
		s := f.signUp(t, "ana@example.com", "Ana López")

		rec := f.get(t, "/", sessionCookie(s))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Ana López") {
			t.Error("expected display name in header")
		}
	})
}

func TestContactsPage(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, f *fixture, s *models.Session, recs ...models.ContactRecord) []*models.Contact {
		t.Helper()
		repo := repositories.NewContactRepository(f.db)
		var out []*models.Contact
		for _, rec := range recs {
			c, err := repo.Create(ctx, s.UserID, rec)
			if err != nil {
				t.Fatalf("failed to seed contact: %v", err)
			}
			out = append(out, c)
		}
		return out
	}

	t.Run("falls back to email without profile", func(t *testing.T) {
		f := setup(t, Options{})
		s := f.signUp(t, "bob@example.com", "")

		rec := f.get(t, "/", sessionCookie(s))
		if !strings.Contains(rec.Body.String(), "bob@example.com") {
			t.Error("expected email as display name")
		}
		if !strings.Contains(rec.Body.String(), "No contacts yet.") {
			t.Error("expected empty state")
		}
	})

	t.Run("renders only present fields", func(t *testing.T) {
		f := setup(t, Options{})
		s := f.signUp(t, "ana@example.com", "")
		seed(t, f, s, models.ContactRecord{Name: "Luis", Phone: models.Optional("555-0100")})

		body := f.get(t, "/", sessionCookie(s)).Body.String()
		if !strings.Contains(body, `<dd class="phone">555-0100</dd>`) {
			t.Error("expected phone to render")
		}
		for _, absent := range []string{`class="email"`, `class="address"`, `class="city"`} {
			if strings.Contains(body, absent) {
				t.Errorf("expected %s to be omitted", absent)
			}
		}
	})

	t.Run("query filters server-side", func(t *testing.T) {
		f := setup(t, Options{})
		s := f.signUp(t, "ana@example.com", "")
		seed(t, f, s,
			models.ContactRecord{Name: "Ana", Email: models.Optional("ana@x.com")},
			models.ContactRecord{Name: "Luis", Phone: models.Optional("600123")},
		)

		body := f.get(t, "/?q=600", sessionCookie(s)).Body.String()
		if !strings.Contains(body, `<article class="card" data-name="Luis"`) {
			t.Errorf("expected Luis to be shown, got %s", body)
		}
		if !strings.Contains(body, `<article class="card" hidden data-name="Ana"`) {
			t.Errorf("expected Ana to be rendered hidden for client-side search, got %s", body)
		}

		body = f.get(t, "/?q=999", sessionCookie(s)).Body.String()
		if !strings.Contains(body, `id="no-matches">`) {
			t.Error("expected visible no-matches message")
		}
	})

	t.Run("new opens an empty dialog", func(t *testing.T) {
		f := setup(t, Options{})
		s := f.signUp(t, "ana@example.com", "")

		body := f.get(t, "/?new=1", sessionCookie(s)).Body.String()
		if !strings.Contains(body, "<dialog open") || !strings.Contains(body, "New contact</h2>") {
			t.Error("expected create dialog")
		}
		if strings.Contains(body, `name="id"`) {
			t.Error("expected no id field when creating")
		}
		if strings.Contains(body, `name="city"`) {
			t.Error("expected no city field")
		}
	})

	t.Run("edit seeds the dialog", func(t *testing.T) {
		f := setup(t, Options{})
		s := f.signUp(t, "ana@example.com", "")
		cs := seed(t, f, s, models.ContactRecord{Name: "Luis", Notes: models.Optional("old friend")})

		body := f.get(t, "/?edit="+cs[0].ID, sessionCookie(s)).Body.String()
		for _, want := range []string{`name="id" value="` + cs[0].ID + `"`, `value="Luis"`, "old friend</textarea>", "Edit contact"} {
			if !strings.Contains(body, want) {
				t.Errorf("expected dialog to contain %q", want)
			}
		}
	})

	t.Run("edit of another user's contact opens nothing", func(t *testing.T) {
		f := setup(t, Options{})
		ana := f.signUp(t, "ana@example.com", "")
		bob := f.signUp(t, "bob@example.com", "")
		cs := seed(t, f, ana, models.ContactRecord{Name: "Secret"})

		body := f.get(t, "/?edit="+cs[0].ID, sessionCookie(bob)).Body.String()
		if strings.Contains(body, "<dialog") || strings.Contains(body, "Secret") {
			t.Error("expected other user's contact to stay hidden")
		}
	})
}

func TestContactWrites(t *testing.T) {
	ctx := context.Background()

	list := func(t *testing.T, f *fixture, s *models.Session) []models.Contact {
		t.Helper()
		cs, err := repositories.NewContactRepository(f.db).List(ctx, s.UserID)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		return cs
	}

	t.Run("create then toast on next page", func(t *testing.T) {
		f := setup(t, Options{Locale: "en"})
		s := f.signUp(t, "ana@example.com", "")

		rec := f.post(t, "/contacts", url.Values{"name": {"Ana"}, "email": {""}, "phone": {"600"}}, sessionCookie(s))
		assertRedirect(t, rec, "/")

		cs := list(t, f, s)
		if len(cs) != 1 || cs[0].Name != "Ana" || cs[0].Email != nil || models.Value(cs[0].Phone) != "600" {
			t.Fatalf("unexpected contacts %+v", cs)
		}

		flash := cookieFrom(rec, flashCookie)
		if flash == nil {
			t.Fatal("expected flash cookie")
		}
		body := f.get(t, "/", sessionCookie(s), flash).Body.String()
		if !strings.Contains(body, "Contact created") {
			t.Error("expected success toast")
		}
	})

	t.Run("update keeps the query", func(t *testing.T) {
		f := setup(t, Options{})
		s := f.signUp(t, "ana@example.com", "")
		c, _ := repositories.NewContactRepository(f.db).Create(ctx, s.UserID, models.ContactRecord{Name: "Ana"})

		rec := f.post(t, "/contacts", url.Values{"id": {c.ID}, "name": {"Ana María"}, "q": {"an"}}, sessionCookie(s))
		assertRedirect(t, rec, "/?q=an")

		if diff := cmp.Diff("Ana María", list(t, f, s)[0].Name); diff != "" {
			t.Errorf("name mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty name returns to the dialog", func(t *testing.T) {
		f := setup(t, Options{Locale: "es"})
		s := f.signUp(t, "ana@example.com", "")

		rec := f.post(t, "/contacts", url.Values{"name": {""}}, sessionCookie(s))
		assertRedirect(t, rec, "/?new=1")
		if len(list(t, f, s)) != 0 {
			t.Error("expected nothing saved")
		}

		body := f.get(t, "/?new=1", sessionCookie(s), cookieFrom(rec, flashCookie)).Body.String()
		if !strings.Contains(body, "El nombre es obligatorio") {
			t.Error("expected localized name-required toast")
		}
	})

	t.Run("updating another user's contact fails with a toast", func(t *testing.T) {
		f := setup(t, Options{Locale: "en"})
		ana := f.signUp(t, "ana@example.com", "")
		bob := f.signUp(t, "bob@example.com", "")
		c, _ := repositories.NewContactRepository(f.db).Create(ctx, ana.UserID, models.ContactRecord{Name: "Ana"})

		rec := f.post(t, "/contacts", url.Values{"id": {c.ID}, "name": {"Hijacked"}}, sessionCookie(bob))
		assertRedirect(t, rec, "/")
		if list(t, f, ana)[0].Name != "Ana" {
			t.Error("expected contact unchanged")
		}

		toasts := readFlash(httptest.NewRecorder(), requestWith(cookieFrom(rec, flashCookie)))
		want := []notify.Toast{{Kind: notify.Error, Text: "Could not save the contact"}}
		if diff := cmp.Diff(want, toasts); diff != "" {
			t.Errorf("toasts mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("delete", func(t *testing.T) {
		f := setup(t, Options{})
		s := f.signUp(t, "ana@example.com", "")
		c, _ := repositories.NewContactRepository(f.db).Create(ctx, s.UserID, models.ContactRecord{Name: "Ana"})

		assertRedirect(t, f.post(t, "/contacts/"+c.ID+"/delete", nil, sessionCookie(s)), "/")
		if len(list(t, f, s)) != 0 {
			t.Error("expected contact deleted")
		}

		rec := f.post(t, "/contacts/"+c.ID+"/delete", nil, sessionCookie(s))
		assertRedirect(t, rec, "/")
		if cookieFrom(rec, flashCookie) == nil {
			t.Error("expected error toast for a missing contact")
		}
	})

	t.Run("sign out clears the cookie and the gate takes over", func(t *testing.T) {
		f := setup(t, Options{})
		s := f.signUp(t, "ana@example.com", "")

		rec := f.post(t, "/signout", nil, sessionCookie(s))
		assertRedirect(t, rec, "/")
		if c := cookieFrom(rec, cookieName); c == nil || c.MaxAge >= 0 {
			t.Error("expected session cookie cleared")
		}
		assertRedirect(t, f.get(t, "/", sessionCookie(s)), "/auth")
	})
}

func requestWith(cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}
	return req
}

func TestAuthPages(t *testing.T) {
	t.Run("signed in users skip the auth page", func(t *testing.T) {
		f := setup(t, Options{})
		s := f.signUp(t, "ana@example.com", "")
		assertRedirect(t, f.get(t, "/auth", sessionCookie(s)), "/")
	})

	t.Run("modes and oauth button", func(t *testing.T) {
		f := setup(t, Options{OAuthEnabled: true})

		body := f.get(t, "/auth").Body.String()
		if !strings.Contains(body, `action="/auth/signin"`) || !strings.Contains(body, `href="/auth/oauth"`) {
			t.Error("expected sign-in form with oauth link")
		}

		body = f.get(t, "/auth?mode=signup").Body.String()
		if !strings.Contains(body, `action="/auth/signup"`) {
			t.Error("expected sign-up form")
		}
	})

	t.Run("oauth failure shows a toast", func(t *testing.T) {
		f := setup(t, Options{})
		req := httptest.NewRequest(http.MethodGet, "/auth?error=oauth_failed", nil)
		req.Header.Set("Accept-Language", "es-MX,es;q=0.9")
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)

		if !strings.Contains(rec.Body.String(), "Falló el inicio de sesión externo") {
			t.Error("expected Spanish oauth toast from Accept-Language")
		}
	})

	t.Run("sign in sets the session cookie", func(t *testing.T) {
		f := setup(t, Options{})
		f.signUp(t, "ana@example.com", "")

		rec := f.post(t, "/auth/signin", url.Values{"email": {"ANA@example.com"}, "password": {"correct-horse"}})
		assertRedirect(t, rec, "/")
		c := cookieFrom(rec, cookieName)
		if c == nil || c.Value == "" || !c.HttpOnly {
			t.Fatalf("expected HttpOnly session cookie, got %+v", c)
		}
		if f.get(t, "/", c).Code != http.StatusOK {
			t.Error("expected new cookie to open the list")
		}
	})

	t.Run("bad credentials", func(t *testing.T) {
		f := setup(t, Options{Locale: "en"})
		f.signUp(t, "ana@example.com", "")

		rec := f.post(t, "/auth/signin", url.Values{"email": {"ana@example.com"}, "password": {"nope-nope"}})
		assertRedirect(t, rec, "/auth")
		if cookieFrom(rec, cookieName) != nil {
			t.Error("expected no session cookie")
		}
		toasts := readFlash(httptest.NewRecorder(), requestWith(cookieFrom(rec, flashCookie)))
		if len(toasts) != 1 || toasts[0].Text != "Invalid email or password" {
			t.Errorf("unexpected toasts %+v", toasts)
		}
	})

	t.Run("sign up", func(t *testing.T) {
		f := setup(t, Options{Locale: "en"})

		rec := f.post(t, "/auth/signup", url.Values{"email": {"new@example.com"}, "password": {"correct-horse"}, "full_name": {"Nuevo"}})
		assertRedirect(t, rec, "/")
		body := f.get(t, "/", cookieFrom(rec, cookieName)).Body.String()
		if !strings.Contains(body, "Nuevo") {
			t.Error("expected profile name after sign up")
		}

		rec = f.post(t, "/auth/signup", url.Values{"email": {"new@example.com"}, "password": {"correct-horse"}})
		assertRedirect(t, rec, "/auth?mode=signup")
		toasts := readFlash(httptest.NewRecorder(), requestWith(cookieFrom(rec, flashCookie)))
		if len(toasts) != 1 || toasts[0].Text != "That email is already registered" {
			t.Errorf("unexpected toasts %+v", toasts)
		}
	})

	t.Run("rate limited", func(t *testing.T) {
		f := setup(t, Options{Locale: "en", Limiter: server.NewRateLimiter(1)})

		f.post(t, "/auth/signin", url.Values{"email": {"x@example.com"}, "password": {"whatever1"}})
		rec := f.post(t, "/auth/signin", url.Values{"email": {"x@example.com"}, "password": {"whatever1"}})
		toasts := readFlash(httptest.NewRecorder(), requestWith(cookieFrom(rec, flashCookie)))
		if len(toasts) != 1 || toasts[0].Text != "Too many attempts, try again in a minute" {
			t.Errorf("unexpected toasts %+v", toasts)
		}
	})
}

func TestFlash(t *testing.T) {
	rec := httptest.NewRecorder()
	want := []notify.Toast{{Kind: notify.Success, Text: "Contacto creado"}, {Kind: notify.Error, Text: "¡Ay!"}}
	writeFlash(rec, false, want)

	got := readFlash(httptest.NewRecorder(), requestWith(cookieFrom(rec, flashCookie)))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("flash mismatch (-want +got):\n%s", diff)
	}

	rec = httptest.NewRecorder()
	writeFlash(rec, false, nil)
	if cookieFrom(rec, flashCookie) != nil {
		t.Error("expected no cookie for no toasts")
	}

	bad := requestWith(&http.Cookie{Name: flashCookie, Value: "%%%"})
	if got := readFlash(httptest.NewRecorder(), bad); got != nil {
		t.Errorf("expected malformed flash to be dropped, got %+v", got)
	}
}
