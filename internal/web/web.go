// Package web serves the browser UI: a server-rendered contact list with
// search, a modal create/edit form, card actions and the sign-in screen.
//
// Each request builds its own [app.Controller] over the SQLite repositories,
// so the browser and the terminal UI share one set of flows. Toasts raised by
// a POST survive the redirect in a short-lived flash cookie.
//
// Routes
//
//	GET  /                      contact list (gated; ?q=, ?new=1, ?edit={id})
//	GET  /auth                  sign-in and sign-up forms
//	POST /auth/signin           email/password sign-in
//	POST /auth/signup           account creation
//	POST /signout               end the session
//	POST /contacts              create or update from the dialog
//	POST /contacts/{id}/delete  delete one contact
package web

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rolodex/internal/app"
	"github.com/desertthunder/rolodex/internal/auth"
	"github.com/desertthunder/rolodex/internal/notify"
	"github.com/desertthunder/rolodex/internal/repositories"
	"github.com/desertthunder/rolodex/internal/server"
	"github.com/desertthunder/rolodex/internal/shared"
	"golang.org/x/text/language"
)

// Options configures [New].
type Options struct {
	Cookies server.Cookies
	Limiter *server.RateLimiter
	Metrics *server.Metrics
	// Locale forces the toast language; empty follows Accept-Language.
	Locale       string
	OAuthEnabled bool
	Logger       *log.Logger
}

// Handler is the browser UI. Implements [server.Handler].
type Handler struct {
	auth     *auth.Service
	contacts app.ContactStore
	profiles app.ProfileStore
	cookies  server.Cookies
	limiter  *server.RateLimiter
	metrics  *server.Metrics
	locale   string
	oauth    bool
	pages    *pages
	logger   *log.Logger
}

// New creates the browser UI over db and the auth service.
func New(db *sql.DB, svc *auth.Service, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Handler{
		auth:     svc,
		contacts: repositories.NewContactRepository(db),
		profiles: repositories.NewProfileRepository(db),
		cookies:  opts.Cookies,
		limiter:  opts.Limiter,
		metrics:  opts.Metrics,
		locale:   opts.Locale,
		oauth:    opts.OAuthEnabled,
		pages:    mustParsePages(),
		logger:   shared.WithLogger(logger, "component", "web"),
	}
}

// Routes returns the browser UI patterns.
func (h *Handler) Routes() []string {
	return []string{
		"GET /{$}",
		"GET /auth",
		"POST /auth/signin",
		"POST /auth/signup",
		"POST /signout",
		"POST /contacts",
		"POST /contacts/{id}/delete",
	}
}

// ServeHTTP dispatches on the matched pattern. Contact routes are gated by
// [RequireSession].
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gate := RequireSession(h.auth, h.cookies)

	switch r.Pattern {
	case "GET /{$}":
		gate(http.HandlerFunc(h.index)).ServeHTTP(w, r)
	case "POST /contacts":
		gate(http.HandlerFunc(h.save)).ServeHTTP(w, r)
	case "POST /contacts/{id}/delete":
		gate(http.HandlerFunc(h.delete)).ServeHTTP(w, r)
	case "POST /signout":
		gate(http.HandlerFunc(h.signOut)).ServeHTTP(w, r)
	case "GET /auth":
		h.authPage(w, r)
	case "POST /auth/signin":
		h.signIn(w, r)
	case "POST /auth/signup":
		h.signUp(w, r)
	default:
		http.NotFound(w, r)
	}
}

// tag picks the toast language for r.
func (h *Handler) tag(r *http.Request) language.Tag {
	if h.locale != "" {
		return notify.Match(h.locale)
	}
	return notify.Match(r.Header.Get("Accept-Language"))
}

// controller builds a per-request controller bound to the session's user.
func (h *Handler) controller(r *http.Request, queue *notify.Queue) *app.Controller {
	token := h.cookies.Token(r)
	ctrl := app.NewController(app.Options{
		Contacts: h.contacts,
		Profiles: h.profiles,
		Notifier: queue,
		SignOut: app.SignOutFunc(func(ctx context.Context) error {
			return h.auth.SignOut(ctx, token)
		}),
		Logger: h.logger,
	})
	ctrl.Bind(*SessionFrom(r.Context()))
	return ctrl
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	queue := notify.NewQueue(h.tag(r))
	for _, t := range readFlash(w, r) {
		queue.Push(t)
	}

	ctrl := h.controller(r, queue)
	_ = ctrl.Load(r.Context(), *SessionFrom(r.Context()))

	q := r.URL.Query()
	ctrl.SetQuery(q.Get("q"))
	switch {
	case q.Get("new") != "":
		ctrl.OpenCreate()
	case q.Get("edit") != "":
		if c, ok := ctrl.Find(q.Get("edit")); ok {
			ctrl.OpenEdit(c)
		}
	}

	h.render(w, r, "contacts", contactsPage{
		layout: layout{Title: "Contacts", Lang: h.tag(r).String(), Toasts: queue.Drain()},
		State:  ctrl.Snapshot(),
		Fields: app.Fields,
	})
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	queue := notify.NewQueue(h.tag(r))
	ctrl := h.controller(r, queue)

	form := app.Form{ID: strings.TrimSpace(r.PostFormValue("id"))}
	for _, f := range app.Fields {
		form.Set(f, r.PostFormValue(f.String()))
	}

	back := "/"
	if q := r.PostFormValue("q"); q != "" {
		back = "/?q=" + urlQuery(q)
	}

	rec, err := form.Submit()
	if err != nil {
		queue.Notify(notify.Error, notify.ContactNameRequired)
		writeFlash(w, h.cookies.Secure, queue.Drain())
		if form.Editing() {
			http.Redirect(w, r, "/?edit="+urlQuery(form.ID), http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/?new=1", http.StatusSeeOther)
		return
	}

	_ = ctrl.Save(r.Context(), rec)
	writeFlash(w, h.cookies.Secure, queue.Drain())
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	queue := notify.NewQueue(h.tag(r))
	ctrl := h.controller(r, queue)

	_ = ctrl.Delete(r.Context(), r.PathValue("id"))
	writeFlash(w, h.cookies.Secure, queue.Drain())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	queue := notify.NewQueue(h.tag(r))
	ctrl := h.controller(r, queue)

	if err := ctrl.SignOut(r.Context()); err != nil {
		writeFlash(w, h.cookies.Secure, queue.Drain())
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.cookies.ClearSession(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) authPage(w http.ResponseWriter, r *http.Request) {
	if s, err := h.auth.Session(r.Context(), h.cookies.Token(r)); err == nil && s != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	queue := notify.NewQueue(h.tag(r))
	for _, t := range readFlash(w, r) {
		queue.Push(t)
	}
	if r.URL.Query().Get("error") == "oauth_failed" {
		queue.Notify(notify.Error, notify.OAuthFailed)
	}

	mode := "signin"
	if r.URL.Query().Get("mode") == "signup" {
		mode = "signup"
	}

	h.render(w, r, "auth", authPage{
		layout: layout{Title: "Sign in", Lang: h.tag(r).String(), Toasts: queue.Drain()},
		Mode:   mode,
		OAuth:  h.oauth,
	})
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	queue := notify.NewQueue(h.tag(r))
	if !h.limiter.Allow(server.ClientIP(r)) {
		queue.Notify(notify.Error, notify.RateLimited)
		writeFlash(w, h.cookies.Secure, queue.Drain())
		http.Redirect(w, r, "/auth", http.StatusSeeOther)
		return
	}

	session, err := h.auth.SignIn(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	h.metrics.SignIn("password", err == nil)
	if err != nil {
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			h.logger.Error("sign in failed", "error", err)
		}
		queue.Notify(notify.Error, notify.SignInFailed)
		writeFlash(w, h.cookies.Secure, queue.Drain())
		http.Redirect(w, r, "/auth", http.StatusSeeOther)
		return
	}

	h.cookies.SetSession(w, session)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	queue := notify.NewQueue(h.tag(r))
	back := "/auth?mode=signup"
	if !h.limiter.Allow(server.ClientIP(r)) {
		queue.Notify(notify.Error, notify.RateLimited)
		writeFlash(w, h.cookies.Secure, queue.Drain())
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	session, err := h.auth.SignUp(r.Context(), auth.SignUpInput{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		FullName: r.PostFormValue("full_name"),
	})
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrEmailTaken):
			queue.Notify(notify.Error, notify.EmailTaken)
		case errors.Is(err, shared.ErrInvalidInput):
			queue.Notify(notify.Error, notify.SignUpFailed)
		default:
			h.logger.Error("sign up failed", "error", err)
			queue.Notify(notify.Error, notify.SignUpFailed)
		}
		writeFlash(w, h.cookies.Secure, queue.Drain())
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	h.cookies.SetSession(w, session)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

var (
	_ server.Handler   = (*Handler)(nil)
	_ app.ContactStore = (*repositories.ContactRepository)(nil)
	_ app.ProfileStore = (*repositories.ProfileRepository)(nil)
)
