package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rolodex/internal/auth"
	"github.com/desertthunder/rolodex/internal/models"
	"github.com/desertthunder/rolodex/internal/repositories"
	"github.com/desertthunder/rolodex/internal/shared"
)

const maxBodyBytes = 1 << 20

type sessionKey struct{}

// APIHandler serves the JSON table API under /api.
//
// Every contact and profile route resolves the caller's session from the
// bearer token (or the session cookie) and scopes store calls to its user.
type APIHandler struct {
	auth     *auth.Service
	contacts *repositories.ContactRepository
	profiles *repositories.ProfileRepository
	cookies  Cookies
	limiter  *RateLimiter
	metrics  *Metrics
	logger   *log.Logger
}

// APIOptions configures [NewAPIHandler]. Limiter and Metrics may be nil.
type APIOptions struct {
	Cookies Cookies
	Limiter *RateLimiter
	Metrics *Metrics
	Logger  *log.Logger
}

// NewAPIHandler creates the API handler over db and the auth service.
func NewAPIHandler(db *sql.DB, svc *auth.Service, opts APIOptions) *APIHandler {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &APIHandler{
		auth:     svc,
		contacts: repositories.NewContactRepository(db),
		profiles: repositories.NewProfileRepository(db),
		cookies:  opts.Cookies,
		limiter:  opts.Limiter,
		metrics:  opts.Metrics,
		logger:   shared.WithLogger(logger, "component", "api"),
	}
}

// Routes returns the method-qualified patterns served by the API.
func (h *APIHandler) Routes() []string {
	return []string{
		"POST /api/auth/signup",
		"POST /api/auth/signin",
		"GET /api/auth/session",
		"POST /api/auth/signout",
		"GET /api/profile",
		"GET /api/contacts",
		"POST /api/contacts",
		"PATCH /api/contacts/{id}",
		"DELETE /api/contacts/{id}",
	}
}

// ServeHTTP dispatches on the pattern the mux matched.
func (h *APIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case "POST /api/auth/signup":
		h.limited(h.signUp)(w, r)
	case "POST /api/auth/signin":
		h.limited(h.signIn)(w, r)
	case "GET /api/auth/session":
		h.authed(h.session)(w, r)
	case "POST /api/auth/signout":
		h.signOut(w, r)
	case "GET /api/profile":
		h.authed(h.profile)(w, r)
	case "GET /api/contacts":
		h.authed(h.listContacts)(w, r)
	case "POST /api/contacts":
		h.authed(h.createContact)(w, r)
	case "PATCH /api/contacts/{id}":
		h.authed(h.updateContact)(w, r)
	case "DELETE /api/contacts/{id}":
		h.authed(h.deleteContact)(w, r)
	default:
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	}
}

func (h *APIHandler) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.limiter.Allow(ClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			h.fail(w, r, shared.ErrRateLimited)
			return
		}
		next(w, r)
	}
}

func (h *APIHandler) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := h.auth.Session(r.Context(), h.token(r))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, session)
		next(w, r.WithContext(ctx))
	}
}

func (h *APIHandler) token(r *http.Request) string {
	if t := BearerToken(r); t != "" {
		return t
	}
	return h.cookies.Token(r)
}

func (h *APIHandler) signUp(w http.ResponseWriter, r *http.Request) {
	var in auth.SignUpInput
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	session, err := h.auth.SignUp(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *APIHandler) signIn(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	session, err := h.auth.SignIn(r.Context(), in.Email, in.Password)
	h.metrics.SignIn("password", err == nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *APIHandler) session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r.Context()))
}

func (h *APIHandler) signOut(w http.ResponseWriter, r *http.Request) {
	token := h.token(r)
	if token == "" {
		h.fail(w, r, shared.ErrNotAuthenticated)
		return
	}
	if err := h.auth.SignOut(r.Context(), token); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) profile(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())
	name, err := h.profiles.FullName(r.Context(), s.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.Profile{UserID: s.UserID, FullName: name})
}

func (h *APIHandler) listContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.List(r.Context(), sessionFrom(r.Context()).UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

func (h *APIHandler) createContact(w http.ResponseWriter, r *http.Request) {
	var rec models.ContactRecord
	if err := decodeJSON(r, &rec); err != nil {
		h.fail(w, r, err)
		return
	}
	rec.ID = ""

	contact, err := h.contacts.Create(r.Context(), sessionFrom(r.Context()).UserID, rec)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, contact)
}

func (h *APIHandler) updateContact(w http.ResponseWriter, r *http.Request) {
	var rec models.ContactRecord
	if err := decodeJSON(r, &rec); err != nil {
		h.fail(w, r, err)
		return
	}
	rec.ID = r.PathValue("id")

	contact, err := h.contacts.Update(r.Context(), sessionFrom(r.Context()).UserID, rec)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

func (h *APIHandler) deleteContact(w http.ResponseWriter, r *http.Request) {
	if err := h.contacts.Delete(r.Context(), sessionFrom(r.Context()).UserID, r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail writes the error response for err. Unmapped errors are logged and
// reported as a generic 500.
func (h *APIHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	code := shared.ErrorCode(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "an internal error occurred"
	}
	writeError(w, status, code, msg)
}

func sessionFrom(ctx context.Context) *models.Session {
	s, _ := ctx.Value(sessionKey{}).(*models.Session)
	return s
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrContactNotFound),
		errors.Is(err, shared.ErrProfileNotFound),
		errors.Is(err, shared.ErrUserNotFound),
		errors.Is(err, shared.ErrOAuthDisabled):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, shared.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", shared.ErrInvalidInput, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"error": msg, "code": code})
}
