package web

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/desertthunder/rolodex/internal/models"
	"github.com/desertthunder/rolodex/internal/notify"
	"github.com/desertthunder/rolodex/internal/server"
)

const (
	flashCookie = "rolodex_flash"
	flashMaxAge = 60
)

type sessionKey struct{}

// SessionSource resolves a session token.
type SessionSource interface {
	Session(ctx context.Context, token string) (*models.Session, error)
}

// RequireSession lets requests with a live session cookie through and sends
// everyone else to /auth with 303. A lookup error counts as no session; a
// stale cookie is cleared on the way out.
func RequireSession(src SessionSource, cookies server.Cookies) server.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := cookies.Token(r)
			if token == "" {
				http.Redirect(w, r, "/auth", http.StatusSeeOther)
				return
			}

			session, err := src.Session(r.Context(), token)
			if err != nil || session == nil {
				cookies.ClearSession(w)
				http.Redirect(w, r, "/auth", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, session)))
		})
	}
}

// SessionFrom returns the session stored by [RequireSession], or nil.
func SessionFrom(ctx context.Context) *models.Session {
	s, _ := ctx.Value(sessionKey{}).(*models.Session)
	return s
}

// writeFlash stores toasts for the next page render.
func writeFlash(w http.ResponseWriter, secure bool, toasts []notify.Toast) {
	if len(toasts) == 0 {
		return
	}
	data, err := json.Marshal(toasts)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		MaxAge:   flashMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// readFlash returns and clears pending toasts. A malformed cookie is dropped.
func readFlash(w http.ResponseWriter, r *http.Request) []notify.Toast {
	cookie, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})

	data, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var toasts []notify.Toast
	if err := json.Unmarshal(data, &toasts); err != nil {
		return nil
	}
	return toasts
}

func urlQuery(s string) string { return url.QueryEscape(s) }
