package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rolodex/internal/auth"
	"github.com/desertthunder/rolodex/internal/shared"
	"golang.org/x/oauth2"
)

const (
	stateCookie  = "rolodex_oauth_state"
	stateTTL     = 10 * time.Minute
	oauthFailure = "/auth?error=oauth_failed"
)

// UserInfo is the subset of the provider's userinfo response used to sign in.
type UserInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// OAuthHandler signs browser users in through an OAuth2 authorization-code
// provider. Implements the Handler interface for registration with a Router.
//
// GET /auth/oauth stores a random state in a short-lived cookie and redirects
// to the provider. GET /auth/oauth/callback checks the state, exchanges the
// code, reads the userinfo endpoint and starts a session for its email.
type OAuthHandler struct {
	config      *oauth2.Config
	userInfoURL string
	auth        *auth.Service
	cookies     Cookies
	metrics     *Metrics
	logger      *log.Logger
}

// NewOAuthHandler creates a handler for the provider in conf. The redirect
// URL is baseURL + "/auth/oauth/callback".
func NewOAuthHandler(conf shared.OAuthConfig, baseURL string, svc *auth.Service, cookies Cookies, metrics *Metrics, logger *log.Logger) *OAuthHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &OAuthHandler{
		config: &oauth2.Config{
			ClientID:     conf.ClientID,
			ClientSecret: conf.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  conf.AuthURL,
				TokenURL: conf.TokenURL,
			},
			RedirectURL: baseURL + "/auth/oauth/callback",
			Scopes:      conf.Scopes,
		},
		userInfoURL: conf.UserInfoURL,
		auth:        svc,
		cookies:     cookies,
		metrics:     metrics,
		logger:      shared.WithLogger(logger, "component", "oauth", "provider", conf.Provider),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{"GET /auth/oauth", "GET /auth/oauth/callback"}
}

// ServeHTTP starts the flow or handles the provider callback.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Pattern == "GET /auth/oauth/callback" {
		h.callback(w, r)
		return
	}
	h.begin(w, r)
}

func (h *OAuthHandler) begin(w http.ResponseWriter, r *http.Request) {
	state, err := auth.NewToken()
	if err != nil {
		h.logger.Error("failed to create oauth state", "error", err)
		http.Redirect(w, r, oauthFailure, http.StatusSeeOther)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth/oauth",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.config.AuthCodeURL(state), http.StatusFound)
}

func (h *OAuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/auth/oauth", MaxAge: -1})

	info, err := h.identify(r)
	if err != nil {
		h.logger.Warn("oauth sign-in failed", "error", err)
		h.metrics.SignIn("oauth", false)
		http.Redirect(w, r, oauthFailure, http.StatusSeeOther)
		return
	}

	session, err := h.auth.SignInExternal(r.Context(), shared.NormalizeEmail(info.Email), info.Name)
	h.metrics.SignIn("oauth", err == nil)
	if err != nil {
		h.logger.Error("failed to start oauth session", "error", err)
		http.Redirect(w, r, oauthFailure, http.StatusSeeOther)
		return
	}

	h.cookies.SetSession(w, session)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// identify validates the callback and resolves the provider identity.
func (h *OAuthHandler) identify(r *http.Request) (*UserInfo, error) {
	q := r.URL.Query()

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" {
		return nil, fmt.Errorf("%w: missing state cookie", shared.ErrAuthFailed)
	}
	if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(q.Get("state"))) != 1 {
		return nil, fmt.Errorf("%w: invalid state parameter", shared.ErrAuthFailed)
	}

	code := q.Get("code")
	if code == "" {
		return nil, fmt.Errorf("%w: %s - %s", shared.ErrAuthFailed, q.Get("error"), q.Get("error_description"))
	}

	token, err := h.config.Exchange(r.Context(), code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	return h.userInfo(r.Context(), token)
}

func (h *OAuthHandler) userInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo returned status %d", shared.ErrAuthFailed, resp.StatusCode)
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("%w: userinfo has no email", shared.ErrAuthFailed)
	}
	return &info, nil
}
