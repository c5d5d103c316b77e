// HTTP client for the rolodex JSON API
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/desertthunder/rolodex/internal/auth"
	"github.com/desertthunder/rolodex/internal/models"
	"github.com/desertthunder/rolodex/internal/shared"
)

const defaultBaseURL string = "http://127.0.0.1:3000"

// ErrorBody is the JSON body the API returns with every non-2xx status.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Credentials is the sign-in payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StoreClient talks to a running rolodex server over its JSON API.
//
// It implements the contact and profile stores the application controller
// needs, plus the session source the gate watches. The owner of every call
// is the signed-in user; userID arguments are accepted for interface
// compatibility and never sent, since the server derives the owner from
// the bearer token.
type StoreClient struct {
	baseURL     string
	sessionPath string
	httpClient  *http.Client
	events      *auth.Broadcaster

	mu      sync.RWMutex
	session *models.Session
}

// NewStoreClient creates a client for baseURL that persists its session to
// sessionPath. An empty sessionPath keeps the session in memory only.
func NewStoreClient(baseURL, sessionPath string, client *http.Client) *StoreClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &StoreClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		sessionPath: sessionPath,
		httpClient:  client,
		events:      auth.NewBroadcaster(),
	}
}

// LoadSession restores a session saved by a previous sign-in. A missing
// file is not an error.
func (c *StoreClient) LoadSession() error {
	if c.sessionPath == "" {
		return nil
	}

	data, err := os.ReadFile(c.sessionPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session file: %w", err)
	}

	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to parse session file: %w", err)
	}

	c.mu.Lock()
	c.session = &s
	c.mu.Unlock()
	return nil
}

// Token returns the bearer token in use, or "".
func (c *StoreClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return ""
	}
	return c.session.Token
}

// Subscribe registers fn for sign-in and sign-out events from this client.
func (c *StoreClient) Subscribe(fn func(auth.Event)) (unsubscribe func()) {
	return c.events.Subscribe(fn)
}

// SignIn exchanges credentials for a session and saves it.
func (c *StoreClient) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	var s models.Session
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/signin", Credentials{Email: email, Password: password}, &s); err != nil {
		return nil, err
	}
	return c.begin(&s)
}

// SignUp creates an account and saves the session it starts.
func (c *StoreClient) SignUp(ctx context.Context, in auth.SignUpInput) (*models.Session, error) {
	var s models.Session
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/signup", in, &s); err != nil {
		return nil, err
	}
	return c.begin(&s)
}

// Session asks the server whether the saved session is still live. A
// rejected session is forgotten locally.
func (c *StoreClient) Session(ctx context.Context) (*models.Session, error) {
	if c.Token() == "" {
		return nil, shared.ErrNotAuthenticated
	}

	var s models.Session
	err := c.doRequest(ctx, http.MethodGet, "/api/auth/session", nil, &s)
	if errors.Is(err, shared.ErrNotAuthenticated) {
		if clearErr := c.clear(); clearErr != nil {
			return nil, clearErr
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	s.Token = c.Token()
	return &s, nil
}

// SignOut ends the session on the server and forgets it locally. A session
// the server no longer knows still counts as signed out.
func (c *StoreClient) SignOut(ctx context.Context) error {
	if c.Token() == "" {
		return nil
	}

	err := c.doRequest(ctx, http.MethodPost, "/api/auth/signout", nil, nil)
	if err != nil && !errors.Is(err, shared.ErrNotAuthenticated) {
		return err
	}

	if err := c.clear(); err != nil {
		return err
	}
	c.events.Publish(auth.Event{Kind: auth.SignedOut})
	return nil
}

// FullName returns the signed-in user's display name.
func (c *StoreClient) FullName(ctx context.Context, _ string) (string, error) {
	var p models.Profile
	if err := c.doRequest(ctx, http.MethodGet, "/api/profile", nil, &p); err != nil {
		return "", err
	}
	return p.FullName, nil
}

// List returns the signed-in user's contacts, newest first.
func (c *StoreClient) List(ctx context.Context, _ string) ([]models.Contact, error) {
	contacts := []models.Contact{}
	if err := c.doRequest(ctx, http.MethodGet, "/api/contacts", nil, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// Create inserts rec for the signed-in user.
func (c *StoreClient) Create(ctx context.Context, _ string, rec models.ContactRecord) (*models.Contact, error) {
	var contact models.Contact
	if err := c.doRequest(ctx, http.MethodPost, "/api/contacts", rec, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

// Update replaces the mutable fields of the contact rec.ID.
func (c *StoreClient) Update(ctx context.Context, _ string, rec models.ContactRecord) (*models.Contact, error) {
	if rec.ID == "" {
		return nil, fmt.Errorf("%w: contact id is required", shared.ErrInvalidInput)
	}

	var contact models.Contact
	endpoint := "/api/contacts/" + url.PathEscape(rec.ID)
	if err := c.doRequest(ctx, http.MethodPatch, endpoint, rec, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

// Delete removes the contact id.
func (c *StoreClient) Delete(ctx context.Context, _ string, id string) error {
	return c.doRequest(ctx, http.MethodDelete, "/api/contacts/"+url.PathEscape(id), nil, nil)
}

func (c *StoreClient) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	apiURL := c.baseURL + endpoint

	var payload *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, payload)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp ErrorBody
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Code != "" {
			mapped := shared.ErrorFromCode(errResp.Code)
			if resp.StatusCode == http.StatusUnauthorized && !errors.Is(mapped, shared.ErrNotAuthenticated) {
				mapped = fmt.Errorf("%w: %w", shared.ErrNotAuthenticated, mapped)
			}
			return fmt.Errorf("%w (status %d): %s", mapped, resp.StatusCode, errResp.Error)
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return shared.ErrNotAuthenticated
		}
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func (c *StoreClient) begin(s *models.Session) (*models.Session, error) {
	if err := c.save(s); err != nil {
		return nil, err
	}
	c.events.Publish(auth.Event{Kind: auth.SignedIn, Session: s})
	return s, nil
}

func (c *StoreClient) save(s *models.Session) error {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	if c.sessionPath == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(c.sessionPath), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(c.sessionPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func (c *StoreClient) clear() error {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()

	if c.sessionPath == "" {
		return nil
	}
	if err := os.Remove(c.sessionPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
