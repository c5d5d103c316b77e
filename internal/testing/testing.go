// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/rolodex/internal/models"
	"github.com/desertthunder/rolodex/internal/notify"
	"github.com/desertthunder/rolodex/internal/shared"
)

// MockContactStore is an in-memory, owner-partitioned contact table.
//
// Set the *Err fields to make the matching operation fail.
type MockContactStore struct {
	mu       sync.Mutex
	rows     []models.Contact
	seq      int
	ListErr  error
	SaveErr  error
	DelErr   error
	Calls    []string
	StartsAt time.Time
}

// NewMockContactStore returns a store pre-filled with contacts, which are
// treated as already stored in the given (newest first) order.
func NewMockContactStore(contacts ...models.Contact) *MockContactStore {
	m := &MockContactStore{StartsAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	for i := len(contacts) - 1; i >= 0; i-- {
		m.rows = append(m.rows, contacts[i])
	}
	return m
}

func (m *MockContactStore) List(ctx context.Context, userID string) ([]models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "list")

	if m.ListErr != nil {
		return nil, m.ListErr
	}

	out := []models.Contact{}
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].UserID == userID {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

func (m *MockContactStore) Create(ctx context.Context, userID string, rec models.ContactRecord) (*models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "create")

	if m.SaveErr != nil {
		return nil, m.SaveErr
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	m.seq++
	c := models.Contact{
		ID:        fmt.Sprintf("c%d", m.seq),
		UserID:    userID,
		Name:      rec.Name,
		Email:     rec.Email,
		Phone:     rec.Phone,
		Address:   rec.Address,
		Notes:     rec.Notes,
		CreatedAt: m.StartsAt.Add(time.Duration(m.seq) * time.Second),
	}
	m.rows = append(m.rows, c)
	return &c, nil
}

func (m *MockContactStore) Update(ctx context.Context, userID string, rec models.ContactRecord) (*models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "update")

	if m.SaveErr != nil {
		return nil, m.SaveErr
	}
	for i, c := range m.rows {
		if c.ID == rec.ID && c.UserID == userID {
			c.Name, c.Email, c.Phone, c.Address, c.Notes = rec.Name, rec.Email, rec.Phone, rec.Address, rec.Notes
			m.rows[i] = c
			return &c, nil
		}
	}
	return nil, shared.ErrContactNotFound
}

func (m *MockContactStore) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "delete")

	if m.DelErr != nil {
		return m.DelErr
	}
	for i, c := range m.rows {
		if c.ID == id && c.UserID == userID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return shared.ErrContactNotFound
}

// CallCount reports how many times op ("list", "create", ...) was called.
func (m *MockContactStore) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == op {
			n++
		}
	}
	return n
}

// MockProfileStore maps user IDs to display names.
type MockProfileStore struct {
	Names map[string]string
	Err   error
}

func (m *MockProfileStore) FullName(ctx context.Context, userID string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	name, ok := m.Names[userID]
	if !ok {
		return "", shared.ErrProfileNotFound
	}
	return name, nil
}

// RecordingNotifier remembers every notification key.
type RecordingNotifier struct {
	mu    sync.Mutex
	Kinds []notify.Kind
	Keys  []notify.Key
}

func (r *RecordingNotifier) Notify(kind notify.Kind, key notify.Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Kinds = append(r.Kinds, kind)
	r.Keys = append(r.Keys, key)
}

// Last returns the most recent key, or "" when nothing was recorded.
func (r *RecordingNotifier) Last() notify.Key {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Keys) == 0 {
		return ""
	}
	return r.Keys[len(r.Keys)-1]
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
