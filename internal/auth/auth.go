// Package auth manages accounts and opaque session tokens backed by the
// SQLite store, and broadcasts session changes to interested views.
package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rolodex/internal/models"
	"github.com/desertthunder/rolodex/internal/repositories"
	"github.com/desertthunder/rolodex/internal/shared"
	"golang.org/x/crypto/bcrypt"
)

const tokenBytes = 32

// SignUpInput is the payload accepted by [Service.SignUp].
type SignUpInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"max=120"`
}

// Service authenticates users and issues sessions.
type Service struct {
	users    *repositories.UserRepository
	profiles *repositories.ProfileRepository
	sessions *repositories.SessionRepository
	events   *Broadcaster
	ttl      time.Duration
	cost     int
	now      func() time.Time
	logger   *log.Logger
}

// NewService creates a [Service] over db. Sessions live for ttl.
func NewService(db *sql.DB, ttl time.Duration, logger *log.Logger) *Service {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if ttl <= 0 {
		ttl = shared.AuthConfig{}.SessionTTL()
	}

	return &Service{
		users:    repositories.NewUserRepository(db),
		profiles: repositories.NewProfileRepository(db),
		sessions: repositories.NewSessionRepository(db),
		events:   NewBroadcaster(),
		ttl:      ttl,
		cost:     bcrypt.DefaultCost,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   shared.WithLogger(logger, "component", "auth"),
	}
}

// Subscribe registers fn for [SignedIn] and [SignedOut] events.
func (s *Service) Subscribe(fn func(Event)) (unsubscribe func()) {
	return s.events.Subscribe(fn)
}

// SignUp creates an account with a bcrypt password hash, stores the optional
// display name as the user's profile, and starts a session.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*models.Session, error) {
	in.Email = shared.NormalizeEmail(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := models.Struct(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Email: in.Email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if in.FullName != "" {
		if err := s.profiles.Upsert(ctx, user.ID, in.FullName); err != nil {
			return nil, err
		}
	}

	s.logger.Info("user signed up", "user", user.ID)
	return s.start(ctx, user)
}

// SignIn verifies email and password and starts a session.
//
// Unknown emails, OAuth-only accounts and wrong passwords all return
// [shared.ErrInvalidCredentials].
func (s *Service) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, shared.ErrUserNotFound) {
		return nil, shared.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if user.PasswordHash == "" {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}

	return s.start(ctx, user)
}

// SignInExternal starts a session for an identity already verified by an
// OAuth provider, creating the account on first use.
func (s *Service) SignInExternal(ctx context.Context, email, fullName string) (*models.Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, shared.ErrUserNotFound):
		user = &models.User{Email: email}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		if name := strings.TrimSpace(fullName); name != "" {
			if err := s.profiles.Upsert(ctx, user.ID, name); err != nil {
				return nil, err
			}
		}
		s.logger.Info("user created from oauth", "user", user.ID)
	case err != nil:
		return nil, err
	}

	return s.start(ctx, user)
}

// Session resolves token to a live session.
//
// A missing token, an unknown token and an expired token all wrap
// [shared.ErrNotAuthenticated]; the expired case also wraps
// [shared.ErrSessionExpired] and deletes the row.
func (s *Service) Session(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}

	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if session.Expired(s.now()) {
		if err := s.sessions.Delete(ctx, token); err != nil {
			s.logger.Warn("failed to delete expired session", "error", err)
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrNotAuthenticated, shared.ErrSessionExpired)
	}

	return session, nil
}

// SignOut ends the session for token. Ending an unknown session succeeds.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return err
	}
	s.events.Publish(Event{Kind: SignedOut})
	return nil
}

// DeleteExpired removes every session that has expired.
func (s *Service) DeleteExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}

func (s *Service) start(ctx context.Context, user *models.User) (*models.Session, error) {
	token, err := NewToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &models.Session{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	s.events.Publish(Event{Kind: SignedIn, Session: session})
	return session, nil
}

// NewToken returns a random URL-safe token.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
