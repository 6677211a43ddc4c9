// Package access registers users, signs them in and out, and recovers
// forgotten passwords.
package access

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/askhq/ask/internal"
	"github.com/askhq/ask/internal/server/data"
	"github.com/askhq/ask/internal/server/email"
	"github.com/askhq/ask/internal/server/models"
)

// Authenticator verifies credentials and manages the sessions and password
// resets of users.
type Authenticator struct {
	users    CredentialStore
	sessions SessionStore
	mailer   email.Mailer
	tokens   *ResetTokens
	config   Config
}

func NewAuthenticator(users CredentialStore, sessions SessionStore, mailer email.Mailer, config Config) (*Authenticator, error) {
	if err := config.setDefaults(); err != nil {
		return nil, err
	}
	return &Authenticator{
		users:    users,
		sessions: sessions,
		mailer:   mailer,
		tokens:   NewResetTokens(config.SecretKey, config.ResetTokenTTL, config.Now),
		config:   config,
	}, nil
}

// Register creates a new user. It does not sign the user in.
func (a *Authenticator) Register(ctx context.Context, username, emailAddr, password string) (*models.User, error) {
	if !IsValidPassword(password) {
		return nil, ErrWeakPassword
	}

	// reset tokens can only be issued for valid addresses
	if err := validateEmail(emailAddr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}

	switch _, err := a.users.FindByUsername(ctx, username); {
	case err == nil:
		return nil, ErrDuplicateUsername
	case !errors.Is(err, internal.ErrNotFound):
		return nil, err
	}

	switch _, err := a.users.FindByEmail(ctx, emailAddr); {
	case err == nil:
		return nil, ErrDuplicateEmail
	case !errors.Is(err, internal.ErrNotFound):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Username: username, Email: emailAddr, PasswordHash: hash}
	if err := a.users.Create(ctx, user); err != nil {
		return nil, duplicateError(err)
	}
	return user, nil
}

// duplicateError translates a uniqueness violation from a concurrent
// registration into the matching duplicate error.
func duplicateError(err error) error {
	var ucErr data.UniqueConstraintError
	if !errors.As(err, &ucErr) {
		return err
	}
	switch {
	case strings.Contains(ucErr.Column, "username"):
		return ErrDuplicateUsername
	case strings.Contains(ucErr.Column, "email"):
		return ErrDuplicateEmail
	}
	return err
}

// Login checks the password of the named user and starts a new session. The
// session token is available from session.Token until the session is
// reloaded from the store.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*models.Session, error) {
	user, err := a.users.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, internal.ErrNotFound):
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session := &models.Session{
		UserID:    user.ID,
		User:      user,
		ExpiresAt: a.config.Now().Add(a.config.SessionDuration),
	}
	if _, err := a.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// Logout ends the session, and clears it so that it is no longer
// authenticated. Ending a nil or already ended session is not an error.
func (a *Authenticator) Logout(ctx context.Context, session *models.Session) error {
	if session == nil || session.ID == 0 {
		return nil
	}
	if err := a.sessions.Delete(ctx, session.ID); err != nil {
		return err
	}

	session.ID = 0
	session.UserID = 0
	session.User = nil
	return nil
}

// IsAuthenticated returns true when session belongs to a user and has not
// expired. Only the session value is checked. Sessions ended by a password
// reset are rejected by Authenticate, which reads the store.
func (a *Authenticator) IsAuthenticated(session *models.Session) bool {
	return session != nil && session.UserID != 0 && !session.IsExpired(a.config.Now())
}

// Authenticate resolves a session token into the session and its user. Any
// token that does not identify a live session fails with
// internal.ErrUnauthorized.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	session, err := a.sessions.Validate(ctx, token)
	switch {
	case errors.Is(err, internal.ErrNotFound),
		errors.Is(err, data.ErrSessionMalformed),
		errors.Is(err, data.ErrSessionInvalidSecret):
		return nil, fmt.Errorf("%w: %v", internal.ErrUnauthorized, err)
	case err != nil:
		return nil, err
	}

	if session.IsExpired(a.config.Now()) {
		return nil, fmt.Errorf("%w: session expired", internal.ErrUnauthorized)
	}

	user, err := a.users.FindByID(ctx, session.UserID)
	switch {
	case errors.Is(err, internal.ErrNotFound):
		return nil, fmt.Errorf("%w: session user no longer exists", internal.ErrUnauthorized)
	case err != nil:
		return nil, err
	}
	session.User = user
	return session, nil
}
