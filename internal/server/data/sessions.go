package data

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/askhq/ask/internal/generate"
	"github.com/askhq/ask/internal/server/models"
	"github.com/askhq/ask/uid"
)

var (
	ErrSessionInvalidSecret = fmt.Errorf("session invalid secret")
	ErrSessionMalformed     = fmt.Errorf("session token is malformed")
)

func secretChecksum(secret string) []byte {
	chksm := sha256.Sum256([]byte(secret))
	return chksm[:]
}

// CreateSession stores session with a new key ID and secret, and returns the
// token that identifies it.
func CreateSession(db *gorm.DB, session *models.Session) (string, error) {
	switch {
	case session.UserID == 0:
		return "", fmt.Errorf("userID is required")
	case session.ExpiresAt.IsZero():
		return "", fmt.Errorf("expiresAt is required")
	}

	keyID, err := generate.CryptoRandom(models.SessionKeyIDLength, generate.CharsetAlphaNumeric)
	if err != nil {
		return "", err
	}

	secret, err := generate.CryptoRandom(models.SessionSecretLength, generate.CharsetAlphaNumeric)
	if err != nil {
		return "", err
	}

	session.KeyID = keyID
	session.Secret = secret
	session.SecretChecksum = secretChecksum(secret)

	if err := add(db, session); err != nil {
		return "", err
	}

	return session.Token(), nil
}

// ValidateSession looks up the session identified by token and checks its
// secret. Expiry is left to the caller.
func ValidateSession(db *gorm.DB, token string) (*models.Session, error) {
	keyID, secret, ok := strings.Cut(token, ".")
	if !ok || len(keyID) != models.SessionKeyIDLength || len(secret) != models.SessionSecretLength {
		return nil, ErrSessionMalformed
	}

	session, err := get[models.Session](db, ByKeyID(keyID))
	if err != nil {
		return nil, fmt.Errorf("session lookup: %w", err)
	}

	if subtle.ConstantTimeCompare(session.SecretChecksum, secretChecksum(secret)) != 1 {
		return nil, ErrSessionInvalidSecret
	}

	return session, nil
}

func DeleteSession(db *gorm.DB, id uid.ID) error {
	return delete[models.Session](db, id)
}

func DeleteSessions(db *gorm.DB, selectors ...SelectorFunc) error {
	return deleteAll[models.Session](db, selectors...)
}

func RemoveExpiredSessions(db *gorm.DB, now time.Time) error {
	return DeleteSessions(db, ByExpiredBefore(now))
}

// SessionStore persists sessions created by login.
type SessionStore struct {
	DB *gorm.DB
}

func (s SessionStore) Create(ctx context.Context, session *models.Session) (string, error) {
	return CreateSession(s.DB.WithContext(ctx), session)
}

func (s SessionStore) Validate(ctx context.Context, token string) (*models.Session, error) {
	return ValidateSession(s.DB.WithContext(ctx), token)
}

func (s SessionStore) Delete(ctx context.Context, id uid.ID) error {
	return DeleteSession(s.DB.WithContext(ctx), id)
}

func (s SessionStore) DeleteForUser(ctx context.Context, userID uid.ID) error {
	return DeleteSessions(s.DB.WithContext(ctx), ByUserID(userID))
}
