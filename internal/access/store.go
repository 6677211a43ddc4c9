package access

import (
	"context"

	"github.com/askhq/ask/internal/server/models"
	"github.com/askhq/ask/uid"
)

// CredentialStore persists users. Lookups return internal.ErrNotFound when no
// user matches. Create must reject duplicate usernames and emails with a
// data.UniqueConstraintError.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uid.ID) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePasswordHash(ctx context.Context, user *models.User, hash []byte) error
}

// SessionStore persists sessions. Validate returns internal.ErrNotFound for an
// unknown key, and an error for a malformed token or mismatched secret. It
// does not check expiry.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) (token string, err error)
	Validate(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, id uid.ID) error
	DeleteForUser(ctx context.Context, userID uid.ID) error
}
