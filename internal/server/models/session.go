package models

import (
	"time"

	"github.com/askhq/ask/uid"
)

var (
	SessionKeyIDLength  = 10 // the length of the ID used to look-up the session
	SessionSecretLength = 24 // the length of the secret used to validate a session
)

// Session is created by a successful login. The cookie holds KeyID and
// Secret; only a checksum of the secret is stored.
type Session struct {
	Model

	UserID uid.ID `gorm:"index;not null"`
	User   *User  `gorm:"constraint:OnDelete:CASCADE"`

	KeyID          string `gorm:"uniqueIndex;not null"`
	Secret         string `gorm:"-"`
	SecretChecksum []byte

	ExpiresAt time.Time `gorm:"index"`
}

// Token is only set when the session is created.
func (s *Session) Token() string {
	if len(s.Secret) == 0 {
		return ""
	}
	return s.KeyID + "." + s.Secret
}

func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
