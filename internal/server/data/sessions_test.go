package data

import (
	"context"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"
	"gotest.tools/v3/assert"

	"github.com/askhq/ask/internal"
	"github.com/askhq/ask/internal/server/models"
)

func TestCreateSession(t *testing.T) {
	runDBTests(t, func(t *testing.T, db *gorm.DB) {
		user := createTestUser(t, db, "alice")

		t.Run("success", func(t *testing.T) {
			session := &models.Session{UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}
			token, err := CreateSession(db, session)
			assert.NilError(t, err)

			keyID, secret, ok := strings.Cut(token, ".")
			assert.Assert(t, ok)
			assert.Equal(t, len(keyID), models.SessionKeyIDLength)
			assert.Equal(t, len(secret), models.SessionSecretLength)
			assert.Equal(t, session.KeyID, keyID)

			var stored models.Session
			assert.NilError(t, db.First(&stored, session.ID).Error)
			assert.DeepEqual(t, stored.SecretChecksum, secretChecksum(secret))
			assert.Equal(t, stored.Secret, "")
		})

		t.Run("user is required", func(t *testing.T) {
			_, err := CreateSession(db, &models.Session{ExpiresAt: time.Now()})
			assert.ErrorContains(t, err, "userID is required")
		})

		t.Run("expiry is required", func(t *testing.T) {
			_, err := CreateSession(db, &models.Session{UserID: user.ID})
			assert.ErrorContains(t, err, "expiresAt is required")
		})
	})
}

func TestValidateSession(t *testing.T) {
	runDBTests(t, func(t *testing.T, db *gorm.DB) {
		user := createTestUser(t, db, "alice")
		session := &models.Session{UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}
		token, err := CreateSession(db, session)
		assert.NilError(t, err)

		t.Run("valid", func(t *testing.T) {
			found, err := ValidateSession(db, token)
			assert.NilError(t, err)
			assert.Equal(t, found.ID, session.ID)
			assert.Equal(t, found.UserID, user.ID)
		})

		t.Run("wrong secret", func(t *testing.T) {
			wrong := session.KeyID + "." + strings.Repeat("a", models.SessionSecretLength)
			_, err := ValidateSession(db, wrong)
			assert.ErrorIs(t, err, ErrSessionInvalidSecret)
		})

		t.Run("unknown key", func(t *testing.T) {
			unknown := strings.Repeat("b", models.SessionKeyIDLength) + "." + session.Secret
			_, err := ValidateSession(db, unknown)
			assert.ErrorIs(t, err, internal.ErrNotFound)
		})

		t.Run("malformed", func(t *testing.T) {
			for _, token := range []string{"", "nodot", "short.secret", session.KeyID + "."} {
				_, err := ValidateSession(db, token)
				assert.ErrorIs(t, err, ErrSessionMalformed, "token %q", token)
			}
		})
	})
}

func TestSessionStore_Delete(t *testing.T) {
	runDBTests(t, func(t *testing.T, db *gorm.DB) {
		ctx := context.Background()
		store := SessionStore{DB: db}
		alice := createTestUser(t, db, "alice")
		bob := createTestUser(t, db, "bob")

		create := func(user *models.User, expires time.Time) *models.Session {
			s := &models.Session{UserID: user.ID, ExpiresAt: expires}
			_, err := store.Create(ctx, s)
			assert.NilError(t, err)
			return s
		}

		later := time.Now().Add(time.Hour)
		first := create(alice, later)
		second := create(alice, later)
		other := create(bob, later)

		assert.NilError(t, store.Delete(ctx, first.ID))
		_, err := store.Validate(ctx, first.Token())
		assert.ErrorIs(t, err, internal.ErrNotFound)

		// deleting twice is not an error
		assert.NilError(t, store.Delete(ctx, first.ID))

		assert.NilError(t, store.DeleteForUser(ctx, alice.ID))
		_, err = store.Validate(ctx, second.Token())
		assert.ErrorIs(t, err, internal.ErrNotFound)

		_, err = store.Validate(ctx, other.Token())
		assert.NilError(t, err)
	})
}

func TestRemoveExpiredSessions(t *testing.T) {
	runDBTests(t, func(t *testing.T, db *gorm.DB) {
		user := createTestUser(t, db, "alice")
		now := time.Now()

		expired := &models.Session{UserID: user.ID, ExpiresAt: now.Add(-time.Minute)}
		_, err := CreateSession(db, expired)
		assert.NilError(t, err)

		active := &models.Session{UserID: user.ID, ExpiresAt: now.Add(time.Minute)}
		_, err = CreateSession(db, active)
		assert.NilError(t, err)

		assert.NilError(t, RemoveExpiredSessions(db, now))

		count, err := Count[models.Session](db)
		assert.NilError(t, err)
		assert.Equal(t, count, int64(1))

		_, err = ValidateSession(db, active.Token())
		assert.NilError(t, err)
	})
}
