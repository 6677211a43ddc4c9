package data

import (
	"errors"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gotest.tools/v3/assert"

	"github.com/askhq/ask/internal"
	"github.com/askhq/ask/internal/logging"
	"github.com/askhq/ask/internal/server/models"
	"github.com/askhq/ask/internal/testing/database"
	"github.com/askhq/ask/uid"
)

func setupDB(t *testing.T, driver gorm.Dialector) *gorm.DB {
	t.Helper()
	logging.PatchLogger(t, zerolog.NewTestWriter(t))

	db, err := NewDB(driver)
	assert.NilError(t, err)
	t.Cleanup(func() {
		assert.NilError(t, Close(db))
	})

	return db
}

// runDBTests against all supported databases. Defaults to only sqlite locally,
// and all supported DBs in CI.
// Set POSTGRESQL_CONNECTION to a postgresql connection string to run tests
// against postgresql.
func runDBTests(t *testing.T, run func(t *testing.T, db *gorm.DB)) {
	t.Run("sqlite", func(t *testing.T) {
		sqlite, err := NewSQLiteDriver("file::memory:")
		assert.NilError(t, err)
		run(t, setupDB(t, sqlite))
	})
	t.Run("postgres", func(t *testing.T) {
		pgsql := database.PostgresDriver(t, "data")
		run(t, setupDB(t, pgsql.Dialector))
	})
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: []byte("not-a-real-hash"),
	}
	assert.NilError(t, CreateUser(db, user))
	return user
}

func TestSnowflakeIDSerialization(t *testing.T) {
	runDBTests(t, func(t *testing.T, db *gorm.DB) {
		id := uid.New()
		u := &models.User{Model: models.Model{ID: id}, Username: "foo", Email: "foo@example.com", PasswordHash: []byte("x")}
		err := db.Create(u).Error
		assert.NilError(t, err)

		var user models.User
		err = db.First(&user, &models.User{Username: "foo"}).Error
		assert.NilError(t, err)
		assert.Equal(t, user.ID, id)

		var intID int64
		err = db.Select("id").Table("users").Scan(&intID).Error
		assert.NilError(t, err)

		assert.Equal(t, int64(id), intID)
	})
}

func TestGet_NotFound(t *testing.T) {
	runDBTests(t, func(t *testing.T, db *gorm.DB) {
		_, err := GetUser(db, ByUsername("nobody"))
		assert.ErrorIs(t, err, internal.ErrNotFound)
	})
}

func TestList_Pagination(t *testing.T) {
	runDBTests(t, func(t *testing.T, db *gorm.DB) {
		author := createTestUser(t, db, "author")
		for i := 0; i < 5; i++ {
			err := CreateQuestion(db, &models.Question{Title: "q", Content: "c", AuthorID: author.ID})
			assert.NilError(t, err)
		}

		p := models.Pagination{Page: 2, Limit: 2}
		questions, err := ListQuestions(db, &p)
		assert.NilError(t, err)
		assert.Equal(t, len(questions), 2)
		assert.Equal(t, p.TotalCount, 5)
		assert.Equal(t, p.PageCount, 3)
		assert.Assert(t, p.HasNext())
		assert.Assert(t, p.HasPrevious())
	})
}

func TestHandleError(t *testing.T) {
	type testCase struct {
		name     string
		err      error
		expected error
	}

	testCases := []testCase{
		{
			name: "nil",
		},
		{
			name:     "other errors are unchanged",
			err:      internal.ErrNotFound,
			expected: internal.ErrNotFound,
		},
		{
			name:     "sqlite single column",
			err:      errors.New("UNIQUE constraint failed: users.email"),
			expected: UniqueConstraintError{Table: "users", Column: "email"},
		},
		{
			name:     "sqlite multiple columns",
			err:      errors.New("UNIQUE constraint failed: users.username, users.email"),
			expected: UniqueConstraintError{Table: "users", Column: "username,email"},
		},
		{
			name: "postgres unique violation",
			err: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				TableName:      "users",
				ConstraintName: "idx_users_username",
			},
			expected: UniqueConstraintError{Table: "users", Column: "username"},
		},
		{
			name: "postgres other error",
			err:  &pgconn.PgError{Code: pgerrcode.NotNullViolation},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := handleError(tc.err)
			switch {
			case tc.err == nil:
				assert.NilError(t, actual)
			case tc.expected == nil:
				assert.Equal(t, actual, tc.err)
			default:
				assert.DeepEqual(t, actual, tc.expected)
			}
		})
	}
}

func TestUniqueConstraintError_Error(t *testing.T) {
	assert.Equal(t, UniqueConstraintError{}.Error(), "value already exists")
	assert.Equal(t, UniqueConstraintError{Table: "users"}.Error(), "a user with that value already exists")
	assert.Equal(t, UniqueConstraintError{Table: "users", Column: "email"}.Error(), "a user with that email already exists")
}
