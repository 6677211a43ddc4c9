// Package database provides test helpers for running tests against
// PostgreSQL.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v4/stdlib" // register the pgx database/sql driver
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gotest.tools/v3/assert"

	"github.com/askhq/ask/internal/generate"
)

type TestingT interface {
	assert.TestingT
	Cleanup(func())
	Fatal(...any)
	Skip(...any)
	Helper()
}

var isEnvironmentCI = os.Getenv("CI") != ""

// PostgresDriver returns a driver for connecting to postgres based on the
// POSTGRESQL_CONNECTION environment variable. The value should be a postgres
// connection string, see
// https://www.postgresql.org/docs/current/libpq-connect.html#LIBPQ-CONNSTRING.
//
// Each call creates a new schema named after schemaSuffix, which is dropped
// when the test ends. The test is skipped when POSTGRESQL_CONNECTION is not
// set, unless running in CI.
func PostgresDriver(t TestingT, schemaSuffix string) *Driver {
	t.Helper()
	pgConn, ok := os.LookupEnv("POSTGRESQL_CONNECTION")
	switch {
	case !ok && isEnvironmentCI:
		t.Fatal("CI must test all drivers, set POSTGRESQL_CONNECTION")
	case !ok:
		t.Skip("Set POSTGRESQL_CONNECTION to test against postgresql")
	}

	if len(schemaSuffix) >= 24 {
		t.Fatal("schema suffix", schemaSuffix, "must be less than 24 characters")
	}
	suffix := strings.NewReplacer("--", "", ";", "", "/", "", " ", "").Replace(schemaSuffix)
	name := fmt.Sprintf("test_%v_%v", suffix, generate.MathRandom(5, generate.CharsetNumbers))

	db, err := sql.Open("pgx", pgConn)
	assert.NilError(t, err, "connect to postgresql")
	t.Cleanup(func() {
		_, err := db.Exec("DROP SCHEMA IF EXISTS " + name + " CASCADE")
		assert.NilError(t, err)
		assert.NilError(t, db.Close())
	})

	_, err = db.Exec("CREATE SCHEMA " + name)
	assert.NilError(t, err)

	dsn := pgConn + " search_path=" + name
	return &Driver{DSN: dsn, Dialector: postgres.Open(dsn)}
}

type Driver struct {
	// DSN is the connection string that can be used to connect to this
	// database.
	DSN       string
	Dialector gorm.Dialector
}
