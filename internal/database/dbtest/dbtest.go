// Package dbtest opens throwaway PostgreSQL schemas for repository tests.
package dbtest

import (
	"context"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/library/internal/database"
)

// Drivers lists every driver the repositories must work with
var Drivers = []string{database.DriverPQ, database.DriverPGX}

// Open connects to DATABASE_URL through driver inside a fresh schema with the full
// table set applied. The schema is dropped when the test ends. Without DATABASE_URL
// the test is skipped.
func Open(t testing.TB, driver string) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping PostgreSQL test")
	}

	admin, err := database.NewPostgresConnection(driver, dsn)
	require.NoError(t, err)

	schema := "libtest_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	_, err = admin.Exec(`CREATE SCHEMA ` + schema)
	require.NoError(t, err)

	db, err := database.NewPostgresConnection(driver, withSearchPath(dsn, schema))
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
		_, _ = admin.Exec(`DROP SCHEMA ` + schema + ` CASCADE`)
		admin.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, database.Migrate(ctx, db))

	return db
}

// withSearchPath pins every pooled connection to schema; both drivers pass unknown
// parameters through as session settings
func withSearchPath(dsn, schema string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
		q := u.Query()
		q.Set("search_path", schema)
		u.RawQuery = q.Encode()
		return u.String()
	}
	return dsn + " search_path=" + schema
}
