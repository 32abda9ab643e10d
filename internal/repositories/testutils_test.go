package repositories_test

import (
	"context"
	"io"
	"testing"

	"github.com/opencrew/pitchboard/internal/db"
	"github.com/opencrew/pitchboard/internal/testhelpers"

	_ "embed"
)

//go:embed testdata/fixtures.sql
var testFixtures string

// newTestDB creates a new in-memory database with fixtures for testing purposes.
func newTestDB(t *testing.T) *db.Database {
	t.Helper()
	var (
		dbs *db.Database
		err error
	)
	ctx := context.Background()
	logger := testhelpers.NewLogger(io.Discard)

	if dbs, err = db.NewDatabase(ctx, ":memory:", logger); err != nil {
		t.Fatal(err)
	}

	// Set database to read-only mode.
	// The mode=ro flag doesn't seem to work with :memory: and cache=shared.
	if _, err = dbs.ReadOnly.Exec("PRAGMA query_only = TRUE;"); err != nil {
		t.Fatal(err)
	}

	// Add test data.
	if _, err = dbs.ReadWrite.Exec(testFixtures); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err = dbs.Close(); err != nil {
			t.Fatal(err)
		}
	})

	return dbs
}
