package postgresql_test

import (
	"context"
	"os"
	"testing"

	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/siteops-backend-go/migrations"
	"github.com/stretchr/testify/require"
)

var truncateOrder = []string{
	"refresh_tokens",
	"leave_days",
	"leave_requests",
	"wfh_sessions",
	"clock_events",
	"sites",
	"employees",
}

// newTestDatabase connects to TEST_DATABASE_URL, applies the schema and empties
// every table. Tests are skipped when the variable is unset.
func newTestDatabase(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, migrations.Apply(ctx, db.Pool))
	for _, table := range truncateOrder {
		_, err := db.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
		require.NoError(t, err)
	}
	return db
}
