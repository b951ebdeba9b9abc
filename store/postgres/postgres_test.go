package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/store/postgres"
	"github.com/warp/payroll-engine/store/storetest"
)

// Runs only when TEST_DATABASE_URL points at a disposable database.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	storetest.Run(t, func(t *testing.T) storetest.Store {
		ctx := context.Background()
		s, err := postgres.New(ctx, dsn)
		require.NoError(t, err)
		require.NoError(t, s.Truncate(ctx))
		t.Cleanup(func() { s.Close() })
		return s
	})
}
