package patients

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	require.NoError(t, Migrate(dbURL))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE patients`)
	require.NoError(t, err)
	return pool
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	service := NewService(NewPostgresStore(pool), WithClock(func() time.Time { return fixedNow }))

	created, err := service.Create(ctx, validForm())
	require.NoError(t, err)

	got, err := service.Get(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Lovelace", got.LastName)
	assert.True(t, created.DateOfBirth.Equal(got.DateOfBirth))

	form := FormFromPatient(got)
	form.LastName = "King"
	_, err = service.Update(ctx, created.ID.String(), form)
	require.NoError(t, err)

	list, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "King", list[0].LastName)

	require.NoError(t, service.Delete(ctx, created.ID.String()))
	assert.ErrorIs(t, service.Delete(ctx, created.ID.String()), ErrNotFound)

	_, err = service.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@localhost:5432/db", migrateURL("postgres://u:p@localhost:5432/db"))
	assert.Equal(t, "pgx5://localhost/db", migrateURL("postgresql://localhost/db"))
	assert.Equal(t, "pgx5://localhost/db", migrateURL("pgx5://localhost/db"))
}
