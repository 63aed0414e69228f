//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgresStore(t *testing.T) (*PostgresStore, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15",
		postgres.WithDatabase("bamboo_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	s, err := NewPostgresStore(ctx, PostgresConfig{
		ConnectionString: connStr,
		AutoMigrate:      true,
	})
	require.NoError(t, err, "failed to open postgres store")

	cleanup := func() {
		_ = s.Close()
		_ = container.Terminate(ctx)
	}
	return s, cleanup
}

func TestPostgresStore_E2E_CRUD(t *testing.T) {
	s, cleanup := setupPostgresStore(t)
	defer cleanup()
	ctx := context.Background()

	rec, err := s.Save(ctx, "greeting", "Hello, {{ name }}!")
	require.NoError(t, err)
	require.Equal(t, "greeting", rec.Name)

	got, err := s.Get(ctx, "greeting")
	require.NoError(t, err)
	require.Equal(t, "Hello, {{ name }}!", got.Source)

	updated, err := s.Save(ctx, "greeting", "Hi, {{ name }}!")
	require.NoError(t, err)
	require.True(t, updated.UpdatedAt.After(rec.UpdatedAt) || updated.UpdatedAt.Equal(rec.UpdatedAt))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.Delete(ctx, "greeting"))
	_, err = s.Get(ctx, "greeting")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStore_E2E_NotFound(t *testing.T) {
	s, cleanup := setupPostgresStore(t)
	defer cleanup()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	err = s.Delete(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
