package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrationsAppliedAndReversible(t *testing.T) {
	setupPostgres(t)

	version, dirty, err := MigrationVersion(sharedDBURL)
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, uint(2), version)

	require.NoError(t, MigrateDown(sharedDBURL, 1))
	version, _, err = MigrationVersion(sharedDBURL)
	require.NoError(t, err)
	require.Equal(t, uint(1), version)

	require.NoError(t, MigrateUp(sharedDBURL))
	resetDatabase(t, sharedPool)
}

func TestRepositoryMigrationState(t *testing.T) {
	repo := setupPostgres(t)

	version, dirty, err := repo.MigrationState(context.Background())
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, int64(2), version)

	stats := repo.PoolStats()
	require.Contains(t, stats, "max_connections")
}
