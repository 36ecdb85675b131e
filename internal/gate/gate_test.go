package gate_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VoidMesh/worldstream/internal/config"
	"github.com/VoidMesh/worldstream/internal/db"
	"github.com/VoidMesh/worldstream/internal/gate"
	"github.com/VoidMesh/worldstream/internal/streaming"
	"github.com/VoidMesh/worldstream/internal/testutil"
)

var (
	_ streaming.Gate = (*gate.Memory)(nil)
	_ streaming.Gate = (*gate.Store)(nil)
	_ gate.Unlocker  = (*gate.Memory)(nil)
	_ gate.Unlocker  = (*gate.Store)(nil)
)

func newQueries(t *testing.T, path string) *db.LoggingQueries {
	t.Helper()

	conn, err := db.Open(config.DatabaseConfig{Path: path, MaxOpenConns: 1}, testutil.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(conn, testutil.NewMockLogger()))

	return db.NewLoggingQueries(conn, testutil.NewMockLogger())
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := gate.NewMemory("start")

	assert.True(t, m.IsRegionUnlocked("start"))
	assert.False(t, m.IsRegionUnlocked("crypt"))

	require.NoError(t, m.UnlockRegion(ctx, "crypt"))
	assert.True(t, m.IsRegionUnlocked("crypt"))
	assert.Equal(t, []string{"crypt", "start"}, m.Unlocked())

	require.NoError(t, m.LockRegion(ctx, "start"))
	assert.False(t, m.IsRegionUnlocked("start"))

	assert.ErrorIs(t, m.UnlockRegion(ctx, ""), gate.ErrEmptyRegion)
}

func TestStore_PersistsUnlocks(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "gate.db")

	store, err := gate.NewStore(ctx, newQueries(t, path), testutil.NewMockLogger())
	require.NoError(t, err)
	assert.Empty(t, store.Unlocked())

	require.NoError(t, store.UnlockRegion(ctx, "boss"))
	require.NoError(t, store.UnlockRegion(ctx, "bridge"))
	require.NoError(t, store.LockRegion(ctx, "bridge"))
	assert.True(t, store.IsRegionUnlocked("boss"))
	assert.False(t, store.IsRegionUnlocked("bridge"))

	reopened, err := gate.NewStore(ctx, newQueries(t, path), testutil.NewMockLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"boss"}, reopened.Unlocked())
	assert.True(t, reopened.IsRegionUnlocked("boss"))
}

type failingQueries struct {
	err error
}

func (f failingQueries) UnlockRegion(context.Context, string) error { return f.err }

func (f failingQueries) LockRegion(context.Context, string) (int64, error) { return 0, f.err }

func (f failingQueries) ListUnlockedRegions(context.Context) ([]db.RegionUnlock, error) {
	return nil, nil
}

func TestStore_WriteFailureKeepsStateUnchanged(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")

	store, err := gate.NewStore(ctx, failingQueries{err: boom}, testutil.NewMockLogger())
	require.NoError(t, err)

	err = store.UnlockRegion(ctx, "boss")
	assert.ErrorIs(t, err, boom)
	assert.False(t, store.IsRegionUnlocked("boss"))

	assert.ErrorIs(t, store.UnlockRegion(ctx, ""), gate.ErrEmptyRegion)
	assert.ErrorIs(t, store.LockRegion(ctx, "boss"), boom)
}

type brokenList struct {
	failingQueries
}

func (brokenList) ListUnlockedRegions(context.Context) ([]db.RegionUnlock, error) {
	return nil, errors.New("no such table")
}

func TestNewStore_LoadFailure(t *testing.T) {
	_, err := gate.NewStore(context.Background(), brokenList{}, testutil.NewMockLogger())
	assert.ErrorContains(t, err, "failed to load unlocked regions")
}
