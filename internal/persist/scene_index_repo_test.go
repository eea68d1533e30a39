package persist

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/directus/engine/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to DIRECTUS_TEST_DSN and migrates it. Tests using it
// are skipped when the variable is unset.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("DIRECTUS_TEST_DSN")
	if dsn == "" {
		t.Skip("DIRECTUS_TEST_DSN not set")
	}
	ctx := context.Background()
	db, err := NewDB(ctx, config.DatabaseConfig{DSN: dsn, MaxOpenConns: 2}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	version, err := RunMigrations(ctx, db.Pool)
	require.NoError(t, err)
	require.Equal(t, int64(1), version)
	return db
}

func TestRecordAndQuery(t *testing.T) {
	db := openTestDB(t)
	repo := NewSceneIndexRepo(db)
	ctx := context.Background()
	path := fmt.Sprintf("test-%d.directus", time.Now().UnixNano())

	require.NoError(t, repo.Record(ctx, SceneEvent{Path: path, Op: OpSave, Roots: 2, Entities: 3, Resources: 1}))
	require.NoError(t, repo.Record(ctx, SceneEvent{Path: path, Op: OpLoad, Roots: 2, Entities: 3, Resources: 1}))
	require.NoError(t, repo.Record(ctx, SceneEvent{Path: path, Op: OpLoad, Err: "truncated"}))

	row, err := repo.Load(ctx, path)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 3, row.Entities)
	assert.Equal(t, 1, row.SaveCount)
	assert.Equal(t, 1, row.LoadCount)
	assert.NotNil(t, row.LastSaved)
	assert.NotNil(t, row.LastLoaded)

	events, err := repo.Events(ctx, path, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "truncated", events[0].Err)

	recent, err := repo.Recent(ctx, 50)
	require.NoError(t, err)
	assert.NotEmpty(t, recent)
}

func TestLoadUnknownScene(t *testing.T) {
	db := openTestDB(t)
	row, err := NewSceneIndexRepo(db).Load(context.Background(), "never-saved.directus")
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestRecordRejectsUnknownOp(t *testing.T) {
	repo := NewSceneIndexRepo(nil)
	err := repo.Record(context.Background(), SceneEvent{Path: "x", Op: "delete"})
	assert.ErrorContains(t, err, "unknown op")
}
