package player

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/showdeck/showdeck/internal/db"
	"github.com/showdeck/showdeck/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupQueueService creates a queue service with a test database
func setupQueueService(t *testing.T) (*QueueService, *db.Repositories, func()) {
	tmpFile := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(tmpFile)
	require.NoError(t, err)

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)

	migrationsPath := "file://../../migrations"
	err = db.RunMigrations(sqlDB, migrationsPath)
	require.NoError(t, err)

	repos := db.NewRepositories(database)
	service := NewQueueService(repos)

	cleanup := func() {
		_ = database.Close()
	}

	return service, repos, cleanup
}

// registerFiles registers n media files and returns their ids in order
func registerFiles(t *testing.T, repos *db.Repositories, n int) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, n)
	for i := 0; i < n; i++ {
		file := models.NewMediaFile(
			fmt.Sprintf("/music/track-%d.mp3", i),
			fmt.Sprintf("Track %d", i),
			180+float64(i),
		)
		require.NoError(t, repos.MediaFiles.Create(context.Background(), file))
		ids[i] = file.ID
	}
	return ids
}

func TestInsertMany_AppendsWithDenseOrder(t *testing.T) {
	service, repos, cleanup := setupQueueService(t)
	defer cleanup()
	ctx := context.Background()

	files := registerFiles(t, repos, 3)

	items, err := service.InsertMany(ctx, files[:2])
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 0, items[0].SortOrder)
	assert.Equal(t, 1, items[1].SortOrder)

	// Later insert continues the dense order
	more, err := service.InsertMany(ctx, files[2:])
	require.NoError(t, err)
	require.Len(t, more, 1)
	assert.Equal(t, 2, more[0].SortOrder)
}

func TestInsertMany_ConcurrentInsertsKeepOrdersDense(t *testing.T) {
	service, repos, cleanup := setupQueueService(t)
	defer cleanup()
	ctx := context.Background()

	files := registerFiles(t, repos, 8)

	var wg sync.WaitGroup
	for _, fileID := range files {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := service.InsertMany(ctx, []uuid.UUID{id})
			assert.NoError(t, err)
		}(fileID)
	}
	wg.Wait()

	items, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, len(files))
	for i, item := range items {
		assert.Equal(t, i, item.SortOrder, "sort orders must be dense and unique")
	}
}

func TestInsertMany_UnknownFileRejectedWholesale(t *testing.T) {
	service, repos, cleanup := setupQueueService(t)
	defer cleanup()
	ctx := context.Background()

	files := registerFiles(t, repos, 1)

	_, err := service.InsertMany(ctx, []uuid.UUID{files[0], uuid.New()})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFileNotFound)

	// Nothing was inserted
	length, err := service.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, length)
}

func TestRemove_KeepsOrderDense(t *testing.T) {
	service, repos, cleanup := setupQueueService(t)
	defer cleanup()
	ctx := context.Background()

	files := registerFiles(t, repos, 3)
	items, err := service.InsertMany(ctx, files)
	require.NoError(t, err)

	require.NoError(t, service.Remove(ctx, items[1].ID))

	remaining, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, files[0], remaining[0].FileID)
	assert.Equal(t, 0, remaining[0].SortOrder)
	assert.Equal(t, files[2], remaining[1].FileID)
	assert.Equal(t, 1, remaining[1].SortOrder)
}

func TestRemove_NotFound(t *testing.T) {
	service, _, cleanup := setupQueueService(t)
	defer cleanup()

	err := service.Remove(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueueItemNotFound)
}

func TestSetAll_ReplacesWholesale(t *testing.T) {
	service, repos, cleanup := setupQueueService(t)
	defer cleanup()
	ctx := context.Background()

	files := registerFiles(t, repos, 4)
	_, err := service.InsertMany(ctx, files[:2])
	require.NoError(t, err)

	items, err := service.SetAll(ctx, []uuid.UUID{files[3], files[2]})
	require.NoError(t, err)
	require.Len(t, items, 2)

	got, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, files[3], got[0].FileID)
	assert.Equal(t, files[2], got[1].FileID)
}

func TestSetAll_EmptyClearsQueue(t *testing.T) {
	service, repos, cleanup := setupQueueService(t)
	defer cleanup()
	ctx := context.Background()

	files := registerFiles(t, repos, 2)
	_, err := service.InsertMany(ctx, files)
	require.NoError(t, err)

	_, err = service.SetAll(ctx, nil)
	require.NoError(t, err)

	length, err := service.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, length)
}

func TestReorder_AppliesPermutation(t *testing.T) {
	service, repos, cleanup := setupQueueService(t)
	defer cleanup()
	ctx := context.Background()

	files := registerFiles(t, repos, 3)
	items, err := service.InsertMany(ctx, files)
	require.NoError(t, err)

	require.NoError(t, service.Reorder(ctx, []uuid.UUID{items[2].ID, items[0].ID, items[1].ID}))

	got, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, items[2].ID, got[0].ID)
	assert.Equal(t, items[0].ID, got[1].ID)
	assert.Equal(t, items[1].ID, got[2].ID)
	for i, item := range got {
		assert.Equal(t, i, item.SortOrder)
	}
}

func TestReorder_MembershipMismatchRejected(t *testing.T) {
	service, repos, cleanup := setupQueueService(t)
	defer cleanup()
	ctx := context.Background()

	files := registerFiles(t, repos, 2)
	items, err := service.InsertMany(ctx, files)
	require.NoError(t, err)

	err = service.Reorder(ctx, []uuid.UUID{items[0].ID, uuid.New()})
	require.Error(t, err)
	assert.True(t, IsReorderMismatch(err))

	got, err := service.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, items[0].ID, got[0].ID)
	assert.Equal(t, items[1].ID, got[1].ID)
}

func TestGetAtIndex_Bounds(t *testing.T) {
	service, repos, cleanup := setupQueueService(t)
	defer cleanup()
	ctx := context.Background()

	files := registerFiles(t, repos, 2)
	_, err := service.InsertMany(ctx, files)
	require.NoError(t, err)

	item, err := service.GetAtIndex(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, files[1], item.FileID)

	_, err = service.GetAtIndex(ctx, 2)
	assert.ErrorIs(t, err, ErrQueueIndexOutOfRange)

	_, err = service.GetAtIndex(ctx, -1)
	assert.ErrorIs(t, err, ErrQueueIndexOutOfRange)
}

func TestTrackAt_ResolvesFileSnapshot(t *testing.T) {
	service, repos, cleanup := setupQueueService(t)
	defer cleanup()
	ctx := context.Background()

	files := registerFiles(t, repos, 1)
	_, err := service.InsertMany(ctx, files)
	require.NoError(t, err)

	track, err := service.TrackAt(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, files[0], track.FileID)
	assert.Equal(t, "Track 0", track.Title)
	assert.Equal(t, "/music/track-0.mp3", track.FilePath)
	assert.Equal(t, float64(180), track.Duration)
}
