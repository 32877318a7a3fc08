package schedule

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/showdeck/showdeck/internal/db"
	"github.com/showdeck/showdeck/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestService creates a service with a test database
func setupTestService(t *testing.T) (*Service, func()) {
	tmpFile := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(tmpFile)
	require.NoError(t, err)

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)

	migrationsPath := "file://../../migrations"
	err = db.RunMigrations(sqlDB, migrationsPath)
	require.NoError(t, err)

	repos := db.NewRepositories(database)
	service := NewService(repos)

	cleanup := func() {
		_ = database.Close()
	}

	return service, cleanup
}

// insertItem is a shorthand for appending a content item at the end
func insertItem(t *testing.T, service *Service, title string) *models.ScheduleItem {
	t.Helper()
	item, err := service.InsertAfter(context.Background(), nil, NewItemInput{
		Type:  models.ItemTypeContent,
		Title: title,
	})
	require.NoError(t, err)
	return item
}

func TestInsertAfter_AppendsAtEnd(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	a := insertItem(t, service, "A")
	b := insertItem(t, service, "B")

	assert.Equal(t, 0, a.Position)
	assert.Equal(t, 1, b.Position)
}

func TestInsertAfter_Anchor(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	a := insertItem(t, service, "A")
	b := insertItem(t, service, "B")

	// Insert between A and B
	c, err := service.InsertAfter(ctx, &a.ID, NewItemInput{
		Type:  models.ItemTypeContent,
		Title: "C",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Position)

	items, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, a.ID, items[0].ID)
	assert.Equal(t, c.ID, items[1].ID)
	assert.Equal(t, b.ID, items[2].ID)
	for i, item := range items {
		assert.Equal(t, i, item.Position)
	}
}

func TestInsertAfter_AnchorNotFound(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	missing := uuid.New()
	_, err := service.InsertAfter(context.Background(), &missing, NewItemInput{
		Type:  models.ItemTypeContent,
		Title: "Orphan",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAnchorNotFound)
}

func TestInsertAfter_InvalidType(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	_, err := service.InsertAfter(context.Background(), nil, NewItemInput{
		Type:  models.ItemType("bogus"),
		Title: "Bad",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidItemType)
}

func TestInsertAfter_EmptyTitle(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	_, err := service.InsertAfter(context.Background(), nil, NewItemInput{
		Type: models.ItemTypeContent,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestInsertAfter_WithSlides(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	item, err := service.InsertAfter(ctx, nil, NewItemInput{
		Type:   models.ItemTypeSlide,
		Title:  "Lyrics",
		Slides: []string{"verse one", "chorus", "verse two"},
	})
	require.NoError(t, err)
	require.Len(t, item.Slides, 3)

	got, err := service.Get(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, got.Slides, 3)
	assert.Equal(t, "verse one", got.Slides[0].Body)
	assert.Equal(t, "chorus", got.Slides[1].Body)
	assert.Equal(t, "verse two", got.Slides[2].Body)
	for i, slide := range got.Slides {
		assert.Equal(t, i, slide.Position)
	}
}

func TestUpdate_Title(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	item := insertItem(t, service, "Old")

	newTitle := "New"
	updated, err := service.Update(ctx, item.ID, ItemPatch{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)

	got, err := service.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
}

func TestUpdate_EmptyTitleRejected(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	item := insertItem(t, service, "Keep")

	empty := ""
	_, err := service.Update(context.Background(), item.ID, ItemPatch{Title: &empty})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestUpdate_NotFound(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	title := "X"
	_, err := service.Update(context.Background(), uuid.New(), ItemPatch{Title: &title})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestSetExpanded(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	item := insertItem(t, service, "Collapsible")
	assert.False(t, item.Expanded)

	require.NoError(t, service.SetExpanded(ctx, item.ID, true))

	got, err := service.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, got.Expanded)
}

func TestDelete_RenumbersSurvivors(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	a := insertItem(t, service, "A")
	b := insertItem(t, service, "B")
	c := insertItem(t, service, "C")

	require.NoError(t, service.Delete(ctx, b.ID))

	items, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, a.ID, items[0].ID)
	assert.Equal(t, 0, items[0].Position)
	assert.Equal(t, c.ID, items[1].ID)
	assert.Equal(t, 1, items[1].Position)
}

func TestDelete_CascadesToSlides(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	item, err := service.InsertAfter(ctx, nil, NewItemInput{
		Type:   models.ItemTypeSlide,
		Title:  "Doomed",
		Slides: []string{"one", "two"},
	})
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, item.ID))

	err = service.RemoveSlide(ctx, item.Slides[0].ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSlideNotFound)
}

func TestReorder_AppliesPermutation(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	a := insertItem(t, service, "A")
	b := insertItem(t, service, "B")
	c := insertItem(t, service, "C")

	require.NoError(t, service.Reorder(ctx, []uuid.UUID{c.ID, a.ID, b.ID}))

	items, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, c.ID, items[0].ID)
	assert.Equal(t, a.ID, items[1].ID)
	assert.Equal(t, b.ID, items[2].ID)
	for i, item := range items {
		assert.Equal(t, i, item.Position)
	}
}

func TestReorder_MembershipMismatchRejected(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	a := insertItem(t, service, "A")
	b := insertItem(t, service, "B")

	// Unknown id in place of b: nothing may change
	err := service.Reorder(ctx, []uuid.UUID{a.ID, uuid.New()})
	require.Error(t, err)
	assert.True(t, IsReorderMismatch(err))

	items, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, a.ID, items[0].ID)
	assert.Equal(t, b.ID, items[1].ID)
}

func TestReorder_WrongCountRejected(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	a := insertItem(t, service, "A")
	insertItem(t, service, "B")

	err := service.Reorder(ctx, []uuid.UUID{a.ID})
	require.Error(t, err)
	assert.True(t, IsReorderMismatch(err))
}

func TestAddSlide_AppendsInOrder(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	item := insertItem(t, service, "Song")

	s1, err := service.AddSlide(ctx, item.ID, "first")
	require.NoError(t, err)
	s2, err := service.AddSlide(ctx, item.ID, "second")
	require.NoError(t, err)

	assert.Equal(t, 0, s1.Position)
	assert.Equal(t, 1, s2.Position)

	got, err := service.Get(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, got.Slides, 2)
	assert.Equal(t, "first", got.Slides[0].Body)
	assert.Equal(t, "second", got.Slides[1].Body)
}

func TestAddSlide_ItemNotFound(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	_, err := service.AddSlide(context.Background(), uuid.New(), "stray")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRemoveSlide_RenumbersRest(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	item, err := service.InsertAfter(ctx, nil, NewItemInput{
		Type:   models.ItemTypeSlide,
		Title:  "Song",
		Slides: []string{"a", "b", "c"},
	})
	require.NoError(t, err)

	require.NoError(t, service.RemoveSlide(ctx, item.Slides[1].ID))

	got, err := service.Get(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, got.Slides, 2)
	assert.Equal(t, "a", got.Slides[0].Body)
	assert.Equal(t, 0, got.Slides[0].Position)
	assert.Equal(t, "c", got.Slides[1].Body)
	assert.Equal(t, 1, got.Slides[1].Position)
}
