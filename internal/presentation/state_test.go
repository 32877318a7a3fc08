package presentation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/showdeck/showdeck/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

// buildItems constructs a schedule where each entry gives the slide count of
// one item, in document order.
func buildItems(slideCounts ...int) []*models.ScheduleItem {
	items := make([]*models.ScheduleItem, len(slideCounts))
	for i, count := range slideCounts {
		item := &models.ScheduleItem{ID: uuid.New(), Position: i}
		for j := 0; j < count; j++ {
			item.Slides = append(item.Slides, &models.Slide{ID: uuid.New(), ItemID: item.ID, Position: j})
		}
		items[i] = item
	}
	return items
}

func stateAt(items []*models.ScheduleItem, itemIdx, slideIdx int) models.PresentationState {
	return models.PresentationState{
		ID:             models.PresentationStateRowID,
		CurrentItemID:  &items[itemIdx].ID,
		CurrentSlideID: &items[itemIdx].Slides[slideIdx].ID,
		IsPresenting:   true,
	}
}

func TestApplyPatch_MergesOnlySetFields(t *testing.T) {
	itemID := uuid.New()
	state := models.PresentationState{CurrentItemID: &itemID, IsPresenting: true}

	hidden := true
	next := ApplyPatch(state, Patch{IsHidden: &hidden}, testNow)

	require.NotNil(t, next.CurrentItemID)
	assert.Equal(t, itemID, *next.CurrentItemID)
	assert.True(t, next.IsPresenting)
	assert.True(t, next.IsHidden)
	assert.Equal(t, testNow, next.UpdatedAt)
}

func TestApplyPatch_ExplicitNullClearsField(t *testing.T) {
	itemID := uuid.New()
	slideID := uuid.New()
	state := models.PresentationState{CurrentItemID: &itemID, CurrentSlideID: &slideID}

	next := ApplyPatch(state, Patch{
		CurrentItemID:  OptionalUUID{Set: true},
		CurrentSlideID: OptionalUUID{Set: true},
	}, testNow)

	assert.Nil(t, next.CurrentItemID)
	assert.Nil(t, next.CurrentSlideID)
}

func TestApplyPatch_DoesNotMutateInput(t *testing.T) {
	itemID := uuid.New()
	state := models.PresentationState{CurrentItemID: &itemID}

	ApplyPatch(state, Patch{CurrentItemID: OptionalUUID{Set: true}}, testNow)

	require.NotNil(t, state.CurrentItemID)
	assert.Equal(t, itemID, *state.CurrentItemID)
}

func TestStop_ClearsSessionKeepsLastSlide(t *testing.T) {
	itemID := uuid.New()
	slideID := uuid.New()
	lastID := uuid.New()
	state := models.PresentationState{
		CurrentItemID:  &itemID,
		CurrentSlideID: &slideID,
		LastSlideID:    &lastID,
		IsPresenting:   true,
	}

	next := Stop(state, testNow)

	assert.Nil(t, next.CurrentItemID)
	assert.Nil(t, next.CurrentSlideID)
	assert.False(t, next.IsPresenting)
	require.NotNil(t, next.LastSlideID)
	assert.Equal(t, lastID, *next.LastSlideID)
}

func TestHideShow_RoundTrip(t *testing.T) {
	items := buildItems(0, 3)
	state := stateAt(items, 1, 1)

	hidden := Hide(state, testNow)
	assert.True(t, hidden.IsHidden)
	assert.Nil(t, hidden.CurrentSlideID)
	require.NotNil(t, hidden.LastSlideID)
	assert.Equal(t, *state.CurrentSlideID, *hidden.LastSlideID)
	require.NotNil(t, hidden.CurrentItemID)
	assert.Equal(t, *state.CurrentItemID, *hidden.CurrentItemID)

	shown := Show(hidden, testNow)
	assert.False(t, shown.IsHidden)
	require.NotNil(t, shown.CurrentSlideID)
	assert.Equal(t, *state.CurrentSlideID, *shown.CurrentSlideID)
}

func TestShow_WithNothingHiddenIsHarmless(t *testing.T) {
	next := Show(models.PresentationState{IsHidden: true}, testNow)
	assert.False(t, next.IsHidden)
	assert.Nil(t, next.CurrentSlideID)
}

func TestNavigate_WalksEveryPairInDocumentOrder(t *testing.T) {
	// Middle item has zero slides and must be skipped transparently
	items := buildItems(2, 0, 3)
	state := models.PresentationState{IsPresenting: true}

	type pair struct {
		item  uuid.UUID
		slide uuid.UUID
	}
	want := []pair{
		{items[0].ID, items[0].Slides[0].ID},
		{items[0].ID, items[0].Slides[1].ID},
		{items[2].ID, items[2].Slides[0].ID},
		{items[2].ID, items[2].Slides[1].ID},
		{items[2].ID, items[2].Slides[2].ID},
	}

	for i, expected := range want {
		state = Navigate(state, items, DirectionNext, testNow)
		require.NotNil(t, state.CurrentItemID, "step %d", i)
		require.NotNil(t, state.CurrentSlideID, "step %d", i)
		assert.Equal(t, expected.item, *state.CurrentItemID, "step %d item", i)
		assert.Equal(t, expected.slide, *state.CurrentSlideID, "step %d slide", i)
	}

	// Walk back to the start
	for i := len(want) - 2; i >= 0; i-- {
		state = Navigate(state, items, DirectionPrev, testNow)
		assert.Equal(t, want[i].slide, *state.CurrentSlideID, "reverse to %d", i)
	}
}

func TestNavigate_NoOpAtEnds(t *testing.T) {
	items := buildItems(2)

	last := stateAt(items, 0, 1)
	next := Navigate(last, items, DirectionNext, testNow)
	assert.Equal(t, *last.CurrentSlideID, *next.CurrentSlideID)
	assert.Equal(t, testNow, next.UpdatedAt)

	first := stateAt(items, 0, 0)
	prev := Navigate(first, items, DirectionPrev, testNow)
	assert.Equal(t, *first.CurrentSlideID, *prev.CurrentSlideID)
}

func TestNavigate_EntryWithNoCurrentSlide(t *testing.T) {
	items := buildItems(1, 2)
	state := models.PresentationState{}

	next := Navigate(state, items, DirectionNext, testNow)
	require.NotNil(t, next.CurrentSlideID)
	assert.Equal(t, items[0].Slides[0].ID, *next.CurrentSlideID)

	prev := Navigate(state, items, DirectionPrev, testNow)
	require.NotNil(t, prev.CurrentSlideID)
	assert.Equal(t, items[1].Slides[1].ID, *prev.CurrentSlideID)
}

func TestNavigate_EmptyScheduleIsNoOp(t *testing.T) {
	state := models.PresentationState{IsPresenting: true}

	next := Navigate(state, nil, DirectionNext, testNow)
	assert.Nil(t, next.CurrentItemID)
	assert.Nil(t, next.CurrentSlideID)
	assert.Equal(t, testNow, next.UpdatedAt)
}

func TestNavigate_StaleSlideTreatedAsNoCurrent(t *testing.T) {
	items := buildItems(2)
	goneID := uuid.New()
	state := models.PresentationState{CurrentSlideID: &goneID}

	next := Navigate(state, items, DirectionNext, testNow)
	require.NotNil(t, next.CurrentSlideID)
	assert.Equal(t, items[0].Slides[0].ID, *next.CurrentSlideID)
}
