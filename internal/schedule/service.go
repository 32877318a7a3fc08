// Package schedule implements the ordered store of presentable items.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/showdeck/showdeck/internal/db"
	"github.com/showdeck/showdeck/internal/logger"
	"github.com/showdeck/showdeck/internal/models"
)

// Service handles business logic for schedule operations
type Service struct {
	repos *db.Repositories
}

// NewService creates a new schedule service instance
func NewService(repos *db.Repositories) *Service {
	return &Service{repos: repos}
}

// NewItemInput describes a schedule item to be inserted
type NewItemInput struct {
	Type      models.ItemType
	Title     string
	ContentID *uuid.UUID
	Slides    []string
}

// InsertAfter creates a new item directly after the anchor, or at the end of
// the schedule when anchorID is nil. Child slides are created in the given
// order within the same operation.
func (s *Service) InsertAfter(ctx context.Context, anchorID *uuid.UUID, input NewItemInput) (*models.ScheduleItem, error) {
	if !input.Type.IsValid() {
		return nil, fmt.Errorf("failed to insert schedule item: %w", ErrInvalidItemType)
	}
	if input.Title == "" {
		return nil, fmt.Errorf("failed to insert schedule item: %w", ErrEmptyTitle)
	}

	position, err := s.resolveInsertPosition(ctx, anchorID)
	if err != nil {
		return nil, err
	}

	item := models.NewScheduleItem(input.Type, input.Title, input.ContentID, position)
	if err := s.repos.ScheduleItems.InsertAt(ctx, item); err != nil {
		logger.Log.Error().
			Err(err).
			Str("title", input.Title).
			Int("position", position).
			Msg("Failed to insert schedule item")
		return nil, fmt.Errorf("failed to insert schedule item: %w", err)
	}

	for i, body := range input.Slides {
		slide := models.NewSlide(item.ID, i, body)
		if err := s.repos.Slides.Create(ctx, slide); err != nil {
			return nil, fmt.Errorf("failed to insert schedule item slides: %w", err)
		}
		item.Slides = append(item.Slides, slide)
	}

	logger.Log.Info().
		Str("item_id", item.ID.String()).
		Str("type", string(item.Type)).
		Int("position", position).
		Int("slide_count", len(item.Slides)).
		Msg("Schedule item inserted")

	return item, nil
}

// resolveInsertPosition maps an optional anchor to the dense position the new
// item should occupy.
func (s *Service) resolveInsertPosition(ctx context.Context, anchorID *uuid.UUID) (int, error) {
	if anchorID == nil {
		count, err := s.repos.ScheduleItems.Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve insert position: %w", err)
		}
		return count, nil
	}

	anchor, err := s.repos.ScheduleItems.GetByID(ctx, *anchorID)
	if err != nil {
		if db.IsNotFound(err) {
			logger.Log.Warn().
				Str("anchor_id", anchorID.String()).
				Msg("Insert failed: anchor not found")
			return 0, fmt.Errorf("failed to resolve insert position: %w", ErrAnchorNotFound)
		}
		return 0, fmt.Errorf("failed to resolve insert position: %w", err)
	}
	return anchor.Position + 1, nil
}

// Get retrieves a schedule item with its slides
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.ScheduleItem, error) {
	item, err := s.repos.ScheduleItems.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, fmt.Errorf("failed to get schedule item: %w", ErrItemNotFound)
		}
		return nil, fmt.Errorf("failed to get schedule item: %w", err)
	}
	return item, nil
}

// List retrieves the whole schedule in position order, slides included
func (s *Service) List(ctx context.Context) ([]*models.ScheduleItem, error) {
	items, err := s.repos.ScheduleItems.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule: %w", err)
	}
	return items, nil
}

// ItemPatch describes a partial update to a schedule item
type ItemPatch struct {
	Title     *string
	ContentID *uuid.UUID
}

// Update merge-patches mutable item fields
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch ItemPatch) (*models.ScheduleItem, error) {
	item, err := s.repos.ScheduleItems.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, fmt.Errorf("failed to update schedule item: %w", ErrItemNotFound)
		}
		return nil, fmt.Errorf("failed to update schedule item: %w", err)
	}

	if patch.Title != nil {
		if *patch.Title == "" {
			return nil, fmt.Errorf("failed to update schedule item: %w", ErrEmptyTitle)
		}
		item.Title = *patch.Title
	}
	if patch.ContentID != nil {
		item.ContentID = patch.ContentID
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.repos.ScheduleItems.Update(ctx, item); err != nil {
		logger.Log.Error().
			Err(err).
			Str("item_id", id.String()).
			Msg("Failed to update schedule item")
		return nil, fmt.Errorf("failed to update schedule item: %w", err)
	}
	return item, nil
}

// SetExpanded toggles an item's expansion flag
func (s *Service) SetExpanded(ctx context.Context, id uuid.UUID, expanded bool) error {
	if err := s.repos.ScheduleItems.SetExpanded(ctx, id, expanded); err != nil {
		if db.IsNotFound(err) {
			return fmt.Errorf("failed to set expanded: %w", ErrItemNotFound)
		}
		return fmt.Errorf("failed to set expanded: %w", err)
	}
	return nil
}

// Delete removes an item, cascading to its slides
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repos.ScheduleItems.Delete(ctx, id); err != nil {
		if db.IsNotFound(err) {
			logger.Log.Warn().
				Str("item_id", id.String()).
				Msg("Delete failed: schedule item not found")
			return fmt.Errorf("failed to delete schedule item: %w", ErrItemNotFound)
		}
		return fmt.Errorf("failed to delete schedule item: %w", err)
	}

	logger.Log.Info().
		Str("item_id", id.String()).
		Msg("Schedule item deleted")
	return nil
}

// Reorder atomically reassigns dense positions 0..n-1 to exactly match the
// given permutation. Rejected wholesale when the id set differs from current
// membership, so no reader ever observes a partial order.
func (s *Service) Reorder(ctx context.Context, orderedIDs []uuid.UUID) error {
	if err := s.repos.ScheduleItems.Reorder(ctx, orderedIDs); err != nil {
		if db.IsReorderMismatch(err) {
			logger.Log.Warn().
				Int("item_count", len(orderedIDs)).
				Msg("Schedule reorder rejected: membership mismatch")
			return fmt.Errorf("failed to reorder schedule: %w", ErrReorderMismatch)
		}
		logger.Log.Error().
			Err(err).
			Int("item_count", len(orderedIDs)).
			Msg("Failed to reorder schedule")
		return fmt.Errorf("failed to reorder schedule: %w", err)
	}

	logger.Log.Info().
		Int("item_count", len(orderedIDs)).
		Msg("Schedule reordered")
	return nil
}

// AddSlide appends a slide to the end of an item's slide sequence
func (s *Service) AddSlide(ctx context.Context, itemID uuid.UUID, body string) (*models.Slide, error) {
	if _, err := s.repos.ScheduleItems.GetByID(ctx, itemID); err != nil {
		if db.IsNotFound(err) {
			return nil, fmt.Errorf("failed to add slide: %w", ErrItemNotFound)
		}
		return nil, fmt.Errorf("failed to add slide: %w", err)
	}

	count, err := s.repos.Slides.CountByItemID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to add slide: %w", err)
	}

	slide := models.NewSlide(itemID, count, body)
	if err := s.repos.Slides.Create(ctx, slide); err != nil {
		return nil, fmt.Errorf("failed to add slide: %w", err)
	}
	return slide, nil
}

// RemoveSlide deletes a slide and renumbers its item's remaining slides
func (s *Service) RemoveSlide(ctx context.Context, slideID uuid.UUID) error {
	if err := s.repos.Slides.Delete(ctx, slideID); err != nil {
		if db.IsNotFound(err) {
			return fmt.Errorf("failed to remove slide: %w", ErrSlideNotFound)
		}
		return fmt.Errorf("failed to remove slide: %w", err)
	}
	return nil
}
