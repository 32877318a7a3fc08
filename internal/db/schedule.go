package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/showdeck/showdeck/internal/models"
	"gorm.io/gorm"
)

// ScheduleItemRepository handles database operations for schedule items
type ScheduleItemRepository struct {
	db *DB
}

// NewScheduleItemRepository creates a new schedule item repository
func NewScheduleItemRepository(db *DB) *ScheduleItemRepository {
	return &ScheduleItemRepository{db: db}
}

// Create inserts a new schedule item into the database
func (r *ScheduleItemRepository) Create(ctx context.Context, item *models.ScheduleItem) error {
	result := r.db.WithContext(ctx).Create(item)
	if result.Error != nil {
		return fmt.Errorf("failed to create schedule item: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a schedule item by its UUID, with slides preloaded in order
func (r *ScheduleItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ScheduleItem, error) {
	var item models.ScheduleItem
	result := r.db.WithContext(ctx).
		Preload("Slides", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		Where("id = ?", id.String()).
		First(&item)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &item, nil
}

// List retrieves all schedule items ordered by position, slides preloaded in order
func (r *ScheduleItemRepository) List(ctx context.Context) ([]*models.ScheduleItem, error) {
	var items []*models.ScheduleItem
	result := r.db.WithContext(ctx).
		Preload("Slides", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		Order("position ASC").
		Find(&items)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list schedule items: %w", MapGormError(result.Error))
	}
	return items, nil
}

// Update saves changes to an existing schedule item
func (r *ScheduleItemRepository) Update(ctx context.Context, item *models.ScheduleItem) error {
	result := r.db.WithContext(ctx).
		Model(&models.ScheduleItem{}).
		Where("id = ?", item.ID.String()).
		Updates(map[string]interface{}{
			"title":      item.Title,
			"content_id": uuidToNullable(item.ContentID),
			"expanded":   item.Expanded,
			"updated_at": item.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update schedule item: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetExpanded toggles the expansion flag for a schedule item
func (r *ScheduleItemRepository) SetExpanded(ctx context.Context, id uuid.UUID, expanded bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.ScheduleItem{}).
		Where("id = ?", id.String()).
		Update("expanded", expanded)
	if result.Error != nil {
		return fmt.Errorf("failed to set expanded flag: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertAt creates an item at the given position, shifting later items down,
// all within a single transaction.
func (r *ScheduleItemRepository) InsertAt(ctx context.Context, item *models.ScheduleItem) error {
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		result := tx.Model(&models.ScheduleItem{}).
			Where("position >= ?", item.Position).
			Update("position", gorm.Expr("position + 1"))
		if result.Error != nil {
			return fmt.Errorf("failed to shift schedule positions: %w", MapGormError(result.Error))
		}

		if err := tx.Create(item).Error; err != nil {
			return fmt.Errorf("failed to create schedule item: %w", MapGormError(err))
		}
		return nil
	})
}

// Delete removes an item, cascades to its slides, and renumbers the
// remaining items so positions stay dense. One transaction.
func (r *ScheduleItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		var item models.ScheduleItem
		if err := tx.Where("id = ?", id.String()).First(&item).Error; err != nil {
			return MapGormError(err)
		}

		if err := tx.Where("item_id = ?", id.String()).Delete(&models.Slide{}).Error; err != nil {
			return fmt.Errorf("failed to delete slides: %w", MapGormError(err))
		}

		if err := tx.Where("id = ?", id.String()).Delete(&models.ScheduleItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete schedule item: %w", MapGormError(err))
		}

		result := tx.Model(&models.ScheduleItem{}).
			Where("position > ?", item.Position).
			Update("position", gorm.Expr("position - 1"))
		if result.Error != nil {
			return fmt.Errorf("failed to renumber schedule positions: %w", MapGormError(result.Error))
		}
		return nil
	})
}

// Count returns the number of schedule items
func (r *ScheduleItemRepository) Count(ctx context.Context) (int, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.ScheduleItem{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count schedule items: %w", MapGormError(result.Error))
	}
	return int(count), nil
}

// Reorder atomically reassigns dense positions 0..n-1 to match orderedIDs.
// Fails with ErrReorderMismatch, applying nothing, when the id set differs
// from current membership.
func (r *ScheduleItemRepository) Reorder(ctx context.Context, orderedIDs []uuid.UUID) error {
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		var currentIDs []string
		if err := tx.Model(&models.ScheduleItem{}).Pluck("id", &currentIDs).Error; err != nil {
			return fmt.Errorf("failed to read schedule membership: %w", MapGormError(err))
		}
		if err := checkMembership(currentIDs, orderedIDs); err != nil {
			return err
		}
		return reorderDense(tx, "schedule_items", "position", orderedIDs)
	})
}

func uuidToNullable(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return id.String()
}
