package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/showdeck/showdeck/internal/models"
	"gorm.io/gorm"
)

// QueueItemRepository handles database operations for now-playing queue entries
type QueueItemRepository struct {
	db *DB
}

// NewQueueItemRepository creates a new queue item repository
func NewQueueItemRepository(db *DB) *QueueItemRepository {
	return &QueueItemRepository{db: db}
}

// Create inserts a new queue item into the database
func (r *QueueItemRepository) Create(ctx context.Context, item *models.QueueItem) error {
	result := r.db.WithContext(ctx).Create(item)
	if result.Error != nil {
		return fmt.Errorf("failed to create queue item: %w", MapGormError(result.Error))
	}
	return nil
}

// CreateMany inserts queue items in one batched INSERT
func (r *QueueItemRepository) CreateMany(ctx context.Context, items []*models.QueueItem) error {
	if len(items) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Create(&items)
	if result.Error != nil {
		return fmt.Errorf("failed to create queue items: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a queue item by its UUID
func (r *QueueItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.QueueItem, error) {
	var item models.QueueItem
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&item)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &item, nil
}

// List retrieves all queue items ordered by sort order
func (r *QueueItemRepository) List(ctx context.Context) ([]*models.QueueItem, error) {
	var items []*models.QueueItem
	result := r.db.WithContext(ctx).Order("sort_order ASC").Find(&items)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list queue items: %w", MapGormError(result.Error))
	}
	return items, nil
}

// Delete removes a queue item and renumbers the remaining entries
func (r *QueueItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		var item models.QueueItem
		if err := tx.Where("id = ?", id.String()).First(&item).Error; err != nil {
			return MapGormError(err)
		}

		if err := tx.Where("id = ?", id.String()).Delete(&models.QueueItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete queue item: %w", MapGormError(err))
		}

		result := tx.Model(&models.QueueItem{}).
			Where("sort_order > ?", item.SortOrder).
			Update("sort_order", gorm.Expr("sort_order - 1"))
		if result.Error != nil {
			return fmt.Errorf("failed to renumber queue: %w", MapGormError(result.Error))
		}
		return nil
	})
}

// ReplaceAll swaps the whole queue for the given items in one transaction
func (r *QueueItemRepository) ReplaceAll(ctx context.Context, items []*models.QueueItem) error {
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.QueueItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear queue: %w", MapGormError(err))
		}
		if len(items) == 0 {
			return nil
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to insert queue items: %w", MapGormError(err))
		}
		return nil
	})
}

// Reorder atomically reassigns dense sort orders 0..n-1 to match orderedIDs.
// Fails with ErrReorderMismatch, applying nothing, when the id set differs
// from current membership.
func (r *QueueItemRepository) Reorder(ctx context.Context, orderedIDs []uuid.UUID) error {
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		var currentIDs []string
		if err := tx.Model(&models.QueueItem{}).Pluck("id", &currentIDs).Error; err != nil {
			return fmt.Errorf("failed to read queue membership: %w", MapGormError(err))
		}
		if err := checkMembership(currentIDs, orderedIDs); err != nil {
			return err
		}
		return reorderDense(tx, "queue_items", "sort_order", orderedIDs)
	})
}

// Count returns the number of queue items
func (r *QueueItemRepository) Count(ctx context.Context) (int, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.QueueItem{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count queue items: %w", MapGormError(result.Error))
	}
	return int(count), nil
}
