package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/showdeck/showdeck/internal/models"
	"gorm.io/gorm"
)

// SlideRepository handles database operations for slides
type SlideRepository struct {
	db *DB
}

// NewSlideRepository creates a new slide repository
func NewSlideRepository(db *DB) *SlideRepository {
	return &SlideRepository{db: db}
}

// Create inserts a new slide into the database
func (r *SlideRepository) Create(ctx context.Context, slide *models.Slide) error {
	result := r.db.WithContext(ctx).Create(slide)
	if result.Error != nil {
		return fmt.Errorf("failed to create slide: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a slide by its UUID
func (r *SlideRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Slide, error) {
	var slide models.Slide
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&slide)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &slide, nil
}

// GetByItemID retrieves all slides for a schedule item, ordered by position
func (r *SlideRepository) GetByItemID(ctx context.Context, itemID uuid.UUID) ([]*models.Slide, error) {
	var slides []*models.Slide
	result := r.db.WithContext(ctx).
		Where("item_id = ?", itemID.String()).
		Order("position ASC").
		Find(&slides)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get slides by item: %w", MapGormError(result.Error))
	}
	return slides, nil
}

// Delete removes a slide and renumbers the remaining slides of its item
func (r *SlideRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		var slide models.Slide
		if err := tx.Where("id = ?", id.String()).First(&slide).Error; err != nil {
			return MapGormError(err)
		}

		if err := tx.Where("id = ?", id.String()).Delete(&models.Slide{}).Error; err != nil {
			return fmt.Errorf("failed to delete slide: %w", MapGormError(err))
		}

		result := tx.Model(&models.Slide{}).
			Where("item_id = ? AND position > ?", slide.ItemID.String(), slide.Position).
			Update("position", gorm.Expr("position - 1"))
		if result.Error != nil {
			return fmt.Errorf("failed to renumber slide positions: %w", MapGormError(result.Error))
		}
		return nil
	})
}

// CountByItemID returns the number of slides belonging to a schedule item
func (r *SlideRepository) CountByItemID(ctx context.Context, itemID uuid.UUID) (int, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&models.Slide{}).
		Where("item_id = ?", itemID.String()).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count slides: %w", MapGormError(result.Error))
	}
	return int(count), nil
}
