package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/showdeck/showdeck/internal/models"
	"gorm.io/gorm"
)

// PresentationStateRepository persists the single presentation state row
type PresentationStateRepository struct {
	db *DB
}

// NewPresentationStateRepository creates a new presentation state repository
func NewPresentationStateRepository(db *DB) *PresentationStateRepository {
	return &PresentationStateRepository{db: db}
}

// Get loads the state row, creating a default one if none exists yet
func (r *PresentationStateRepository) Get(ctx context.Context) (*models.PresentationState, error) {
	var state models.PresentationState
	result := r.db.WithContext(ctx).
		Where("id = ?", models.PresentationStateRowID).
		First(&state)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			state = models.PresentationState{
				ID:        models.PresentationStateRowID,
				UpdatedAt: time.Now().UTC(),
			}
			if err := r.db.WithContext(ctx).Create(&state).Error; err != nil {
				return nil, fmt.Errorf("failed to create presentation state row: %w", MapGormError(err))
			}
			return &state, nil
		}
		return nil, fmt.Errorf("failed to load presentation state: %w", MapGormError(result.Error))
	}
	return &state, nil
}

// Save writes the whole state row in one statement
func (r *PresentationStateRepository) Save(ctx context.Context, state *models.PresentationState) error {
	state.ID = models.PresentationStateRowID
	result := r.db.WithContext(ctx).
		Model(&models.PresentationState{}).
		Where("id = ?", models.PresentationStateRowID).
		Updates(map[string]interface{}{
			"current_item_id":  uuidToNullable(state.CurrentItemID),
			"current_slide_id": uuidToNullable(state.CurrentSlideID),
			"last_slide_id":    uuidToNullable(state.LastSlideID),
			"is_presenting":    state.IsPresenting,
			"is_hidden":        state.IsHidden,
			"updated_at":       state.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save presentation state: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		if err := r.db.WithContext(ctx).Create(state).Error; err != nil {
			return fmt.Errorf("failed to create presentation state row: %w", MapGormError(err))
		}
	}
	return nil
}
