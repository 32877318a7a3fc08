package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/showdeck/showdeck/internal/models"
)

// MediaFileRepository handles database operations for media files
type MediaFileRepository struct {
	db *DB
}

// NewMediaFileRepository creates a new media file repository
func NewMediaFileRepository(db *DB) *MediaFileRepository {
	return &MediaFileRepository{db: db}
}

// Create inserts a new media file into the database
func (r *MediaFileRepository) Create(ctx context.Context, file *models.MediaFile) error {
	result := r.db.WithContext(ctx).Create(file)
	if result.Error != nil {
		return fmt.Errorf("failed to create media file: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a media file by its UUID
func (r *MediaFileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error) {
	var file models.MediaFile
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&file)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &file, nil
}

// List retrieves all media files ordered by title
func (r *MediaFileRepository) List(ctx context.Context) ([]*models.MediaFile, error) {
	var files []*models.MediaFile
	result := r.db.WithContext(ctx).Order("title ASC").Find(&files)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list media files: %w", MapGormError(result.Error))
	}
	return files, nil
}

// ExistsByIDs checks which of the given media file ids exist, in one query
func (r *MediaFileRepository) ExistsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = id.String()
	}

	var found []string
	result := r.db.WithContext(ctx).
		Model(&models.MediaFile{}).
		Where("id IN ?", idStrs).
		Pluck("id", &found)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to check media existence: %w", MapGormError(result.Error))
	}

	foundSet := make(map[string]struct{}, len(found))
	for _, id := range found {
		foundSet[id] = struct{}{}
	}

	exists := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		_, ok := foundSet[id.String()]
		exists[id] = ok
	}
	return exists, nil
}

// Delete removes a media file by its UUID
func (r *MediaFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&models.MediaFile{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete media file: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
