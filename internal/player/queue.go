package player

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/showdeck/showdeck/internal/db"
	"github.com/showdeck/showdeck/internal/logger"
	"github.com/showdeck/showdeck/internal/models"
)

// QueueService manages the now-playing queue. Entries are persisted so
// playback context survives restarts, though playback itself never
// auto-resumes. mu serializes mutations: appends read the current length to
// pick the next sort order, and two interleaved appends would otherwise
// assign the same one.
type QueueService struct {
	mu    sync.Mutex
	repos *db.Repositories
}

// NewQueueService creates a new queue service instance
func NewQueueService(repos *db.Repositories) *QueueService {
	return &QueueService{repos: repos}
}

// Insert appends a single file to the end of the queue
func (s *QueueService) Insert(ctx context.Context, fileID uuid.UUID) (*models.QueueItem, error) {
	items, err := s.InsertMany(ctx, []uuid.UUID{fileID})
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

// InsertMany appends files to the end of the queue with densely increasing
// sort orders, validating existence in one query and inserting in one batch.
func (s *QueueService) InsertMany(ctx context.Context, fileIDs []uuid.UUID) ([]*models.QueueItem, error) {
	if len(fileIDs) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateFiles(ctx, fileIDs); err != nil {
		return nil, fmt.Errorf("failed to insert queue items: %w", err)
	}

	count, err := s.repos.QueueItems.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to insert queue items: %w", err)
	}

	items := make([]*models.QueueItem, len(fileIDs))
	for i, fileID := range fileIDs {
		items[i] = models.NewQueueItem(fileID, count+i)
	}

	if err := s.repos.QueueItems.CreateMany(ctx, items); err != nil {
		logger.Log.Error().
			Err(err).
			Int("count", len(items)).
			Msg("Failed to insert queue items")
		return nil, fmt.Errorf("failed to insert queue items: %w", err)
	}

	logger.Log.Info().
		Int("count", len(items)).
		Msg("Queue items inserted")
	return items, nil
}

// validateFiles checks that every referenced media file exists
func (s *QueueService) validateFiles(ctx context.Context, fileIDs []uuid.UUID) error {
	exists, err := s.repos.MediaFiles.ExistsByIDs(ctx, fileIDs)
	if err != nil {
		return err
	}
	for _, fileID := range fileIDs {
		if !exists[fileID] {
			logger.Log.Warn().
				Str("file_id", fileID.String()).
				Msg("Queue mutation references unknown media file")
			return fmt.Errorf("file %s: %w", fileID, ErrFileNotFound)
		}
	}
	return nil
}

// Remove deletes one queue entry; remaining sort orders stay dense
func (s *QueueService) Remove(ctx context.Context, itemID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repos.QueueItems.Delete(ctx, itemID); err != nil {
		if db.IsNotFound(err) {
			return fmt.Errorf("failed to remove queue item: %w", ErrQueueItemNotFound)
		}
		return fmt.Errorf("failed to remove queue item: %w", err)
	}
	return nil
}

// SetAll replaces the whole queue with the given files in order
func (s *QueueService) SetAll(ctx context.Context, fileIDs []uuid.UUID) ([]*models.QueueItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(fileIDs) > 0 {
		if err := s.validateFiles(ctx, fileIDs); err != nil {
			return nil, fmt.Errorf("failed to replace queue: %w", err)
		}
	}

	items := make([]*models.QueueItem, len(fileIDs))
	for i, fileID := range fileIDs {
		items[i] = models.NewQueueItem(fileID, i)
	}

	if err := s.repos.QueueItems.ReplaceAll(ctx, items); err != nil {
		return nil, fmt.Errorf("failed to replace queue: %w", err)
	}

	logger.Log.Info().
		Int("count", len(items)).
		Msg("Queue replaced")
	return items, nil
}

// Reorder atomically reassigns dense sort orders to match the permutation.
// One batched write, so no reader observes a torn order.
func (s *QueueService) Reorder(ctx context.Context, orderedIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repos.QueueItems.Reorder(ctx, orderedIDs); err != nil {
		if db.IsReorderMismatch(err) {
			logger.Log.Warn().
				Int("item_count", len(orderedIDs)).
				Msg("Queue reorder rejected: membership mismatch")
			return fmt.Errorf("failed to reorder queue: %w", ErrReorderMismatch)
		}
		return fmt.Errorf("failed to reorder queue: %w", err)
	}

	logger.Log.Info().
		Int("item_count", len(orderedIDs)).
		Msg("Queue reordered")
	return nil
}

// List returns the queue in sort order
func (s *QueueService) List(ctx context.Context) ([]*models.QueueItem, error) {
	items, err := s.repos.QueueItems.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	return items, nil
}

// Length returns the number of queue entries
func (s *QueueService) Length(ctx context.Context) (int, error) {
	count, err := s.repos.QueueItems.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count queue: %w", err)
	}
	return count, nil
}

// GetAtIndex returns the queue entry at the given position
func (s *QueueService) GetAtIndex(ctx context.Context, index int) (*models.QueueItem, error) {
	items, err := s.repos.QueueItems.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue: %w", err)
	}
	if index < 0 || index >= len(items) {
		return nil, fmt.Errorf("index %d of %d: %w", index, len(items), ErrQueueIndexOutOfRange)
	}
	return items[index], nil
}

// TrackAt resolves the queue entry at the given position into a playable
// track snapshot.
func (s *QueueService) TrackAt(ctx context.Context, index int) (*TrackInfo, error) {
	item, err := s.GetAtIndex(ctx, index)
	if err != nil {
		return nil, err
	}

	file, err := s.repos.MediaFiles.GetByID(ctx, item.FileID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, fmt.Errorf("failed to resolve track at %d: %w", index, ErrFileNotFound)
		}
		return nil, fmt.Errorf("failed to resolve track at %d: %w", index, err)
	}

	return &TrackInfo{
		FileID:   file.ID,
		Title:    file.Title,
		FilePath: file.FilePath,
		Duration: file.Duration,
	}, nil
}
