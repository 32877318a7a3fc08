package presentation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/showdeck/showdeck/internal/db"
	"github.com/showdeck/showdeck/internal/logger"
	"github.com/showdeck/showdeck/internal/models"
)

// Service owns the presentation state: it serializes transitions, persists
// the resulting row and returns the new state. It performs no broadcast —
// callers push the returned state through the hub afterward.
type Service struct {
	repos *db.Repositories
	mu    sync.Mutex
	state *models.PresentationState
}

// NewService creates a new presentation service instance
func NewService(repos *db.Repositories) *Service {
	return &Service{repos: repos}
}

// Current returns a copy of the present state, loading it on first use
func (s *Service) Current(ctx context.Context) (models.PresentationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return models.PresentationState{}, err
	}
	return s.state.Clone(), nil
}

// ensureLoaded lazily loads the persisted state row. Must hold s.mu.
func (s *Service) ensureLoaded(ctx context.Context) error {
	if s.state != nil {
		return nil
	}
	state, err := s.repos.Presentation.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load presentation state: %w", err)
	}
	s.state = state
	return nil
}

// commit persists the transitioned state and swaps it in. Must hold s.mu.
func (s *Service) commit(ctx context.Context, next models.PresentationState) (models.PresentationState, error) {
	if err := s.repos.Presentation.Save(ctx, &next); err != nil {
		return models.PresentationState{}, fmt.Errorf("failed to persist presentation state: %w", err)
	}
	s.state = &next
	return next.Clone(), nil
}

// Update merge-patches the allowed mutable fields atomically
func (s *Service) Update(ctx context.Context, patch Patch) (models.PresentationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return models.PresentationState{}, err
	}

	next := ApplyPatch(*s.state, patch, time.Now().UTC())
	if err := s.validate(ctx, next); err != nil {
		return models.PresentationState{}, err
	}

	state, err := s.commit(ctx, next)
	if err != nil {
		return models.PresentationState{}, err
	}

	logger.Log.Debug().
		Bool("presenting", state.IsPresenting).
		Bool("hidden", state.IsHidden).
		Msg("Presentation state updated")
	return state, nil
}

// validate enforces the state invariant: a set CurrentSlideID must belong to
// CurrentItemID's slide set, and a set CurrentItemID must exist.
func (s *Service) validate(ctx context.Context, state models.PresentationState) error {
	if state.CurrentItemID == nil {
		if state.CurrentSlideID != nil {
			return fmt.Errorf("failed to validate presentation state: %w", ErrSlideNotInItem)
		}
		return nil
	}

	item, err := s.repos.ScheduleItems.GetByID(ctx, *state.CurrentItemID)
	if err != nil {
		if db.IsNotFound(err) {
			return fmt.Errorf("failed to validate presentation state: %w", ErrItemNotFound)
		}
		return fmt.Errorf("failed to validate presentation state: %w", err)
	}

	if state.CurrentSlideID == nil {
		return nil
	}
	for _, slide := range item.Slides {
		if slide.ID == *state.CurrentSlideID {
			return nil
		}
	}
	return fmt.Errorf("failed to validate presentation state: %w", ErrSlideNotInItem)
}

// Stop ends the presentation session
func (s *Service) Stop(ctx context.Context) (models.PresentationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return models.PresentationState{}, err
	}

	state, err := s.commit(ctx, Stop(*s.state, time.Now().UTC()))
	if err != nil {
		return models.PresentationState{}, err
	}

	logger.Log.Info().Msg("Presentation stopped")
	return state, nil
}

// Hide blanks the output, remembering the current slide for Show
func (s *Service) Hide(ctx context.Context) (models.PresentationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return models.PresentationState{}, err
	}

	state, err := s.commit(ctx, Hide(*s.state, time.Now().UTC()))
	if err != nil {
		return models.PresentationState{}, err
	}

	logger.Log.Debug().Msg("Presentation hidden")
	return state, nil
}

// Show restores the slide saved by Hide
func (s *Service) Show(ctx context.Context) (models.PresentationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return models.PresentationState{}, err
	}

	state, err := s.commit(ctx, Show(*s.state, time.Now().UTC()))
	if err != nil {
		return models.PresentationState{}, err
	}

	logger.Log.Debug().Msg("Presentation shown")
	return state, nil
}

// Navigate moves to the adjacent slide in document order
func (s *Service) Navigate(ctx context.Context, dir Direction) (models.PresentationState, error) {
	if !dir.IsValid() {
		return models.PresentationState{}, fmt.Errorf("failed to navigate: %w", ErrInvalidDirection)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return models.PresentationState{}, err
	}

	items, err := s.repos.ScheduleItems.List(ctx)
	if err != nil {
		return models.PresentationState{}, fmt.Errorf("failed to navigate: %w", err)
	}

	state, err := s.commit(ctx, Navigate(*s.state, items, dir, time.Now().UTC()))
	if err != nil {
		return models.PresentationState{}, err
	}

	logger.Log.Debug().
		Str("direction", string(dir)).
		Msg("Presentation navigated")
	return state, nil
}
