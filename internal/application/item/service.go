package item

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/barterhub/barterhub/internal/domain/apperr"
	domain "github.com/barterhub/barterhub/internal/domain/item"
	"github.com/barterhub/barterhub/internal/domain/location"
	"github.com/barterhub/barterhub/internal/security"
)

// Service handles the item catalog.
type Service struct {
	repo         domain.Repository
	locationRepo location.Repository
	logger       zerolog.Logger
}

// NewService creates an item service.
func NewService(repo domain.Repository, locationRepo location.Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		locationRepo: locationRepo,
		logger:       logger.With().Str("service", "item").Logger(),
	}
}

// CreateInput defines item creation input.
type CreateInput struct {
	Title          string
	Description    string
	LocationID     *uuid.UUID
	EstimatedValue *float64
}

// CreateItem lists a new item, defaulting to the available status.
func (s *Service) CreateItem(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*domain.Item, error) {
	title := security.SanitizeTextN(input.Title, 200)
	if title == "" {
		return nil, apperr.Field("title", "title is required")
	}
	if input.EstimatedValue != nil && *input.EstimatedValue < 0 {
		return nil, apperr.Field("estimated_value", "estimated value must not be negative")
	}
	if input.LocationID != nil {
		loc, err := s.locationRepo.GetByID(ctx, *input.LocationID)
		if err != nil {
			return nil, err
		}
		if loc == nil || loc.UserID != ownerID {
			return nil, apperr.Field("location", "location not found")
		}
	}

	now := time.Now().UTC()
	it := &domain.Item{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Title:          title,
		Description:    security.SanitizeTextN(input.Description, 2000),
		Status:         domain.StatusAvailable,
		LocationID:     input.LocationID,
		EstimatedValue: input.EstimatedValue,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, it); err != nil {
		return nil, err
	}

	s.logger.Info().Str("item_id", it.ID.String()).Str("owner_id", ownerID.String()).Msg("item created")
	return it, nil
}

// GetItem returns one item by id.
func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	it, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, apperr.NotFound("item not found")
	}
	return it, nil
}

// ListMine lists the caller's items.
func (s *Service) ListMine(ctx context.Context, ownerID uuid.UUID) ([]*domain.Item, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// DeleteItem soft-deletes an item owned by the caller.
func (s *Service) DeleteItem(ctx context.Context, id, callerID uuid.UUID) error {
	it, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if it == nil {
		return apperr.NotFound("item not found")
	}
	if it.OwnerID != callerID {
		return apperr.Permission("only the owner may delete the item")
	}
	return s.repo.SoftDelete(ctx, id)
}
