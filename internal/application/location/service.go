package location

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/barterhub/barterhub/internal/domain/apperr"
	domain "github.com/barterhub/barterhub/internal/domain/location"
	"github.com/barterhub/barterhub/internal/security"
)

// Service handles meeting locations.
type Service struct {
	repo   domain.Repository
	logger zerolog.Logger
}

// NewService creates a location service.
func NewService(repo domain.Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("service", "location").Logger(),
	}
}

// CreateInput defines location creation input.
type CreateInput struct {
	Title      string
	Address    string
	City       string
	Region     *string
	PostalCode *string
	Country    string
}

// CreateLocation registers a meeting spot for the caller.
func (s *Service) CreateLocation(ctx context.Context, userID uuid.UUID, input CreateInput) (*domain.Location, error) {
	title := security.SanitizeTextN(input.Title, 200)
	if title == "" {
		return nil, apperr.Field("title", "title is required")
	}
	city := security.SanitizeTextN(input.City, 100)
	if city == "" {
		return nil, apperr.Field("city", "city is required")
	}
	country := security.SanitizeTextN(input.Country, 100)
	if country == "" {
		return nil, apperr.Field("country", "country is required")
	}

	now := time.Now().UTC()
	loc := &domain.Location{
		ID:         uuid.New(),
		UserID:     userID,
		Title:      title,
		Address:    security.SanitizeTextN(input.Address, 300),
		City:       city,
		Region:     input.Region,
		PostalCode: input.PostalCode,
		Country:    country,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, loc); err != nil {
		return nil, err
	}

	s.logger.Info().Str("location_id", loc.ID.String()).Str("user_id", userID.String()).Msg("location created")
	return loc, nil
}

// ListMine lists the caller's locations.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]*domain.Location, error) {
	return s.repo.ListByUser(ctx, userID)
}
