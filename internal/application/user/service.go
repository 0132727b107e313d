package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/barterhub/barterhub/internal/domain/apperr"
	domain "github.com/barterhub/barterhub/internal/domain/user"
	"github.com/barterhub/barterhub/internal/security"
)

// Service handles account management.
type Service struct {
	repo   domain.Repository
	logger zerolog.Logger
}

// NewService creates a user service.
func NewService(repo domain.Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("service", "user").Logger(),
	}
}

// RegisterInput defines registration input.
type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Bio       string
	Phone     string
}

// Register creates a user and its profile row in one transaction.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	username := domain.NormalizeUsername(input.Username)
	if err := domain.ValidateUsername(username); err != nil {
		return nil, apperr.Field("username", err.Error())
	}
	if err := domain.ValidatePassword(input.Password, username); err != nil {
		return nil, apperr.Field("password", err.Error())
	}
	if input.Phone != "" && !security.ValidatePhoneNumber(input.Phone) {
		return nil, apperr.Field("phone_number", "invalid phone number")
	}

	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Field("username", "username is already taken")
	}

	hash, err := domain.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		FirstName:    security.SanitizeTextN(input.FirstName, 100),
		LastName:     security.SanitizeTextN(input.LastName, 100),
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	p := &domain.Profile{
		UserID:    u.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if bio := security.SanitizeTextN(input.Bio, 1000); bio != "" {
		p.Bio = &bio
	}
	if input.Phone != "" {
		phone := input.Phone
		p.PhoneNumber = &phone
	}

	if err := s.repo.Create(ctx, u, p); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", u.ID.String()).Str("username", u.Username).Msg("user registered")
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}
