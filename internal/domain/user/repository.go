package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for users and their profiles.
type Repository interface {
	// Create writes the user and its profile row in one transaction.
	Create(ctx context.Context, u *User, p *Profile) error
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	// ListProfiles fetches profiles for a batch of users, keyed by user id.
	ListProfiles(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*Profile, error)
}
