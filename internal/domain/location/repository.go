package location

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for locations.
type Repository interface {
	Create(ctx context.Context, loc *Location) error
	GetByID(ctx context.Context, id uuid.UUID) (*Location, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Location, error)
}
