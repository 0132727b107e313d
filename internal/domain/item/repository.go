package item

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for items. Lookups skip soft-deleted
// rows; GetByID returns (nil, nil) when no row matches.
type Repository interface {
	Create(ctx context.Context, it *Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*Item, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Item, error)
	Update(ctx context.Context, it *Item) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}
