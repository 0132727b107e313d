package item

import (
	"time"

	"github.com/google/uuid"
)

// CatalogStatus is the availability state of a listed item.
type CatalogStatus string

const (
	StatusAvailable CatalogStatus = "available"
	StatusReserved  CatalogStatus = "reserved"
	StatusTraded    CatalogStatus = "traded"
)

// Tradable reports whether an item in this status may be attached to a
// new trade offer. Reserved and traded items are off the market.
func (s CatalogStatus) Tradable() bool {
	return s != StatusReserved && s != StatusTraded
}

// Item represents a good listed for barter.
type Item struct {
	ID             uuid.UUID     `json:"id"`
	OwnerID        uuid.UUID     `json:"owner"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Status         CatalogStatus `json:"status"`
	LocationID     *uuid.UUID    `json:"location,omitempty"`
	EstimatedValue *float64      `json:"estimated_value,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	DeletedAt      *time.Time    `json:"-"`
}

func (i *Item) IsDeleted() bool {
	return i.DeletedAt != nil
}
