package location

import (
	"time"

	"github.com/google/uuid"
)

// Location is a user-registered meeting spot for handing over goods.
type Location struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user"`
	Title      string    `json:"title"`
	Address    string    `json:"address"`
	City       string    `json:"city"`
	Region     *string   `json:"region,omitempty"`
	PostalCode *string   `json:"postal_code,omitempty"`
	Country    string    `json:"country"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
