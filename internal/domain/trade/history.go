package trade

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is an immutable record of one status transition. Entries
// are only ever appended, inside the same transaction as the transition
// they record.
type HistoryEntry struct {
	ID             uuid.UUID  `json:"id"`
	OfferID        uuid.UUID  `json:"trade_offer"`
	PreviousStatus Status     `json:"previous_status"`
	NewStatus      Status     `json:"new_status"`
	ChangedBy      *uuid.UUID `json:"changed_by,omitempty"`
	Comment        *string    `json:"comment,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
