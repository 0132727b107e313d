package trade

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter controls offer listing for a participant.
type ListFilter struct {
	// Type is "sent", "received", or empty for both.
	Type string
}

// Transition describes one atomic state change to execute. From is the
// precondition set re-checked under the row lock; a mismatch must abort
// the whole transaction and surface InvalidStateError(Action).
type Transition struct {
	OfferID      uuid.UUID
	Action       Action
	From         []Status
	To           Status
	ActorID      uuid.UUID
	Comment      *string
	SetCompleted bool
	BumpTrades   bool
}

// OfferRepository persists offers and their line items.
type OfferRepository interface {
	// Create writes the offer and all line items in one transaction.
	Create(ctx context.Context, offer *Offer, items []*OfferItem) error
	GetByID(ctx context.Context, offerID uuid.UUID) (*Offer, error)
	ListByParticipant(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Offer, error)
	ListItems(ctx context.Context, offerID uuid.UUID) ([]*OfferItem, error)
	ListCounters(ctx context.Context, parentOfferID uuid.UUID) ([]*Offer, error)
	// ApplyTransition locks the offer row, re-checks the precondition
	// set, updates the status, appends the history row, and for
	// completions increments both participants' successful_trades,
	// all in one transaction.
	ApplyTransition(ctx context.Context, t Transition) (*Offer, error)
}

// HistoryRepository reads the append-only ledger. Writes happen only
// through OfferRepository.ApplyTransition.
type HistoryRepository interface {
	ListFor(ctx context.Context, offerID uuid.UUID) ([]*HistoryEntry, error)
}

// StatusRepository reads the status registry.
type StatusRepository interface {
	ListActive(ctx context.Context) ([]*StatusInfo, error)
}
