package trade

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/barterhub/barterhub/internal/domain/item"
	"github.com/barterhub/barterhub/internal/domain/trade"
	"github.com/barterhub/barterhub/internal/domain/user"
)

// UserSummary is the participant block embedded in offer responses.
type UserSummary struct {
	ID               uuid.UUID `json:"id"`
	Username         string    `json:"username"`
	FullName         string    `json:"full_name"`
	Rating           float64   `json:"rating"`
	SuccessfulTrades int       `json:"successful_trades"`
}

// ItemSummary is one line item with its catalog detail.
type ItemSummary struct {
	ID             uuid.UUID          `json:"id"`
	Title          string             `json:"title"`
	Status         item.CatalogStatus `json:"status"`
	EstimatedValue *float64           `json:"estimated_value,omitempty"`
}

// OfferDetail is the full offer representation returned by the API.
type OfferDetail struct {
	ID             uuid.UUID      `json:"id"`
	Initiator      UserSummary    `json:"initiator"`
	Receiver       UserSummary    `json:"receiver"`
	Status         trade.Status   `json:"status"`
	LocationID     *uuid.UUID     `json:"location,omitempty"`
	Message        *string        `json:"message,omitempty"`
	IsCountered    bool           `json:"is_countered"`
	ParentOfferID  *uuid.UUID     `json:"parent_offer,omitempty"`
	InitiatorItems []*ItemSummary `json:"initiator_items"`
	ReceiverItems  []*ItemSummary `json:"receiver_items"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// buildDetail assembles the nested representation: both participants
// with their reputation counters and both item lists. Profiles are
// fetched in one batch read for both participants.
func (s *Service) buildDetail(ctx context.Context, offer *trade.Offer) (*OfferDetail, error) {
	profiles, err := s.userRepo.ListProfiles(ctx, []uuid.UUID{offer.InitiatorID, offer.ReceiverID})
	if err != nil {
		return nil, err
	}
	initiator, err := s.userSummary(ctx, offer.InitiatorID, profiles[offer.InitiatorID])
	if err != nil {
		return nil, err
	}
	receiver, err := s.userSummary(ctx, offer.ReceiverID, profiles[offer.ReceiverID])
	if err != nil {
		return nil, err
	}

	lines, err := s.offerRepo.ListItems(ctx, offer.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ItemID)
	}
	items, err := s.itemRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*item.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	detail := &OfferDetail{
		ID:             offer.ID,
		Initiator:      initiator,
		Receiver:       receiver,
		Status:         offer.Status,
		LocationID:     offer.LocationID,
		Message:        offer.Message,
		IsCountered:    offer.IsCountered,
		ParentOfferID:  offer.ParentOfferID,
		InitiatorItems: []*ItemSummary{},
		ReceiverItems:  []*ItemSummary{},
		CompletedAt:    offer.CompletedAt,
		CreatedAt:      offer.CreatedAt,
		UpdatedAt:      offer.UpdatedAt,
	}
	for _, l := range lines {
		it, ok := byID[l.ItemID]
		if !ok {
			continue
		}
		summary := &ItemSummary{
			ID:             it.ID,
			Title:          it.Title,
			Status:         it.Status,
			EstimatedValue: it.EstimatedValue,
		}
		if l.IsFromInitiator {
			detail.InitiatorItems = append(detail.InitiatorItems, summary)
		} else {
			detail.ReceiverItems = append(detail.ReceiverItems, summary)
		}
	}
	return detail, nil
}

func (s *Service) userSummary(ctx context.Context, userID uuid.UUID, p *user.Profile) (UserSummary, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return UserSummary{}, err
	}
	if u == nil {
		// Participant rows are never hard-deleted; fall back to the id
		// rather than failing the whole read.
		return UserSummary{ID: userID, Username: "unknown"}, nil
	}
	summary := UserSummary{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName(),
	}
	if p != nil {
		summary.Rating = p.Rating
		summary.SuccessfulTrades = p.SuccessfulTrades
	}
	return summary, nil
}
