package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/barterhub/barterhub/internal/domain/apperr"
	"github.com/barterhub/barterhub/internal/domain/item"
	"github.com/barterhub/barterhub/internal/domain/location"
	"github.com/barterhub/barterhub/internal/domain/trade"
	"github.com/barterhub/barterhub/internal/domain/user"
	"github.com/barterhub/barterhub/internal/security"
)

const (
	maxMessageLen = 2000
	maxCommentLen = 1000
)

// EventPublisher pushes offer lifecycle events to interested consumers.
// Publishing happens after the transaction commits and must never fail
// the request.
type EventPublisher interface {
	PublishOfferEvent(ctx context.Context, ev OfferEvent)
}

// OfferEvent describes one committed offer mutation.
type OfferEvent struct {
	OfferID     uuid.UUID    `json:"offer_id"`
	Action      string       `json:"action"`
	ActorID     uuid.UUID    `json:"actor_id"`
	InitiatorID uuid.UUID    `json:"initiator_id"`
	ReceiverID  uuid.UUID    `json:"receiver_id"`
	Status      trade.Status `json:"status"`
	OccurredAt  time.Time    `json:"occurred_at"`
}

// Metrics counts offer operations.
type Metrics interface {
	OfferCreated()
	OfferTransition(action string, outcome string)
}

// Service implements the offer lifecycle: creation with bilateral item
// validation, the four status transitions, and the read surface.
type Service struct {
	offerRepo    trade.OfferRepository
	historyRepo  trade.HistoryRepository
	statusRepo   trade.StatusRepository
	itemRepo     item.Repository
	userRepo     user.Repository
	locationRepo location.Repository
	events       EventPublisher
	metrics      Metrics
	logger       zerolog.Logger
}

// NewService creates a trade service.
func NewService(
	offerRepo trade.OfferRepository,
	historyRepo trade.HistoryRepository,
	statusRepo trade.StatusRepository,
	itemRepo item.Repository,
	userRepo user.Repository,
	locationRepo location.Repository,
	events EventPublisher,
	metrics Metrics,
	logger zerolog.Logger,
) *Service {
	return &Service{
		offerRepo:    offerRepo,
		historyRepo:  historyRepo,
		statusRepo:   statusRepo,
		itemRepo:     itemRepo,
		userRepo:     userRepo,
		locationRepo: locationRepo,
		events:       events,
		metrics:      metrics,
		logger:       logger.With().Str("service", "trade").Logger(),
	}
}

// CreateOfferInput is the validated shape of an offer creation request.
type CreateOfferInput struct {
	ReceiverID     uuid.UUID
	LocationID     *uuid.UUID
	Message        string
	ParentOfferID  *uuid.UUID
	InitiatorItems []uuid.UUID
	ReceiverItems  []uuid.UUID
}

// CreateOffer validates both sides of a proposed trade and persists the
// offer with its line items in one transaction. Validation runs in a
// fixed order and nothing is written until every check passes.
func (s *Service) CreateOffer(ctx context.Context, initiatorID uuid.UUID, in CreateOfferInput) (*OfferDetail, error) {
	if in.ReceiverID == uuid.Nil {
		return nil, apperr.Field("receiver_id", "receiver is required")
	}
	if in.ReceiverID == initiatorID {
		return nil, apperr.Field("receiver_id", "cannot create an offer to yourself")
	}
	if len(in.InitiatorItems) == 0 {
		return nil, apperr.Field("initiator_items", "at least one item must be offered")
	}
	if len(in.ReceiverItems) == 0 {
		return nil, apperr.Field("receiver_items", "at least one item must be requested")
	}

	receiver, err := s.userRepo.GetByID(ctx, in.ReceiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil || !receiver.IsActive() {
		return nil, apperr.Field("receiver_id", "receiver not found")
	}

	initiatorItems, err := s.validateOwnedAndAvailable(ctx, "initiator_items", in.InitiatorItems, initiatorID, "initiator")
	if err != nil {
		return nil, err
	}
	receiverItems, err := s.validateOwnedAndAvailable(ctx, "receiver_items", in.ReceiverItems, in.ReceiverID, "receiver")
	if err != nil {
		return nil, err
	}

	if in.LocationID != nil {
		loc, err := s.locationRepo.GetByID(ctx, *in.LocationID)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			return nil, apperr.Field("location", "location not found")
		}
		if loc.UserID != initiatorID && loc.UserID != in.ReceiverID {
			return nil, apperr.Field("location", "location must belong to one of the trade participants")
		}
	}

	if in.ParentOfferID != nil {
		parent, err := s.offerRepo.GetByID(ctx, *in.ParentOfferID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, apperr.Field("parent_offer", "parent offer not found")
		}
		if !parent.IsParticipant(initiatorID) {
			return nil, apperr.Permission("only participants of the parent offer may counter it")
		}
		if err := s.checkCounterDepth(ctx, parent); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	offer := &trade.Offer{
		ID:            uuid.New(),
		InitiatorID:   initiatorID,
		ReceiverID:    in.ReceiverID,
		Status:        trade.StatusPending,
		LocationID:    in.LocationID,
		ParentOfferID: in.ParentOfferID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if msg := security.SanitizeTextN(in.Message, maxMessageLen); msg != "" {
		offer.Message = &msg
	}

	lines := make([]*trade.OfferItem, 0, len(initiatorItems)+len(receiverItems))
	for _, it := range initiatorItems {
		lines = append(lines, &trade.OfferItem{OfferID: offer.ID, ItemID: it.ID, IsFromInitiator: true})
	}
	for _, it := range receiverItems {
		lines = append(lines, &trade.OfferItem{OfferID: offer.ID, ItemID: it.ID, IsFromInitiator: false})
	}

	if err := s.offerRepo.Create(ctx, offer, lines); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("offer_id", offer.ID.String()).
		Str("initiator_id", initiatorID.String()).
		Str("receiver_id", in.ReceiverID.String()).
		Int("initiator_items", len(initiatorItems)).
		Int("receiver_items", len(receiverItems)).
		Msg("offer created")
	if s.metrics != nil {
		s.metrics.OfferCreated()
	}
	s.publish(ctx, offer, "created", initiatorID)

	return s.buildDetail(ctx, offer)
}

// validateOwnedAndAvailable resolves a set of item ids and checks that
// every one exists, belongs to expectedOwner, and is tradable by catalog
// status. It reads only; nothing reserves the items afterwards.
func (s *Service) validateOwnedAndAvailable(ctx context.Context, field string, ids []uuid.UUID, expectedOwner uuid.UUID, role string) ([]*item.Item, error) {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, apperr.Field(field, "an item cannot appear twice in the same offer")
		}
		seen[id] = struct{}{}
	}

	items, err := s.itemRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(items) != len(ids) {
		return nil, apperr.Field(field, "some items do not belong to "+role)
	}
	for _, it := range items {
		if it.OwnerID != expectedOwner {
			return nil, apperr.Field(field, "some items do not belong to "+role)
		}
		if !it.Status.Tradable() {
			return nil, apperr.Field(field, "some items are unavailable for trade")
		}
	}
	return items, nil
}

// checkCounterDepth walks the parent chain and rejects creation when
// the chain already reached MaxCounterDepth ancestors.
func (s *Service) checkCounterDepth(ctx context.Context, parent *trade.Offer) error {
	depth := 1
	cur := parent
	for cur.ParentOfferID != nil {
		depth++
		if depth > trade.MaxCounterDepth {
			return apperr.Field("parent_offer", "counter offer chain is too deep")
		}
		next, err := s.offerRepo.GetByID(ctx, *cur.ParentOfferID)
		if err != nil {
			return err
		}
		if next == nil {
			break
		}
		cur = next
	}
	return nil
}

// Accept moves a pending offer to accepted. Receiver only.
func (s *Service) Accept(ctx context.Context, offerID, actorID uuid.UUID, comment string) (*OfferDetail, error) {
	return s.transition(ctx, offerID, actorID, trade.ActionAccept, comment)
}

// Reject moves a pending offer to rejected. Receiver only.
func (s *Service) Reject(ctx context.Context, offerID, actorID uuid.UUID, comment string) (*OfferDetail, error) {
	return s.transition(ctx, offerID, actorID, trade.ActionReject, comment)
}

// Cancel moves a pending or accepted offer to cancelled. Initiator only.
func (s *Service) Cancel(ctx context.Context, offerID, actorID uuid.UUID, comment string) (*OfferDetail, error) {
	return s.transition(ctx, offerID, actorID, trade.ActionCancel, comment)
}

// Complete moves an accepted offer to completed, stamps completed_at and
// increments both participants' successful trade counters. Either
// participant may call it.
func (s *Service) Complete(ctx context.Context, offerID, actorID uuid.UUID, comment string) (*OfferDetail, error) {
	return s.transition(ctx, offerID, actorID, trade.ActionComplete, comment)
}

func (s *Service) transition(ctx context.Context, offerID, actorID uuid.UUID, action trade.Action, comment string) (*OfferDetail, error) {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, apperr.NotFound("offer not found")
	}

	// Permission is checked before state so a non-party probing a
	// terminal offer still gets a 403, not a state error.
	to, err := offer.Authorize(action, actorID)
	if err != nil {
		if s.metrics != nil {
			s.metrics.OfferTransition(string(action), "denied")
		}
		return nil, err
	}

	t := trade.Transition{
		OfferID:      offerID,
		Action:       action,
		From:         trade.AllowedSources(action),
		To:           to,
		ActorID:      actorID,
		SetCompleted: action == trade.ActionComplete,
		BumpTrades:   action == trade.ActionComplete,
	}
	if c := security.SanitizeTextN(comment, maxCommentLen); c != "" {
		t.Comment = &c
	}

	updated, err := s.offerRepo.ApplyTransition(ctx, t)
	if err != nil {
		if s.metrics != nil {
			s.metrics.OfferTransition(string(action), "failed")
		}
		return nil, err
	}

	s.logger.Info().
		Str("offer_id", offerID.String()).
		Str("action", string(action)).
		Str("actor_id", actorID.String()).
		Str("status", string(updated.Status)).
		Msg("offer transitioned")
	if s.metrics != nil {
		s.metrics.OfferTransition(string(action), "applied")
	}
	s.publish(ctx, updated, string(action), actorID)

	return s.buildDetail(ctx, updated)
}

// GetOffer retrieves one offer with nested detail. Participants only.
func (s *Service) GetOffer(ctx context.Context, offerID, callerID uuid.UUID) (*OfferDetail, error) {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, apperr.NotFound("offer not found")
	}
	if !offer.IsParticipant(callerID) {
		return nil, apperr.Permission("only participants may view the offer")
	}
	return s.buildDetail(ctx, offer)
}

// ListOffers lists offers the caller participates in. filterType is
// "sent", "received", or empty for both.
func (s *Service) ListOffers(ctx context.Context, callerID uuid.UUID, filterType string) ([]*OfferDetail, error) {
	switch filterType {
	case "", "sent", "received":
	default:
		return nil, apperr.Field("type", "type must be sent or received")
	}
	offers, err := s.offerRepo.ListByParticipant(ctx, callerID, trade.ListFilter{Type: filterType})
	if err != nil {
		return nil, err
	}
	out := make([]*OfferDetail, 0, len(offers))
	for _, o := range offers {
		d, err := s.buildDetail(ctx, o)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// History returns the transition ledger for an offer. Participants only.
func (s *Service) History(ctx context.Context, offerID, callerID uuid.UUID) ([]*trade.HistoryEntry, error) {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, apperr.NotFound("offer not found")
	}
	if !offer.IsParticipant(callerID) {
		return nil, apperr.Permission("only participants may view the offer history")
	}
	return s.historyRepo.ListFor(ctx, offerID)
}

// Counters returns direct counter-offers of an offer. Participants only.
func (s *Service) Counters(ctx context.Context, offerID, callerID uuid.UUID) ([]*OfferDetail, error) {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, apperr.NotFound("offer not found")
	}
	if !offer.IsParticipant(callerID) {
		return nil, apperr.Permission("only participants may view counter offers")
	}
	counters, err := s.offerRepo.ListCounters(ctx, offerID)
	if err != nil {
		return nil, err
	}
	out := make([]*OfferDetail, 0, len(counters))
	for _, o := range counters {
		d, err := s.buildDetail(ctx, o)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// ListStatuses returns the active rows of the status registry.
func (s *Service) ListStatuses(ctx context.Context) ([]*trade.StatusInfo, error) {
	return s.statusRepo.ListActive(ctx)
}

func (s *Service) publish(ctx context.Context, offer *trade.Offer, action string, actorID uuid.UUID) {
	if s.events == nil {
		return
	}
	s.events.PublishOfferEvent(ctx, OfferEvent{
		OfferID:     offer.ID,
		Action:      action,
		ActorID:     actorID,
		InitiatorID: offer.InitiatorID,
		ReceiverID:  offer.ReceiverID,
		Status:      offer.Status,
		OccurredAt:  time.Now().UTC(),
	})
}
