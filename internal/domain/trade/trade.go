package trade

import (
	"time"

	"github.com/google/uuid"

	"github.com/barterhub/barterhub/internal/domain/apperr"
)

// Status is the closed vocabulary of offer states.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is legal from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Action is a state-changing operation on an offer.
type Action string

const (
	ActionAccept   Action = "accept"
	ActionReject   Action = "reject"
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
)

// ActorRole identifies which side of an offer may perform an action.
type ActorRole int

const (
	RoleReceiver ActorRole = iota
	RoleInitiator
	RoleParticipant
)

type rule struct {
	from          []Status
	to            Status
	role          ActorRole
	permissionMsg string
	stateMsg      string
}

var rules = map[Action]rule{
	ActionAccept: {
		from:          []Status{StatusPending},
		to:            StatusAccepted,
		role:          RoleReceiver,
		permissionMsg: "only the receiver may accept the offer",
		stateMsg:      "offer already processed",
	},
	ActionReject: {
		from:          []Status{StatusPending},
		to:            StatusRejected,
		role:          RoleReceiver,
		permissionMsg: "only the receiver may reject the offer",
		stateMsg:      "offer already processed",
	},
	ActionCancel: {
		from:          []Status{StatusPending, StatusAccepted},
		to:            StatusCancelled,
		role:          RoleInitiator,
		permissionMsg: "only the initiator may cancel the offer",
		stateMsg:      "cannot cancel offer in this state",
	},
	ActionComplete: {
		from:          []Status{StatusAccepted},
		to:            StatusCompleted,
		role:          RoleParticipant,
		permissionMsg: "only participants may complete the offer",
		stateMsg:      "only accepted offers can be completed",
	},
}

// Target returns the status an action transitions into.
func Target(a Action) (Status, bool) {
	r, ok := rules[a]
	if !ok {
		return "", false
	}
	return r.to, true
}

// AllowedSources returns the set of statuses an action is legal from.
func AllowedSources(a Action) []Status {
	r, ok := rules[a]
	if !ok {
		return nil
	}
	out := make([]Status, len(r.from))
	copy(out, r.from)
	return out
}

// AllowedFrom reports whether a is legal from the given current status.
func AllowedFrom(a Action, current Status) bool {
	r, ok := rules[a]
	if !ok {
		return false
	}
	for _, s := range r.from {
		if s == current {
			return true
		}
	}
	return false
}

// RequiredRole returns the actor role an action demands.
func RequiredRole(a Action) (ActorRole, bool) {
	r, ok := rules[a]
	if !ok {
		return 0, false
	}
	return r.role, true
}

// PermissionError builds the role-specific permission failure for a.
func PermissionError(a Action) error {
	if r, ok := rules[a]; ok {
		return apperr.Permission(r.permissionMsg)
	}
	return apperr.Permission("action not permitted")
}

// InvalidStateError builds the action-specific wrong-state failure for a.
func InvalidStateError(a Action) error {
	if r, ok := rules[a]; ok {
		return apperr.InvalidState(r.stateMsg)
	}
	return apperr.InvalidState("offer is not in a valid state for this action")
}

// Offer is the negotiation unit between two users over two item sets.
type Offer struct {
	ID            uuid.UUID  `json:"id"`
	InitiatorID   uuid.UUID  `json:"initiator_id"`
	ReceiverID    uuid.UUID  `json:"receiver_id"`
	Status        Status     `json:"status"`
	LocationID    *uuid.UUID `json:"location,omitempty"`
	Message       *string    `json:"message,omitempty"`
	// IsCountered is set once a counter-offer references this offer.
	IsCountered   bool       `json:"is_countered"`
	ParentOfferID *uuid.UUID `json:"parent_offer,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsParticipant reports whether userID is one of the two offer parties.
func (o *Offer) IsParticipant(userID uuid.UUID) bool {
	return o.InitiatorID == userID || o.ReceiverID == userID
}

// HasRole reports whether userID satisfies the given actor role on o.
func (o *Offer) HasRole(role ActorRole, userID uuid.UUID) bool {
	switch role {
	case RoleReceiver:
		return o.ReceiverID == userID
	case RoleInitiator:
		return o.InitiatorID == userID
	case RoleParticipant:
		return o.IsParticipant(userID)
	default:
		return false
	}
}

// Authorize checks actor permission and current-state legality for an
// action, in that order. It does not mutate the offer; the atomic write
// re-checks state under a row lock.
func (o *Offer) Authorize(a Action, actorID uuid.UUID) (Status, error) {
	role, ok := RequiredRole(a)
	if !ok {
		return "", apperr.Validation("unknown action")
	}
	if !o.HasRole(role, actorID) {
		return "", PermissionError(a)
	}
	if !AllowedFrom(a, o.Status) {
		return "", InvalidStateError(a)
	}
	to, _ := Target(a)
	return to, nil
}

// OfferItem is one line item attached to one side of an offer.
type OfferItem struct {
	ID              int64     `json:"id"`
	OfferID         uuid.UUID `json:"trade_offer"`
	ItemID          uuid.UUID `json:"item"`
	IsFromInitiator bool      `json:"is_from_initiator"`
}

// StatusInfo is one row of the status registry.
type StatusInfo struct {
	ID           int32   `json:"id"`
	Name         Status  `json:"name"`
	Description  *string `json:"description,omitempty"`
	IsActive     bool    `json:"-"`
	DisplayOrder int16   `json:"-"`
}

// MaxCounterDepth bounds ancestor traversal of counter-offer chains. The
// schema only prevents an offer from being its own parent, so a depth cap
// guards reads against malformed chains.
const MaxCounterDepth = 20
