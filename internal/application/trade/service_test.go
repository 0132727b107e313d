package trade

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barterhub/barterhub/internal/domain/apperr"
	"github.com/barterhub/barterhub/internal/domain/item"
	"github.com/barterhub/barterhub/internal/domain/trade"
)

var errFake = errors.New("storage failure")

type fixture struct {
	store *fakeStore
	svc   *Service

	alice uuid.UUID
	bob   uuid.UUID
	carol uuid.UUID

	aliceItem1 uuid.UUID
	aliceItem2 uuid.UUID
	bobItem    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newFakeStore()
	f := &fixture{store: store}
	f.alice = store.addUser("alice")
	f.bob = store.addUser("bob")
	f.carol = store.addUser("carol")
	f.aliceItem1 = store.addItem(f.alice, "vinyl records", item.StatusAvailable)
	f.aliceItem2 = store.addItem(f.alice, "record player", item.StatusAvailable)
	f.bobItem = store.addItem(f.bob, "mountain bike", item.StatusAvailable)

	f.svc = NewService(
		store, store, store,
		&fakeItemRepo{store: store},
		&fakeUserRepo{store: store},
		&fakeLocationRepo{store: store},
		nil, nil, zerolog.Nop(),
	)
	return f
}

func (f *fixture) createOffer(t *testing.T) *OfferDetail {
	t.Helper()
	detail, err := f.svc.CreateOffer(context.Background(), f.alice, CreateOfferInput{
		ReceiverID:     f.bob,
		InitiatorItems: []uuid.UUID{f.aliceItem1, f.aliceItem2},
		ReceiverItems:  []uuid.UUID{f.bobItem},
	})
	require.NoError(t, err)
	return detail
}

func TestCreateOffer(t *testing.T) {
	f := newFixture(t)
	detail := f.createOffer(t)

	assert.Equal(t, trade.StatusPending, detail.Status)
	assert.Len(t, detail.InitiatorItems, 2)
	assert.Len(t, detail.ReceiverItems, 1)
	assert.Equal(t, f.alice, detail.Initiator.ID)
	assert.Equal(t, f.bob, detail.Receiver.ID)
	assert.Nil(t, detail.CompletedAt)

	// History starts at the first transition, never at creation.
	entries, err := f.svc.History(context.Background(), detail.ID, f.alice)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateOfferToSelf(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateOffer(context.Background(), f.alice, CreateOfferInput{
		ReceiverID:     f.alice,
		InitiatorItems: []uuid.UUID{f.aliceItem1},
		ReceiverItems:  []uuid.UUID{f.bobItem},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Empty(t, f.store.offers)
}

func TestCreateOfferRequiresBothSides(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateOffer(context.Background(), f.alice, CreateOfferInput{
		ReceiverID:    f.bob,
		ReceiverItems: []uuid.UUID{f.bobItem},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.svc.CreateOffer(context.Background(), f.alice, CreateOfferInput{
		ReceiverID:     f.bob,
		InitiatorItems: []uuid.UUID{f.aliceItem1},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreateOfferItemNotOwned(t *testing.T) {
	f := newFixture(t)
	carolItem := f.store.addItem(f.carol, "camera", item.StatusAvailable)

	_, err := f.svc.CreateOffer(context.Background(), f.alice, CreateOfferInput{
		ReceiverID:     f.bob,
		InitiatorItems: []uuid.UUID{f.aliceItem1, carolItem},
		ReceiverItems:  []uuid.UUID{f.bobItem},
	})
	require.Error(t, err)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.Contains(t, ae.Message, "do not belong to initiator")

	// No partial writes.
	assert.Empty(t, f.store.offers)
	assert.Empty(t, f.store.offerItems)
}

func TestCreateOfferItemUnavailable(t *testing.T) {
	f := newFixture(t)
	reserved := f.store.addItem(f.bob, "kayak", item.StatusReserved)

	_, err := f.svc.CreateOffer(context.Background(), f.alice, CreateOfferInput{
		ReceiverID:     f.bob,
		InitiatorItems: []uuid.UUID{f.aliceItem1},
		ReceiverItems:  []uuid.UUID{reserved},
	})
	require.Error(t, err)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Contains(t, ae.Message, "unavailable for trade")
	assert.Empty(t, f.store.offers)
}

func TestCreateOfferDuplicateItem(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateOffer(context.Background(), f.alice, CreateOfferInput{
		ReceiverID:     f.bob,
		InitiatorItems: []uuid.UUID{f.aliceItem1, f.aliceItem1},
		ReceiverItems:  []uuid.UUID{f.bobItem},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreateOfferLocationMustBeShared(t *testing.T) {
	f := newFixture(t)
	carolLoc := f.store.addLocation(f.carol, "garage")

	_, err := f.svc.CreateOffer(context.Background(), f.alice, CreateOfferInput{
		ReceiverID:     f.bob,
		LocationID:     &carolLoc,
		InitiatorItems: []uuid.UUID{f.aliceItem1},
		ReceiverItems:  []uuid.UUID{f.bobItem},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	bobLoc := f.store.addLocation(f.bob, "workshop")
	detail, err := f.svc.CreateOffer(context.Background(), f.alice, CreateOfferInput{
		ReceiverID:     f.bob,
		LocationID:     &bobLoc,
		InitiatorItems: []uuid.UUID{f.aliceItem1},
		ReceiverItems:  []uuid.UUID{f.bobItem},
	})
	require.NoError(t, err)
	require.NotNil(t, detail.LocationID)
	assert.Equal(t, bobLoc, *detail.LocationID)
}

func TestAccept(t *testing.T) {
	f := newFixture(t)
	created := f.createOffer(t)

	detail, err := f.svc.Accept(context.Background(), created.ID, f.bob, "deal")
	require.NoError(t, err)
	assert.Equal(t, trade.StatusAccepted, detail.Status)

	entries, err := f.svc.History(context.Background(), created.ID, f.bob)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, trade.StatusPending, entries[0].PreviousStatus)
	assert.Equal(t, trade.StatusAccepted, entries[0].NewStatus)
	require.NotNil(t, entries[0].ChangedBy)
	assert.Equal(t, f.bob, *entries[0].ChangedBy)
	require.NotNil(t, entries[0].Comment)
	assert.Equal(t, "deal", *entries[0].Comment)
}

func TestAcceptPermissionAndState(t *testing.T) {
	f := newFixture(t)
	created := f.createOffer(t)

	// The initiator cannot accept, regardless of state.
	_, err := f.svc.Accept(context.Background(), created.ID, f.alice, "")
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))

	_, err = f.svc.Accept(context.Background(), created.ID, f.bob, "")
	require.NoError(t, err)

	// Re-accepting an already-processed offer fails without appending
	// history.
	_, err = f.svc.Accept(context.Background(), created.ID, f.bob, "")
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	assert.Len(t, f.store.history, 1)
}

func TestReject(t *testing.T) {
	f := newFixture(t)
	created := f.createOffer(t)

	detail, err := f.svc.Reject(context.Background(), created.ID, f.bob, "not interested")
	require.NoError(t, err)
	assert.Equal(t, trade.StatusRejected, detail.Status)

	_, err = f.svc.Accept(context.Background(), created.ID, f.bob, "")
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	created := f.createOffer(t)

	_, err := f.svc.Cancel(context.Background(), created.ID, f.bob, "")
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))

	detail, err := f.svc.Cancel(context.Background(), created.ID, f.alice, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, trade.StatusCancelled, detail.Status)
}

func TestCancelAfterAccept(t *testing.T) {
	f := newFixture(t)
	created := f.createOffer(t)

	_, err := f.svc.Accept(context.Background(), created.ID, f.bob, "")
	require.NoError(t, err)

	detail, err := f.svc.Cancel(context.Background(), created.ID, f.alice, "")
	require.NoError(t, err)
	assert.Equal(t, trade.StatusCancelled, detail.Status)

	_, err = f.svc.Complete(context.Background(), created.ID, f.bob, "")
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestComplete(t *testing.T) {
	f := newFixture(t)
	created := f.createOffer(t)

	_, err := f.svc.Accept(context.Background(), created.ID, f.bob, "")
	require.NoError(t, err)

	detail, err := f.svc.Complete(context.Background(), created.ID, f.alice, "handed over")
	require.NoError(t, err)
	assert.Equal(t, trade.StatusCompleted, detail.Status)
	require.NotNil(t, detail.CompletedAt)

	assert.Equal(t, 1, f.store.profiles[f.alice].SuccessfulTrades)
	assert.Equal(t, 1, f.store.profiles[f.bob].SuccessfulTrades)
	assert.Equal(t, 0, f.store.profiles[f.carol].SuccessfulTrades)

	// The response embeds the bumped counters from the batch profile read.
	assert.Equal(t, 1, detail.Initiator.SuccessfulTrades)
	assert.Equal(t, 1, detail.Receiver.SuccessfulTrades)

	entries, err := f.svc.History(context.Background(), created.ID, f.alice)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, trade.StatusAccepted, entries[1].PreviousStatus)
	assert.Equal(t, trade.StatusCompleted, entries[1].NewStatus)
}

func TestCompleteRequiresAccepted(t *testing.T) {
	f := newFixture(t)
	created := f.createOffer(t)

	_, err := f.svc.Complete(context.Background(), created.ID, f.bob, "")
	require.Error(t, err)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindInvalidState, ae.Kind)
	assert.Equal(t, "only accepted offers can be completed", ae.Message)
	assert.Equal(t, 0, f.store.profiles[f.alice].SuccessfulTrades)
}

func TestCompleteNoDoubleApply(t *testing.T) {
	f := newFixture(t)
	created := f.createOffer(t)

	_, err := f.svc.Accept(context.Background(), created.ID, f.bob, "")
	require.NoError(t, err)
	_, err = f.svc.Complete(context.Background(), created.ID, f.bob, "")
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), created.ID, f.alice, "")
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	// Counters incremented exactly once, one history row per applied
	// transition.
	assert.Equal(t, 1, f.store.profiles[f.alice].SuccessfulTrades)
	assert.Equal(t, 1, f.store.profiles[f.bob].SuccessfulTrades)
	assert.Len(t, f.store.history, 2)
}

func TestCompleteFailureLeavesNoPartialState(t *testing.T) {
	f := newFixture(t)
	created := f.createOffer(t)

	_, err := f.svc.Accept(context.Background(), created.ID, f.bob, "")
	require.NoError(t, err)
	historyBefore := len(f.store.history)

	f.store.failAfterStatus = true
	_, err = f.svc.Complete(context.Background(), created.ID, f.alice, "")
	require.ErrorIs(t, err, errFake)

	// The status write, the history row and the counter bumps stand or
	// fall together. A mid-flight failure must leave none of them.
	offer := f.store.offers[created.ID]
	assert.Equal(t, trade.StatusAccepted, offer.Status)
	assert.Nil(t, offer.CompletedAt)
	assert.Len(t, f.store.history, historyBefore)
	assert.Equal(t, 0, f.store.profiles[f.alice].SuccessfulTrades)
	assert.Equal(t, 0, f.store.profiles[f.bob].SuccessfulTrades)

	// The offer is still accepted, so a retry completes it cleanly.
	f.store.failAfterStatus = false
	detail, err := f.svc.Complete(context.Background(), created.ID, f.alice, "")
	require.NoError(t, err)
	assert.Equal(t, trade.StatusCompleted, detail.Status)
	assert.Equal(t, 1, f.store.profiles[f.alice].SuccessfulTrades)
	assert.Equal(t, 1, f.store.profiles[f.bob].SuccessfulTrades)
}

func TestHistoryPathValidity(t *testing.T) {
	f := newFixture(t)
	created := f.createOffer(t)

	_, err := f.svc.Accept(context.Background(), created.ID, f.bob, "")
	require.NoError(t, err)
	_, err = f.svc.Complete(context.Background(), created.ID, f.alice, "")
	require.NoError(t, err)

	entries, err := f.svc.History(context.Background(), created.ID, f.alice)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	prev := trade.StatusPending
	for _, e := range entries {
		assert.Equal(t, prev, e.PreviousStatus)
		legal := false
		for _, a := range []trade.Action{trade.ActionAccept, trade.ActionReject, trade.ActionCancel, trade.ActionComplete} {
			to, _ := trade.Target(a)
			if to == e.NewStatus && trade.AllowedFrom(a, e.PreviousStatus) {
				legal = true
			}
		}
		assert.True(t, legal, "illegal transition %s -> %s in ledger", e.PreviousStatus, e.NewStatus)
		prev = e.NewStatus
	}
}

func TestGetOfferNonParticipant(t *testing.T) {
	f := newFixture(t)
	created := f.createOffer(t)

	_, err := f.svc.GetOffer(context.Background(), created.ID, f.carol)
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))

	_, err = f.svc.GetOffer(context.Background(), uuid.New(), f.alice)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListOffers(t *testing.T) {
	f := newFixture(t)
	created := f.createOffer(t)

	sent, err := f.svc.ListOffers(context.Background(), f.alice, "sent")
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, created.ID, sent[0].ID)

	received, err := f.svc.ListOffers(context.Background(), f.alice, "received")
	require.NoError(t, err)
	assert.Empty(t, received)

	both, err := f.svc.ListOffers(context.Background(), f.bob, "")
	require.NoError(t, err)
	assert.Len(t, both, 1)

	_, err = f.svc.ListOffers(context.Background(), f.alice, "bogus")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCounterOffer(t *testing.T) {
	f := newFixture(t)
	created := f.createOffer(t)

	counter, err := f.svc.CreateOffer(context.Background(), f.bob, CreateOfferInput{
		ReceiverID:     f.alice,
		ParentOfferID:  &created.ID,
		InitiatorItems: []uuid.UUID{f.bobItem},
		ReceiverItems:  []uuid.UUID{f.aliceItem1},
	})
	require.NoError(t, err)
	require.NotNil(t, counter.ParentOfferID)
	assert.Equal(t, created.ID, *counter.ParentOfferID)

	parent, err := f.svc.GetOffer(context.Background(), created.ID, f.alice)
	require.NoError(t, err)
	assert.True(t, parent.IsCountered)

	counters, err := f.svc.Counters(context.Background(), created.ID, f.alice)
	require.NoError(t, err)
	require.Len(t, counters, 1)
	assert.Equal(t, counter.ID, counters[0].ID)
}

func TestCounterOfferRequiresParticipant(t *testing.T) {
	f := newFixture(t)
	created := f.createOffer(t)
	carolItem := f.store.addItem(f.carol, "camera", item.StatusAvailable)

	_, err := f.svc.CreateOffer(context.Background(), f.carol, CreateOfferInput{
		ReceiverID:     f.alice,
		ParentOfferID:  &created.ID,
		InitiatorItems: []uuid.UUID{carolItem},
		ReceiverItems:  []uuid.UUID{f.aliceItem1},
	})
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))
}

func TestCreateOfferStorageFailure(t *testing.T) {
	f := newFixture(t)
	f.store.failCreate = true

	_, err := f.svc.CreateOffer(context.Background(), f.alice, CreateOfferInput{
		ReceiverID:     f.bob,
		InitiatorItems: []uuid.UUID{f.aliceItem1},
		ReceiverItems:  []uuid.UUID{f.bobItem},
	})
	require.Error(t, err)
	assert.Empty(t, f.store.offers)
	assert.Empty(t, f.store.offerItems)
}

func TestListStatuses(t *testing.T) {
	f := newFixture(t)
	statuses, err := f.svc.ListStatuses(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 5)
	assert.Equal(t, trade.StatusPending, statuses[0].Name)
}
