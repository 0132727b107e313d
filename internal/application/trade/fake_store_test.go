package trade

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/barterhub/barterhub/internal/domain/item"
	"github.com/barterhub/barterhub/internal/domain/location"
	"github.com/barterhub/barterhub/internal/domain/trade"
	"github.com/barterhub/barterhub/internal/domain/user"
)

// fakeStore backs all repositories with in-process maps so service
// behavior can be exercised end to end without a database. Its
// ApplyTransition mirrors the transactional contract: on a precondition
// mismatch nothing is written.
type fakeStore struct {
	users      map[uuid.UUID]*user.User
	profiles   map[uuid.UUID]*user.Profile
	items      map[uuid.UUID]*item.Item
	locations  map[uuid.UUID]*location.Location
	offers     map[uuid.UUID]*trade.Offer
	offerItems []*trade.OfferItem
	history    []*trade.HistoryEntry

	failCreate bool
	// failAfterStatus aborts ApplyTransition between the staged status
	// write and the history/counter writes, like a transaction failing
	// mid-flight and rolling back.
	failAfterStatus bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[uuid.UUID]*user.User),
		profiles:  make(map[uuid.UUID]*user.Profile),
		items:     make(map[uuid.UUID]*item.Item),
		locations: make(map[uuid.UUID]*location.Location),
		offers:    make(map[uuid.UUID]*trade.Offer),
	}
}

func (f *fakeStore) addUser(username string) uuid.UUID {
	id := uuid.New()
	f.users[id] = &user.User{ID: id, Username: username, Status: user.StatusActive}
	f.profiles[id] = &user.Profile{UserID: id}
	return id
}

func (f *fakeStore) addItem(ownerID uuid.UUID, title string, status item.CatalogStatus) uuid.UUID {
	id := uuid.New()
	f.items[id] = &item.Item{ID: id, OwnerID: ownerID, Title: title, Status: status}
	return id
}

func (f *fakeStore) addLocation(userID uuid.UUID, title string) uuid.UUID {
	id := uuid.New()
	f.locations[id] = &location.Location{ID: id, UserID: userID, Title: title, City: "Oslo", Country: "NO"}
	return id
}

// trade.OfferRepository

func (f *fakeStore) Create(ctx context.Context, offer *trade.Offer, items []*trade.OfferItem) error {
	if f.failCreate {
		return errFake
	}
	cp := *offer
	f.offers[offer.ID] = &cp
	for _, it := range items {
		line := *it
		line.ID = int64(len(f.offerItems) + 1)
		f.offerItems = append(f.offerItems, &line)
	}
	if offer.ParentOfferID != nil {
		if parent, ok := f.offers[*offer.ParentOfferID]; ok {
			parent.IsCountered = true
		}
	}
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, offerID uuid.UUID) (*trade.Offer, error) {
	o, ok := f.offers[offerID]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) ListByParticipant(ctx context.Context, userID uuid.UUID, filter trade.ListFilter) ([]*trade.Offer, error) {
	out := []*trade.Offer{}
	for _, o := range f.offers {
		match := false
		switch filter.Type {
		case "sent":
			match = o.InitiatorID == userID
		case "received":
			match = o.ReceiverID == userID
		default:
			match = o.InitiatorID == userID || o.ReceiverID == userID
		}
		if match {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) ListItems(ctx context.Context, offerID uuid.UUID) ([]*trade.OfferItem, error) {
	out := []*trade.OfferItem{}
	for _, l := range f.offerItems {
		if l.OfferID == offerID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) ListCounters(ctx context.Context, parentOfferID uuid.UUID) ([]*trade.Offer, error) {
	out := []*trade.Offer{}
	for _, o := range f.offers {
		if o.ParentOfferID != nil && *o.ParentOfferID == parentOfferID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) ApplyTransition(ctx context.Context, t trade.Transition) (*trade.Offer, error) {
	o, ok := f.offers[t.OfferID]
	if !ok {
		return nil, errFake
	}
	legal := false
	for _, s := range t.From {
		if o.Status == s {
			legal = true
			break
		}
	}
	if !legal {
		return nil, trade.InvalidStateError(t.Action)
	}
	// Stage the full write set before touching the store, so a failure
	// anywhere leaves nothing observable.
	now := time.Now().UTC()
	prev := o.Status
	staged := *o
	staged.Status = t.To
	staged.UpdatedAt = now
	if t.SetCompleted {
		staged.CompletedAt = &now
	}
	actor := t.ActorID
	entry := &trade.HistoryEntry{
		ID:             uuid.New(),
		OfferID:        t.OfferID,
		PreviousStatus: prev,
		NewStatus:      t.To,
		ChangedBy:      &actor,
		Comment:        t.Comment,
		CreatedAt:      now,
	}
	if f.failAfterStatus {
		return nil, errFake
	}
	*o = staged
	f.history = append(f.history, entry)
	if t.BumpTrades {
		f.profiles[o.InitiatorID].SuccessfulTrades++
		f.profiles[o.ReceiverID].SuccessfulTrades++
	}
	cp := staged
	return &cp, nil
}

// trade.HistoryRepository

func (f *fakeStore) ListFor(ctx context.Context, offerID uuid.UUID) ([]*trade.HistoryEntry, error) {
	out := []*trade.HistoryEntry{}
	for _, e := range f.history {
		if e.OfferID == offerID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// trade.StatusRepository

func (f *fakeStore) ListActive(ctx context.Context) ([]*trade.StatusInfo, error) {
	names := []trade.Status{
		trade.StatusPending, trade.StatusAccepted, trade.StatusRejected,
		trade.StatusCompleted, trade.StatusCancelled,
	}
	out := make([]*trade.StatusInfo, 0, len(names))
	for i, n := range names {
		out = append(out, &trade.StatusInfo{ID: int32(i + 1), Name: n, IsActive: true, DisplayOrder: int16(i + 1)})
	}
	return out, nil
}

// fakeItemRepo implements item.Repository over the shared store.
type fakeItemRepo struct{ store *fakeStore }

func (r *fakeItemRepo) Create(ctx context.Context, it *item.Item) error {
	cp := *it
	r.store.items[it.ID] = &cp
	return nil
}

func (r *fakeItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	it, ok := r.store.items[id]
	if !ok || it.DeletedAt != nil {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r *fakeItemRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*item.Item, error) {
	out := []*item.Item{}
	for _, id := range ids {
		if it, ok := r.store.items[id]; ok && it.DeletedAt == nil {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*item.Item, error) {
	out := []*item.Item{}
	for _, it := range r.store.items {
		if it.OwnerID == ownerID && it.DeletedAt == nil {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) Update(ctx context.Context, it *item.Item) error {
	cp := *it
	r.store.items[it.ID] = &cp
	return nil
}

func (r *fakeItemRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if it, ok := r.store.items[id]; ok {
		now := time.Now().UTC()
		it.DeletedAt = &now
	}
	return nil
}

// fakeUserRepo implements user.Repository over the shared store.
type fakeUserRepo struct{ store *fakeStore }

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User, p *user.Profile) error {
	uc, pc := *u, *p
	r.store.users[u.ID] = &uc
	r.store.profiles[u.ID] = &pc
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	u, ok := r.store.users[userID]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	for _, u := range r.store.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetProfile(ctx context.Context, userID uuid.UUID) (*user.Profile, error) {
	p, ok := r.store.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeUserRepo) ListProfiles(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*user.Profile, error) {
	out := make(map[uuid.UUID]*user.Profile)
	for _, id := range userIDs {
		if p, ok := r.store.profiles[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

// fakeLocationRepo implements location.Repository over the shared store.
type fakeLocationRepo struct{ store *fakeStore }

func (r *fakeLocationRepo) Create(ctx context.Context, loc *location.Location) error {
	cp := *loc
	r.store.locations[loc.ID] = &cp
	return nil
}

func (r *fakeLocationRepo) GetByID(ctx context.Context, id uuid.UUID) (*location.Location, error) {
	loc, ok := r.store.locations[id]
	if !ok {
		return nil, nil
	}
	cp := *loc
	return &cp, nil
}

func (r *fakeLocationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*location.Location, error) {
	out := []*location.Location{}
	for _, loc := range r.store.locations {
		if loc.UserID == userID {
			cp := *loc
			out = append(out, &cp)
		}
	}
	return out, nil
}
