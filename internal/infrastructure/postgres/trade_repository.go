package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/barterhub/barterhub/internal/domain/apperr"
	"github.com/barterhub/barterhub/internal/domain/trade"
)

// TradeRepository implements trade.OfferRepository, trade.HistoryRepository
// and trade.StatusRepository. Offers reference the status registry by id;
// the API works in status names, so reads join the registry and writes
// resolve names through subselects.
type TradeRepository struct {
	pool *pgxpool.Pool
}

func NewTradeRepository(pool *pgxpool.Pool) *TradeRepository {
	return &TradeRepository{pool: pool}
}

const offerColumns = `
	o.id, o.initiator_id, o.receiver_id, s.name, o.location_id, o.message,
	o.is_countered, o.parent_offer_id, o.completed_at, o.created_at, o.updated_at
`

// Create writes the offer and all line items in one transaction. The
// parent offer, when present, is flagged as countered in the same
// transaction.
func (r *TradeRepository) Create(ctx context.Context, offer *trade.Offer, items []*trade.OfferItem) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO trade_offers
		(id, initiator_id, receiver_id, status_id, location_id, message, is_countered, parent_offer_id, created_at, updated_at)
		VALUES ($1,$2,$3,(SELECT id FROM trade_statuses WHERE name=$4),$5,$6,$7,$8,$9,$10)
	`, offer.ID, offer.InitiatorID, offer.ReceiverID, offer.Status, offer.LocationID, offer.Message,
		offer.IsCountered, offer.ParentOfferID, offer.CreatedAt, offer.UpdatedAt); err != nil {
		return err
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO trade_offer_items (trade_offer_id, item_id, is_from_initiator)
			VALUES ($1,$2,$3)
		`, it.OfferID, it.ItemID, it.IsFromInitiator); err != nil {
			return err
		}
	}

	if offer.ParentOfferID != nil {
		if _, err := tx.Exec(ctx, `
			UPDATE trade_offers SET is_countered=TRUE, updated_at=$1 WHERE id=$2
		`, offer.UpdatedAt, *offer.ParentOfferID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *TradeRepository) GetByID(ctx context.Context, offerID uuid.UUID) (*trade.Offer, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+offerColumns+`
		FROM trade_offers o JOIN trade_statuses s ON s.id = o.status_id
		WHERE o.id=$1
	`, offerID)
	return scanOffer(row)
}

func (r *TradeRepository) ListByParticipant(ctx context.Context, userID uuid.UUID, filter trade.ListFilter) ([]*trade.Offer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM trade_offers o JOIN trade_statuses s ON s.id = o.status_id
	`
	switch filter.Type {
	case "sent":
		query += ` WHERE o.initiator_id=$1`
	case "received":
		query += ` WHERE o.receiver_id=$1`
	default:
		query += ` WHERE o.initiator_id=$1 OR o.receiver_id=$1`
	}
	query += ` ORDER BY o.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOffers(rows)
}

func (r *TradeRepository) ListItems(ctx context.Context, offerID uuid.UUID) ([]*trade.OfferItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, trade_offer_id, item_id, is_from_initiator
		FROM trade_offer_items WHERE trade_offer_id=$1 ORDER BY id
	`, offerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]*trade.OfferItem, 0)
	for rows.Next() {
		var it trade.OfferItem
		if err := rows.Scan(&it.ID, &it.OfferID, &it.ItemID, &it.IsFromInitiator); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func (r *TradeRepository) ListCounters(ctx context.Context, parentOfferID uuid.UUID) ([]*trade.Offer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+offerColumns+`
		FROM trade_offers o JOIN trade_statuses s ON s.id = o.status_id
		WHERE o.parent_offer_id=$1 ORDER BY o.created_at DESC
	`, parentOfferID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOffers(rows)
}

// ApplyTransition executes one status change atomically. The offer row
// is locked, the precondition set re-checked under the lock, and the
// status update, history append and counter increments either all commit
// or all roll back.
func (r *TradeRepository) ApplyTransition(ctx context.Context, t trade.Transition) (*trade.Offer, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT `+offerColumns+`
		FROM trade_offers o JOIN trade_statuses s ON s.id = o.status_id
		WHERE o.id=$1
		FOR UPDATE OF o
	`, t.OfferID)
	offer, err := scanOffer(row)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, apperr.NotFound("offer not found")
	}

	legal := false
	for _, s := range t.From {
		if offer.Status == s {
			legal = true
			break
		}
	}
	if !legal {
		return nil, trade.InvalidStateError(t.Action)
	}

	now := time.Now().UTC()
	if t.SetCompleted {
		_, err = tx.Exec(ctx, `
			UPDATE trade_offers
			SET status_id=(SELECT id FROM trade_statuses WHERE name=$1), completed_at=$2, updated_at=$2
			WHERE id=$3
		`, t.To, now, t.OfferID)
	} else {
		_, err = tx.Exec(ctx, `
			UPDATE trade_offers
			SET status_id=(SELECT id FROM trade_statuses WHERE name=$1), updated_at=$2
			WHERE id=$3
		`, t.To, now, t.OfferID)
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO trade_history
		(id, trade_offer_id, previous_status_id, new_status_id, changed_by, comment, created_at)
		VALUES ($1,$2,
			(SELECT id FROM trade_statuses WHERE name=$3),
			(SELECT id FROM trade_statuses WHERE name=$4),
			$5,$6,$7)
	`, uuid.New(), t.OfferID, offer.Status, t.To, t.ActorID, t.Comment, now); err != nil {
		return nil, err
	}

	if t.BumpTrades {
		if _, err := tx.Exec(ctx, `
			UPDATE user_profiles
			SET successful_trades = successful_trades + 1, updated_at=$1
			WHERE user_id IN ($2, $3)
		`, now, offer.InitiatorID, offer.ReceiverID); err != nil {
			return nil, err
		}
	}

	row = tx.QueryRow(ctx, `
		SELECT `+offerColumns+`
		FROM trade_offers o JOIN trade_statuses s ON s.id = o.status_id
		WHERE o.id=$1
	`, t.OfferID)
	updated, err := scanOffer(row)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// ListFor returns the transition ledger of an offer, oldest first.
func (r *TradeRepository) ListFor(ctx context.Context, offerID uuid.UUID) ([]*trade.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT h.id, h.trade_offer_id, ps.name, ns.name, h.changed_by, h.comment, h.created_at
		FROM trade_history h
		JOIN trade_statuses ps ON ps.id = h.previous_status_id
		JOIN trade_statuses ns ON ns.id = h.new_status_id
		WHERE h.trade_offer_id=$1
		ORDER BY h.created_at, h.id
	`, offerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]*trade.HistoryEntry, 0)
	for rows.Next() {
		var e trade.HistoryEntry
		if err := rows.Scan(&e.ID, &e.OfferID, &e.PreviousStatus, &e.NewStatus, &e.ChangedBy, &e.Comment, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// ListActive returns the active rows of the status registry in display
// order.
func (r *TradeRepository) ListActive(ctx context.Context) ([]*trade.StatusInfo, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, is_active, display_order
		FROM trade_statuses WHERE is_active ORDER BY display_order, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	statuses := make([]*trade.StatusInfo, 0)
	for rows.Next() {
		var st trade.StatusInfo
		if err := rows.Scan(&st.ID, &st.Name, &st.Description, &st.IsActive, &st.DisplayOrder); err != nil {
			return nil, err
		}
		statuses = append(statuses, &st)
	}
	return statuses, rows.Err()
}

func collectOffers(rows pgx.Rows) ([]*trade.Offer, error) {
	offers := make([]*trade.Offer, 0)
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

func scanOffer(row pgx.Row) (*trade.Offer, error) {
	var o trade.Offer
	if err := row.Scan(&o.ID, &o.InitiatorID, &o.ReceiverID, &o.Status, &o.LocationID, &o.Message,
		&o.IsCountered, &o.ParentOfferID, &o.CompletedAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}
