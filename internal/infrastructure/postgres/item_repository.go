package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/barterhub/barterhub/internal/domain/item"
)

// ItemRepository implements item.Repository. Items reference their
// catalog status row by name; reads join it back as a plain string.
type ItemRepository struct {
	pool *pgxpool.Pool
}

func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

const itemColumns = `
	i.id, i.owner_id, i.title, i.description, s.name, i.location_id,
	i.estimated_value, i.created_at, i.updated_at, i.deleted_at
`

func (r *ItemRepository) Create(ctx context.Context, it *item.Item) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO items
		(id, owner_id, title, description, status_id, location_id, estimated_value, created_at, updated_at)
		VALUES ($1,$2,$3,$4,(SELECT id FROM item_statuses WHERE name=$5),$6,$7,$8,$9)
	`, it.ID, it.OwnerID, it.Title, it.Description, it.Status, it.LocationID, it.EstimatedValue, it.CreatedAt, it.UpdatedAt)
	return err
}

func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+itemColumns+`
		FROM items i JOIN item_statuses s ON s.id = i.status_id
		WHERE i.id=$1 AND i.deleted_at IS NULL
	`, id)
	return scanItem(row)
}

func (r *ItemRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*item.Item, error) {
	if len(ids) == 0 {
		return []*item.Item{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM items i JOIN item_statuses s ON s.id = i.status_id
		WHERE i.id = ANY($1) AND i.deleted_at IS NULL
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*item.Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM items i JOIN item_statuses s ON s.id = i.status_id
		WHERE i.owner_id=$1 AND i.deleted_at IS NULL
		ORDER BY i.created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

func (r *ItemRepository) Update(ctx context.Context, it *item.Item) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE items
		SET title=$1, description=$2,
		    status_id=(SELECT id FROM item_statuses WHERE name=$3),
		    location_id=$4, estimated_value=$5, updated_at=$6
		WHERE id=$7 AND deleted_at IS NULL
	`, it.Title, it.Description, it.Status, it.LocationID, it.EstimatedValue, time.Now().UTC(), it.ID)
	return err
}

func (r *ItemRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		UPDATE items SET deleted_at=$1, updated_at=$1 WHERE id=$2 AND deleted_at IS NULL
	`, now, id)
	return err
}

func collectItems(rows pgx.Rows) ([]*item.Item, error) {
	items := make([]*item.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanItem(row pgx.Row) (*item.Item, error) {
	var it item.Item
	if err := row.Scan(&it.ID, &it.OwnerID, &it.Title, &it.Description, &it.Status, &it.LocationID, &it.EstimatedValue, &it.CreatedAt, &it.UpdatedAt, &it.DeletedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &it, nil
}
