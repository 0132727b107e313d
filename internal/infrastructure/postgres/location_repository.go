package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/barterhub/barterhub/internal/domain/location"
)

// LocationRepository implements location.Repository.
type LocationRepository struct {
	pool *pgxpool.Pool
}

func NewLocationRepository(pool *pgxpool.Pool) *LocationRepository {
	return &LocationRepository{pool: pool}
}

func (r *LocationRepository) Create(ctx context.Context, loc *location.Location) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO locations
		(id, user_id, title, address, city, region, postal_code, country, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, loc.ID, loc.UserID, loc.Title, loc.Address, loc.City, loc.Region, loc.PostalCode, loc.Country, loc.CreatedAt, loc.UpdatedAt)
	return err
}

func (r *LocationRepository) GetByID(ctx context.Context, id uuid.UUID) (*location.Location, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, title, address, city, region, postal_code, country, created_at, updated_at
		FROM locations WHERE id=$1
	`, id)
	return scanLocation(row)
}

func (r *LocationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*location.Location, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, title, address, city, region, postal_code, country, created_at, updated_at
		FROM locations WHERE user_id=$1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	locations := make([]*location.Location, 0)
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func scanLocation(row pgx.Row) (*location.Location, error) {
	var loc location.Location
	if err := row.Scan(&loc.ID, &loc.UserID, &loc.Title, &loc.Address, &loc.City, &loc.Region, &loc.PostalCode, &loc.Country, &loc.CreatedAt, &loc.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &loc, nil
}
