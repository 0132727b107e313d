package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/barterhub/barterhub/internal/domain/user"
)

// UserRepository implements user.Repository.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts the user and its profile row in one transaction.
func (r *UserRepository) Create(ctx context.Context, u *user.User, p *user.Profile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO users
		(id, username, password_hash, first_name, last_name, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, u.ID, u.Username, u.PasswordHash, u.FirstName, u.LastName, u.Status, u.CreatedAt, u.UpdatedAt); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO user_profiles
		(user_id, bio, phone_number, rating, total_reviews, successful_trades, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, p.UserID, p.Bio, p.PhoneNumber, p.Rating, p.TotalReviews, p.SuccessfulTrades, p.CreatedAt, p.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, first_name, last_name, status, created_at, updated_at
		FROM users WHERE id=$1
	`, userID)
	return scanUser(row)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, first_name, last_name, status, created_at, updated_at
		FROM users WHERE username=$1
	`, username)
	return scanUser(row)
}

func (r *UserRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*user.Profile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT user_id, bio, phone_number, rating, total_reviews, successful_trades, created_at, updated_at
		FROM user_profiles WHERE user_id=$1
	`, userID)
	return scanProfile(row)
}

func (r *UserRepository) ListProfiles(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*user.Profile, error) {
	out := make(map[uuid.UUID]*user.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, bio, phone_number, rating, total_reviews, successful_trades, created_at, updated_at
		FROM user_profiles WHERE user_id = ANY($1)
	`, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out[p.UserID] = p
	}
	return out, rows.Err()
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func scanProfile(row pgx.Row) (*user.Profile, error) {
	var p user.Profile
	if err := row.Scan(&p.UserID, &p.Bio, &p.PhoneNumber, &p.Rating, &p.TotalReviews, &p.SuccessfulTrades, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
