package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/muster-hq/muster/internal/platform/httpx"
)

// RepositoryPort defines data access methods for profiles.
type RepositoryPort interface {
	Create(ctx context.Context, profile Profile) (Profile, error)
	GetByAccountID(ctx context.Context, accountID int64) (Profile, error)
	GetByDoD(ctx context.Context, dod string) (Profile, error)
	Save(ctx context.Context, profile Profile) error
	Delete(ctx context.Context, accountID int64) error
	List(ctx context.Context, filters ListUsersFilters) ([]Profile, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const profileColumns = `account_id, name, email, dod, grade, rank, branch, superior,
	phone, description, status, officer, profile_picture, signature, created_at, updated_at`

// Create inserts a new profile. A second registration for the same account
// fails with ErrDuplicate.
func (r *Repository) Create(ctx context.Context, p Profile) (Profile, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO profiles (account_id, name, email, dod, grade, rank, branch, superior,
			phone, description, status, officer, profile_picture, signature, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())
		RETURNING `+profileColumns,
		p.AccountID, p.Name, p.Email, p.DoD, p.Grade, p.Rank, p.Branch, p.Superior,
		p.Phone, p.Description, p.Status, p.Officer, p.ProfilePicture, p.Signature)
	created, err := scanProfile(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Profile{}, httpx.ErrDuplicate
		}
		return Profile{}, err
	}
	return created, nil
}

// GetByAccountID fetches a profile by account id.
func (r *Repository) GetByAccountID(ctx context.Context, accountID int64) (Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE account_id = $1`, accountID)
	return notFoundWrap(scanProfile(row))
}

// GetByDoD fetches a profile by DoD id.
func (r *Repository) GetByDoD(ctx context.Context, dod string) (Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE dod = $1 LIMIT 1`, dod)
	return notFoundWrap(scanProfile(row))
}

// Save replaces all mutable fields of the profile.
func (r *Repository) Save(ctx context.Context, p Profile) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE profiles SET name = $2, grade = $3, rank = $4, branch = $5, superior = $6,
			phone = $7, description = $8, status = $9, officer = $10,
			profile_picture = $11, signature = $12, updated_at = now()
		WHERE account_id = $1`,
		p.AccountID, p.Name, p.Grade, p.Rank, p.Branch, p.Superior,
		p.Phone, p.Description, p.Status, p.Officer, p.ProfilePicture, p.Signature)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// Delete removes the profile row.
func (r *Repository) Delete(ctx context.Context, accountID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE account_id = $1`, accountID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// List returns profiles matching the filters. DoD is an exact match and
// ignores the page limit, mirroring the lookup behavior callers rely on.
func (r *Repository) List(ctx context.Context, filters ListUsersFilters) ([]Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles`
	args := []any{}
	switch {
	case filters.DoD != nil:
		query += ` WHERE dod = $1`
		args = append(args, *filters.DoD)
	case filters.Rank != nil:
		query += ` WHERE rank = $1 ORDER BY account_id LIMIT $2`
		args = append(args, *filters.Rank, filters.Limit)
	case filters.Officer != nil:
		query += ` WHERE officer = $1 ORDER BY account_id LIMIT $2`
		args = append(args, *filters.Officer, filters.Limit)
	default:
		query += ` ORDER BY account_id LIMIT $1`
		args = append(args, filters.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	if err := row.Scan(&p.AccountID, &p.Name, &p.Email, &p.DoD, &p.Grade, &p.Rank,
		&p.Branch, &p.Superior, &p.Phone, &p.Description, &p.Status, &p.Officer,
		&p.ProfilePicture, &p.Signature, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func notFoundWrap(p Profile, err error) (Profile, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, httpx.ErrNotFound
		}
		return Profile{}, err
	}
	return p, nil
}

var _ RepositoryPort = (*Repository)(nil)
