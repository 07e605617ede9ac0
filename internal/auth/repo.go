package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/muster-hq/muster/internal/platform/httpx"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	Create(ctx context.Context, email, passwordHash string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)
	SetClaims(ctx context.Context, id int64, claims map[string]any) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const accountColumns = `id, email, password_hash, is_active, claims, created_at, updated_at`

// Create inserts a new active account with an empty claim bag.
func (r *PGRepository) Create(ctx context.Context, email, passwordHash string) (*Account, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (email, password_hash, is_active, claims, created_at, updated_at)
		VALUES ($1, $2, true, '{}'::jsonb, now(), now())
		RETURNING `+accountColumns,
		email, passwordHash)
	account, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	return account, nil
}

// FindByEmail fetches an account by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return account, nil
}

// FindByID fetches an account by primary key.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return account, nil
}

// SetClaims replaces the claim bag stored on the account.
func (r *PGRepository) SetClaims(ctx context.Context, id int64, claims map[string]any) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET claims = $2, updated_at = now() WHERE id = $1`, id, claims)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (*Account, error) {
	var account Account
	var claims map[string]any
	var createdAt, updatedAt time.Time
	if err := row.Scan(&account.ID, &account.Email, &account.PasswordHash,
		&account.IsActive, &claims, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if claims == nil {
		claims = map[string]any{}
	}
	account.Claims = claims
	account.CreatedAt = createdAt
	account.UpdatedAt = updatedAt
	return &account, nil
}

var _ Repository = (*PGRepository)(nil)
