package roles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/muster-hq/muster/internal/platform/httpx"
)

// RepositoryPort defines data access for role definitions, the role-to-member
// reverse index, and first-login preassignments.
type RepositoryPort interface {
	UpsertRole(ctx context.Context, name string, level int) (Definition, error)
	ListRoles(ctx context.Context) ([]Definition, error)
	GetRole(ctx context.Context, name string) (Definition, error)
	RoleLevels(ctx context.Context) (map[string]int, error)
	AddMember(ctx context.Context, role, email string) error
	RemoveMember(ctx context.Context, role, email string) error
	MemberEmails(ctx context.Context, role string) ([]string, error)
	UpsertPreassignment(ctx context.Context, email, role string) error
	PreassignedRole(ctx context.Context, email string) (string, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertRole creates the role or reassigns its level.
func (r *Repository) UpsertRole(ctx context.Context, name string, level int) (Definition, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO roles (name, level, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		ON CONFLICT (name) DO UPDATE SET level = EXCLUDED.level, updated_at = now()
		RETURNING name, level, created_at, updated_at`,
		name, level)
	var def Definition
	if err := row.Scan(&def.Name, &def.Level, &def.CreatedAt, &def.UpdatedAt); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// ListRoles returns all role definitions ordered by name.
func (r *Repository) ListRoles(ctx context.Context) ([]Definition, error) {
	rows, err := r.pool.Query(ctx, `SELECT name, level, created_at, updated_at FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var defs []Definition
	for rows.Next() {
		var def Definition
		if err := rows.Scan(&def.Name, &def.Level, &def.CreatedAt, &def.UpdatedAt); err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

// GetRole fetches a single role definition.
func (r *Repository) GetRole(ctx context.Context, name string) (Definition, error) {
	row := r.pool.QueryRow(ctx, `SELECT name, level, created_at, updated_at FROM roles WHERE name = $1`, name)
	var def Definition
	if err := row.Scan(&def.Name, &def.Level, &def.CreatedAt, &def.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Definition{}, httpx.ErrNotFound
		}
		return Definition{}, err
	}
	return def, nil
}

// RoleLevels returns the full name-to-level table used by revoke.
func (r *Repository) RoleLevels(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT name, level FROM roles`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	levels := make(map[string]int)
	for rows.Next() {
		var name string
		var level int
		if err := rows.Scan(&name, &level); err != nil {
			return nil, err
		}
		levels[name] = level
	}
	return levels, rows.Err()
}

// AddMember records the email under the role index. Adding an existing
// member is a no-op, matching array-union semantics.
func (r *Repository) AddMember(ctx context.Context, role, email string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO role_members (role_name, email, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (role_name, email) DO NOTHING`,
		role, email)
	return err
}

// RemoveMember removes the email from the role index. Removing a missing
// member is a no-op, matching array-remove semantics.
func (r *Repository) RemoveMember(ctx context.Context, role, email string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM role_members WHERE role_name = $1 AND email = $2`, role, email)
	return err
}

// MemberEmails returns all emails indexed under the role.
func (r *Repository) MemberEmails(ctx context.Context, role string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT email FROM role_members WHERE role_name = $1 ORDER BY email`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// UpsertPreassignment maps an email to the role granted on first login.
func (r *Repository) UpsertPreassignment(ctx context.Context, email, role string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO role_preassignments (email, role_name, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (email) DO UPDATE SET role_name = EXCLUDED.role_name`,
		email, role)
	return err
}

// PreassignedRole returns the role mapped to the email, or ErrNotFound.
func (r *Repository) PreassignedRole(ctx context.Context, email string) (string, error) {
	row := r.pool.QueryRow(ctx, `SELECT role_name FROM role_preassignments WHERE email = $1`, email)
	var role string
	if err := row.Scan(&role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", httpx.ErrNotFound
		}
		return "", err
	}
	return role, nil
}

var _ RepositoryPort = (*Repository)(nil)
