package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/muster-hq/muster/internal/platform/httpx"
)

// RepositoryPort abstracts notification persistence.
type RepositoryPort interface {
	Create(ctx context.Context, n Notification) (Notification, error)
	GetByID(ctx context.Context, id string) (Notification, error)
	List(ctx context.Context, receiver int64, filters ListNotificationsFilters) ([]Notification, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// Repository is the Postgres implementation of RepositoryPort.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates Repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, n Notification) (Notification, error) {
	query := `
		INSERT INTO notifications (notification_id, notification_type, sender, receiver, ref, read)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		n.ID, n.Type, n.Sender, n.Receiver, n.Ref, n.Read,
	).Scan(&n.CreatedAt)
	if err != nil {
		return Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	return n, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (Notification, error) {
	query := `
		SELECT notification_id, notification_type, sender, receiver, ref, read, created_at
		FROM notifications WHERE notification_id = $1`

	var n Notification
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.Type, &n.Sender, &n.Receiver, &n.Ref, &n.Read, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Notification{}, httpx.ErrNotFound
		}
		return Notification{}, fmt.Errorf("select notification: %w", err)
	}
	return n, nil
}

func (r *Repository) List(ctx context.Context, receiver int64, filters ListNotificationsFilters) ([]Notification, error) {
	query := `
		SELECT notification_id, notification_type, sender, receiver, ref, read, created_at
		FROM notifications
		WHERE receiver = $1
			AND ($2::boolean IS NULL OR read = $2)
			AND ($3::text IS NULL OR notification_type = $3)
		ORDER BY created_at DESC
		LIMIT $4`

	rows, err := r.pool.Query(ctx, query, receiver, filters.Read, filters.Type, filters.Limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Sender, &n.Receiver, &n.Ref, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *Repository) MarkRead(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE notification_id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM notifications WHERE notification_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
