package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/muster-hq/muster/internal/platform/httpx"
)

// RepositoryPort abstracts event persistence.
type RepositoryPort interface {
	Create(ctx context.Context, event Event) (Event, error)
	GetByID(ctx context.Context, id string) (Event, error)
	List(ctx context.Context, limit int) ([]Event, error)
	Save(ctx context.Context, event Event) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	Confirm(ctx context.Context, id, dod string) error
}

// Repository is the Postgres implementation of RepositoryPort.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates Repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventColumns = `event_id, author, organizer, title, description, event_type, period,
	starttime, endtime, confirmed_dods, created_at`

func (r *Repository) Create(ctx context.Context, event Event) (Event, error) {
	query := `
		INSERT INTO scheduled_events (event_id, author, organizer, title, description,
			event_type, period, starttime, endtime, confirmed_dods)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		event.ID, event.Author, event.Organizer, event.Title, event.Description,
		event.Type, event.Period, event.StartTime, event.EndTime, event.ConfirmedDoDs,
	).Scan(&event.CreatedAt)
	if err != nil {
		return Event{}, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (Event, error) {
	query := `SELECT ` + eventColumns + ` FROM scheduled_events WHERE event_id = $1`

	var event Event
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&event.ID, &event.Author, &event.Organizer, &event.Title, &event.Description,
		&event.Type, &event.Period, &event.StartTime, &event.EndTime,
		&event.ConfirmedDoDs, &event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, httpx.ErrNotFound
		}
		return Event{}, fmt.Errorf("select event: %w", err)
	}
	return event, nil
}

// List returns upcoming events, soonest first.
func (r *Repository) List(ctx context.Context, limit int) ([]Event, error) {
	query := `SELECT ` + eventColumns + ` FROM scheduled_events
		WHERE endtime >= NOW() ORDER BY starttime ASC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		if err := rows.Scan(
			&event.ID, &event.Author, &event.Organizer, &event.Title, &event.Description,
			&event.Type, &event.Period, &event.StartTime, &event.EndTime,
			&event.ConfirmedDoDs, &event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *Repository) Save(ctx context.Context, event Event) error {
	query := `
		UPDATE scheduled_events
		SET organizer = $2, title = $3, description = $4, event_type = $5,
			period = $6, starttime = $7, endtime = $8
		WHERE event_id = $1`

	tag, err := r.pool.Exec(ctx, query,
		event.ID, event.Organizer, event.Title, event.Description,
		event.Type, event.Period, event.StartTime, event.EndTime,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM scheduled_events WHERE event_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *Repository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM scheduled_events WHERE event_id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("event exists: %w", err)
	}
	return exists, nil
}

// Confirm appends the DoD id to the confirmed list unless already present.
func (r *Repository) Confirm(ctx context.Context, id, dod string) error {
	query := `
		UPDATE scheduled_events
		SET confirmed_dods = array_append(confirmed_dods, $2)
		WHERE event_id = $1 AND NOT ($2 = ANY (confirmed_dods))`

	tag, err := r.pool.Exec(ctx, query, id, dod)
	if err != nil {
		return fmt.Errorf("confirm event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		exists, err := r.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return httpx.ErrNotFound
		}
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
