package events

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/muster-hq/muster/internal/platform/httpx"
	"github.com/muster-hq/muster/internal/shared"
)

// Title and description stamped on imported battle-assembly events.
const (
	assemblyTitle       = "Battle Assembly"
	assemblyDescription = "Training Drills"
)

// Directory resolves profile details for the calling account.
type Directory interface {
	DisplayName(ctx context.Context, accountID int64) (string, error)
	DoDFor(ctx context.Context, accountID int64) (string, error)
}

// ReminderScheduler registers the reminder series for an appointment.
type ReminderScheduler interface {
	ScheduleReminders(appointment string, offsets []int, tokens []string, payload map[string]string) ([]string, error)
}

// Service handles event business logic.
type Service struct {
	repo      RepositoryPort
	directory Directory
	reminders ReminderScheduler
	logger    *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, directory Directory, reminders ReminderScheduler, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, directory: directory, reminders: reminders, logger: logger}
}

// Create stores a new event authored by the caller.
func (s *Service) Create(ctx context.Context, principal *shared.Principal, req CreateEventRequest) (Event, error) {
	if !req.EndTime.After(req.StartTime) {
		return Event{}, fmt.Errorf("%w: endtime must be after starttime", httpx.ErrValidation)
	}

	event := Event{
		ID:            uuid.NewString(),
		Author:        principal.ID,
		Organizer:     s.organizerName(ctx, principal),
		Title:         req.Title,
		Description:   req.Description,
		Type:          req.Type,
		Period:        req.Period,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		ConfirmedDoDs: []string{},
	}
	return s.repo.Create(ctx, event)
}

// Get returns a single event.
func (s *Service) Get(ctx context.Context, id string) (Event, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns upcoming events ordered by start time.
func (s *Service) List(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = shared.DefaultPageLimit
	}
	return s.repo.List(ctx, limit)
}

// Exists reports whether the event id is known.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// Update applies a partial update. Only the author may change an event.
func (s *Service) Update(ctx context.Context, principal *shared.Principal, id string, req UpdateEventRequest) (Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if event.Author != principal.ID {
		return Event{}, fmt.Errorf("%w: only the author may update an event", httpx.ErrForbidden)
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Type != nil {
		event.Type = *req.Type
	}
	if req.Period != nil {
		event.Period = *req.Period
	}
	if req.StartTime != nil {
		event.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		event.EndTime = *req.EndTime
	}
	if !event.EndTime.After(event.StartTime) {
		return Event{}, fmt.Errorf("%w: endtime must be after starttime", httpx.ErrValidation)
	}

	if err := s.repo.Save(ctx, event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// Delete removes an event. The author or an admin may delete it.
func (s *Service) Delete(ctx context.Context, principal *shared.Principal, id string) error {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if event.Author != principal.ID && !principal.IsAdmin() {
		return fmt.Errorf("%w: only the author or an admin may delete an event", httpx.ErrForbidden)
	}
	return s.repo.Delete(ctx, id)
}

// Confirm records the caller's attendance using the DoD id on their profile.
// Confirming twice is a no-op.
func (s *Service) Confirm(ctx context.Context, principal *shared.Principal, id string) error {
	dod, err := s.directory.DoDFor(ctx, principal.ID)
	if err != nil {
		return err
	}
	return s.repo.Confirm(ctx, id, dod)
}

// Import ingests a battle-assembly roster CSV. Every row becomes an event
// authored by the caller; reminder series are scheduled for each imported
// event when device tokens accompany the upload. Returns the created events.
func (s *Service) Import(ctx context.Context, principal *shared.Principal, req ImportRequest) ([]Event, error) {
	if req.Filename == "" || req.CSVFile == "" {
		return nil, fmt.Errorf("%w: filename and csv_file are required", httpx.ErrValidation)
	}
	if !strings.HasSuffix(strings.ToLower(req.Filename), ".csv") {
		return nil, fmt.Errorf("%w: %q is not a csv file", httpx.ErrUnsupportedMedia, req.Filename)
	}

	data, err := base64.StdEncoding.DecodeString(req.CSVFile)
	if err != nil {
		return nil, fmt.Errorf("%w: csv_file must be base64", httpx.ErrValidation)
	}

	rows, err := parseAssemblies(data)
	if err != nil {
		return nil, err
	}

	organizer := s.organizerName(ctx, principal)
	created := make([]Event, 0, len(rows))
	for _, row := range rows {
		event := Event{
			ID:            uuid.NewString(),
			Author:        principal.ID,
			Organizer:     organizer,
			Title:         assemblyTitle,
			Description:   assemblyDescription,
			Type:          row.Type,
			Period:        row.Period,
			StartTime:     row.StartTime,
			EndTime:       row.EndTime,
			ConfirmedDoDs: []string{},
		}
		event, err := s.repo.Create(ctx, event)
		if err != nil {
			return created, err
		}
		created = append(created, event)

		if s.reminders != nil && len(req.DeviceTokens) > 0 {
			payload := map[string]string{
				"event_id":  event.ID,
				"title":     event.Title,
				"starttime": event.StartTime.Format(time.RFC3339),
			}
			if _, err := s.reminders.ScheduleReminders(
				event.StartTime.Format(time.RFC3339), nil, req.DeviceTokens, payload,
			); err != nil {
				s.logger.Error("schedule assembly reminders failed",
					slog.String("event_id", event.ID), slog.Any("error", err))
			}
		}
	}
	return created, nil
}

// organizerName falls back to the account email when no profile exists yet.
func (s *Service) organizerName(ctx context.Context, principal *shared.Principal) string {
	if s.directory == nil {
		return principal.Email
	}
	name, err := s.directory.DisplayName(ctx, principal.ID)
	if err != nil {
		if !errors.Is(err, httpx.ErrNotFound) {
			s.logger.Warn("resolve organizer name failed",
				slog.Int64("account_id", principal.ID), slog.Any("error", err))
		}
		return principal.Email
	}
	return name
}
