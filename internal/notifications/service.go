package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/muster-hq/muster/internal/platform/httpx"
	"github.com/muster-hq/muster/internal/shared"
)

// FeedPort mirrors notifications into the realtime feed.
type FeedPort interface {
	Push(ctx context.Context, n Notification) error
	Remove(ctx context.Context, receiver int64, id string) error
}

// AccountResolver maps an email address to its account id.
type AccountResolver interface {
	IDByEmail(ctx context.Context, email string) (int64, error)
}

// ProfileResolver maps a DoD id to its account id.
type ProfileResolver interface {
	AccountIDByDoD(ctx context.Context, dod string) (int64, error)
}

// Service handles in-app notification business logic.
type Service struct {
	repo     RepositoryPort
	feed     FeedPort
	accounts AccountResolver
	profiles ProfileResolver
	logger   *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, feed FeedPort, accounts AccountResolver, profiles ProfileResolver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, feed: feed, accounts: accounts, profiles: profiles, logger: logger}
}

// Create stores a notification addressed by account id or by DoD id and
// mirrors it into the receiver's feed. Exactly one addressing mode must be
// set.
func (s *Service) Create(ctx context.Context, req CreateNotificationRequest) (Notification, error) {
	receiver, err := s.resolveReceiver(ctx, req)
	if err != nil {
		return Notification{}, err
	}

	n := Notification{
		ID:       uuid.NewString(),
		Type:     req.Type,
		Sender:   req.Sender,
		Receiver: receiver,
		Ref:      req.Ref,
	}
	n, err = s.repo.Create(ctx, n)
	if err != nil {
		return Notification{}, err
	}

	if s.feed != nil {
		if err := s.feed.Push(ctx, n); err != nil {
			s.logger.Error("push notification to feed failed",
				slog.String("id", n.ID), slog.Any("error", err))
		}
	}
	return n, nil
}

// List returns the caller's notifications, newest first.
func (s *Service) List(ctx context.Context, principal *shared.Principal, filters ListNotificationsFilters) ([]Notification, error) {
	if filters.Limit <= 0 {
		filters.Limit = shared.DefaultPageLimit
	}
	return s.repo.List(ctx, principal.ID, filters)
}

// MarkRead marks the caller's notification as read and removes it from the
// feed. Reading someone else's notification is forbidden; reading one twice
// fails with ErrAlreadyRead.
func (s *Service) MarkRead(ctx context.Context, principal *shared.Principal, id string) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.Receiver != principal.ID {
		return fmt.Errorf("%w: notification belongs to another account", httpx.ErrForbidden)
	}
	if n.Read {
		return fmt.Errorf("%w: notification %s", httpx.ErrAlreadyRead, id)
	}

	if err := s.repo.MarkRead(ctx, id); err != nil {
		return err
	}
	if s.feed != nil {
		if err := s.feed.Remove(ctx, n.Receiver, id); err != nil {
			s.logger.Error("remove feed entry failed",
				slog.String("id", id), slog.Any("error", err))
		}
	}
	return nil
}

// Delete removes the caller's notification and its feed entry.
func (s *Service) Delete(ctx context.Context, principal *shared.Principal, id string) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.Receiver != principal.ID {
		return fmt.Errorf("%w: notification belongs to another account", httpx.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.feed != nil {
		if err := s.feed.Remove(ctx, n.Receiver, id); err != nil {
			s.logger.Error("remove feed entry failed",
				slog.String("id", id), slog.Any("error", err))
		}
	}
	return nil
}

// EventInvite notifies the member with the given email about an event
// invitation. It is the fan-out target used when a role is invited to an
// event.
func (s *Service) EventInvite(ctx context.Context, email, eventID, sender string) error {
	receiver, err := s.accounts.IDByEmail(ctx, email)
	if err != nil {
		return err
	}
	_, err = s.Create(ctx, CreateNotificationRequest{
		Receiver: &receiver,
		Type:     TypeEventInvite,
		Sender:   sender,
		Ref:      eventID,
	})
	return err
}

func (s *Service) resolveReceiver(ctx context.Context, req CreateNotificationRequest) (int64, error) {
	switch {
	case req.Receiver != nil && req.ReceiverDoD != nil:
		return 0, fmt.Errorf("%w: set receiver or receiver_dod, not both", httpx.ErrValidation)
	case req.Receiver != nil:
		return *req.Receiver, nil
	case req.ReceiverDoD != nil:
		return s.profiles.AccountIDByDoD(ctx, *req.ReceiverDoD)
	default:
		return 0, fmt.Errorf("%w: a receiver is required", httpx.ErrValidation)
	}
}
