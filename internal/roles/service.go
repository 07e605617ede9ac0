package roles

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/muster-hq/muster/internal/claims"
	"github.com/muster-hq/muster/internal/platform/httpx"
)

// ClaimStore reads and writes the claim bag attached to an account, keyed by
// email at the lookup boundary.
type ClaimStore interface {
	Lookup(ctx context.Context, email string) (int64, claims.Bag, error)
	Persist(ctx context.Context, accountID int64, bag claims.Bag) error
}

// EventDirectory answers whether a scheduled event exists.
type EventDirectory interface {
	Exists(ctx context.Context, eventID string) (bool, error)
}

// InviteMailer queues an invite email for delivery.
type InviteMailer interface {
	EnqueueInvite(ctx context.Context, email, eventID string) error
}

// Notifier records an in-app invite notification for a recipient.
type Notifier interface {
	EventInvite(ctx context.Context, email, eventID, sender string) error
}

// Service handles role business logic: definition upserts, claim merges on
// assignment and revocation, the role-to-member index, and invite fan-out.
type Service struct {
	repo    RepositoryPort
	store   ClaimStore
	events  EventDirectory
	mailer  InviteMailer
	notify  Notifier
	logger  *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, store ClaimStore, events EventDirectory, mailer InviteMailer, notify Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, store: store, events: events, mailer: mailer, notify: notify, logger: logger}
}

// CreateRole upserts a role definition.
func (s *Service) CreateRole(ctx context.Context, name string, level int) (Definition, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == claims.AccessLevelKey {
		return Definition{}, fmt.Errorf("%w: invalid role name", httpx.ErrValidation)
	}
	return s.repo.UpsertRole(ctx, name, level)
}

// ListRoles returns all role definitions.
func (s *Service) ListRoles(ctx context.Context) ([]Definition, error) {
	return s.repo.ListRoles(ctx)
}

// GrantPreassigned grants the role mapped to the caller's email, if any.
// Used on first login so preprovisioned members pick up their role without
// admin action.
func (s *Service) GrantPreassigned(ctx context.Context, email string) (Definition, error) {
	role, err := s.repo.PreassignedRole(ctx, email)
	if err != nil {
		return Definition{}, err
	}
	return s.assign(ctx, email, role)
}

// Preassign maps an email to a role for the next GrantPreassigned call.
func (s *Service) Preassign(ctx context.Context, email, role string) error {
	if _, err := s.repo.GetRole(ctx, role); err != nil {
		return err
	}
	return s.repo.UpsertPreassignment(ctx, strings.ToLower(email), role)
}

// Assign grants the role to the account behind the email, escalating the
// access level when the role outranks the current one. The member index is
// updated alongside.
func (s *Service) Assign(ctx context.Context, email, role string) (Definition, error) {
	return s.assign(ctx, email, role)
}

func (s *Service) assign(ctx context.Context, email, role string) (Definition, error) {
	def, err := s.repo.GetRole(ctx, role)
	if err != nil {
		return Definition{}, err
	}

	accountID, bag, err := s.store.Lookup(ctx, email)
	if err != nil {
		return Definition{}, err
	}

	merged := claims.Grant(bag, def.Name, def.Level)
	if err := s.store.Persist(ctx, accountID, merged); err != nil {
		return Definition{}, err
	}
	if err := s.repo.AddMember(ctx, def.Name, email); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// Revoke removes the role from the account behind the email, recomputing the
// access level from the remaining roles. Revoking a role that is not held
// fails with ErrNoRoleToRemove and changes nothing.
func (s *Service) Revoke(ctx context.Context, email, role string) error {
	accountID, bag, err := s.store.Lookup(ctx, email)
	if err != nil {
		return err
	}

	levels, err := s.repo.RoleLevels(ctx)
	if err != nil {
		return err
	}

	merged, err := claims.Revoke(bag, role, levels)
	if err != nil {
		return err
	}
	if err := s.store.Persist(ctx, accountID, merged); err != nil {
		return err
	}
	return s.repo.RemoveMember(ctx, role, email)
}

// Invite fans an event invitation out to every member holding the role: one
// queued email and one in-app notification each. Delivery runs concurrently;
// the first failure aborts the remainder.
func (s *Service) Invite(ctx context.Context, role, eventID, sender string) (int, error) {
	ok, err := s.events.Exists(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: event %s", httpx.ErrNotFound, eventID)
	}

	emails, err := s.repo.MemberEmails(ctx, role)
	if err != nil {
		return 0, err
	}
	if len(emails) == 0 {
		return 0, fmt.Errorf("%w: no members hold role %s", httpx.ErrNotFound, role)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, email := range emails {
		g.Go(func() error {
			if err := s.mailer.EnqueueInvite(gctx, email, eventID); err != nil {
				return err
			}
			return s.notify.EventInvite(gctx, email, eventID, sender)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(emails), nil
}
