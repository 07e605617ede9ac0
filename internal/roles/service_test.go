package roles

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/muster-hq/muster/internal/claims"
	"github.com/muster-hq/muster/internal/platform/httpx"
)

type memoryRolesRepo struct {
	roles       map[string]Definition
	members     map[string]map[string]bool
	preassigned map[string]string
}

func newMemoryRolesRepo() *memoryRolesRepo {
	return &memoryRolesRepo{
		roles:       map[string]Definition{},
		members:     map[string]map[string]bool{},
		preassigned: map[string]string{},
	}
}

func (r *memoryRolesRepo) UpsertRole(ctx context.Context, name string, level int) (Definition, error) {
	def := Definition{Name: name, Level: level, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	r.roles[name] = def
	return def, nil
}

func (r *memoryRolesRepo) ListRoles(ctx context.Context) ([]Definition, error) {
	defs := make([]Definition, 0, len(r.roles))
	for _, def := range r.roles {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs, nil
}

func (r *memoryRolesRepo) GetRole(ctx context.Context, name string) (Definition, error) {
	def, ok := r.roles[name]
	if !ok {
		return Definition{}, httpx.ErrNotFound
	}
	return def, nil
}

func (r *memoryRolesRepo) RoleLevels(ctx context.Context) (map[string]int, error) {
	levels := make(map[string]int, len(r.roles))
	for name, def := range r.roles {
		levels[name] = def.Level
	}
	return levels, nil
}

func (r *memoryRolesRepo) AddMember(ctx context.Context, role, email string) error {
	if r.members[role] == nil {
		r.members[role] = map[string]bool{}
	}
	r.members[role][email] = true
	return nil
}

func (r *memoryRolesRepo) RemoveMember(ctx context.Context, role, email string) error {
	delete(r.members[role], email)
	return nil
}

func (r *memoryRolesRepo) MemberEmails(ctx context.Context, role string) ([]string, error) {
	var emails []string
	for email := range r.members[role] {
		emails = append(emails, email)
	}
	sort.Strings(emails)
	return emails, nil
}

func (r *memoryRolesRepo) UpsertPreassignment(ctx context.Context, email, role string) error {
	r.preassigned[email] = role
	return nil
}

func (r *memoryRolesRepo) PreassignedRole(ctx context.Context, email string) (string, error) {
	role, ok := r.preassigned[email]
	if !ok {
		return "", httpx.ErrNotFound
	}
	return role, nil
}

type memoryClaimStore struct {
	ids  map[string]int64
	bags map[int64]claims.Bag
}

func newMemoryClaimStore() *memoryClaimStore {
	return &memoryClaimStore{ids: map[string]int64{}, bags: map[int64]claims.Bag{}}
}

func (s *memoryClaimStore) addAccount(email string, id int64) {
	s.ids[email] = id
	s.bags[id] = claims.NewBag()
}

func (s *memoryClaimStore) Lookup(ctx context.Context, email string) (int64, claims.Bag, error) {
	id, ok := s.ids[email]
	if !ok {
		return 0, claims.Bag{}, httpx.ErrNotFound
	}
	return id, s.bags[id], nil
}

func (s *memoryClaimStore) Persist(ctx context.Context, accountID int64, bag claims.Bag) error {
	s.bags[accountID] = bag
	return nil
}

type fakeEvents struct{ known map[string]bool }

func (f fakeEvents) Exists(ctx context.Context, eventID string) (bool, error) {
	return f.known[eventID], nil
}

type fakeMailer struct {
	mu     sync.Mutex
	queued []string
}

func (m *fakeMailer) EnqueueInvite(ctx context.Context, email, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued = append(m.queued, email)
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	notified []string
}

func (n *fakeNotifier) EventInvite(ctx context.Context, email, eventID, sender string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notified = append(n.notified, email)
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryRolesRepo, *memoryClaimStore, *fakeMailer, *fakeNotifier) {
	t.Helper()
	repo := newMemoryRolesRepo()
	store := newMemoryClaimStore()
	mailer := &fakeMailer{}
	notifier := &fakeNotifier{}
	events := fakeEvents{known: map[string]bool{"evt-1": true}}
	service := NewService(repo, store, events, mailer, notifier, nil)
	return service, repo, store, mailer, notifier
}

func TestAssignEscalatesAndIndexes(t *testing.T) {
	service, repo, store, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.CreateRole(ctx, "editor", 5)
	require.NoError(t, err)
	_, err = service.CreateRole(ctx, "admin", 10)
	require.NoError(t, err)
	store.addAccount("sgt@unit.mil", 1)

	_, err = service.Assign(ctx, "sgt@unit.mil", "editor")
	require.NoError(t, err)
	_, err = service.Assign(ctx, "sgt@unit.mil", "admin")
	require.NoError(t, err)

	bag := store.bags[1]
	require.True(t, bag.Has("editor"))
	require.True(t, bag.Has("admin"))
	require.Equal(t, 10, bag.AccessLevel)

	emails, err := repo.MemberEmails(ctx, "admin")
	require.NoError(t, err)
	require.Equal(t, []string{"sgt@unit.mil"}, emails)
}

func TestAssignUnknownRole(t *testing.T) {
	service, _, store, _, _ := newTestService(t)
	store.addAccount("sgt@unit.mil", 1)

	_, err := service.Assign(context.Background(), "sgt@unit.mil", "ghost")
	require.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestAssignUnknownEmail(t *testing.T) {
	service, _, _, _, _ := newTestService(t)
	_, err := service.CreateRole(context.Background(), "editor", 5)
	require.NoError(t, err)

	_, err = service.Assign(context.Background(), "stranger@unit.mil", "editor")
	require.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestRevokeUpdatesClaimsAndIndex(t *testing.T) {
	service, repo, store, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.CreateRole(ctx, "editor", 5)
	require.NoError(t, err)
	_, err = service.CreateRole(ctx, "admin", 10)
	require.NoError(t, err)
	store.addAccount("sgt@unit.mil", 1)
	_, err = service.Assign(ctx, "sgt@unit.mil", "editor")
	require.NoError(t, err)
	_, err = service.Assign(ctx, "sgt@unit.mil", "admin")
	require.NoError(t, err)

	require.NoError(t, service.Revoke(ctx, "sgt@unit.mil", "admin"))

	bag := store.bags[1]
	require.False(t, bag.Has("admin"))
	require.Equal(t, 5, bag.AccessLevel)

	emails, err := repo.MemberEmails(ctx, "admin")
	require.NoError(t, err)
	require.Empty(t, emails)
}

func TestRevokeRoleNotHeld(t *testing.T) {
	service, _, store, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := service.CreateRole(ctx, "editor", 5)
	require.NoError(t, err)
	store.addAccount("sgt@unit.mil", 1)

	err = service.Revoke(ctx, "sgt@unit.mil", "editor")
	require.True(t, errors.Is(err, httpx.ErrNoRoleToRemove))
	require.True(t, store.bags[1].IsEmpty())
}

func TestGrantPreassigned(t *testing.T) {
	service, _, store, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.CreateRole(ctx, "medic", 3)
	require.NoError(t, err)
	store.addAccount("doc@unit.mil", 7)
	require.NoError(t, service.Preassign(ctx, "doc@unit.mil", "medic"))

	def, err := service.GrantPreassigned(ctx, "doc@unit.mil")
	require.NoError(t, err)
	require.Equal(t, "medic", def.Name)
	require.True(t, store.bags[7].Has("medic"))
	require.Equal(t, 3, store.bags[7].AccessLevel)
}

func TestGrantPreassignedMissing(t *testing.T) {
	service, _, store, _, _ := newTestService(t)
	store.addAccount("doc@unit.mil", 7)

	_, err := service.GrantPreassigned(context.Background(), "doc@unit.mil")
	require.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestInviteFansOutToMembers(t *testing.T) {
	service, repo, store, mailer, notifier := newTestService(t)
	ctx := context.Background()

	_, err := service.CreateRole(ctx, "medic", 3)
	require.NoError(t, err)
	store.addAccount("a@unit.mil", 1)
	store.addAccount("b@unit.mil", 2)
	_, err = service.Assign(ctx, "a@unit.mil", "medic")
	require.NoError(t, err)
	_, err = service.Assign(ctx, "b@unit.mil", "medic")
	require.NoError(t, err)
	require.Len(t, repo.members["medic"], 2)

	invited, err := service.Invite(ctx, "medic", "evt-1", "cmd@unit.mil")
	require.NoError(t, err)
	require.Equal(t, 2, invited)

	sort.Strings(mailer.queued)
	sort.Strings(notifier.notified)
	require.Equal(t, []string{"a@unit.mil", "b@unit.mil"}, mailer.queued)
	require.Equal(t, []string{"a@unit.mil", "b@unit.mil"}, notifier.notified)
}

func TestInviteUnknownEvent(t *testing.T) {
	service, _, store, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := service.CreateRole(ctx, "medic", 3)
	require.NoError(t, err)
	store.addAccount("a@unit.mil", 1)
	_, err = service.Assign(ctx, "a@unit.mil", "medic")
	require.NoError(t, err)

	_, err = service.Invite(ctx, "medic", "missing", "cmd@unit.mil")
	require.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestInviteRoleWithoutMembers(t *testing.T) {
	service, _, _, _, _ := newTestService(t)
	_, err := service.Invite(context.Background(), "empty", "evt-1", "cmd@unit.mil")
	require.True(t, errors.Is(err, httpx.ErrNotFound))
}
