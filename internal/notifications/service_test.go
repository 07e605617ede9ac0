package notifications

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/muster-hq/muster/internal/platform/httpx"
	"github.com/muster-hq/muster/internal/shared"
)

type memoryNotificationsRepo struct {
	mu    sync.Mutex
	items map[string]Notification
	seq   int
}

func newMemoryNotificationsRepo() *memoryNotificationsRepo {
	return &memoryNotificationsRepo{items: map[string]Notification{}}
}

func (r *memoryNotificationsRepo) Create(ctx context.Context, n Notification) (Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	n.CreatedAt = time.Unix(int64(r.seq), 0)
	r.items[n.ID] = n
	return n, nil
}

func (r *memoryNotificationsRepo) GetByID(ctx context.Context, id string) (Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok {
		return Notification{}, httpx.ErrNotFound
	}
	return n, nil
}

func (r *memoryNotificationsRepo) List(ctx context.Context, receiver int64, filters ListNotificationsFilters) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Notification
	for _, n := range r.items {
		if n.Receiver != receiver {
			continue
		}
		if filters.Read != nil && n.Read != *filters.Read {
			continue
		}
		if filters.Type != nil && n.Type != *filters.Type {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

func (r *memoryNotificationsRepo) MarkRead(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok {
		return httpx.ErrNotFound
	}
	n.Read = true
	r.items[id] = n
	return nil
}

func (r *memoryNotificationsRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type fakeAccounts struct{ byEmail map[string]int64 }

func (a *fakeAccounts) IDByEmail(ctx context.Context, email string) (int64, error) {
	id, ok := a.byEmail[email]
	if !ok {
		return 0, httpx.ErrNotFound
	}
	return id, nil
}

type fakeProfiles struct{ byDoD map[string]int64 }

func (p *fakeProfiles) AccountIDByDoD(ctx context.Context, dod string) (int64, error) {
	id, ok := p.byDoD[dod]
	if !ok {
		return 0, httpx.ErrNotFound
	}
	return id, nil
}

func newNotificationsService(t *testing.T) (*Service, *memoryNotificationsRepo, *Feed) {
	t.Helper()
	mr := miniredis.RunT(t)
	feed := NewFeed(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	repo := newMemoryNotificationsRepo()
	accounts := &fakeAccounts{byEmail: map[string]int64{"able@unit.mil": 1, "baker@unit.mil": 2}}
	profiles := &fakeProfiles{byDoD: map[string]int64{"1234567890": 1}}
	return NewService(repo, feed, accounts, profiles, nil), repo, feed
}

func receiver(id int64) *shared.Principal {
	return &shared.Principal{ID: id, Email: "able@unit.mil"}
}

func TestCreatePushesToFeed(t *testing.T) {
	service, _, feed := newNotificationsService(t)
	to := int64(1)

	n, err := service.Create(context.Background(), CreateNotificationRequest{
		Receiver: &to, Type: TypeSystem, Sender: "orderly-room",
	})
	require.NoError(t, err)

	unread, err := feed.Unread(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	require.Equal(t, n.ID, unread[0].ID)
}

func TestCreateResolvesDoD(t *testing.T) {
	service, repo, _ := newNotificationsService(t)
	dod := "1234567890"

	n, err := service.Create(context.Background(), CreateNotificationRequest{
		ReceiverDoD: &dod, Type: TypeSystem, Sender: "orderly-room",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), n.Receiver)
	require.Equal(t, int64(1), repo.items[n.ID].Receiver)

	unknown := "0000000000"
	_, err = service.Create(context.Background(), CreateNotificationRequest{
		ReceiverDoD: &unknown, Type: TypeSystem, Sender: "orderly-room",
	})
	require.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestCreateRequiresOneReceiver(t *testing.T) {
	service, _, _ := newNotificationsService(t)
	to, dod := int64(1), "1234567890"

	_, err := service.Create(context.Background(), CreateNotificationRequest{
		Type: TypeSystem, Sender: "orderly-room",
	})
	require.True(t, errors.Is(err, httpx.ErrValidation))

	_, err = service.Create(context.Background(), CreateNotificationRequest{
		Receiver: &to, ReceiverDoD: &dod, Type: TypeSystem, Sender: "orderly-room",
	})
	require.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestListIsReceiverScoped(t *testing.T) {
	service, _, _ := newNotificationsService(t)
	one, two := int64(1), int64(2)

	for _, to := range []*int64{&one, &one, &two} {
		_, err := service.Create(context.Background(), CreateNotificationRequest{
			Receiver: to, Type: TypeSystem, Sender: "orderly-room",
		})
		require.NoError(t, err)
	}

	items, err := service.List(context.Background(), receiver(1), ListNotificationsFilters{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.True(t, items[0].CreatedAt.After(items[1].CreatedAt))
}

func TestMarkReadOwnerOnlyAndOnce(t *testing.T) {
	service, repo, feed := newNotificationsService(t)
	to := int64(1)
	n, err := service.Create(context.Background(), CreateNotificationRequest{
		Receiver: &to, Type: TypeSystem, Sender: "orderly-room",
	})
	require.NoError(t, err)

	err = service.MarkRead(context.Background(), receiver(2), n.ID)
	require.True(t, errors.Is(err, httpx.ErrForbidden))

	require.NoError(t, service.MarkRead(context.Background(), receiver(1), n.ID))
	require.True(t, repo.items[n.ID].Read)

	unread, err := feed.Unread(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, unread)

	err = service.MarkRead(context.Background(), receiver(1), n.ID)
	require.True(t, errors.Is(err, httpx.ErrAlreadyRead))
}

func TestDeleteOwnerOnly(t *testing.T) {
	service, repo, _ := newNotificationsService(t)
	to := int64(1)
	n, err := service.Create(context.Background(), CreateNotificationRequest{
		Receiver: &to, Type: TypeSystem, Sender: "orderly-room",
	})
	require.NoError(t, err)

	err = service.Delete(context.Background(), receiver(2), n.ID)
	require.True(t, errors.Is(err, httpx.ErrForbidden))

	require.NoError(t, service.Delete(context.Background(), receiver(1), n.ID))
	require.Empty(t, repo.items)

	err = service.Delete(context.Background(), receiver(1), n.ID)
	require.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestEventInvite(t *testing.T) {
	service, repo, _ := newNotificationsService(t)

	require.NoError(t, service.EventInvite(context.Background(), "baker@unit.mil", "evt-1", "able@unit.mil"))
	require.Len(t, repo.items, 1)
	for _, n := range repo.items {
		require.Equal(t, TypeEventInvite, n.Type)
		require.Equal(t, int64(2), n.Receiver)
		require.Equal(t, "evt-1", n.Ref)
		require.Equal(t, "able@unit.mil", n.Sender)
	}

	err := service.EventInvite(context.Background(), "ghost@unit.mil", "evt-1", "able@unit.mil")
	require.True(t, errors.Is(err, httpx.ErrNotFound))
}
