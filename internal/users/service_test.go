package users

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/muster-hq/muster/internal/platform/blob"
	"github.com/muster-hq/muster/internal/platform/httpx"
	"github.com/muster-hq/muster/internal/shared"
)

type memoryUsersRepo struct {
	profiles map[int64]Profile
}

func newMemoryUsersRepo() *memoryUsersRepo {
	return &memoryUsersRepo{profiles: map[int64]Profile{}}
}

func (r *memoryUsersRepo) Create(ctx context.Context, p Profile) (Profile, error) {
	if _, ok := r.profiles[p.AccountID]; ok {
		return Profile{}, httpx.ErrDuplicate
	}
	r.profiles[p.AccountID] = p
	return p, nil
}

func (r *memoryUsersRepo) GetByAccountID(ctx context.Context, accountID int64) (Profile, error) {
	p, ok := r.profiles[accountID]
	if !ok {
		return Profile{}, httpx.ErrNotFound
	}
	return p, nil
}

func (r *memoryUsersRepo) GetByDoD(ctx context.Context, dod string) (Profile, error) {
	for _, p := range r.profiles {
		if p.DoD == dod {
			return p, nil
		}
	}
	return Profile{}, httpx.ErrNotFound
}

func (r *memoryUsersRepo) Save(ctx context.Context, p Profile) error {
	if _, ok := r.profiles[p.AccountID]; !ok {
		return httpx.ErrNotFound
	}
	r.profiles[p.AccountID] = p
	return nil
}

func (r *memoryUsersRepo) Delete(ctx context.Context, accountID int64) error {
	if _, ok := r.profiles[accountID]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.profiles, accountID)
	return nil
}

func (r *memoryUsersRepo) List(ctx context.Context, filters ListUsersFilters) ([]Profile, error) {
	var out []Profile
	for _, p := range r.profiles {
		if filters.DoD != nil && p.DoD != *filters.DoD {
			continue
		}
		if filters.Rank != nil && p.Rank != *filters.Rank {
			continue
		}
		if filters.Officer != nil && p.Officer != *filters.Officer {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func newUsersService(t *testing.T) (*Service, *memoryUsersRepo, *blob.Store) {
	t.Helper()
	store, err := blob.NewStore(t.TempDir())
	require.NoError(t, err)
	repo := newMemoryUsersRepo()
	return NewService(repo, store, nil), repo, store
}

func principal(id int64, email string) *shared.Principal {
	return &shared.Principal{ID: id, Email: email}
}

func TestRegisterDerivesOfficer(t *testing.T) {
	service, repo, _ := newUsersService(t)

	_, err := service.Register(context.Background(), principal(1, "cpt@unit.mil"), RegisterUserRequest{
		Name: "Able Baker", DoD: "1234567890", Grade: "O-3", Rank: "CPT", Branch: "Army",
	})
	require.NoError(t, err)
	require.True(t, repo.profiles[1].Officer)

	_, err = service.Register(context.Background(), principal(2, "spc@unit.mil"), RegisterUserRequest{
		Name: "Charlie Dog", DoD: "0987654321", Grade: "E-4", Rank: "SPC", Branch: "Army",
	})
	require.NoError(t, err)
	require.False(t, repo.profiles[2].Officer)
}

func TestIsOfficerGrade(t *testing.T) {
	require.True(t, IsOfficerGrade("O-1"))
	require.True(t, IsOfficerGrade("W-2"))
	require.False(t, IsOfficerGrade("E-7"))
	require.False(t, IsOfficerGrade(""))
}

func TestRegisterDuplicate(t *testing.T) {
	service, _, _ := newUsersService(t)
	req := RegisterUserRequest{Name: "Able", DoD: "111", Grade: "E-1", Rank: "PVT", Branch: "Army"}

	_, err := service.Register(context.Background(), principal(1, "a@unit.mil"), req)
	require.NoError(t, err)
	_, err = service.Register(context.Background(), principal(1, "a@unit.mil"), req)
	require.True(t, errors.Is(err, httpx.ErrDuplicate))
}

func TestRegisterStoresPicture(t *testing.T) {
	service, repo, store := newUsersService(t)
	picture := base64.StdEncoding.EncodeToString([]byte("png-bytes"))

	_, err := service.Register(context.Background(), principal(1, "a@unit.mil"), RegisterUserRequest{
		Name: "Able", DoD: "111", Grade: "E-1", Rank: "PVT", Branch: "Army", ProfilePicture: &picture,
	})
	require.NoError(t, err)

	path := repo.profiles[1].ProfilePicture
	require.NotNil(t, path)
	data, err := store.Get(*path)
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(data))

	resp, err := service.Get(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, resp.ProfilePicture)
	require.Equal(t, picture, *resp.ProfilePicture)
}

func TestRegisterRejectsBadBase64(t *testing.T) {
	service, _, _ := newUsersService(t)
	bad := "not-base64!!!"

	_, err := service.Register(context.Background(), principal(1, "a@unit.mil"), RegisterUserRequest{
		Name: "Able", DoD: "111", Grade: "E-1", Rank: "PVT", Branch: "Army", ProfilePicture: &bad,
	})
	require.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestUpdateGradeRederivesOfficer(t *testing.T) {
	service, repo, _ := newUsersService(t)
	_, err := service.Register(context.Background(), principal(1, "a@unit.mil"), RegisterUserRequest{
		Name: "Able", DoD: "111", Grade: "E-6", Rank: "SSG", Branch: "Army",
	})
	require.NoError(t, err)

	grade := "W-1"
	_, err = service.Update(context.Background(), 1, UpdateUserRequest{Grade: &grade})
	require.NoError(t, err)
	require.True(t, repo.profiles[1].Officer)
	require.Equal(t, "W-1", repo.profiles[1].Grade)
}

func TestUpdateStoresSignature(t *testing.T) {
	service, repo, store := newUsersService(t)
	_, err := service.Register(context.Background(), principal(1, "a@unit.mil"), RegisterUserRequest{
		Name: "Able", DoD: "111", Grade: "E-1", Rank: "PVT", Branch: "Army",
	})
	require.NoError(t, err)

	signature := base64.StdEncoding.EncodeToString([]byte("sig-bytes"))
	_, err = service.Update(context.Background(), 1, UpdateUserRequest{Signature: &signature})
	require.NoError(t, err)

	path := repo.profiles[1].Signature
	require.NotNil(t, path)
	data, err := store.Get(*path)
	require.NoError(t, err)
	require.Equal(t, "sig-bytes", string(data))
}

func TestDeleteRemovesBlobs(t *testing.T) {
	service, _, store := newUsersService(t)
	picture := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	_, err := service.Register(context.Background(), principal(1, "a@unit.mil"), RegisterUserRequest{
		Name: "Able", DoD: "111", Grade: "E-1", Rank: "PVT", Branch: "Army", ProfilePicture: &picture,
	})
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), 1))

	_, err = service.Get(context.Background(), 1)
	require.True(t, errors.Is(err, httpx.ErrNotFound))
	_ = store
}

func TestGetMissingBlobFails(t *testing.T) {
	service, repo, _ := newUsersService(t)
	_, err := service.Register(context.Background(), principal(1, "a@unit.mil"), RegisterUserRequest{
		Name: "Able", DoD: "111", Grade: "E-1", Rank: "PVT", Branch: "Army",
	})
	require.NoError(t, err)

	p := repo.profiles[1]
	missing := "signature/gone"
	p.Signature = &missing
	repo.profiles[1] = p

	_, err = service.Get(context.Background(), 1)
	require.True(t, errors.Is(err, httpx.ErrNotFound))
}
