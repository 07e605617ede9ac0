package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/muster-hq/muster/internal/auth"
	"github.com/muster-hq/muster/internal/platform/httpx"
)

type stubRepo struct {
	accounts map[int64]*auth.Account
	byEmail  map[string]int64
	nextID   int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{accounts: map[int64]*auth.Account{}, byEmail: map[string]int64{}}
}

func (s *stubRepo) Create(ctx context.Context, email, hash string) (*auth.Account, error) {
	if _, ok := s.byEmail[email]; ok {
		return nil, httpx.ErrDuplicate
	}
	s.nextID++
	account := &auth.Account{ID: s.nextID, Email: email, PasswordHash: hash, IsActive: true, Claims: map[string]any{}}
	s.accounts[account.ID] = account
	s.byEmail[email] = account.ID
	return account, nil
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	id, ok := s.byEmail[email]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return s.accounts[id], nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.Account, error) {
	account, ok := s.accounts[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return account, nil
}

func (s *stubRepo) SetClaims(ctx context.Context, id int64, claims map[string]any) error {
	account, ok := s.accounts[id]
	if !ok {
		return httpx.ErrNotFound
	}
	account.Claims = claims
	return nil
}

func newService(t *testing.T) (*auth.Service, *stubRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := newStubRepo()
	return auth.NewService(repo, auth.NewTokenStore(client, time.Hour)), repo
}

func TestLoginAndVerifyToken(t *testing.T) {
	service, repo := newService(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	account, err := repo.Create(context.Background(), "user@unit.mil", string(hash))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	account.Claims = map[string]any{"editor": true, "accessLevel": float64(5)}

	token, err := service.Login(context.Background(), "user@unit.mil", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	principal, err := service.VerifyToken(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if principal.ID != account.ID || principal.Email != "user@unit.mil" {
		t.Fatalf("unexpected principal %+v", principal)
	}
	if held, _ := principal.Claims["editor"].(bool); !held {
		t.Fatal("expected editor claim on principal")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	service, repo := newService(t)
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	if _, err := repo.Create(context.Background(), "user@unit.mil", string(hash)); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := service.Login(context.Background(), "user@unit.mil", "wrong"); !errors.Is(err, httpx.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestVerifyUnknownToken(t *testing.T) {
	service, _ := newService(t)
	if _, err := service.VerifyToken(context.Background(), "nope"); !errors.Is(err, httpx.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := service.VerifyToken(context.Background(), ""); !errors.Is(err, httpx.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for empty token, got %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	service, repo := newService(t)
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	if _, err := repo.Create(context.Background(), "user@unit.mil", string(hash)); err != nil {
		t.Fatalf("create: %v", err)
	}
	token, err := service.Login(context.Background(), "user@unit.mil", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := service.Logout(context.Background(), token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := service.VerifyToken(context.Background(), token); !errors.Is(err, httpx.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after logout, got %v", err)
	}
}
