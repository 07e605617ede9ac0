package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/muster-hq/muster/internal/platform/httpx"
	"github.com/muster-hq/muster/internal/shared"
)

// Service wraps authentication and claim-store operations.
type Service struct {
	repo   Repository
	tokens *TokenStore
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenStore) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Signup creates an account with a hashed password.
func (s *Service) Signup(ctx context.Context, email, password string) (*Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password required", httpx.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, email, string(hash))
}

// Login validates credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	account, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", httpx.ErrUnauthorized
	}
	if !account.IsActive {
		return "", httpx.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", httpx.ErrUnauthorized
	}
	token := uuid.NewString()
	if err := s.tokens.Save(ctx, token, account.ID); err != nil {
		return "", err
	}
	return token, nil
}

// Logout revokes a bearer token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// VerifyToken resolves a bearer token into the calling principal, including
// the current claim bag. Invalid or expired tokens fail with ErrUnauthorized.
func (s *Service) VerifyToken(ctx context.Context, token string) (*shared.Principal, error) {
	if token == "" {
		return nil, httpx.ErrUnauthorized
	}
	accountID, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil || !account.IsActive {
		return nil, httpx.ErrUnauthorized
	}
	return &shared.Principal{
		ID:     account.ID,
		Email:  account.Email,
		Claims: account.Claims,
	}, nil
}

// SetClaims persists the claim bag for the account.
func (s *Service) SetClaims(ctx context.Context, accountID int64, claims map[string]any) error {
	return s.repo.SetClaims(ctx, accountID, claims)
}

// GetByEmail fetches the account behind an email address.
func (s *Service) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// IDByEmail resolves an email address to its account id.
func (s *Service) IDByEmail(ctx context.Context, email string) (int64, error) {
	account, err := s.GetByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	return account.ID, nil
}
