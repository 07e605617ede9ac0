package auth

import (
	"context"

	"github.com/muster-hq/muster/internal/claims"
)

// ClaimStore adapts the auth service to the typed claim-bag boundary used by
// role management. Bags are flattened to the string-keyed form only here.
type ClaimStore struct {
	service *Service
}

// NewClaimStore constructs the adapter.
func NewClaimStore(service *Service) *ClaimStore {
	return &ClaimStore{service: service}
}

// Lookup resolves an email to its account id and current claim bag.
func (s *ClaimStore) Lookup(ctx context.Context, email string) (int64, claims.Bag, error) {
	account, err := s.service.GetByEmail(ctx, email)
	if err != nil {
		return 0, claims.Bag{}, err
	}
	return account.ID, claims.FromMap(account.Claims), nil
}

// Persist writes the claim bag back onto the account.
func (s *ClaimStore) Persist(ctx context.Context, accountID int64, bag claims.Bag) error {
	return s.service.SetClaims(ctx, accountID, bag.ToMap())
}
