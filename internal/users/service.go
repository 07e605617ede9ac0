package users

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/muster-hq/muster/internal/platform/blob"
	"github.com/muster-hq/muster/internal/platform/httpx"
	"github.com/muster-hq/muster/internal/shared"
)

// BlobStore persists uploaded profile pictures and signatures.
type BlobStore interface {
	Put(name string, data []byte) error
	Get(name string) ([]byte, error)
	Exists(name string) (bool, error)
	Delete(name string) error
}

// Service handles profile business logic.
type Service struct {
	repo   RepositoryPort
	blobs  BlobStore
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, blobs BlobStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, blobs: blobs, logger: logger}
}

// Register creates the caller's profile. Registering twice for the same
// account fails with ErrDuplicate.
func (s *Service) Register(ctx context.Context, principal *shared.Principal, req RegisterUserRequest) (Profile, error) {
	profile := Profile{
		AccountID: principal.ID,
		Name:      req.Name,
		Email:     principal.Email,
		DoD:       req.DoD,
		Grade:     req.Grade,
		Rank:      req.Rank,
		Branch:    req.Branch,
		Superior:  req.Superior,
		Phone:     req.Phone,
		Status:    1,
		Officer:   IsOfficerGrade(req.Grade),
	}
	if req.Description != nil {
		profile.Description = req.Description
	}

	if req.ProfilePicture != nil {
		path, err := s.storeBlob("profile_picture/"+uuid.NewString(), *req.ProfilePicture)
		if err != nil {
			return Profile{}, err
		}
		profile.ProfilePicture = &path
	}

	return s.repo.Create(ctx, profile)
}

// Get returns the caller's profile with blob contents inlined as base64.
func (s *Service) Get(ctx context.Context, accountID int64) (ProfileResponse, error) {
	profile, err := s.repo.GetByAccountID(ctx, accountID)
	if err != nil {
		return ProfileResponse{}, err
	}
	return s.toResponse(profile)
}

// GetByDoD resolves a profile by DoD id.
func (s *Service) GetByDoD(ctx context.Context, dod string) (Profile, error) {
	return s.repo.GetByDoD(ctx, dod)
}

// DisplayName returns the profile name for an account.
func (s *Service) DisplayName(ctx context.Context, accountID int64) (string, error) {
	profile, err := s.repo.GetByAccountID(ctx, accountID)
	if err != nil {
		return "", err
	}
	return profile.Name, nil
}

// DoDFor returns the DoD id on an account's profile.
func (s *Service) DoDFor(ctx context.Context, accountID int64) (string, error) {
	profile, err := s.repo.GetByAccountID(ctx, accountID)
	if err != nil {
		return "", err
	}
	return profile.DoD, nil
}

// AccountIDByDoD resolves a DoD id to the owning account.
func (s *Service) AccountIDByDoD(ctx context.Context, dod string) (int64, error) {
	profile, err := s.repo.GetByDoD(ctx, dod)
	if err != nil {
		return 0, err
	}
	return profile.AccountID, nil
}

// Update applies a partial update to the caller's profile. A grade change
// re-derives the officer flag; a new picture replaces the stored blob in
// place when one already exists.
func (s *Service) Update(ctx context.Context, accountID int64, req UpdateUserRequest) (Profile, error) {
	profile, err := s.repo.GetByAccountID(ctx, accountID)
	if err != nil {
		return Profile{}, err
	}

	if req.Name != nil {
		profile.Name = *req.Name
	}
	if req.Grade != nil {
		profile.Grade = *req.Grade
		profile.Officer = IsOfficerGrade(*req.Grade)
	}
	if req.Rank != nil {
		profile.Rank = *req.Rank
	}
	if req.Branch != nil {
		profile.Branch = *req.Branch
	}
	if req.Superior != nil {
		profile.Superior = *req.Superior
	}
	if req.Phone != nil {
		profile.Phone = req.Phone
	}
	if req.Description != nil {
		profile.Description = req.Description
	}
	if req.ProfilePicture != nil {
		path := "profile_picture/" + uuid.NewString()
		if profile.ProfilePicture != nil {
			path = *profile.ProfilePicture
		}
		stored, err := s.storeBlob(path, *req.ProfilePicture)
		if err != nil {
			return Profile{}, err
		}
		profile.ProfilePicture = &stored
	}
	if req.Signature != nil {
		path := "signature/" + uuid.NewString()
		if profile.Signature != nil {
			path = *profile.Signature
		}
		stored, err := s.storeBlob(path, *req.Signature)
		if err != nil {
			return Profile{}, err
		}
		profile.Signature = &stored
	}

	if err := s.repo.Save(ctx, profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// Delete removes the profile and its stored blobs. A missing blob fails the
// delete before the row is touched.
func (s *Service) Delete(ctx context.Context, accountID int64) error {
	profile, err := s.repo.GetByAccountID(ctx, accountID)
	if err != nil {
		return err
	}

	for _, path := range []*string{profile.Signature, profile.ProfilePicture} {
		if path == nil {
			continue
		}
		if err := s.blobs.Delete(*path); err != nil {
			if errors.Is(err, blob.ErrNotFound) {
				return fmt.Errorf("%w: stored object %s", httpx.ErrNotFound, *path)
			}
			return err
		}
	}

	return s.repo.Delete(ctx, accountID)
}

// List returns profiles for the admin listing.
func (s *Service) List(ctx context.Context, filters ListUsersFilters) ([]Profile, error) {
	if filters.Limit <= 0 {
		filters.Limit = shared.DefaultPageLimit
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) storeBlob(path, encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: file must be base64", httpx.ErrValidation)
	}
	if err := s.blobs.Put(path, data); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Service) toResponse(profile Profile) (ProfileResponse, error) {
	resp := ProfileResponse{
		AccountID:   profile.AccountID,
		Name:        profile.Name,
		Email:       profile.Email,
		DoD:         profile.DoD,
		Grade:       profile.Grade,
		Rank:        profile.Rank,
		Branch:      profile.Branch,
		Superior:    profile.Superior,
		Phone:       profile.Phone,
		Description: profile.Description,
		Status:      profile.Status,
		Officer:     profile.Officer,
	}

	for _, item := range []struct {
		path *string
		dst  **string
	}{
		{profile.ProfilePicture, &resp.ProfilePicture},
		{profile.Signature, &resp.Signature},
	} {
		if item.path == nil {
			continue
		}
		data, err := s.blobs.Get(*item.path)
		if err != nil {
			if errors.Is(err, blob.ErrNotFound) {
				return ProfileResponse{}, fmt.Errorf("%w: stored object %s", httpx.ErrNotFound, *item.path)
			}
			return ProfileResponse{}, err
		}
		encoded := base64.StdEncoding.EncodeToString(data)
		*item.dst = &encoded
	}

	return resp, nil
}
