package services

import (
	"context"

	"github.com/innerflow/flow-engine/internal/core/domain"
)

type ProfileService struct {
	repo domain.UserRepository
}

func NewProfileService(repo domain.UserRepository) *ProfileService {
	return &ProfileService{
		repo: repo,
	}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	return s.repo.GetProfile(ctx, userID)
}

// Update reads the current profile, merges the patch and writes the
// full document back. Fields absent from the patch are preserved;
// explicit nulls clear them.
func (s *ProfileService) Update(ctx context.Context, userID string, patch domain.ProfilePatch) (*domain.UserProfile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := profile.Apply(patch); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}
