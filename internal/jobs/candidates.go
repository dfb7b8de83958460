package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/proofdin/proofdin/internal/types"
)

// CreateCandidate stores a new candidate profile owned by ownerID.
func (s *Service) CreateCandidate(ctx context.Context, ownerID uuid.UUID, req *types.CandidateRequest) (*types.CandidateProfile, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	c := &types.CandidateProfile{OwnerID: ownerID}
	applyCandidate(c, req)
	if err := s.store.CreateCandidate(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save candidate: %w", err)
	}
	return c, nil
}

// ListCandidates returns every candidate profile. Candidates form one shared pool.
func (s *Service) ListCandidates(ctx context.Context) ([]types.CandidateProfile, error) {
	candidates, err := s.store.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return candidates, nil
}

// GetCandidate returns a candidate profile.
func (s *Service) GetCandidate(ctx context.Context, id uuid.UUID) (*types.CandidateProfile, error) {
	c, err := s.store.GetCandidate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	if c == nil {
		return nil, &NotFoundError{Resource: "candidate", ID: id}
	}
	return c, nil
}

// UpdateCandidate replaces a candidate profile created by ownerID.
func (s *Service) UpdateCandidate(ctx context.Context, ownerID, id uuid.UUID, req *types.CandidateRequest) (*types.CandidateProfile, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	c, err := s.ownedCandidate(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	applyCandidate(c, req)
	if err := s.store.UpdateCandidate(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update candidate: %w", err)
	}
	return c, nil
}

// DeleteCandidate removes a candidate profile created by ownerID.
func (s *Service) DeleteCandidate(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.ownedCandidate(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.store.DeleteCandidate(ctx, id); err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	return nil
}

func (s *Service) ownedCandidate(ctx context.Context, ownerID, id uuid.UUID) (*types.CandidateProfile, error) {
	c, err := s.GetCandidate(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != ownerID {
		return nil, &ForbiddenError{Resource: "candidate", ID: id}
	}
	return c, nil
}

func applyCandidate(c *types.CandidateProfile, req *types.CandidateRequest) {
	c.Name = req.Name
	c.Headline = req.Headline
	c.Location = req.Location
	c.Email = req.Email
	c.Summary = req.Summary
	c.Skills = req.Skills
	c.Experience = req.Experience
	c.YearsOfExperience = req.YearsOfExperience
	if c.Skills == nil {
		c.Skills = []types.SkillEntry{}
	}
	if c.Experience == nil {
		c.Experience = []types.ExperienceEntry{}
	}
}
