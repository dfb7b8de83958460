package jobs

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/proofdin/proofdin/internal/events"
	"github.com/proofdin/proofdin/internal/skills"
	"github.com/proofdin/proofdin/internal/types"
	"go.uber.org/zap"
)

// Analyze extracts skills from the request's description (fetching sourceUrl when the
// description is empty), persists a new job owned by ownerID and publishes job.analyzed.
func (s *Service) Analyze(ctx context.Context, ownerID uuid.UUID, req *types.AnalyzeJobRequest) (*types.Job, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	description, err := s.description(ctx, req)
	if err != nil {
		return nil, err
	}

	res := s.resolver.Resolve(ctx, description, req.ManualSkills)

	job := &types.Job{
		OwnerID:          ownerID,
		Description:      description,
		Skills:           res.Skills,
		SkillSource:      string(res.Source),
		Status:           types.JobStatusOpen,
		ManualSkills:     nonNil(req.ManualSkills),
		NiceToHaveSkills: nonNil(req.NiceToHaveSkills),
	}
	applyFields(job, req)

	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	s.log.Info("job analyzed",
		zap.String("job_id", job.ID.String()),
		zap.String("skill_source", job.SkillSource),
		zap.Int("skills", len(job.Skills)))

	s.publishAnalyzed(ctx, job)
	return job, nil
}

// ListJobs returns the caller's jobs.
func (s *Service) ListJobs(ctx context.Context, ownerID uuid.UUID) ([]types.Job, error) {
	jobs, err := s.store.ListJobsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// GetJob returns a job owned by ownerID.
func (s *Service) GetJob(ctx context.Context, ownerID, jobID uuid.UUID) (*types.Job, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if err := checkJobOwner(job, jobID, ownerID); err != nil {
		return nil, err
	}
	return job, nil
}

// UpdateJob edits a job. Skills are recomputed from the new description and manual skills
// and replace the stored ones. A nil ManualSkills keeps the stored manual skills.
func (s *Service) UpdateJob(ctx context.Context, ownerID, jobID uuid.UUID, req *types.AnalyzeJobRequest) (*types.Job, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	job, err := s.GetJob(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}

	description, err := s.description(ctx, req)
	if err != nil {
		return nil, err
	}

	manual := job.ManualSkills
	if req.ManualSkills != nil {
		manual = req.ManualSkills
	}
	res := s.resolver.Resolve(ctx, description, manual)

	job.Description = description
	job.Skills = res.Skills
	job.SkillSource = string(res.Source)
	job.ManualSkills = nonNil(manual)
	if req.NiceToHaveSkills != nil {
		job.NiceToHaveSkills = req.NiceToHaveSkills
	}
	applyFields(job, req)

	if err := s.store.UpdateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	s.publishAnalyzed(ctx, job)
	return job, nil
}

// DeleteJob removes a job owned by ownerID.
func (s *Service) DeleteJob(ctx context.Context, ownerID, jobID uuid.UUID) error {
	if _, err := s.GetJob(ctx, ownerID, jobID); err != nil {
		return err
	}
	if err := s.store.DeleteJob(ctx, jobID); err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}

// ExtractSkills runs the resolver on text without persisting anything.
func (s *Service) ExtractSkills(ctx context.Context, text string, manual []string) skills.Resolution {
	return s.resolver.Resolve(ctx, text, manual)
}

func (s *Service) description(ctx context.Context, req *types.AnalyzeJobRequest) (string, error) {
	if strings.TrimSpace(req.Description) != "" {
		return req.Description, nil
	}
	if req.SourceURL == "" {
		return "", &ValidationError{Field: "description", Message: "required"}
	}
	if s.fetcher == nil {
		return "", &ValidationError{Field: "sourceUrl", Message: "fetching job pages is not enabled"}
	}
	text, err := s.fetcher.FetchText(ctx, req.SourceURL)
	if err != nil {
		return "", err
	}
	return text, nil
}

func (s *Service) publishAnalyzed(ctx context.Context, job *types.Job) {
	err := s.publisher.PublishJobAnalyzed(ctx, events.JobAnalyzed{
		JobID:       job.ID,
		OwnerID:     job.OwnerID,
		Skills:      job.Skills,
		SkillSource: job.SkillSource,
		Status:      job.Status,
		Timestamp:   s.now().UTC(),
	})
	if err != nil {
		s.log.Warn("failed to publish job.analyzed", zap.String("job_id", job.ID.String()), zap.Error(err))
	}
}

func applyFields(job *types.Job, req *types.AnalyzeJobRequest) {
	job.Title = req.Title
	job.Company = req.Company
	job.Location = req.Location
	job.EmploymentType = req.EmploymentType
	job.ExperienceLevel = req.ExperienceLevel
	job.SalaryMin = req.SalaryMin
	job.SalaryMax = req.SalaryMax
	job.SourceURL = req.SourceURL
}

func checkJobOwner(job *types.Job, jobID, ownerID uuid.UUID) error {
	if job == nil {
		return &NotFoundError{Resource: "job", ID: jobID}
	}
	if job.OwnerID != ownerID {
		return &ForbiddenError{Resource: "job", ID: jobID}
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
