package jobs

import (
	"context"

	"github.com/google/uuid"
	"github.com/proofdin/proofdin/internal/parsing"
	"github.com/proofdin/proofdin/internal/ranking"
	"github.com/proofdin/proofdin/internal/safeguards"
	"github.com/proofdin/proofdin/internal/types"
	"go.uber.org/zap"
)

// ParseDescription turns a job description into a structured posting with the model.
// There is no dictionary fallback: without a client the error wraps llm.ErrNotConfigured.
func (s *Service) ParseDescription(ctx context.Context, req *types.ParseJDRequest) (*types.ParsedJob, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	safeguards.Inspect(s.log, "parse-jd", req.Description)
	parsed, err := parsing.ParseJobDescription(ctx, s.llm, req.Description)
	if err != nil {
		s.log.Warn("job description parsing failed", zap.Error(err))
		return nil, err
	}
	return parsed, nil
}

// TailorResume generates a Markdown resume of the candidate aimed at one of ownerID's jobs.
func (s *Service) TailorResume(ctx context.Context, ownerID, candidateID uuid.UUID, req *types.TailoredResumeRequest) (string, error) {
	if err := ValidateRequest(req); err != nil {
		return "", err
	}
	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return "", &ValidationError{Field: "jobId", Message: "uuid"}
	}

	candidate, err := s.GetCandidate(ctx, candidateID)
	if err != nil {
		return "", err
	}
	job, err := s.GetJob(ctx, ownerID, jobID)
	if err != nil {
		return "", err
	}

	matched := ranking.MatchedSkills(job.Skills, types.SkillNames(candidate.Skills))
	resume, err := parsing.GenerateTailoredResume(ctx, s.llm, candidate, job, matched, candidate.EstimateYears(s.now()))
	if err != nil {
		s.log.Warn("resume generation failed",
			zap.String("candidate_id", candidateID.String()),
			zap.String("job_id", jobID.String()),
			zap.Error(err))
		return "", err
	}
	return resume, nil
}
