package jobs

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/proofdin/proofdin/internal/export"
	"github.com/proofdin/proofdin/internal/ranking"
	"github.com/proofdin/proofdin/internal/types"
	"golang.org/x/sync/errgroup"
)

// Match ranks every stored candidate against the skills of a job owned by ownerID. A
// non-blank query is run through the resolver and restricts results to candidates
// overlapping its skills. The query is only resolved once the job exists and belongs
// to ownerID.
func (s *Service) Match(ctx context.Context, ownerID, jobID uuid.UUID, query string) (*types.Job, []types.MatchResult, error) {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	if err := checkJobOwner(job, jobID, ownerID); err != nil {
		return nil, nil, err
	}
	return s.rank(ctx, job, query)
}

// MatchJob is Match without the ownership check. The CLI and the MCP tools use it.
func (s *Service) MatchJob(ctx context.Context, jobID uuid.UUID, query string) (*types.Job, []types.MatchResult, error) {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	if job == nil {
		return nil, nil, &NotFoundError{Resource: "job", ID: jobID}
	}
	return s.rank(ctx, job, query)
}

func (s *Service) loadJob(ctx context.Context, jobID uuid.UUID) (*types.Job, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// rank loads the candidate pool and resolves the query concurrently, then scores.
func (s *Service) rank(ctx context.Context, job *types.Job, query string) (*types.Job, []types.MatchResult, error) {
	var (
		candidates []types.CandidateProfile
		filter     *ranking.QueryFilter
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		candidates, err = s.store.ListCandidates(gctx)
		if err != nil {
			return fmt.Errorf("failed to list candidates: %w", err)
		}
		return nil
	})
	if strings.TrimSpace(query) != "" {
		g.Go(func() error {
			res := s.resolver.Resolve(gctx, query, nil)
			filter = &ranking.QueryFilter{Skills: res.Skills}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	now := s.now()
	pool := make([]ranking.Candidate, len(candidates))
	for i := range candidates {
		pool[i] = ranking.FromProfile(&candidates[i], candidates[i].EstimateYears(now))
	}
	return job, ranking.Match(job.Skills, pool, filter), nil
}

// MatchRequest validates req and runs Match.
func (s *Service) MatchRequest(ctx context.Context, ownerID uuid.UUID, req *types.MatchRequest) (*types.Job, []types.MatchResult, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, nil, err
	}
	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return nil, nil, &ValidationError{Field: "jobId", Message: "uuid"}
	}
	return s.Match(ctx, ownerID, jobID, req.Query)
}

// Export runs the match and renders it as an XLSX workbook.
func (s *Service) Export(ctx context.Context, ownerID uuid.UUID, req *types.MatchRequest) (*types.Job, *bytes.Buffer, error) {
	job, results, err := s.MatchRequest(ctx, ownerID, req)
	if err != nil {
		return nil, nil, err
	}
	buf, err := export.MatchWorkbook(job, results, s.now())
	if err != nil {
		return nil, nil, err
	}
	return job, buf, nil
}
