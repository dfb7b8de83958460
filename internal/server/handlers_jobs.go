package server

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/proofdin/proofdin/internal/export"
	"github.com/proofdin/proofdin/internal/types"
)

// ListJobsResponse represents the response for listing jobs
type ListJobsResponse struct {
	Jobs  []types.Job `json:"jobs"`
	Count int         `json:"count"`
}

// handleAnalyzeJob extracts skills from a description and stores the job.
func (s *Server) handleAnalyzeJob(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req types.AnalyzeJobRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	job, err := s.jobs.Analyze(r.Context(), ownerID, &req)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, types.AnalyzeJobResponse{
		Skills: job.Skills,
		JobID:  job.ID,
		Status: job.Status,
	})
}

// handleMatch ranks candidates against a job.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req types.MatchRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	_, results, err := s.jobs.MatchRequest(r.Context(), ownerID, &req)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.MatchResponse{Candidates: results})
}

// handleMatchExport returns the match results as an XLSX workbook.
func (s *Server) handleMatchExport(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req types.MatchRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	job, buf, err := s.jobs.Export(r.Context(), ownerID, &req)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="match-%s.xlsx"`, job.ID))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.log.Warn("failed to write workbook", zap.Error(err))
	}
}

// handleParseJD turns a job description into a structured posting.
func (s *Server) handleParseJD(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.userID(w, r); !ok {
		return
	}
	var req types.ParseJDRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	parsed, err := s.jobs.ParseDescription(r.Context(), &req)
	if err != nil {
		s.handleErrorAs(w, r, err, errParseFailed)
		return
	}
	s.jsonResponse(w, http.StatusOK, parsed)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.userID(w, r)
	if !ok {
		return
	}
	list, err := s.jobs.ListJobs(r.Context(), ownerID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ListJobsResponse{Jobs: list, Count: len(list)})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.userID(w, r)
	if !ok {
		return
	}
	jobID, ok := s.pathID(w, r, "job")
	if !ok {
		return
	}

	job, err := s.jobs.GetJob(r.Context(), ownerID, jobID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleUpdateJob edits a job and recomputes its skills.
func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.userID(w, r)
	if !ok {
		return
	}
	jobID, ok := s.pathID(w, r, "job")
	if !ok {
		return
	}
	var req types.AnalyzeJobRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	job, err := s.jobs.UpdateJob(r.Context(), ownerID, jobID, &req)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.userID(w, r)
	if !ok {
		return
	}
	jobID, ok := s.pathID(w, r, "job")
	if !ok {
		return
	}

	if err := s.jobs.DeleteJob(r.Context(), ownerID, jobID); err != nil {
		s.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
