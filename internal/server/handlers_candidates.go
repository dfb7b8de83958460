package server

import (
	"net/http"

	"github.com/proofdin/proofdin/internal/types"
)

// ListCandidatesResponse represents the response for listing candidates
type ListCandidatesResponse struct {
	Candidates []types.CandidateProfile `json:"candidates"`
	Count      int                      `json:"count"`
}

func (s *Server) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req types.CandidateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	c, err := s.jobs.CreateCandidate(r.Context(), ownerID, &req)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, c)
}

// handleListCandidates lists the shared candidate pool.
func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := s.jobs.ListCandidates(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ListCandidatesResponse{Candidates: candidates, Count: len(candidates)})
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "candidate")
	if !ok {
		return
	}

	c, err := s.jobs.GetCandidate(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCandidate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r, "candidate")
	if !ok {
		return
	}
	var req types.CandidateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	c, err := s.jobs.UpdateCandidate(r.Context(), ownerID, id, &req)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r, "candidate")
	if !ok {
		return
	}

	if err := s.jobs.DeleteCandidate(r.Context(), ownerID, id); err != nil {
		s.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTailoredResume generates a resume of the candidate aimed at one of the caller's jobs.
func (s *Server) handleTailoredResume(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r, "candidate")
	if !ok {
		return
	}
	var req types.TailoredResumeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	resume, err := s.jobs.TailorResume(r.Context(), ownerID, id, &req)
	if err != nil {
		s.handleErrorAs(w, r, err, errResumeFailed)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.TailoredResumeResponse{Resume: resume})
}
