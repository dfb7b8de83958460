package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobStatusOpen is the status of a freshly analyzed job.
const JobStatusOpen = "open"

// Job is a posted job with its extracted skills.
type Job struct {
	ID               uuid.UUID `json:"id"`
	OwnerID          uuid.UUID `json:"ownerId"`
	Title            string    `json:"title"`
	Company          string    `json:"company"`
	Location         string    `json:"location"`
	EmploymentType   string    `json:"employmentType,omitempty"`
	ExperienceLevel  string    `json:"experienceLevel,omitempty"`
	SalaryMin        *int      `json:"salaryMin,omitempty"`
	SalaryMax        *int      `json:"salaryMax,omitempty"`
	Description      string    `json:"description"`
	SourceURL        string    `json:"sourceUrl,omitempty"`
	Skills           []string  `json:"skills"`
	ManualSkills     []string  `json:"manualSkills"`
	NiceToHaveSkills []string  `json:"niceToHaveSkills"`
	SkillSource      string    `json:"skillSource"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// AnalyzeJobRequest is the body of POST /jobs/analyze and PUT /jobs/{id}.
type AnalyzeJobRequest struct {
	Description      string   `json:"description" validate:"required_without=SourceURL,max=50000"`
	SourceURL        string   `json:"sourceUrl,omitempty" validate:"omitempty,url"`
	ManualSkills     []string `json:"manualSkills,omitempty" validate:"max=100,dive,max=100"`
	NiceToHaveSkills []string `json:"niceToHaveSkills,omitempty" validate:"max=100,dive,max=100"`
	Title            string   `json:"title,omitempty" validate:"max=200"`
	Company          string   `json:"company,omitempty" validate:"max=200"`
	Location         string   `json:"location,omitempty" validate:"max=200"`
	EmploymentType   string   `json:"employmentType,omitempty" validate:"omitempty,oneof=full-time part-time contract internship temporary"`
	ExperienceLevel  string   `json:"experienceLevel,omitempty" validate:"omitempty,oneof=entry mid senior lead executive"`
	SalaryMin        *int     `json:"salaryMin,omitempty" validate:"omitempty,min=0"`
	SalaryMax        *int     `json:"salaryMax,omitempty" validate:"omitempty,min=0"`
}

// Validate validates the AnalyzeJobRequest.
func (r *AnalyzeJobRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if r.SalaryMin != nil && r.SalaryMax != nil && *r.SalaryMax < *r.SalaryMin {
		return fmt.Errorf("salaryMax must not be less than salaryMin")
	}
	return nil
}

// AnalyzeJobResponse is returned by POST /jobs/analyze.
type AnalyzeJobResponse struct {
	Skills []string  `json:"skills"`
	JobID  uuid.UUID `json:"jobId"`
	Status string    `json:"status"`
}

// MatchRequest is the body of POST /jobs/match and POST /jobs/match/export.
type MatchRequest struct {
	JobID string `json:"jobId" validate:"required,uuid"`
	Query string `json:"query,omitempty" validate:"max=1000"`
}

// Validate validates the MatchRequest.
func (r *MatchRequest) Validate() error {
	return validate.Struct(r)
}

// MatchResponse is returned by POST /jobs/match.
type MatchResponse struct {
	Candidates []MatchResult `json:"candidates"`
}

// ParseJDRequest is the body of POST /jobs/parse-jd.
type ParseJDRequest struct {
	Description string `json:"description" validate:"required,max=50000"`
}

// Validate validates the ParseJDRequest.
func (r *ParseJDRequest) Validate() error {
	return validate.Struct(r)
}

// SalaryRange is a salary band extracted from a job description.
type SalaryRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

// ParsedJob is the structured form of a job description produced by the LLM.
type ParsedJob struct {
	Title            string       `json:"title"`
	Type             string       `json:"type"`
	ExperienceLevel  string       `json:"experienceLevel"`
	Location         string       `json:"location"`
	SalaryRange      *SalaryRange `json:"salaryRange"`
	Skills           []string     `json:"skills"`
	NiceToHaveSkills []string     `json:"niceToHaveSkills"`
	Benefits         []string     `json:"benefits"`
	Responsibilities []string     `json:"responsibilities"`
}
