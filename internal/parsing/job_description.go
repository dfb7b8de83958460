// Package parsing turns free-text job descriptions into structured postings and generates
// tailored resumes. Both operations require a model provider; there is no offline path.
package parsing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/proofdin/proofdin/internal/llm"
	"github.com/proofdin/proofdin/internal/prompts"
	"github.com/proofdin/proofdin/internal/safeguards"
	"github.com/proofdin/proofdin/internal/schemas"
	"github.com/proofdin/proofdin/internal/types"
)

// ParseJobDescription extracts a structured posting from description. A nil client yields an
// *APICallError wrapping llm.ErrNotConfigured.
func ParseJobDescription(ctx context.Context, client llm.Client, description string) (*types.ParsedJob, error) {
	if client == nil {
		return nil, &APICallError{Message: "AI service unavailable", Cause: llm.ErrNotConfigured}
	}

	prompt, err := prompts.Render("parsing.json", "parse-job-description", map[string]string{
		"Description": safeguards.Quote(description, "job description"),
	})
	if err != nil {
		return nil, &APICallError{Message: "failed to build prompt", Cause: err}
	}

	responseText, err := client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &APICallError{Message: "failed to generate content from LLM", Cause: err}
	}

	return parseJobResponse(llm.CleanJSONBlock(responseText))
}

func parseJobResponse(jsonText string) (*types.ParsedJob, error) {
	if !json.Valid([]byte(jsonText)) {
		return nil, &ParseError{Message: "response is not valid JSON"}
	}

	if err := schemas.Validate(schemas.ParsedJob, jsonText); err != nil {
		var schemaErr *schemas.ValidationError
		if errors.As(err, &schemaErr) && len(schemaErr.Errors) > 0 {
			first := schemaErr.Errors[0]
			return nil, &ValidationError{Field: first.Field, Message: first.Message}
		}
		return nil, &ParseError{Message: "failed to validate response", Cause: err}
	}

	var job types.ParsedJob
	if err := json.Unmarshal([]byte(jsonText), &job); err != nil {
		return nil, &ParseError{Message: "failed to parse JSON response", Cause: err}
	}

	if err := postProcessJob(&job); err != nil {
		return nil, err
	}
	return &job, nil
}

func postProcessJob(job *types.ParsedJob) error {
	if job.SalaryRange != nil && job.SalaryRange.Max < job.SalaryRange.Min {
		return &ValidationError{
			Field:   "salaryRange",
			Message: fmt.Sprintf("max %.0f is less than min %.0f", job.SalaryRange.Max, job.SalaryRange.Min),
		}
	}

	job.Skills = NormalizeSkills(job.Skills)
	job.NiceToHaveSkills = NormalizeSkills(job.NiceToHaveSkills)
	job.Benefits = nonNil(job.Benefits)
	job.Responsibilities = nonNil(job.Responsibilities)
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
