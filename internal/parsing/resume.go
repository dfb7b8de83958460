package parsing

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/proofdin/proofdin/internal/llm"
	"github.com/proofdin/proofdin/internal/prompts"
	"github.com/proofdin/proofdin/internal/safeguards"
	"github.com/proofdin/proofdin/internal/types"
)

// candidatePromptView is the subset of a profile sent to the model. Contact details and
// internal IDs stay out of the prompt.
type candidatePromptView struct {
	Name              string                  `json:"name"`
	Headline          string                  `json:"headline,omitempty"`
	Location          string                  `json:"location,omitempty"`
	Summary           string                  `json:"summary,omitempty"`
	YearsOfExperience int                     `json:"yearsOfExperience"`
	Skills            []types.SkillEntry      `json:"skills"`
	Experience        []types.ExperienceEntry `json:"experience"`
}

// GenerateTailoredResume writes a Markdown resume for candidate aimed at job. matched lists
// the job skills the candidate already has, so the model can put them first.
func GenerateTailoredResume(ctx context.Context, client llm.Client, candidate *types.CandidateProfile, job *types.Job, matched []string, years int) (string, error) {
	if client == nil {
		return "", &APICallError{Message: "AI service unavailable", Cause: llm.ErrNotConfigured}
	}

	view, err := json.MarshalIndent(candidatePromptView{
		Name:              candidate.Name,
		Headline:          candidate.Headline,
		Location:          candidate.Location,
		Summary:           candidate.Summary,
		YearsOfExperience: years,
		Skills:            candidate.Skills,
		Experience:        candidate.Experience,
	}, "", "  ")
	if err != nil {
		return "", &ParseError{Message: "failed to encode candidate", Cause: err}
	}

	prompt, err := prompts.Render("resume.json", "tailor-resume", map[string]string{
		"Candidate":     safeguards.Quote(string(view), "candidate profile"),
		"JobTitle":      job.Title,
		"Company":       job.Company,
		"JobSkills":     strings.Join(job.Skills, ", "),
		"MatchedSkills": strings.Join(matched, ", "),
		"Description":   safeguards.Quote(job.Description, "job description"),
	})
	if err != nil {
		return "", &APICallError{Message: "failed to build prompt", Cause: err}
	}

	resume, err := client.GenerateContent(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return "", &APICallError{Message: "failed to generate resume", Cause: err}
	}

	resume = stripMarkdownFence(resume)
	if resume == "" {
		return "", &ParseError{Message: "model returned an empty resume"}
	}
	return resume, nil
}

func stripMarkdownFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if idx := strings.Index(text, "\n"); idx >= 0 {
		text = text[idx+1:]
	} else {
		return ""
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
