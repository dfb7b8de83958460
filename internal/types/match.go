package types

// MatchResult is one ranked candidate for a job. It is computed per request and never stored.
type MatchResult struct {
	CandidateID       string   `json:"candidateId"`
	Name              string   `json:"name"`
	Headline          string   `json:"headline"`
	Location          string   `json:"location"`
	YearsOfExperience int      `json:"yearsOfExperience"`
	Score             int      `json:"score"`
	MatchedSkills     []string `json:"matchedSkills"`
}
