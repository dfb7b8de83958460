// Package ranking scores candidates against a job's skills.
package ranking

import (
	"math"
	"sort"
	"strings"

	"github.com/proofdin/proofdin/internal/types"
)

// Candidate is the matcher's view of a candidate profile. Skills are plain names; the
// heterogeneous stored form is flattened with types.SkillNames before it gets here.
type Candidate struct {
	ID                string
	Name              string
	Headline          string
	Location          string
	YearsOfExperience int
	Skills            []string
}

// QueryFilter restricts results to candidates with at least one skill matching one of
// Skills. A filter with no skills excludes every candidate.
type QueryFilter struct {
	Skills []string
}

// FromProfile converts a stored profile into a Candidate.
func FromProfile(p *types.CandidateProfile, years int) Candidate {
	return Candidate{
		ID:                p.ID.String(),
		Name:              p.Name,
		Headline:          p.Headline,
		Location:          p.Location,
		YearsOfExperience: years,
		Skills:            types.SkillNames(p.Skills),
	}
}

// Match scores every candidate against jobSkills and returns the ranked results.
//
// A job skill matches a candidate skill when either contains the other, ignoring case.
// The score is the rounded percentage of job skills matched. With a nil filter, candidates
// scoring 0 are dropped; with a filter, only candidates passing the filter are kept,
// whatever their score. Results are ordered by score, highest first, then by candidate ID.
func Match(jobSkills []string, candidates []Candidate, filter *QueryFilter) []types.MatchResult {
	jobLower := lowerAll(jobSkills)
	var queryLower []string
	if filter != nil {
		queryLower = lowerAll(filter.Skills)
	}

	results := make([]types.MatchResult, 0, len(candidates))
	for _, c := range candidates {
		candLower := lowerAll(c.Skills)

		if filter != nil && !anyOverlap(queryLower, candLower) {
			continue
		}

		matched := matchedSkills(jobSkills, jobLower, candLower)

		score := Score(len(matched), len(jobSkills))
		if filter == nil && score == 0 {
			continue
		}

		results = append(results, types.MatchResult{
			CandidateID:       c.ID,
			Name:              c.Name,
			Headline:          c.Headline,
			Location:          c.Location,
			YearsOfExperience: c.YearsOfExperience,
			Score:             score,
			MatchedSkills:     matched,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].CandidateID < results[j].CandidateID
	})
	return results
}

// MatchedSkills returns the job skills, in job order, that match at least one candidate skill.
func MatchedSkills(jobSkills, candidateSkills []string) []string {
	return matchedSkills(jobSkills, lowerAll(jobSkills), lowerAll(candidateSkills))
}

func matchedSkills(jobSkills, jobLower, candLower []string) []string {
	matched := make([]string, 0)
	for i, js := range jobLower {
		if js == "" {
			continue
		}
		if matchesAny(js, candLower) {
			matched = append(matched, jobSkills[i])
		}
	}
	return matched
}

// Score returns round(matched/total*100), or 0 when total is 0.
func Score(matched, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(matched) / float64(total) * 100))
}

// SkillsMatch reports whether two skill names match in either direction, ignoring case.
// Blank names never match.
func SkillsMatch(a, b string) bool {
	return substringMatch(strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b)))
}

func substringMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func matchesAny(skill string, pool []string) bool {
	for _, p := range pool {
		if substringMatch(skill, p) {
			return true
		}
	}
	return false
}

func anyOverlap(a, b []string) bool {
	for _, s := range a {
		if matchesAny(s, b) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}
