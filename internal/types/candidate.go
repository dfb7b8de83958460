package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
)

// CandidateProfile is a stored candidate.
type CandidateProfile struct {
	ID                uuid.UUID         `json:"id"`
	OwnerID           uuid.UUID         `json:"ownerId"`
	Name              string            `json:"name"`
	Headline          string            `json:"headline"`
	Location          string            `json:"location"`
	Email             string            `json:"email,omitempty"`
	Summary           string            `json:"summary,omitempty"`
	Skills            []SkillEntry      `json:"skills"`
	Experience        []ExperienceEntry `json:"experience"`
	YearsOfExperience *int              `json:"yearsOfExperience,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// SkillEntry is one candidate skill. In JSON it may be a plain string ("react") or an
// object ({"name": "React", "level": "expert", "years": 4}).
type SkillEntry struct {
	Name  string `json:"name" mapstructure:"name"`
	Level string `json:"level,omitempty" mapstructure:"level"`
	Years int    `json:"years,omitempty" mapstructure:"years"`
}

// UnmarshalJSON accepts both the string and the object form.
func (s *SkillEntry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = SkillEntry{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*s = SkillEntry{Name: name}
		return nil
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("skill must be a string or an object: %w", err)
	}
	if _, ok := raw["name"]; !ok {
		if alt, ok := raw["skill"]; ok {
			raw["name"] = alt
		}
	}

	var entry SkillEntry
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &entry,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("invalid skill object: %w", err)
	}
	*s = entry
	return nil
}

// SkillNames flattens entries into trimmed, non-blank skill names. This is the only form
// of candidate skills the matcher sees.
func SkillNames(entries []SkillEntry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if name := strings.TrimSpace(e.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// ExperienceEntry is one position held by a candidate. Dates are "2006-01-02", "2006-01"
// or "2006"; an empty EndDate means the position is current.
type ExperienceEntry struct {
	Title       string `json:"title" validate:"max=200"`
	Company     string `json:"company" validate:"max=200"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate,omitempty"`
	Description string `json:"description,omitempty" validate:"max=5000"`
}

var dateLayouts = []string{"2006-01-02", "2006-01", "2006"}

// ParseProfileDate parses a date in one of the accepted experience date layouts.
func ParseProfileDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD, YYYY-MM or YYYY)", s)
}

// EstimateYears returns the candidate's years of experience. An explicit value wins;
// otherwise the lengths of all experience entries are summed in whole months and floored
// to whole years. Entries with unparseable or inverted dates are skipped.
func (c *CandidateProfile) EstimateYears(now time.Time) int {
	if c.YearsOfExperience != nil {
		return *c.YearsOfExperience
	}

	months := 0
	for _, exp := range c.Experience {
		start, err := ParseProfileDate(exp.StartDate)
		if err != nil {
			continue
		}
		end := now
		if strings.TrimSpace(exp.EndDate) != "" {
			if end, err = ParseProfileDate(exp.EndDate); err != nil {
				continue
			}
		}
		span := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
		if span > 0 {
			months += span
		}
	}
	return months / 12
}

// CandidateRequest is the body of POST /candidates and PUT /candidates/{id}.
type CandidateRequest struct {
	Name              string            `json:"name" validate:"required,max=200"`
	Headline          string            `json:"headline,omitempty" validate:"max=300"`
	Location          string            `json:"location,omitempty" validate:"max=200"`
	Email             string            `json:"email,omitempty" validate:"omitempty,email"`
	Summary           string            `json:"summary,omitempty" validate:"max=5000"`
	Skills            []SkillEntry      `json:"skills" validate:"max=500"`
	Experience        []ExperienceEntry `json:"experience" validate:"max=100,dive"`
	YearsOfExperience *int              `json:"yearsOfExperience,omitempty" validate:"omitempty,min=0,max=80"`
}

// Validate validates the CandidateRequest, including experience dates.
func (r *CandidateRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	for i, exp := range r.Experience {
		if _, err := ParseProfileDate(exp.StartDate); err != nil {
			return fmt.Errorf("experience[%d].startDate: %w", i, err)
		}
		if strings.TrimSpace(exp.EndDate) != "" {
			if _, err := ParseProfileDate(exp.EndDate); err != nil {
				return fmt.Errorf("experience[%d].endDate: %w", i, err)
			}
		}
	}
	return nil
}

// TailoredResumeRequest is the body of POST /candidates/{id}/tailored-resume.
type TailoredResumeRequest struct {
	JobID string `json:"jobId" validate:"required,uuid"`
}

// Validate validates the TailoredResumeRequest.
func (r *TailoredResumeRequest) Validate() error {
	return validate.Struct(r)
}

// TailoredResumeResponse carries the generated Markdown resume.
type TailoredResumeResponse struct {
	Resume string `json:"resume"`
}
