package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/proofdin/proofdin/internal/types"
)

const candidateColumns = `id, owner_id, name, headline, location, email, summary, skills, experience,
	years_of_experience, created_at, updated_at`

// CreateCandidate inserts a candidate profile, assigning an ID and timestamps.
func (db *DB) CreateCandidate(ctx context.Context, c *types.CandidateProfile) error {
	PrepareCandidate(c, time.Now().UTC())
	skills, experience, err := CandidateJSON(c)
	if err != nil {
		return err
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO candidates (`+candidateColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.OwnerID, c.Name, c.Headline, c.Location, c.Email, c.Summary, skills, experience,
		c.YearsOfExperience, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

// GetCandidate retrieves a candidate profile by ID. Returns nil, nil when it does not exist.
func (db *DB) GetCandidate(ctx context.Context, id uuid.UUID) (*types.CandidateProfile, error) {
	c, err := scanCandidate(db.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return c, nil
}

// ListCandidates returns every stored candidate profile ordered by ID.
func (db *DB) ListCandidates(ctx context.Context) ([]types.CandidateProfile, error) {
	rows, err := db.pool.Query(ctx, `SELECT `+candidateColumns+` FROM candidates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	candidates := []types.CandidateProfile{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return candidates, nil
}

// UpdateCandidate replaces the mutable fields of an existing candidate.
func (db *DB) UpdateCandidate(ctx context.Context, c *types.CandidateProfile) error {
	c.UpdatedAt = time.Now().UTC()
	skills, experience, err := CandidateJSON(c)
	if err != nil {
		return err
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE candidates SET name = $2, headline = $3, location = $4, email = $5, summary = $6,
		 skills = $7, experience = $8, years_of_experience = $9, updated_at = $10
		 WHERE id = $1`,
		c.ID, c.Name, c.Headline, c.Location, c.Email, c.Summary, skills, experience,
		c.YearsOfExperience, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCandidate removes a candidate profile.
func (db *DB) DeleteCandidate(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PrepareCandidate fills the ID, timestamps and nil lists of a candidate about to be inserted.
func PrepareCandidate(c *types.CandidateProfile, now time.Time) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = c.CreatedAt
	if c.Skills == nil {
		c.Skills = []types.SkillEntry{}
	}
	if c.Experience == nil {
		c.Experience = []types.ExperienceEntry{}
	}
}

// CandidateJSON encodes the skills and experience columns of c.
func CandidateJSON(c *types.CandidateProfile) (skills, experience []byte, err error) {
	if skills, err = JSONColumn(c.Skills); err != nil {
		return nil, nil, fmt.Errorf("failed to marshal skills: %w", err)
	}
	if experience, err = JSONColumn(c.Experience); err != nil {
		return nil, nil, fmt.Errorf("failed to marshal experience: %w", err)
	}
	return skills, experience, nil
}

// ScanCandidate scans a row selected with the candidate column list.
func ScanCandidate(row RowScanner) (*types.CandidateProfile, error) {
	return scanCandidate(row)
}

func scanCandidate(row RowScanner) (*types.CandidateProfile, error) {
	var (
		c                  types.CandidateProfile
		skills, experience []byte
	)
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.Name, &c.Headline, &c.Location, &c.Email, &c.Summary,
		&skills, &experience, &c.YearsOfExperience, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(skills, &c.Skills); err != nil {
		return nil, fmt.Errorf("failed to decode skills: %w", err)
	}
	if err := json.Unmarshal(experience, &c.Experience); err != nil {
		return nil, fmt.Errorf("failed to decode experience: %w", err)
	}
	if c.Skills == nil {
		c.Skills = []types.SkillEntry{}
	}
	if c.Experience == nil {
		c.Experience = []types.ExperienceEntry{}
	}
	return &c, nil
}
