package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/proofdin/proofdin/internal/types"
)

const jobColumns = `id, owner_id, title, company, location, employment_type, experience_level,
	salary_min, salary_max, description, source_url, skills, manual_skills, nice_to_have_skills,
	skill_source, status, created_at, updated_at`

// CreateJob inserts job, assigning an ID and timestamps when they are unset.
func (db *DB) CreateJob(ctx context.Context, job *types.Job) error {
	PrepareJob(job, time.Now().UTC())
	_, err := db.pool.Exec(ctx,
		`INSERT INTO jobs (`+jobColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		job.ID, job.OwnerID, job.Title, job.Company, job.Location, job.EmploymentType, job.ExperienceLevel,
		job.SalaryMin, job.SalaryMax, job.Description, job.SourceURL,
		StringArray(job.Skills), StringArray(job.ManualSkills), StringArray(job.NiceToHaveSkills),
		job.SkillSource, job.Status, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID. Returns nil, nil when it does not exist.
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	job, err := scanJob(db.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListJobsByOwner returns the owner's jobs, newest first.
func (db *DB) ListJobsByOwner(ctx context.Context, ownerID uuid.UUID) ([]types.Job, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE owner_id = $1 ORDER BY created_at DESC, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []types.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// UpdateJob replaces the mutable fields of an existing job and bumps updated_at.
func (db *DB) UpdateJob(ctx context.Context, job *types.Job) error {
	job.UpdatedAt = time.Now().UTC()
	tag, err := db.pool.Exec(ctx,
		`UPDATE jobs SET title = $2, company = $3, location = $4, employment_type = $5,
		 experience_level = $6, salary_min = $7, salary_max = $8, description = $9, source_url = $10,
		 skills = $11, manual_skills = $12, nice_to_have_skills = $13, skill_source = $14,
		 status = $15, updated_at = $16
		 WHERE id = $1`,
		job.ID, job.Title, job.Company, job.Location, job.EmploymentType, job.ExperienceLevel,
		job.SalaryMin, job.SalaryMax, job.Description, job.SourceURL,
		StringArray(job.Skills), StringArray(job.ManualSkills), StringArray(job.NiceToHaveSkills),
		job.SkillSource, job.Status, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteJob removes a job.
func (db *DB) DeleteJob(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PrepareJob fills the ID, status, timestamps and nil lists of a job about to be inserted.
func PrepareJob(job *types.Job, now time.Time) {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = types.JobStatusOpen
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = job.CreatedAt
	if job.Skills == nil {
		job.Skills = []string{}
	}
	if job.ManualSkills == nil {
		job.ManualSkills = []string{}
	}
	if job.NiceToHaveSkills == nil {
		job.NiceToHaveSkills = []string{}
	}
}

// RowScanner is satisfied by a single row or a row iterator of both pgx and database/sql.
type RowScanner interface {
	Scan(dest ...any) error
}

// ScanJob scans a row selected with the job column list.
func ScanJob(row RowScanner) (*types.Job, error) {
	return scanJob(row)
}

func scanJob(row RowScanner) (*types.Job, error) {
	var (
		job                        types.Job
		skills, manual, niceToHave StringArray
	)
	err := row.Scan(
		&job.ID, &job.OwnerID, &job.Title, &job.Company, &job.Location, &job.EmploymentType,
		&job.ExperienceLevel, &job.SalaryMin, &job.SalaryMax, &job.Description, &job.SourceURL,
		&skills, &manual, &niceToHave, &job.SkillSource, &job.Status, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	job.Skills = []string(skills)
	job.ManualSkills = []string(manual)
	job.NiceToHaveSkills = []string(niceToHave)
	return &job, nil
}
