// Package sqlite is a single-file SQLite implementation of the ProofdIn store, used for
// local runs without PostgreSQL and for in-process tests.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/proofdin/proofdin/internal/db"
	"github.com/proofdin/proofdin/internal/types"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const jobColumns = `id, owner_id, title, company, location, employment_type, experience_level,
	salary_min, salary_max, description, source_url, skills, manual_skills, nice_to_have_skills,
	skill_source, status, created_at, updated_at`

const candidateColumns = `id, owner_id, name, headline, location, email, summary, skills, experience,
	years_of_experience, created_at, updated_at`

// Store is a SQLite-backed store. Open it with a file path or ":memory:".
type Store struct {
	conn *sql.DB
}

// Open opens the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn}
	if err := s.Migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() {
	_ = s.conn.Close()
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// CreateUser inserts a user. Emails are stored lowercased.
func (s *Store) CreateUser(ctx context.Context, name, email, passwordHash string) (*db.User, error) {
	u := db.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, db.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, nil
}

// GetUser retrieves a user by ID. Returns nil, nil when absent.
func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*db.User, error) {
	return scanUser(s.conn.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?`, id))
}

// GetUserByEmail retrieves a user by email, ignoring case. Returns nil, nil when absent.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*db.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	return scanUser(s.conn.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`, email))
}

// CheckEmailExists reports whether a user with the given email exists.
func (s *Store) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return n > 0, nil
}

func scanUser(row *sql.Row) (*db.User, error) {
	var u db.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// CreateJob inserts job, assigning an ID and timestamps when they are unset.
func (s *Store) CreateJob(ctx context.Context, job *types.Job) error {
	db.PrepareJob(job, time.Now().UTC())
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO jobs (`+jobColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.OwnerID, job.Title, job.Company, job.Location, job.EmploymentType, job.ExperienceLevel,
		job.SalaryMin, job.SalaryMax, job.Description, job.SourceURL,
		db.StringArray(job.Skills), db.StringArray(job.ManualSkills), db.StringArray(job.NiceToHaveSkills),
		job.SkillSource, job.Status, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID. Returns nil, nil when absent.
func (s *Store) GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	job, err := db.ScanJob(s.conn.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListJobsByOwner returns the owner's jobs, newest first.
func (s *Store) ListJobsByOwner(ctx context.Context, ownerID uuid.UUID) ([]types.Job, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE owner_id = ? ORDER BY created_at DESC, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	jobs := []types.Job{}
	for rows.Next() {
		job, err := db.ScanJob(rows)
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

// UpdateJob replaces the mutable fields of an existing job.
func (s *Store) UpdateJob(ctx context.Context, job *types.Job) error {
	job.UpdatedAt = time.Now().UTC()
	res, err := s.conn.ExecContext(ctx,
		`UPDATE jobs SET title = ?, company = ?, location = ?, employment_type = ?,
		 experience_level = ?, salary_min = ?, salary_max = ?, description = ?, source_url = ?,
		 skills = ?, manual_skills = ?, nice_to_have_skills = ?, skill_source = ?, status = ?,
		 updated_at = ?
		 WHERE id = ?`,
		job.Title, job.Company, job.Location, job.EmploymentType, job.ExperienceLevel,
		job.SalaryMin, job.SalaryMax, job.Description, job.SourceURL,
		db.StringArray(job.Skills), db.StringArray(job.ManualSkills), db.StringArray(job.NiceToHaveSkills),
		job.SkillSource, job.Status, job.UpdatedAt, job.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	return requireAffected(res)
}

// DeleteJob removes a job.
func (s *Store) DeleteJob(ctx context.Context, id uuid.UUID) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return requireAffected(res)
}

// CreateCandidate inserts a candidate profile, assigning an ID and timestamps.
func (s *Store) CreateCandidate(ctx context.Context, c *types.CandidateProfile) error {
	db.PrepareCandidate(c, time.Now().UTC())
	skills, experience, err := db.CandidateJSON(c)
	if err != nil {
		return err
	}
	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO candidates (`+candidateColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.OwnerID, c.Name, c.Headline, c.Location, c.Email, c.Summary,
		string(skills), string(experience), c.YearsOfExperience, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

// GetCandidate retrieves a candidate by ID. Returns nil, nil when absent.
func (s *Store) GetCandidate(ctx context.Context, id uuid.UUID) (*types.CandidateProfile, error) {
	c, err := db.ScanCandidate(s.conn.QueryRowContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return c, nil
}

// ListCandidates returns every stored candidate ordered by ID.
func (s *Store) ListCandidates(ctx context.Context) ([]types.CandidateProfile, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT `+candidateColumns+` FROM candidates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	candidates := []types.CandidateProfile{}
	for rows.Next() {
		c, err := db.ScanCandidate(rows)
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
func (s *Store) UpdateCandidate(ctx context.Context, c *types.CandidateProfile) error {
	c.UpdatedAt = time.Now().UTC()
	skills, experience, err := db.CandidateJSON(c)
	if err != nil {
		return err
	}
	res, err := s.conn.ExecContext(ctx,
		`UPDATE candidates SET name = ?, headline = ?, location = ?, email = ?, summary = ?,
		 skills = ?, experience = ?, years_of_experience = ?, updated_at = ?
		 WHERE id = ?`,
		c.Name, c.Headline, c.Location, c.Email, c.Summary, string(skills), string(experience),
		c.YearsOfExperience, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update candidate: %w", err)
	}
	return requireAffected(res)
}

// DeleteCandidate removes a candidate profile.
func (s *Store) DeleteCandidate(ctx context.Context, id uuid.UUID) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM candidates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}
