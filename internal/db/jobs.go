package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ListJobsLimit caps the number of jobs returned by ListJobs.
const ListJobsLimit = 100

// NewJob builds an active job from input.
func NewJob(in JobInput) *Job {
	return &Job{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		Skills:      orEmpty(in.Skills),
		Questions:   orEmpty(in.Questions),
		Seniority:   in.Seniority,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
}

func orEmpty(s []string) StringArray {
	if s == nil {
		return StringArray{}
	}
	return StringArray(s)
}

// CreateJob inserts a job.
func (db *DB) CreateJob(ctx context.Context, j *Job) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO jobs (id, title, description, skills, questions, seniority, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		j.ID, j.Title, j.Description, orEmpty(j.Skills), orEmpty(j.Questions), j.Seniority, j.IsActive, j.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID. It returns nil, nil when absent.
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	var j Job
	err := db.pool.QueryRow(ctx,
		`SELECT id, title, description, skills, questions, seniority, is_active, created_at
		 FROM jobs WHERE id = $1`, id,
	).Scan(&j.ID, &j.Title, &j.Description, &j.Skills, &j.Questions, &j.Seniority, &j.IsActive, &j.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &j, nil
}

// ListJobs returns jobs newest first with per-job candidate counts.
func (db *DB) ListJobs(ctx context.Context) ([]JobSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT j.id, j.title, j.description, j.skills, j.questions, j.seniority, j.is_active, j.created_at,
		        COUNT(c.id),
		        COUNT(c.id) FILTER (WHERE c.status = $1),
		        COUNT(c.id) FILTER (WHERE c.status = $2)
		 FROM jobs j
		 LEFT JOIN candidates c ON c.job_id = j.id
		 GROUP BY j.id
		 ORDER BY j.created_at DESC
		 LIMIT $3`,
		StatusInterviewed, StatusShortlisted, ListJobsLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []JobSummary{}
	for rows.Next() {
		var s JobSummary
		if err := rows.Scan(
			&s.ID, &s.Title, &s.Description, &s.Skills, &s.Questions, &s.Seniority, &s.IsActive, &s.CreatedAt,
			&s.ResumesCount, &s.InterviewedCount, &s.ShortlistedCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		s.Progress = JobProgress(s.ResumesCount, s.InterviewedCount, s.ShortlistedCount)
		jobs = append(jobs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// UpdateJob replaces the editable fields of a job.
func (db *DB) UpdateJob(ctx context.Context, id uuid.UUID, in JobInput) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE jobs SET title = $2, description = $3, skills = $4, questions = $5, seniority = $6
		 WHERE id = $1`,
		id, in.Title, in.Description, orEmpty(in.Skills), orEmpty(in.Questions), in.Seniority,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetJobActive toggles whether a job accepts new candidates.
func (db *DB) SetJobActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := db.pool.Exec(ctx, `UPDATE jobs SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("failed to toggle job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return nil
}
