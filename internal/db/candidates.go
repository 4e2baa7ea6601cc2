package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const candidateColumns = `id, email, full_name, domain, skills, job_id, job_role, job_seniority,
	status, resume_filename, resume_path, temp_username, temp_password, external_user_id,
	magic_token, invite_sent, interview_completed, technical_score, behavioural_score,
	report_url, completed_at, uploaded_at`

func scanCandidate(row pgx.Row) (*Candidate, error) {
	var c Candidate
	err := row.Scan(
		&c.ID, &c.Email, &c.FullName, &c.Domain, &c.Skills, &c.JobID, &c.JobRole, &c.JobSeniority,
		&c.Status, &c.ResumeFilename, &c.ResumePath, &c.TempUsername, &c.TempPassword, &c.ExternalUserID,
		&c.MagicToken, &c.InviteSent, &c.InterviewCompleted, &c.TechnicalScore, &c.BehaviouralScore,
		&c.ReportURL, &c.CompletedAt, &c.UploadedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// PrepareCandidate fills generated fields and checks required ones. It is
// applied by every store before insert.
func PrepareCandidate(c *Candidate) error {
	c.Email = strings.TrimSpace(c.Email)
	if c.Email == "" {
		return fmt.Errorf("%w: candidate email is required", ErrValidation)
	}
	if c.TempUsername == "" || c.MagicToken == "" {
		return fmt.Errorf("%w: candidate credentials are required", ErrValidation)
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = StatusUploaded
	}
	if c.Skills == nil {
		c.Skills = StringArray{}
	}
	if c.UploadedAt.IsZero() {
		c.UploadedAt = time.Now().UTC()
	}
	return nil
}

// CreateCandidate inserts a new candidate record.
func (db *DB) CreateCandidate(ctx context.Context, c *Candidate) error {
	if err := PrepareCandidate(c); err != nil {
		return err
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO candidates (`+candidateColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`,
		c.ID, c.Email, c.FullName, c.Domain, c.Skills, c.JobID, c.JobRole, c.JobSeniority,
		c.Status, c.ResumeFilename, c.ResumePath, c.TempUsername, c.TempPassword, c.ExternalUserID,
		c.MagicToken, c.InviteSent, c.InterviewCompleted, c.TechnicalScore, c.BehaviouralScore,
		c.ReportURL, c.CompletedAt, c.UploadedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

// GetCandidate retrieves a candidate by ID. It returns nil, nil when absent.
func (db *DB) GetCandidate(ctx context.Context, id uuid.UUID) (*Candidate, error) {
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

// ListCandidates returns candidates newest first, optionally limited to one job.
func (db *DB) ListCandidates(ctx context.Context, jobID *uuid.UUID) ([]Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates`
	args := []any{}
	if jobID != nil {
		query += ` WHERE job_id = $1`
		args = append(args, *jobID)
	}
	query += ` ORDER BY uploaded_at DESC`
	return db.queryCandidates(ctx, query, args...)
}

// RecentCandidates returns the limit newest candidates.
func (db *DB) RecentCandidates(ctx context.Context, limit int) ([]Candidate, error) {
	return db.queryCandidates(ctx,
		`SELECT `+candidateColumns+` FROM candidates ORDER BY uploaded_at DESC LIMIT $1`, limit)
}

func (db *DB) queryCandidates(ctx context.Context, query string, args ...any) ([]Candidate, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	candidates := []Candidate{}
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

// UpdateCandidateEmail replaces the candidate's email address.
func (db *DB) UpdateCandidateEmail(ctx context.Context, id uuid.UUID, email string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE candidates SET email = $2 WHERE id = $1`, id, email)
	if err != nil {
		return fmt.Errorf("failed to update candidate email: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("candidate %s: %w", id, ErrNotFound)
	}
	return nil
}

// MarkInviteSent records that an invite was scheduled for email.
func (db *DB) MarkInviteSent(ctx context.Context, id uuid.UUID, token, email string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE candidates
		 SET status = $2, magic_token = $3, email = $4, invite_sent = TRUE
		 WHERE id = $1`,
		id, StatusInvited, token, email)
	if err != nil {
		return fmt.Errorf("failed to mark invite sent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("candidate %s: %w", id, ErrNotFound)
	}
	return nil
}

// MarkCompleted finalizes the interview of the candidate whose temporary
// login is login and returns the candidate ID. Repeated calls overwrite the
// previous result; an absent completion time is stored as NULL.
func (db *DB) MarkCompleted(ctx context.Context, login string, c Completion) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`UPDATE candidates
		 SET interview_completed = TRUE, status = $2, technical_score = $3,
		     behavioural_score = $4, report_url = $5, completed_at = $6
		 WHERE temp_username = $1
		 RETURNING id`,
		login, StatusCompleted, c.TechnicalScore, c.BehaviouralScore, c.ReportURL, c.CompletedAt,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("candidate with login %q: %w", login, ErrNotFound)
		}
		return uuid.Nil, fmt.Errorf("failed to mark interview completed: %w", err)
	}
	return id, nil
}

// CandidateStats computes dashboard totals. The average is the mean over
// completed candidates of each candidate's mean score.
func (db *DB) CandidateStats(ctx context.Context) (CandidateStats, error) {
	var stats CandidateStats
	var avg *float64
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE interview_completed),
		        AVG(CASE
		              WHEN technical_score IS NULL THEN behavioural_score
		              WHEN behavioural_score IS NULL THEN technical_score
		              ELSE (technical_score + behavioural_score) / 2
		            END) FILTER (WHERE interview_completed)
		 FROM candidates`,
	).Scan(&stats.Total, &stats.Completed, &avg)
	if err != nil {
		return CandidateStats{}, fmt.Errorf("failed to compute candidate stats: %w", err)
	}
	stats.Pending = stats.Total - stats.Completed
	if avg != nil {
		stats.AverageScore = RoundScore(*avg)
	}
	return stats, nil
}
