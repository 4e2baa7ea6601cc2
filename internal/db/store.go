package db

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence surface used by the pipeline and HTTP server.
type Store interface {
	CreateCandidate(ctx context.Context, c *Candidate) error
	GetCandidate(ctx context.Context, id uuid.UUID) (*Candidate, error)
	ListCandidates(ctx context.Context, jobID *uuid.UUID) ([]Candidate, error)
	RecentCandidates(ctx context.Context, limit int) ([]Candidate, error)
	UpdateCandidateEmail(ctx context.Context, id uuid.UUID, email string) error
	MarkInviteSent(ctx context.Context, id uuid.UUID, token, email string) error
	MarkCompleted(ctx context.Context, login string, c Completion) (uuid.UUID, error)
	CandidateStats(ctx context.Context) (CandidateStats, error)

	CreateJob(ctx context.Context, j *Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*Job, error)
	ListJobs(ctx context.Context) ([]JobSummary, error)
	UpdateJob(ctx context.Context, id uuid.UUID, in JobInput) error
	SetJobActive(ctx context.Context, id uuid.UUID, active bool) error

	CreateRecruiter(ctx context.Context, r *Recruiter) error
	GetRecruiterByEmail(ctx context.Context, email string) (*Recruiter, error)
	GetRecruiter(ctx context.Context, id uuid.UUID) (*Recruiter, error)
}

var _ Store = (*DB)(nil)
