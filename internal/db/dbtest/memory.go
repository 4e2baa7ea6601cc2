// Package dbtest provides an in-memory db.Store for tests.
package dbtest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/careerpilot/internal/db"
)

// Memory is a thread-safe in-memory implementation of db.Store with the
// same ordering, uniqueness and not-found semantics as the Postgres store.
type Memory struct {
	mu         sync.Mutex
	candidates map[uuid.UUID]db.Candidate
	jobs       map[uuid.UUID]db.Job
	recruiters map[uuid.UUID]db.Recruiter

	// Err, when set, is returned by every method.
	Err error
}

var _ db.Store = (*Memory)(nil)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		candidates: map[uuid.UUID]db.Candidate{},
		jobs:       map[uuid.UUID]db.Job{},
		recruiters: map[uuid.UUID]db.Recruiter{},
	}
}

func copyCandidate(c db.Candidate) db.Candidate {
	c.Skills = append(db.StringArray{}, c.Skills...)
	return c
}

// CreateCandidate implements db.Store.
func (m *Memory) CreateCandidate(_ context.Context, c *db.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if err := db.PrepareCandidate(c); err != nil {
		return err
	}
	for _, existing := range m.candidates {
		if existing.ID == c.ID || existing.MagicToken == c.MagicToken || existing.TempUsername == c.TempUsername {
			return fmt.Errorf("%w: candidate", db.ErrDuplicate)
		}
	}
	m.candidates[c.ID] = copyCandidate(*c)
	return nil
}

// GetCandidate implements db.Store.
func (m *Memory) GetCandidate(_ context.Context, id uuid.UUID) (*db.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	c, ok := m.candidates[id]
	if !ok {
		return nil, nil
	}
	c = copyCandidate(c)
	return &c, nil
}

func (m *Memory) sortedCandidates(keep func(db.Candidate) bool) []db.Candidate {
	out := []db.Candidate{}
	for _, c := range m.candidates {
		if keep(c) {
			out = append(out, copyCandidate(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out
}

// ListCandidates implements db.Store.
func (m *Memory) ListCandidates(_ context.Context, jobID *uuid.UUID) ([]db.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.sortedCandidates(func(c db.Candidate) bool {
		return jobID == nil || (c.JobID != nil && *c.JobID == *jobID)
	}), nil
}

// RecentCandidates implements db.Store.
func (m *Memory) RecentCandidates(_ context.Context, limit int) ([]db.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	all := m.sortedCandidates(func(db.Candidate) bool { return true })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *Memory) updateCandidate(id uuid.UUID, fn func(*db.Candidate)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	c, ok := m.candidates[id]
	if !ok {
		return fmt.Errorf("candidate %s: %w", id, db.ErrNotFound)
	}
	fn(&c)
	m.candidates[id] = c
	return nil
}

// UpdateCandidateEmail implements db.Store.
func (m *Memory) UpdateCandidateEmail(_ context.Context, id uuid.UUID, email string) error {
	return m.updateCandidate(id, func(c *db.Candidate) { c.Email = email })
}

// MarkInviteSent implements db.Store.
func (m *Memory) MarkInviteSent(_ context.Context, id uuid.UUID, token, email string) error {
	return m.updateCandidate(id, func(c *db.Candidate) {
		c.Status = db.StatusInvited
		c.MagicToken = token
		c.Email = email
		c.InviteSent = true
	})
}

// MarkCompleted implements db.Store.
func (m *Memory) MarkCompleted(_ context.Context, login string, in db.Completion) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return uuid.Nil, m.Err
	}
	for id, c := range m.candidates {
		if c.TempUsername != login {
			continue
		}
		c.InterviewCompleted = true
		c.Status = db.StatusCompleted
		c.TechnicalScore = in.TechnicalScore
		c.BehaviouralScore = in.BehaviouralScore
		c.ReportURL = in.ReportURL
		c.CompletedAt = nil
		if in.CompletedAt != nil {
			completedAt := *in.CompletedAt
			c.CompletedAt = &completedAt
		}
		m.candidates[id] = c
		return id, nil
	}
	return uuid.Nil, fmt.Errorf("candidate with login %q: %w", login, db.ErrNotFound)
}

// CandidateStats implements db.Store.
func (m *Memory) CandidateStats(_ context.Context) (db.CandidateStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return db.CandidateStats{}, m.Err
	}
	var stats db.CandidateStats
	var sum float64
	var scored int
	for _, c := range m.candidates {
		stats.Total++
		if !c.InterviewCompleted {
			continue
		}
		stats.Completed++
		if mean := c.MeanScore(); mean != nil {
			sum += *mean
			scored++
		}
	}
	stats.Pending = stats.Total - stats.Completed
	if scored > 0 {
		stats.AverageScore = db.RoundScore(sum / float64(scored))
	}
	return stats, nil
}

// CreateJob implements db.Store.
func (m *Memory) CreateJob(_ context.Context, j *db.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.jobs[j.ID]; ok {
		return fmt.Errorf("%w: job", db.ErrDuplicate)
	}
	m.jobs[j.ID] = *j
	return nil
}

// GetJob implements db.Store.
func (m *Memory) GetJob(_ context.Context, id uuid.UUID) (*db.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	j, ok := m.jobs[id]
	if !ok {
		return nil, nil
	}
	return &j, nil
}

// ListJobs implements db.Store.
func (m *Memory) ListJobs(_ context.Context) ([]db.JobSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []db.JobSummary{}
	for _, j := range m.jobs {
		s := db.JobSummary{Job: j}
		for _, c := range m.candidates {
			if c.JobID == nil || *c.JobID != j.ID {
				continue
			}
			s.ResumesCount++
			switch c.Status {
			case db.StatusInterviewed:
				s.InterviewedCount++
			case db.StatusShortlisted:
				s.ShortlistedCount++
			}
		}
		s.Progress = db.JobProgress(s.ResumesCount, s.InterviewedCount, s.ShortlistedCount)
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	if len(out) > db.ListJobsLimit {
		out = out[:db.ListJobsLimit]
	}
	return out, nil
}

// UpdateJob implements db.Store.
func (m *Memory) UpdateJob(_ context.Context, id uuid.UUID, in db.JobInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	j, ok := m.jobs[id]
	if !ok {
		return fmt.Errorf("job %s: %w", id, db.ErrNotFound)
	}
	updated := db.NewJob(in)
	updated.ID, updated.IsActive, updated.CreatedAt = j.ID, j.IsActive, j.CreatedAt
	m.jobs[id] = *updated
	return nil
}

// SetJobActive implements db.Store.
func (m *Memory) SetJobActive(_ context.Context, id uuid.UUID, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	j, ok := m.jobs[id]
	if !ok {
		return fmt.Errorf("job %s: %w", id, db.ErrNotFound)
	}
	j.IsActive = active
	m.jobs[id] = j
	return nil
}

// CreateRecruiter implements db.Store.
func (m *Memory) CreateRecruiter(_ context.Context, r *db.Recruiter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	r.Email = db.NormalizeEmail(r.Email)
	for _, existing := range m.recruiters {
		if existing.Email == r.Email {
			return fmt.Errorf("recruiter %s: %w", r.Email, db.ErrDuplicate)
		}
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m.recruiters[r.ID] = *r
	return nil
}

// GetRecruiterByEmail implements db.Store.
func (m *Memory) GetRecruiterByEmail(_ context.Context, email string) (*db.Recruiter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	email = db.NormalizeEmail(email)
	for _, r := range m.recruiters {
		if r.Email == email {
			return &r, nil
		}
	}
	return nil, nil
}

// GetRecruiter implements db.Store.
func (m *Memory) GetRecruiter(_ context.Context, id uuid.UUID) (*db.Recruiter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	r, ok := m.recruiters[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// SetCandidateStatus overrides a stored status. It exists for tests that
// need review labels the API never assigns.
func (m *Memory) SetCandidateStatus(id uuid.UUID, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.candidates[id]; ok {
		c.Status = status
		m.candidates[id] = c
	}
}
