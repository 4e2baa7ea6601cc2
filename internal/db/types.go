package db

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// Candidate statuses. Uploaded, Invited, In Progress and Completed form the
// interview lifecycle; Interviewed and Shortlisted are recruiter review
// labels counted by job progress.
const (
	StatusUploaded    = "Uploaded"
	StatusInvited     = "Invited"
	StatusInProgress  = "In Progress"
	StatusCompleted   = "Completed"
	StatusInterviewed = "Interviewed"
	StatusShortlisted = "Shortlisted"
)

// Candidate is one uploaded resume and its interview lifecycle.
type Candidate struct {
	ID                 uuid.UUID   `json:"id"`
	Email              string      `json:"email"`
	FullName           string      `json:"full_name"`
	Domain             string      `json:"domain"`
	Skills             StringArray `json:"skills"`
	JobID              *uuid.UUID  `json:"job_id,omitempty"`
	JobRole            string      `json:"job_role,omitempty"`
	JobSeniority       string      `json:"job_seniority,omitempty"`
	Status             string      `json:"status"`
	ResumeFilename     string      `json:"resume_filename"`
	ResumePath         string      `json:"resume_path"`
	TempUsername       string      `json:"temp_username"`
	TempPassword       string      `json:"-"`
	ExternalUserID     string      `json:"external_user_id"`
	MagicToken         string      `json:"-"`
	InviteSent         bool        `json:"invite_sent"`
	InterviewCompleted bool        `json:"interview_completed"`
	TechnicalScore     *float64    `json:"technical_score"`
	BehaviouralScore   *float64    `json:"behavioural_score"`
	ReportURL          string      `json:"report_url,omitempty"`
	CompletedAt        *time.Time  `json:"completed_at,omitempty"`
	UploadedAt         time.Time   `json:"uploaded_at"`
}

// EffectiveStatus reports Completed whenever the interview has completed,
// regardless of the stored status.
func (c *Candidate) EffectiveStatus() string {
	if c.InterviewCompleted {
		return StatusCompleted
	}
	return c.Status
}

// MeanScore averages the scores that are present. It returns nil when
// neither score is set.
func (c *Candidate) MeanScore() *float64 {
	return MeanScore(c.TechnicalScore, c.BehaviouralScore)
}

// MeanScore averages the non-nil scores.
func MeanScore(technical, behavioural *float64) *float64 {
	switch {
	case technical == nil && behavioural == nil:
		return nil
	case technical == nil:
		v := *behavioural
		return &v
	case behavioural == nil:
		v := *technical
		return &v
	}
	v := (*technical + *behavioural) / 2
	return &v
}

// Completion carries the result of a finished interview.
type Completion struct {
	TechnicalScore   *float64
	BehaviouralScore *float64
	ReportURL        string
	CompletedAt      *time.Time
}

// CandidateStats aggregates dashboard figures over all candidates.
type CandidateStats struct {
	Total        int     `json:"total_candidates"`
	Completed    int     `json:"completed_interviews"`
	Pending      int     `json:"pending_interviews"`
	AverageScore float64 `json:"average_score"`
}

// RoundScore rounds to two decimals.
func RoundScore(v float64) float64 {
	return math.Round(v*100) / 100
}

// Job is a posting candidates can be uploaded against.
type Job struct {
	ID          uuid.UUID   `json:"_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Skills      StringArray `json:"skills"`
	Questions   StringArray `json:"questions"`
	Seniority   string      `json:"seniority"`
	IsActive    bool        `json:"isActive"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// JobInput holds the editable fields of a job.
type JobInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
	Questions   []string `json:"questions"`
	Seniority   string   `json:"seniority"`
}

// JobSummary is a job with counts over its candidates.
type JobSummary struct {
	Job
	ResumesCount     int `json:"resumesCount"`
	InterviewedCount int `json:"interviewedCount"`
	ShortlistedCount int `json:"shortlistedCount"`
	Progress         int `json:"progress"`
}

// JobProgress is the integer percentage of resumes that reached
// Interviewed or Shortlisted; 0 when there are no resumes.
func JobProgress(resumes, interviewed, shortlisted int) int {
	if resumes <= 0 {
		return 0
	}
	return (interviewed + shortlisted) * 100 / resumes
}

// Recruiter is a verified recruiter account.
type Recruiter struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// StringArray handles JSONB string arrays
type StringArray []string

// Scan implements the Scanner interface for StringArray
func (a *StringArray) Scan(src interface{}) error {
	var source []byte
	switch v := src.(type) {
	case nil:
		*a = []string{}
		return nil
	case []byte:
		source = v
	case string:
		source = []byte(v)
	default:
		return errors.New("type assertion .([]byte) failed")
	}
	return json.Unmarshal(source, a)
}

// Value implements the Valuer interface for StringArray
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}
