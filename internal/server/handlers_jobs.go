package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/careerpilot/internal/db"
	"github.com/jonathan/careerpilot/internal/pipeline"
	"github.com/jonathan/careerpilot/internal/schemas"
	"go.uber.org/zap"
)

// ToggleActiveRequest is the body of PUT /api/jobs/{id}/toggle_active.
type ToggleActiveRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// handleCreateJob handles POST /api/jobs.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeJobInput(w, r)
	if !ok {
		return
	}

	job := db.NewJob(in)
	if err := s.store.CreateJob(r.Context(), job); err != nil {
		s.failure(w, "failed to create job", err)
		return
	}
	s.logger.Info("job created", zap.String("job_id", job.ID.String()), zap.String("title", job.Title))
	s.jsonResponse(w, http.StatusCreated, map[string]string{"jobId": job.ID.String()})
}

// handleListJobs handles GET /api/jobs.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.store.ListJobs(r.Context())
	if err != nil {
		s.failure(w, "failed to list jobs", err)
		return
	}
	if jobs == nil {
		jobs = []db.JobSummary{}
	}
	s.jsonResponse(w, http.StatusOK, jobs)
}

// handleGetJob handles GET /api/jobs/{id}.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "job")
	if !ok {
		return
	}
	job, err := s.job(r.Context(), id)
	if err != nil {
		s.failure(w, "failed to get job", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleUpdateJob handles PUT /api/jobs/{id}.
func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "job")
	if !ok {
		return
	}
	in, ok := s.decodeJobInput(w, r)
	if !ok {
		return
	}

	if err := s.store.UpdateJob(r.Context(), id, in); err != nil {
		s.failure(w, "failed to update job", jobNotFound(err, id))
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

// handleToggleJobActive handles PUT /api/jobs/{id}/toggle_active.
func (s *Server) handleToggleJobActive(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "job")
	if !ok {
		return
	}
	var req ToggleActiveRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}

	if err := s.store.SetJobActive(r.Context(), id, *req.IsActive); err != nil {
		s.failure(w, "failed to toggle job", jobNotFound(err, id))
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]bool{"success": true, "isActive": *req.IsActive})
}

// handleUploadJobResumes handles POST /api/jobs/{id}/candidates/upload-resumes.
// Inactive jobs do not accept new candidates.
func (s *Server) handleUploadJobResumes(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "job")
	if !ok {
		return
	}
	job, err := s.job(r.Context(), id)
	if err != nil {
		s.failure(w, "failed to get job", err)
		return
	}
	if !job.IsActive {
		s.errorResponse(w, http.StatusConflict, "Job is not active")
		return
	}
	s.uploadResumes(w, r, jobContext(job))
}

// handleListJobCandidates handles GET /api/jobs/{id}/candidates.
func (s *Server) handleListJobCandidates(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "job")
	if !ok {
		return
	}
	if _, err := s.job(r.Context(), id); err != nil {
		s.failure(w, "failed to get job", err)
		return
	}
	s.listCandidates(w, r, &id)
}

// handleSendJobInvite handles POST /api/jobs/{id}/candidates/{cid}/send-invite.
func (s *Server) handleSendJobInvite(w http.ResponseWriter, r *http.Request) {
	jobID, ok := s.pathID(w, r, "id", "job")
	if !ok {
		return
	}
	candidateID, ok := s.pathID(w, r, "cid", "candidate")
	if !ok {
		return
	}
	var req SendInviteRequest
	if !s.decodeJSON(w, r, &req, true) {
		return
	}

	job, err := s.job(r.Context(), jobID)
	if err != nil {
		s.failure(w, "failed to get job", err)
		return
	}
	c, err := s.store.GetCandidate(r.Context(), candidateID)
	if err != nil {
		s.failure(w, "failed to load candidate", err)
		return
	}
	if c == nil || c.JobID == nil || *c.JobID != job.ID {
		s.errorResponse(w, http.StatusNotFound, "Candidate not found for this job")
		return
	}

	email := req.Email
	if email == "" {
		email = c.Email
	}
	if err := s.pipeline.Invite(r.Context(), c, email, jobContext(job)); err != nil {
		s.failure(w, "failed to send invite", err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":       "invite_sent",
		"candidate_id": c.ID.String(),
		"job_id":       job.ID.String(),
		"email":        email,
	})
}

func (s *Server) job(ctx context.Context, id uuid.UUID) (*db.Job, error) {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, &ErrNotFound{Resource: "job", ID: id.String()}
	}
	return job, nil
}

func jobContext(job *db.Job) *pipeline.JobContext {
	return &pipeline.JobContext{ID: job.ID, Title: job.Title, Seniority: job.Seniority}
}

func jobNotFound(err error, id uuid.UUID) error {
	if errors.Is(err, db.ErrNotFound) {
		return &ErrNotFound{Resource: "job", ID: id.String()}
	}
	return err
}

// decodeJobInput validates the body against the job schema before decoding it.
func (s *Server) decodeJobInput(w http.ResponseWriter, r *http.Request) (db.JobInput, bool) {
	var in db.JobInput
	body, ok := s.readSchemaBody(w, r, schemas.Job)
	if !ok {
		return in, false
	}
	if err := json.Unmarshal(body, &in); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return in, false
	}
	return in, true
}

// readSchemaBody reads a bounded JSON body and validates it against the named schema.
func (s *Server) readSchemaBody(w http.ResponseWriter, r *http.Request, schema string) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBytes))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	if err := schemas.Validate(schema, body); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			s.errorResponse(w, http.StatusBadRequest, verr.Summary())
			return nil, false
		}
		s.failure(w, "failed to validate request", err)
		return nil, false
	}
	return body, true
}
