package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/careerpilot/internal/db"
	"github.com/jonathan/careerpilot/internal/ingestion"
	"github.com/jonathan/careerpilot/internal/pipeline"
	"go.uber.org/zap"
)

// multipartMemory is the part of a multipart form kept in memory; the rest spills to disk.
const multipartMemory = 32 << 20

// CandidateListResponse is the body of candidate listings.
type CandidateListResponse struct {
	pipeline.Counts
	JobID      string         `json:"job_id,omitempty"`
	Candidates []db.Candidate `json:"candidates"`
}

// UpdateEmailRequest is the body of PUT /api/candidates/{id}/email.
type UpdateEmailRequest struct {
	Email        string `json:"email" validate:"required,email"`
	ResendInvite bool   `json:"resend_invite"`
}

// SendInviteRequest is the optional body of the send-invite endpoints.
type SendInviteRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
}

// handleUploadResumes handles POST /api/candidates/upload-resumes.
func (s *Server) handleUploadResumes(w http.ResponseWriter, r *http.Request) {
	s.uploadResumes(w, r, nil)
}

// uploadResumes reads the "files" parts and runs them through intake. Any
// unsupported file rejects the whole request before anything is stored.
func (s *Server) uploadResumes(w http.ResponseWriter, r *http.Request, job *pipeline.JobContext) {
	docs, err := s.readUploads(w, r, "files")
	if err != nil {
		s.failure(w, "failed to read upload", err)
		return
	}
	if len(docs) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "No files uploaded")
		return
	}
	for _, doc := range docs {
		if !ingestion.Supported(doc.Filename, doc.Data) {
			s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("Unsupported file type: %s", doc.Filename))
			return
		}
	}

	// a client disconnect must not abandon a half-processed batch
	ctx := context.WithoutCancel(r.Context())
	result := s.pipeline.ProcessBatch(ctx, docs, job)

	status := http.StatusCreated
	if len(result.Created) == 0 {
		status = http.StatusInternalServerError
	}
	s.logger.Info("resume batch processed",
		zap.Int("created", len(result.Created)),
		zap.Int("failed", len(result.Failed)),
	)
	s.jsonResponse(w, status, result)
}

// readUploads parses a multipart body bounded by maxUploadBytes and returns
// every file under field.
func (s *Server) readUploads(w http.ResponseWriter, r *http.Request, field string) ([]pipeline.Document, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &ErrValidation{Message: fmt.Sprintf("upload exceeds %d MB", s.maxUploadBytes>>20)}
		}
		return nil, &ErrValidation{Message: "expected multipart/form-data body"}
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File[field]
	docs := make([]pipeline.Document, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		docs = append(docs, pipeline.Document{Filename: fh.Filename, Data: data})
	}
	return docs, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// handleListCandidates handles GET /api/candidates.
func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	s.listCandidates(w, r, nil)
}

func (s *Server) listCandidates(w http.ResponseWriter, r *http.Request, jobID *uuid.UUID) {
	candidates, err := s.store.ListCandidates(r.Context(), jobID)
	if err != nil {
		s.failure(w, "failed to list candidates", err)
		return
	}
	if candidates == nil {
		candidates = []db.Candidate{}
	}
	for i := range candidates {
		candidates[i].Status = candidates[i].EffectiveStatus()
	}

	resp := CandidateListResponse{
		Counts:     pipeline.Tally(candidates),
		Candidates: candidates,
	}
	if jobID != nil {
		resp.JobID = jobID.String()
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleUpdateEmail handles PUT /api/candidates/{id}/email.
func (s *Server) handleUpdateEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "candidate")
	if !ok {
		return
	}
	var req UpdateEmailRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	email := strings.TrimSpace(req.Email)

	if err := s.store.UpdateCandidateEmail(r.Context(), id, email); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			err = &ErrNotFound{Resource: "candidate", ID: id.String()}
		}
		s.failure(w, "failed to update email", err)
		return
	}

	resp := map[string]any{"detail": "Email updated"}
	if req.ResendInvite {
		c, err := s.candidate(r.Context(), id)
		if err != nil {
			s.failure(w, "failed to load candidate", err)
			return
		}
		if err := s.pipeline.Invite(r.Context(), c, email, nil); err != nil {
			s.failure(w, "failed to resend invite", err)
			return
		}
		resp["invite_sent"] = true
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleSendInvite handles POST /api/candidates/{id}/send-invite.
func (s *Server) handleSendInvite(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "candidate")
	if !ok {
		return
	}
	var req SendInviteRequest
	if !s.decodeJSON(w, r, &req, true) {
		return
	}

	c, err := s.candidate(r.Context(), id)
	if err != nil {
		s.failure(w, "failed to load candidate", err)
		return
	}
	email := req.Email
	if email == "" {
		email = c.Email
	}
	if err := s.pipeline.Invite(r.Context(), c, email, nil); err != nil {
		s.failure(w, "failed to send invite", err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":       "invite_sent",
		"candidate_id": c.ID.String(),
		"email":        email,
	})
}

// candidate loads a candidate, mapping a missing record to ErrNotFound.
func (s *Server) candidate(ctx context.Context, id uuid.UUID) (*db.Candidate, error) {
	c, err := s.store.GetCandidate(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &ErrNotFound{Resource: "candidate", ID: id.String()}
	}
	return c, nil
}

// pathID parses a UUID path value. Malformed IDs cannot name a record and
// are reported as not found.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request, name, resource string) (uuid.UUID, bool) {
	raw := r.PathValue(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		s.errorResponse(w, http.StatusNotFound, (&ErrNotFound{Resource: resource, ID: raw}).Error())
		return uuid.Nil, false
	}
	return id, true
}

// decodeJSON reads and validates a JSON body. With optional set an empty
// body leaves req at its zero value.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, req any, optional bool) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBytes)).Decode(req)
	if err != nil && !(optional && errors.Is(err, io.EOF)) {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := s.authHandler.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return false
	}
	return true
}
