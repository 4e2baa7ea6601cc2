package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/careerpilot/internal/db"
	"github.com/jonathan/careerpilot/internal/events"
	"github.com/jonathan/careerpilot/internal/schemas"
	"go.uber.org/zap"
)

// InterviewCompletedPayload is the body posted by the interview platform
// when a candidate finishes.
type InterviewCompletedPayload struct {
	TempUsername     string   `json:"temp_username"`
	TechnicalScore   *float64 `json:"technical_score"`
	BehaviouralScore *float64 `json:"behavioural_score"`
	ReportURL        *string  `json:"report_url"`
	CompletedAt      *string  `json:"completed_at"`
}

// completion converts the payload into a db.Completion.
func (p InterviewCompletedPayload) completion() (db.Completion, error) {
	c := db.Completion{
		TechnicalScore:   p.TechnicalScore,
		BehaviouralScore: p.BehaviouralScore,
	}
	if p.ReportURL != nil {
		c.ReportURL = *p.ReportURL
	}
	if p.CompletedAt != nil && strings.TrimSpace(*p.CompletedAt) != "" {
		t, err := parseCompletedAt(strings.TrimSpace(*p.CompletedAt))
		if err != nil {
			return c, &ErrValidation{Field: "completed_at", Message: "must be an ISO 8601 timestamp"}
		}
		c.CompletedAt = &t
	}
	return c, nil
}

// naiveLayouts are timestamp forms without a zone offset; they are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
	time.DateTime,
}

// parseCompletedAt accepts RFC 3339 and zone-less ISO 8601 timestamps.
func parseCompletedAt(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	var err error
	for _, layout := range naiveLayouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// handleInterviewCompleted handles POST /api/webhooks/interview-completed.
// Deliveries are idempotent: a repeated call overwrites the stored result.
func (s *Server) handleInterviewCompleted(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readSchemaBody(w, r, schemas.InterviewCompleted)
	if !ok {
		s.metrics.Webhook("invalid")
		return
	}

	var payload InterviewCompletedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		s.metrics.Webhook("invalid")
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	completion, err := payload.completion()
	if err != nil {
		s.metrics.Webhook("invalid")
		s.failure(w, "invalid webhook payload", err)
		return
	}

	id, err := s.store.MarkCompleted(r.Context(), payload.TempUsername, completion)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.metrics.Webhook("not_found")
			s.errorResponse(w, http.StatusNotFound, "Candidate not found")
			return
		}
		s.failure(w, "failed to record interview result", err)
		return
	}
	s.metrics.Webhook("updated")

	data := map[string]any{"temp_username": payload.TempUsername}
	if mean := db.MeanScore(completion.TechnicalScore, completion.BehaviouralScore); mean != nil {
		data["score"] = db.RoundScore(*mean)
	}
	if err := s.events.Publish(r.Context(), events.New(events.CandidateCompleted, id.String(), data)); err != nil {
		s.logger.Warn("lifecycle event dropped", zap.String("type", events.CandidateCompleted), zap.Error(err))
	}

	s.logger.Info("interview completed", zap.String("candidate_id", id.String()))
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "updated"})
}
