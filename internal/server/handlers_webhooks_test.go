package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/careerpilot/internal/db"
	"github.com/jonathan/careerpilot/internal/events"
)

const webhookPath = "/api/webhooks/interview-completed"

func TestInterviewCompleted(t *testing.T) {
	env := newTestEnv(t)
	c := env.seedCandidate(t, func(c *db.Candidate) { c.Status = db.StatusInvited })

	rec := env.do(jsonRequest(http.MethodPost, webhookPath, map[string]any{
		"temp_username":     c.TempUsername,
		"technical_score":   8.5,
		"behavioural_score": 7.25,
		"report_url":        "https://reports.example.com/abc",
		"completed_at":      "2026-03-01T10:30:00+02:00",
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"status":"updated"}`, rec.Body.String())

	got, err := env.store.GetCandidate(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, got.InterviewCompleted)
	assert.Equal(t, db.StatusCompleted, got.Status)
	require.NotNil(t, got.TechnicalScore)
	assert.InDelta(t, 8.5, *got.TechnicalScore, 1e-9)
	assert.Equal(t, "https://reports.example.com/abc", got.ReportURL)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)))

	published := env.events.ofType(events.CandidateCompleted)
	require.Len(t, published, 1)
	assert.Equal(t, c.ID.String(), published[0].CandidateID)
	assert.Equal(t, c.TempUsername, published[0].Data["temp_username"])
	assert.InDelta(t, 7.88, published[0].Data["score"], 1e-9)

	metricsRec := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, metricsRec.Body.String(), `careerpilot_interview_webhooks_total{result="updated"} 1`)
}

func TestInterviewCompleted_Idempotent(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"without completed_at", map[string]any{"technical_score": 7}},
		{"with completed_at", map[string]any{"technical_score": 7, "completed_at": "2026-03-01T10:30:00Z"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			c := env.seedCandidate(t, nil)
			tt.body["temp_username"] = c.TempUsername

			var states []*db.Candidate
			for i := 0; i < 2; i++ {
				rec := env.do(jsonRequest(http.MethodPost, webhookPath, tt.body))
				require.Equal(t, http.StatusOK, rec.Code)
				got, err := env.store.GetCandidate(context.Background(), c.ID)
				require.NoError(t, err)
				states = append(states, got)
				time.Sleep(5 * time.Millisecond)
			}
			assert.Equal(t, states[0], states[1])
		})
	}
}

func TestInterviewCompleted_LastWriteWins(t *testing.T) {
	env := newTestEnv(t)
	c := env.seedCandidate(t, nil)

	first := map[string]any{"temp_username": c.TempUsername, "technical_score": 4, "completed_at": "2026-03-01T10:30:00Z"}
	second := map[string]any{"temp_username": c.TempUsername, "technical_score": 9}
	for _, body := range []map[string]any{first, second} {
		rec := env.do(jsonRequest(http.MethodPost, webhookPath, body))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	got, err := env.store.GetCandidate(context.Background(), c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TechnicalScore)
	assert.InDelta(t, 9.0, *got.TechnicalScore, 1e-9)
	assert.Nil(t, got.BehaviouralScore)
	assert.Nil(t, got.CompletedAt, "an absent completion time is stored as absent")

	stats, err := env.store.CandidateStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Completed)
}

func TestInterviewCompleted_TimestampFormats(t *testing.T) {
	want := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"rfc3339 utc", "2026-03-01T10:30:00Z", want},
		{"rfc3339 offset", "2026-03-01T12:30:00+02:00", want},
		{"naive iso", "2026-03-01T10:30:00", want},
		{"naive iso micros", "2026-03-01T10:30:00.123456", want.Add(123456 * time.Microsecond)},
		{"space separated", "2026-03-01 10:30:00", want},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			c := env.seedCandidate(t, nil)

			rec := env.do(jsonRequest(http.MethodPost, webhookPath, map[string]any{
				"temp_username": c.TempUsername,
				"completed_at":  tt.raw,
			}))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			got, err := env.store.GetCandidate(context.Background(), c.ID)
			require.NoError(t, err)
			require.NotNil(t, got.CompletedAt)
			assert.True(t, tt.want.Equal(*got.CompletedAt), "got %s", got.CompletedAt)
		})
	}
}

func TestInterviewCompleted_NoScores(t *testing.T) {
	env := newTestEnv(t)
	c := env.seedCandidate(t, nil)

	rec := env.do(jsonRequest(http.MethodPost, webhookPath, map[string]any{"temp_username": c.TempUsername}))
	require.Equal(t, http.StatusOK, rec.Code)

	published := env.events.ofType(events.CandidateCompleted)
	require.Len(t, published, 1)
	_, hasScore := published[0].Data["score"]
	assert.False(t, hasScore)
}

func TestInterviewCompleted_Rejects(t *testing.T) {
	env := newTestEnv(t)
	c := env.seedCandidate(t, nil)

	tests := []struct {
		name     string
		body     any
		wantCode int
	}{
		{"missing temp_username", map[string]any{"technical_score": 5}, http.StatusBadRequest},
		{"empty temp_username", map[string]any{"temp_username": ""}, http.StatusBadRequest},
		{"score not a number", map[string]any{"temp_username": c.TempUsername, "technical_score": "high"}, http.StatusBadRequest},
		{"bad completed_at", map[string]any{"temp_username": c.TempUsername, "completed_at": "yesterday"}, http.StatusBadRequest},
		{"malformed", "{", http.StatusBadRequest},
		{"unknown candidate", map[string]any{"temp_username": "nobody"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(jsonRequest(http.MethodPost, webhookPath, tt.body))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}

	got, err := env.store.GetCandidate(context.Background(), c.ID)
	require.NoError(t, err)
	assert.False(t, got.InterviewCompleted)
	assert.Empty(t, env.events.ofType(events.CandidateCompleted))
}

func TestInterviewCompleted_OpenWhenAuthRequired(t *testing.T) {
	env := newTestEnv(t, withAuthRequired())
	c := env.seedCandidate(t, nil)

	rec := env.do(jsonRequest(http.MethodPost, webhookPath, map[string]any{"temp_username": c.TempUsername}))
	assert.Equal(t, http.StatusOK, rec.Code)
}
