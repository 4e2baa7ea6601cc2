package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/careerpilot/internal/db"
	"github.com/jonathan/careerpilot/internal/events"
	"github.com/jonathan/careerpilot/internal/mailer"
	"github.com/jonathan/careerpilot/internal/pipeline"
)

func TestUploadResumes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(uploadRequest(t, "/api/candidates/upload-resumes", "files",
		testFile{name: "jane.txt", data: []byte(janeResume)},
		testFile{name: "anon.txt", data: []byte("Skills\nGo, Docker")},
	))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env.drain(t)

	result := decodeBody[pipeline.BatchResult](t, rec)
	require.Len(t, result.Created, 2)
	assert.Empty(t, result.Failed)
	assert.Equal(t, "jane.doe@gmail.com", result.Created[0].Email)
	assert.Equal(t, "jane.txt", result.Created[0].Filename)
	assert.Contains(t, result.Created[1].Email, "@placeholder.ai")

	id, err := uuid.Parse(result.Created[0].ID)
	require.NoError(t, err)
	c, err := env.store.GetCandidate(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", c.FullName)
	assert.Equal(t, "Software Engineering", c.Domain)
	assert.Equal(t, db.StatusInvited, c.Status)

	assert.Len(t, env.mail.Messages(), 2)
	assert.Len(t, env.events.ofType(events.CandidateCreated), 2)
	assert.Len(t, env.events.ofType(events.CandidateInvited), 2)
}

func TestUploadResumes_Rejections(t *testing.T) {
	env := newTestEnv(t)

	t.Run("no files", func(t *testing.T) {
		rec := env.do(uploadRequest(t, "/api/candidates/upload-resumes", "files"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No files uploaded", decodeBody[map[string]string](t, rec)["error"])
	})

	t.Run("not multipart", func(t *testing.T) {
		rec := env.do(jsonRequest(http.MethodPost, "/api/candidates/upload-resumes", map[string]string{}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unsupported file rejects the batch", func(t *testing.T) {
		rec := env.do(uploadRequest(t, "/api/candidates/upload-resumes", "files",
			testFile{name: "jane.txt", data: []byte(janeResume)},
			testFile{name: "photo.bin", data: []byte{0x00, 0x01, 0x02, 0xff, 0xfe}},
		))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeBody[map[string]string](t, rec)["error"], "photo.bin")

		all, err := env.store.ListCandidates(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("too large", func(t *testing.T) {
		big := make([]byte, 6<<20)
		for i := range big {
			big[i] = 'a'
		}
		rec := env.do(uploadRequest(t, "/api/candidates/upload-resumes", "files", testFile{name: "big.txt", data: big}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUploadResumes_AllFailed(t *testing.T) {
	env := newTestEnv(t)
	env.store.Err = errors.New("database unavailable")

	rec := env.do(uploadRequest(t, "/api/candidates/upload-resumes", "files",
		testFile{name: "jane.txt", data: []byte(janeResume)},
	))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	result := decodeBody[pipeline.BatchResult](t, rec)
	assert.Empty(t, result.Created)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "jane.txt", result.Failed[0].Filename)
}

func TestListCandidates(t *testing.T) {
	env := newTestEnv(t)
	env.seedCandidate(t, nil)
	env.seedCandidate(t, func(c *db.Candidate) { c.Status = db.StatusInvited })
	env.seedCandidate(t, func(c *db.Candidate) { c.Status = db.StatusInProgress })
	env.seedCandidate(t, func(c *db.Candidate) {
		c.Status = db.StatusInvited
		c.InterviewCompleted = true
	})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/candidates", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[CandidateListResponse](t, rec)
	assert.Equal(t, 4, body.Total)
	assert.Equal(t, 1, body.Invited)
	assert.Equal(t, 1, body.InProgress)
	assert.Equal(t, 1, body.Completed)
	assert.Empty(t, body.JobID)
	require.Len(t, body.Candidates, 4)

	statuses := map[string]int{}
	for _, c := range body.Candidates {
		statuses[c.Status]++
	}
	assert.Equal(t, 1, statuses[db.StatusCompleted], "completed interviews report Completed")

	assert.NotContains(t, rec.Body.String(), "Pw123456", "temporary passwords are never listed")
}

func TestListCandidates_Empty(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/candidates", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":0,"invited":0,"completed":0,"in_progress":0,"candidates":[]}`, rec.Body.String())
}

func TestUpdateEmail(t *testing.T) {
	env := newTestEnv(t)
	c := env.seedCandidate(t, nil)

	t.Run("updates without invite", func(t *testing.T) {
		rec := env.do(jsonRequest(http.MethodPut, "/api/candidates/"+c.ID.String()+"/email",
			map[string]any{"email": "new@example.com"}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "Email updated", decodeBody[map[string]any](t, rec)["detail"])

		got, err := env.store.GetCandidate(context.Background(), c.ID)
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", got.Email)
		assert.Equal(t, db.StatusUploaded, got.Status)
	})

	t.Run("resends invite", func(t *testing.T) {
		rec := env.do(jsonRequest(http.MethodPut, "/api/candidates/"+c.ID.String()+"/email",
			map[string]any{"email": "again@example.com", "resend_invite": true}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, true, decodeBody[map[string]any](t, rec)["invite_sent"])
		env.drain(t)

		msg, ok := env.mail.Last()
		require.True(t, ok)
		assert.Equal(t, "again@example.com", msg.To)
		assert.Equal(t, mailer.InviteSubject, msg.Subject)

		got, err := env.store.GetCandidate(context.Background(), c.ID)
		require.NoError(t, err)
		assert.Equal(t, db.StatusInvited, got.Status)
	})

	t.Run("invalid email", func(t *testing.T) {
		rec := env.do(jsonRequest(http.MethodPut, "/api/candidates/"+c.ID.String()+"/email",
			map[string]any{"email": "nope"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown candidate", func(t *testing.T) {
		rec := env.do(jsonRequest(http.MethodPut, "/api/candidates/"+uuid.NewString()+"/email",
			map[string]any{"email": "x@example.com"}))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		rec := env.do(jsonRequest(http.MethodPut, "/api/candidates/not-a-uuid/email",
			map[string]any{"email": "x@example.com"}))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSendInvite(t *testing.T) {
	env := newTestEnv(t)
	c := env.seedCandidate(t, func(c *db.Candidate) {
		c.JobRole = "Backend Engineer"
		c.JobSeniority = "Senior"
	})

	t.Run("to stored email", func(t *testing.T) {
		rec := env.do(jsonRequest(http.MethodPost, "/api/candidates/"+c.ID.String()+"/send-invite", nil))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decodeBody[map[string]string](t, rec)
		assert.Equal(t, "invite_sent", body["status"])
		assert.Equal(t, "sam@example.com", body["email"])
		env.drain(t)

		msg, ok := env.mail.Last()
		require.True(t, ok)
		assert.Equal(t, "sam@example.com", msg.To)
		assert.Contains(t, msg.HTML, "Backend Engineer Senior")
		assert.Contains(t, msg.HTML, "http://localhost:5173/interview/magic/"+c.MagicToken)
	})

	t.Run("to override", func(t *testing.T) {
		rec := env.do(jsonRequest(http.MethodPost, "/api/candidates/"+c.ID.String()+"/send-invite",
			map[string]string{"email": "other@example.com"}))
		require.Equal(t, http.StatusOK, rec.Code)
		env.drain(t)

		msg, _ := env.mail.Last()
		assert.Equal(t, "other@example.com", msg.To)
	})

	t.Run("unknown candidate", func(t *testing.T) {
		rec := env.do(jsonRequest(http.MethodPost, "/api/candidates/"+uuid.NewString()+"/send-invite", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad body", func(t *testing.T) {
		rec := env.do(jsonRequest(http.MethodPost, "/api/candidates/"+c.ID.String()+"/send-invite", "{"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
