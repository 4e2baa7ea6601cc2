package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/careerpilot/internal/db"
	"github.com/jonathan/careerpilot/internal/db/dbtest"
	"github.com/jonathan/careerpilot/internal/events"
	"github.com/jonathan/careerpilot/internal/mailer"
	"github.com/jonathan/careerpilot/internal/mailer/mailertest"
	"github.com/jonathan/careerpilot/internal/parsing"
	"github.com/jonathan/careerpilot/internal/provision"
	"github.com/jonathan/careerpilot/internal/storage"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// statusAtCreate records the status each candidate was inserted with.
type statusAtCreate struct {
	*dbtest.Memory
	mu       sync.Mutex
	statuses map[uuid.UUID]string
}

func (s *statusAtCreate) CreateCandidate(ctx context.Context, c *db.Candidate) error {
	if err := s.Memory.CreateCandidate(ctx, c); err != nil {
		return err
	}
	s.mu.Lock()
	s.statuses[c.ID] = c.Status
	s.mu.Unlock()
	return nil
}

type failingProvisioner struct {
	failFor string
	inner   provision.Provisioner
}

func (f *failingProvisioner) Provision(ctx context.Context, name string) (*provision.Credentials, error) {
	if name == f.failFor {
		return nil, fmt.Errorf("%w: clerk unavailable", provision.ErrProvisioning)
	}
	return f.inner.Provision(ctx, name)
}

type harness struct {
	pipeline *Pipeline
	store    *statusAtCreate
	mail     *mailertest.Recorder
	events   *recordingPublisher
}

func newHarness(t *testing.T, prov provision.Provisioner) *harness {
	t.Helper()
	blobs, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	if prov == nil {
		prov = provision.NewLocalProvisioner()
	}

	h := &harness{
		store:  &statusAtCreate{Memory: dbtest.NewMemory(), statuses: map[uuid.UUID]string{}},
		mail:   &mailertest.Recorder{},
		events: &recordingPublisher{},
	}
	h.pipeline = New(Deps{
		Store:           h.store,
		Blobs:           blobs,
		Provisioner:     prov,
		Mailer:          mailer.NewDispatcher(h.mail, nil, nil),
		Events:          h.events,
		FrontendBaseURL: "http://localhost:5173/",
		Concurrency:     2,
	})
	return h
}

func (h *harness) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.pipeline.Mailer().Wait(ctx))
}

func TestProcessDocument_EndToEnd(t *testing.T) {
	h := newHarness(t, nil)
	doc := Document{
		Filename: "jane.txt",
		Data:     []byte("Jane Doe\njane.doe@gmail.com\nSkills\nPython, React, AWS"),
	}

	c, err := h.pipeline.ProcessDocument(context.Background(), doc, nil)
	require.NoError(t, err)
	h.drain(t)

	assert.Equal(t, "Jane Doe", c.FullName)
	assert.Equal(t, db.StringArray{"Python", "React", "AWS"}, c.Skills)
	assert.Equal(t, parsing.DomainSoftware, c.Domain)
	assert.Equal(t, "jane.doe@gmail.com", c.Email)
	assert.Len(t, c.MagicToken, MagicTokenLength)
	assert.True(t, strings.HasSuffix(c.TempUsername, "@"+provision.LoginDomain))
	assert.True(t, strings.HasPrefix(c.ExternalUserID, "local_"))
	assert.True(t, strings.HasSuffix(c.ResumeFilename, ".txt"))

	assert.Equal(t, db.StatusUploaded, h.store.statuses[c.ID])
	stored, err := h.store.GetCandidate(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, db.StatusInvited, stored.Status)
	assert.True(t, stored.InviteSent)

	msg, ok := h.mail.Last()
	require.True(t, ok)
	assert.Equal(t, "jane.doe@gmail.com", msg.To)
	assert.Equal(t, mailer.InviteSubject, msg.Subject)
	assert.Contains(t, msg.HTML, "http://localhost:5173/interview/magic/"+c.MagicToken)
	assert.Contains(t, msg.HTML, c.TempUsername)

	assert.Equal(t, []string{events.CandidateCreated, events.CandidateInvited}, h.events.types())
}

func TestProcessDocument_PlaceholderEmail(t *testing.T) {
	h := newHarness(t, nil)
	c, err := h.pipeline.ProcessDocument(context.Background(), Document{
		Filename: "anon.txt",
		Data:     []byte("Some Person\nno contact details here"),
	}, nil)
	require.NoError(t, err)
	h.drain(t)

	assert.True(t, strings.HasSuffix(c.Email, "@"+provision.LoginDomain))
	assert.Len(t, c.Email, placeholderLocalLength+1+len(provision.LoginDomain))
	assert.NotEqual(t, PlaceholderEmail(), PlaceholderEmail())
}

func TestProcessDocument_EmailResolvedOnCleanedText(t *testing.T) {
	h := newHarness(t, nil)
	c, err := h.pipeline.ProcessDocument(context.Background(), Document{
		Filename: "zw.txt",
		Data:     []byte("Jane Doe\njane.\u200bdoe@gmail.com"),
	}, nil)
	require.NoError(t, err)
	h.drain(t)

	assert.Equal(t, "jane.doe@gmail.com", c.Email)
}

func TestProcessDocument_UnreadableDocumentStillCreates(t *testing.T) {
	h := newHarness(t, nil)
	c, err := h.pipeline.ProcessDocument(context.Background(), Document{
		Filename: "broken.pdf",
		Data:     []byte("%PDF-1.4 garbage"),
	}, nil)
	require.NoError(t, err)
	h.drain(t)

	assert.Equal(t, parsing.UnknownName, c.FullName)
	assert.Equal(t, parsing.DomainOther, c.Domain)
	assert.Empty(t, c.Skills)
}

func TestProcessDocument_SkillsCapped(t *testing.T) {
	var skills []string
	for i := 0; i < 30; i++ {
		skills = append(skills, fmt.Sprintf("skill%d", i))
	}
	h := newHarness(t, nil)
	c, err := h.pipeline.ProcessDocument(context.Background(), Document{
		Filename: "many.txt",
		Data:     []byte("Sam Smith\nsam@smith.dev\nSkills\n" + strings.Join(skills, ", ")),
	}, nil)
	require.NoError(t, err)
	h.drain(t)

	require.Len(t, c.Skills, MaxSkills)
	assert.Equal(t, "skill0", c.Skills[0])
	assert.Equal(t, "skill19", c.Skills[19])
}

func TestProcessDocument_JobContext(t *testing.T) {
	h := newHarness(t, nil)
	job := &JobContext{ID: uuid.New(), Title: "Backend Engineer", Seniority: "Senior"}

	c, err := h.pipeline.ProcessDocument(context.Background(), Document{
		Filename: "cv.txt",
		Data:     []byte("Jane Doe\njane@doe.dev"),
	}, job)
	require.NoError(t, err)
	h.drain(t)

	require.NotNil(t, c.JobID)
	assert.Equal(t, job.ID, *c.JobID)
	assert.Equal(t, "Backend Engineer", c.JobRole)

	msg, ok := h.mail.Last()
	require.True(t, ok)
	assert.Contains(t, msg.HTML, "Interviewing for role:</strong> Backend Engineer Senior")
}

func TestProcessBatch_FailureIsolated(t *testing.T) {
	h := newHarness(t, &failingProvisioner{failFor: "Fail Me", inner: provision.NewLocalProvisioner()})

	docs := []Document{
		{Filename: "a.txt", Data: []byte("Alice Adams\nalice@a.dev")},
		{Filename: "b.txt", Data: []byte("Fail Me\nfail@b.dev")},
		{Filename: "c.txt", Data: []byte("Carol Clark\ncarol@c.dev")},
	}
	result := h.pipeline.ProcessBatch(context.Background(), docs, nil)
	h.drain(t)

	require.Len(t, result.Created, 2)
	assert.Equal(t, "a.txt", result.Created[0].Filename)
	assert.Equal(t, "alice@a.dev", result.Created[0].Email)
	assert.Equal(t, "c.txt", result.Created[1].Filename)

	require.Len(t, result.Failed, 1)
	assert.Equal(t, "b.txt", result.Failed[0].Filename)
	assert.Contains(t, result.Failed[0].Error, "identity provisioning failed")

	all, err := h.store.ListCandidates(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Len(t, h.mail.Messages(), 2)
}

func TestProcessBatch_StoreFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.store.Err = errors.New("db down")

	result := h.pipeline.ProcessBatch(context.Background(), []Document{
		{Filename: "a.txt", Data: []byte("Alice Adams\nalice@a.dev")},
	}, nil)
	assert.Empty(t, result.Created)
	require.Len(t, result.Failed, 1)
	assert.Contains(t, result.Failed[0].Error, "db down")
}

func TestProcessBatch_Empty(t *testing.T) {
	h := newHarness(t, nil)
	result := h.pipeline.ProcessBatch(context.Background(), nil, nil)
	assert.NotNil(t, result.Created)
	assert.NotNil(t, result.Failed)
}
