// Package pipeline turns uploaded resumes into invited candidates.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/careerpilot/internal/db"
	"github.com/jonathan/careerpilot/internal/events"
	"github.com/jonathan/careerpilot/internal/ingestion"
	"github.com/jonathan/careerpilot/internal/mailer"
	"github.com/jonathan/careerpilot/internal/metrics"
	"github.com/jonathan/careerpilot/internal/parsing"
	"github.com/jonathan/careerpilot/internal/provision"
	"github.com/jonathan/careerpilot/internal/randutil"
	"github.com/jonathan/careerpilot/internal/storage"
)

const (
	// MaxSkills caps the skills stored on a candidate.
	MaxSkills = 20
	// MagicTokenLength is the length of the passwordless session token.
	MagicTokenLength = 32
	// DefaultConcurrency bounds parallel document processing in a batch.
	DefaultConcurrency = 4

	placeholderLocalLength = 8
)

// Document is one uploaded file.
type Document struct {
	Filename string
	Data     []byte
}

// JobContext ties uploaded candidates to a job posting.
type JobContext struct {
	ID        uuid.UUID
	Title     string
	Seniority string
}

// Created reports a candidate created from a document.
type Created struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Filename string `json:"filename"`
}

// Failed reports a document that could not be turned into a candidate.
type Failed struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// BatchResult lists per-document outcomes in upload order.
type BatchResult struct {
	Created []Created `json:"created"`
	Failed  []Failed  `json:"failed"`
}

// Deps are the collaborators of a Pipeline.
type Deps struct {
	Store       db.Store
	Blobs       storage.Store
	Provisioner provision.Provisioner
	Mailer      *mailer.Dispatcher
	Events      events.Publisher
	Metrics     *metrics.Metrics
	Logger      *zap.Logger

	FrontendBaseURL string
	Concurrency     int
}

// Pipeline runs resume intake and invitations.
type Pipeline struct {
	store       db.Store
	blobs       storage.Store
	provisioner provision.Provisioner
	mailer      *mailer.Dispatcher
	events      events.Publisher
	metrics     *metrics.Metrics
	logger      *zap.Logger

	frontendBaseURL string
	concurrency     int
}

// New builds a Pipeline. Store, Blobs and Provisioner are required.
func New(d Deps) *Pipeline {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ev := d.Events
	if ev == nil {
		ev = events.Nop{}
	}
	dispatcher := d.Mailer
	if dispatcher == nil {
		dispatcher = mailer.NewDispatcher(nil, logger, d.Metrics)
	}
	concurrency := d.Concurrency
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Pipeline{
		store:           d.Store,
		blobs:           d.Blobs,
		provisioner:     d.Provisioner,
		mailer:          dispatcher,
		events:          ev,
		metrics:         d.Metrics,
		logger:          logger.Named("pipeline"),
		frontendBaseURL: d.FrontendBaseURL,
		concurrency:     concurrency,
	}
}

// PlaceholderEmail returns a unique non-deliverable address used when a
// resume contains no usable email.
func PlaceholderEmail() string {
	return randutil.MustString(placeholderLocalLength, randutil.Alphanumeric) + "@" + provision.LoginDomain
}

// ProcessBatch processes every document independently with bounded
// concurrency. A failing document never cancels its siblings.
func (p *Pipeline) ProcessBatch(ctx context.Context, docs []Document, job *JobContext) BatchResult {
	p.metrics.UploadBatch(len(docs))

	type outcome struct {
		candidate *db.Candidate
		err       error
	}
	outcomes := make([]outcome, len(docs))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, doc := range docs {
		g.Go(func() error {
			c, err := p.ProcessDocument(ctx, doc, job)
			outcomes[i] = outcome{candidate: c, err: err}
			return nil
		})
	}
	_ = g.Wait()

	result := BatchResult{Created: []Created{}, Failed: []Failed{}}
	for i, o := range outcomes {
		if o.err != nil {
			p.metrics.ResumeProcessed("failed")
			result.Failed = append(result.Failed, Failed{Filename: docs[i].Filename, Error: o.err.Error()})
			continue
		}
		p.metrics.ResumeProcessed("created")
		result.Created = append(result.Created, Created{
			ID:       o.candidate.ID.String(),
			Email:    o.candidate.Email,
			Filename: docs[i].Filename,
		})
	}
	return result
}

// ProcessDocument stores, parses and provisions one resume, creates the
// candidate record and schedules the invite. Invite scheduling failures are
// logged; the candidate is still returned.
func (p *Pipeline) ProcessDocument(ctx context.Context, doc Document, job *JobContext) (*db.Candidate, error) {
	start := time.Now()
	logger := p.logger.With(zap.String("filename", doc.Filename))

	blob, err := p.blobs.Save(ctx, doc.Filename, bytes.NewReader(doc.Data))
	if err != nil {
		logger.Error("failed to store resume", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	text := ingestion.ExtractText(doc.Filename, doc.Data)
	profile := parsing.ParseResume(text)
	domain := parsing.DetectDomain(profile.Skills)

	email, ok := parsing.ResolveEmail(text)
	if !ok {
		email = PlaceholderEmail()
		logger.Info("no email found in resume, using placeholder", zap.String("email", email))
	}

	displayName := profile.Name
	if displayName == parsing.UnknownName {
		displayName = ""
	}
	creds, err := p.provisioner.Provision(ctx, displayName)
	if err != nil {
		logger.Error("failed to provision interview account", zap.Error(err))
		return nil, err
	}

	token, err := randutil.String(MagicTokenLength, randutil.Alphanumeric)
	if err != nil {
		return nil, fmt.Errorf("generate magic token: %w", err)
	}

	skills := profile.Skills
	if len(skills) > MaxSkills {
		skills = skills[:MaxSkills]
	}

	c := &db.Candidate{
		Email:          email,
		FullName:       profile.Name,
		Domain:         domain,
		Skills:         db.StringArray(skills),
		Status:         db.StatusUploaded,
		ResumeFilename: blob.Filename,
		ResumePath:     blob.Location,
		TempUsername:   creds.Login,
		TempPassword:   creds.Password,
		ExternalUserID: creds.ExternalID,
		MagicToken:     token,
	}
	if job != nil {
		jobID := job.ID
		c.JobID = &jobID
		c.JobRole = job.Title
		c.JobSeniority = job.Seniority
	}

	if err := p.store.CreateCandidate(ctx, c); err != nil {
		logger.Error("failed to create candidate", zap.Error(err))
		return nil, fmt.Errorf("create candidate: %w", err)
	}
	p.publish(ctx, events.New(events.CandidateCreated, c.ID.String(), map[string]any{
		"email":  c.Email,
		"domain": c.Domain,
	}))

	if err := p.Invite(ctx, c, c.Email, job); err != nil {
		logger.Error("failed to schedule invite", zap.String("candidate_id", c.ID.String()), zap.Error(err))
	}

	logger.Info("candidate created",
		zap.String("candidate_id", c.ID.String()),
		zap.String("domain", c.Domain),
		zap.Int("skills", len(c.Skills)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return c, nil
}

func (p *Pipeline) publish(ctx context.Context, e events.Event) {
	if err := p.events.Publish(ctx, e); err != nil {
		p.logger.Warn("lifecycle event dropped", zap.String("type", e.Type), zap.Error(err))
	}
}
