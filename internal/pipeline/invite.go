package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/careerpilot/internal/db"
	"github.com/jonathan/careerpilot/internal/events"
	"github.com/jonathan/careerpilot/internal/mailer"
)

// Invite composes the interview invitation for c, schedules its delivery
// and marks the candidate Invited. The stored magic token is reused. When
// job is nil the role stored on the candidate is used. On success c
// reflects the new state.
func (p *Pipeline) Invite(ctx context.Context, c *db.Candidate, email string, job *JobContext) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrNoRecipient
	}

	title, seniority := c.JobRole, c.JobSeniority
	if job != nil {
		title, seniority = job.Title, job.Seniority
	}

	msg, err := mailer.ComposeInvite(mailer.Invite{
		Email:        email,
		Name:         c.FullName,
		MagicURL:     mailer.MagicURL(p.frontendBaseURL, c.MagicToken),
		Login:        c.TempUsername,
		Password:     c.TempPassword,
		JobTitle:     title,
		JobSeniority: seniority,
	})
	if err != nil {
		return err
	}

	if err := p.store.MarkInviteSent(ctx, c.ID, c.MagicToken, email); err != nil {
		return fmt.Errorf("mark invite sent: %w", err)
	}
	p.mailer.Dispatch(msg)

	c.Email = email
	c.Status = db.StatusInvited
	c.InviteSent = true

	p.publish(ctx, events.New(events.CandidateInvited, c.ID.String(), map[string]any{"email": email}))
	return nil
}

// Mailer returns the dispatcher used for invites.
func (p *Pipeline) Mailer() *mailer.Dispatcher { return p.mailer }
