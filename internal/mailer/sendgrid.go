package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const fromName = "CareerPilot"

type sendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridTransport delivers messages through the SendGrid v3 API.
type SendGridTransport struct {
	client sendClient
	from   *mail.Email
}

// NewSendGridTransport creates a transport authenticated with apiKey that
// sends from fromEmail.
func NewSendGridTransport(apiKey, fromEmail string) *SendGridTransport {
	return &SendGridTransport{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromEmail),
	}
}

// Name implements Transport.
func (t *SendGridTransport) Name() string { return "sendgrid" }

// Send implements Transport. Any non-2xx response is reported as ErrDelivery.
func (t *SendGridTransport) Send(ctx context.Context, msg Message) error {
	to := mail.NewEmail(msg.ToName, msg.To)
	m := mail.NewSingleEmail(t.from, msg.Subject, to, msg.Text, msg.HTML)

	resp, err := t.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: sendgrid status %d: %s", ErrDelivery, resp.StatusCode, resp.Body)
	}
	return nil
}
