package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// VerificationSubject is the subject line of recruiter signup codes.
const VerificationSubject = "CareerPilot: Verify your email"

var verificationTemplate = template.Must(template.New("verification").Parse(`<p>Hello {{.Name}},</p>
<p>Your CareerPilot verification code is <b>{{.Code}}</b>.</p>
<p>The code expires in {{.Expiry}}.</p>
<p>Best regards,<br>CareerPilot Team</p>
`))

// ComposeVerification renders the signup verification email.
func ComposeVerification(email, name, code string, expiry time.Duration) (Message, error) {
	if strings.TrimSpace(email) == "" {
		return Message{}, fmt.Errorf("compose verification: recipient email is empty")
	}
	if strings.TrimSpace(name) == "" {
		name = "there"
	}

	var buf bytes.Buffer
	err := verificationTemplate.Execute(&buf, map[string]string{
		"Name":   name,
		"Code":   code,
		"Expiry": expiry.Round(time.Minute).String(),
	})
	if err != nil {
		return Message{}, fmt.Errorf("compose verification: %w", err)
	}

	return Message{
		To:      email,
		ToName:  name,
		Subject: VerificationSubject,
		HTML:    buf.String(),
		Text:    PlainText(buf.String()),
	}, nil
}
