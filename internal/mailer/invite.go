package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// InviteSubject is the subject line of every interview invitation.
const InviteSubject = "CareerPilot: AI Interview Invite"

const defaultRecipientName = "Candidate"

var inviteTemplate = template.Must(template.New("invite").Parse(`<p>Hello {{.Name}},</p>
<p>You are invited to an <b>AI mock interview</b>.</p>
{{- if .Role}}
<p><strong>Interviewing for role:</strong> {{.Role}}</p>
{{- end}}
<p><a href="{{.URL}}">Start Interview</a></p>
<p>Temporary login details:<br>Username: {{.Login}}<br>Password: {{.Password}}</p>
<p>Best regards,<br>CareerPilot Team</p>
`))

// Invite carries everything needed to render an interview invitation.
type Invite struct {
	Email        string
	Name         string
	MagicURL     string
	Login        string
	Password     string
	JobTitle     string
	JobSeniority string
}

// MagicURL builds the passwordless session link for a magic token.
func MagicURL(frontendBase, token string) string {
	return strings.TrimRight(frontendBase, "/") + "/interview/magic/" + token
}

// ComposeInvite renders the invitation email.
func ComposeInvite(inv Invite) (Message, error) {
	if strings.TrimSpace(inv.Email) == "" {
		return Message{}, fmt.Errorf("compose invite: recipient email is empty")
	}

	name := strings.TrimSpace(inv.Name)
	if name == "" {
		name = defaultRecipientName
	}

	data := struct {
		Name     string
		Role     string
		URL      string
		Login    string
		Password string
	}{
		Name:     name,
		Role:     strings.TrimSpace(strings.TrimSpace(inv.JobTitle) + " " + strings.TrimSpace(inv.JobSeniority)),
		URL:      inv.MagicURL,
		Login:    inv.Login,
		Password: inv.Password,
	}

	var buf bytes.Buffer
	if err := inviteTemplate.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("compose invite: %w", err)
	}
	body := buf.String()

	return Message{
		To:      inv.Email,
		ToName:  name,
		Subject: InviteSubject,
		HTML:    body,
		Text:    PlainText(body),
	}, nil
}
