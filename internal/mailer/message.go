// Package mailer composes candidate and recruiter emails and delivers them
// through a pluggable transport.
package mailer

import (
	"context"
	"errors"
)

// ErrDelivery is returned by transports when the provider rejects a message.
var ErrDelivery = errors.New("mail delivery failed")

// Message is a fully composed email.
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// Transport delivers composed messages.
type Transport interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}
