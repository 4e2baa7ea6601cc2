// Package mailertest provides an in-memory mail transport for tests.
package mailertest

import (
	"context"
	"sync"

	"github.com/jonathan/careerpilot/internal/mailer"
)

// Recorder is a mailer.Transport that keeps every message in memory.
// Err, when set, is returned from Send and the message is not recorded.
type Recorder struct {
	mu       sync.Mutex
	messages []mailer.Message
	Err      error
}

// Name implements mailer.Transport.
func (r *Recorder) Name() string { return "recorder" }

// Send implements mailer.Transport.
func (r *Recorder) Send(_ context.Context, msg mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.messages = append(r.messages, msg)
	return nil
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []mailer.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]mailer.Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Last returns the most recent message and whether one exists.
func (r *Recorder) Last() (mailer.Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return mailer.Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}
