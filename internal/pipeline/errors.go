package pipeline

import "errors"

var (
	// ErrNoRecipient is returned when an invite has no email to go to.
	ErrNoRecipient = errors.New("email required")
	// ErrStorage wraps blob store failures.
	ErrStorage = errors.New("resume storage failed")
)
