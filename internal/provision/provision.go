// Package provision creates the disposable identity a candidate uses to
// sign in to the interview session.
package provision

import (
	"context"
	"errors"
	"strings"

	"github.com/jonathan/careerpilot/internal/randutil"
)

// LoginDomain is the mailbox domain of generated logins. It never receives mail.
const LoginDomain = "placeholder.ai"

const (
	loginLength    = 10
	passwordLength = 12
)

// ErrProvisioning wraps failures of the external identity service.
var ErrProvisioning = errors.New("identity provisioning failed")

// Credentials identify a provisioned interview account.
type Credentials struct {
	ExternalID string
	Login      string
	Password   string
}

// Provisioner creates interview accounts.
type Provisioner interface {
	// Provision creates an account for the optional display name.
	Provision(ctx context.Context, displayName string) (*Credentials, error)
}

// NewLogin returns a random login address such as "k3x9q0abcd@placeholder.ai".
func NewLogin() (string, error) {
	local, err := randutil.String(loginLength, randutil.LowerAlphanumeric)
	if err != nil {
		return "", err
	}
	return local + "@" + LoginDomain, nil
}

// NewPassword returns a random 12-character alphanumeric password.
func NewPassword() (string, error) {
	return randutil.String(passwordLength, randutil.Alphanumeric)
}

// SplitName splits a display name into first name and the remaining last name.
func SplitName(displayName string) (first, last string) {
	fields := strings.Fields(displayName)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

func newLoginAndPassword() (string, string, error) {
	login, err := NewLogin()
	if err != nil {
		return "", "", err
	}
	password, err := NewPassword()
	if err != nil {
		return "", "", err
	}
	return login, password, nil
}
