package provision

import (
	"context"

	"github.com/google/uuid"
)

// LocalProvisioner issues credentials without an identity service.
// External IDs have the form "local_<uuid>".
type LocalProvisioner struct{}

// NewLocalProvisioner creates a LocalProvisioner.
func NewLocalProvisioner() *LocalProvisioner {
	return &LocalProvisioner{}
}

// Provision implements Provisioner.
func (p *LocalProvisioner) Provision(ctx context.Context, _ string) (*Credentials, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	login, password, err := newLoginAndPassword()
	if err != nil {
		return nil, err
	}
	return &Credentials{
		ExternalID: "local_" + uuid.NewString(),
		Login:      login,
		Password:   password,
	}, nil
}
