package provision

import (
	"context"
	"fmt"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/user"
	"go.uber.org/zap"

	"github.com/jonathan/careerpilot/internal/logging"
)

// userCreator is the subset of the Clerk users API used here.
type userCreator interface {
	Create(ctx context.Context, params *user.CreateParams) (*clerk.User, error)
}

// ClerkProvisioner creates interview accounts as Clerk users.
type ClerkProvisioner struct {
	users  userCreator
	logger *zap.Logger
}

// NewClerkProvisioner creates a provisioner authenticated with a Clerk secret key.
func NewClerkProvisioner(secretKey string, logger *zap.Logger) *ClerkProvisioner {
	cfg := &clerk.ClientConfig{}
	cfg.Key = clerk.String(secretKey)
	return &ClerkProvisioner{
		users:  user.NewClient(cfg),
		logger: logging.OrNop(logger).Named("clerk"),
	}
}

// Provision implements Provisioner.
func (p *ClerkProvisioner) Provision(ctx context.Context, displayName string) (*Credentials, error) {
	login, password, err := newLoginAndPassword()
	if err != nil {
		return nil, err
	}

	params := &user.CreateParams{
		EmailAddresses: &[]string{login},
		Password:       clerk.String(password),
	}
	if first, last := SplitName(displayName); first != "" {
		params.FirstName = clerk.String(first)
		if last != "" {
			params.LastName = clerk.String(last)
		}
	}

	created, err := p.users.Create(ctx, params)
	if err != nil {
		p.logger.Warn("user creation failed", zap.String("login", login), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProvisioning, err)
	}

	p.logger.Debug("user created", zap.String("user_id", created.ID), zap.String("login", login))
	return &Credentials{
		ExternalID: created.ID,
		Login:      login,
		Password:   password,
	}, nil
}
