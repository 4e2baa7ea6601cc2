package mailer

import (
	"context"

	"go.uber.org/zap"
)

// LogTransport writes composed messages to the structured logger instead of
// delivering them. It is used when no mail provider is configured.
type LogTransport struct {
	logger *zap.Logger
}

// NewLogTransport returns a transport that logs under the "dev-email" name.
func NewLogTransport(logger *zap.Logger) *LogTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogTransport{logger: logger.Named("dev-email")}
}

// Name implements Transport.
func (t *LogTransport) Name() string { return "log" }

// Send implements Transport.
func (t *LogTransport) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.logger.Info("email not sent, no mail provider configured",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Text),
	)
	return nil
}
