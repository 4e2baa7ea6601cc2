package mailer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/careerpilot/internal/metrics"
)

// DefaultSendTimeout bounds a single background delivery.
const DefaultSendTimeout = 30 * time.Second

// Dispatcher hands messages to a transport on background goroutines.
// Failures are logged and never retried; in-flight sends are tracked only so
// shutdown can drain them.
type Dispatcher struct {
	transport Transport
	logger    *zap.Logger
	metrics   *metrics.Metrics
	timeout   time.Duration

	wg sync.WaitGroup
}

// NewDispatcher creates a dispatcher. A nil transport falls back to LogTransport.
func NewDispatcher(transport Transport, logger *zap.Logger, m *metrics.Metrics) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if transport == nil {
		transport = NewLogTransport(logger)
	}
	return &Dispatcher{
		transport: transport,
		logger:    logger.Named("mailer"),
		metrics:   m,
		timeout:   DefaultSendTimeout,
	}
}

// Transport returns the configured transport.
func (d *Dispatcher) Transport() Transport { return d.transport }

// Dispatch schedules delivery and returns immediately. The send runs on a
// fresh background context so it outlives the triggering request.
func (d *Dispatcher) Dispatch(msg Message) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		_ = d.send(ctx, msg)
	}()
}

// Send delivers synchronously.
func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	return d.send(ctx, msg)
}

func (d *Dispatcher) send(ctx context.Context, msg Message) error {
	start := time.Now()
	err := d.transport.Send(ctx, msg)
	d.metrics.InviteDelivered(err)
	if err != nil {
		d.logger.Error("email delivery failed",
			zap.String("transport", d.transport.Name()),
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
		return err
	}
	d.logger.Debug("email delivered",
		zap.String("transport", d.transport.Name()),
		zap.String("to", msg.To),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Wait blocks until every dispatched send has finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
