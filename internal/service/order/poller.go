package order

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/vendordesk/internal/config"
)

// HealthReporter receives the outcome of every scheduled refresh.
type HealthReporter interface {
	ReportRefresh(err error)
}

// Poller re-fetches the order list on a fixed interval for as long as the
// application runs.
type Poller struct {
	service  *Service
	interval time.Duration
	reporter HealthReporter
	logger   *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// PollerParams defines dependencies for constructing Poller.
type PollerParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Logger    *zap.Logger
	Service   *Service
	Reporter  HealthReporter `optional:"true"`
}

// NewPoller builds a Poller bound to the Fx lifecycle.
func NewPoller(p PollerParams) *Poller {
	poller := NewPollerWith(p.Service, p.Config.Dashboard.PollInterval, p.Reporter, p.Logger)
	p.Lifecycle.Append(fx.Hook{
		OnStart: poller.Start,
		OnStop:  poller.Stop,
	})
	return poller
}

// NewPollerWith builds an unmanaged Poller. reporter may be nil.
func NewPollerWith(service *Service, interval time.Duration, reporter HealthReporter, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 20 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{service: service, interval: interval, reporter: reporter, logger: logger}
}

// Start fetches once immediately and then on every tick.
func (p *Poller) Start(context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	p.logger.Info("order poller started", zap.Duration("interval", p.interval))
	go p.run(ctx)
	return nil
}

// Stop halts polling and waits for an in-flight refresh to return.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	select {
	case <-p.done:
		p.logger.Info("order poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	err := p.service.Refresh(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		p.logger.Debug("scheduled refresh failed", zap.Error(err))
	}
	if p.reporter != nil {
		p.reporter.ReportRefresh(err)
	}
}
