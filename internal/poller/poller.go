// Package poller re-queries every registered device for live state so the
// registry tracks changes made outside this process (physical buttons, other
// apps).
package poller

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/wheelibin/wemops/internal/concurrency"
	"github.com/wheelibin/wemops/internal/constants"
	"github.com/wheelibin/wemops/internal/models"
	"github.com/wheelibin/wemops/internal/registry"
)

// handleResolver re-resolves a device that lost its handle, trying the
// candidate ports against its last-known address.
type handleResolver interface {
	ResolveAny(host string) (models.DeviceHandle, error)
}

type Poller struct {
	logger   *log.Logger
	registry *registry.Registry
	resolver handleResolver

	interval    time.Duration
	callTimeout time.Duration
	now         func() time.Time
}

func New(logger *log.Logger, reg *registry.Registry, resolver handleResolver, interval time.Duration) *Poller {
	return &Poller{
		logger:      logger,
		registry:    reg,
		resolver:    resolver,
		interval:    interval,
		callTimeout: constants.ControlTimeout,
		now:         time.Now,
	}
}

// Run is the poll loop. It never deletes records - staleness eviction is the
// merger's job only.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("Poller starting", "interval", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Poller: stop signal received")
			return
		case <-ticker.C:
			p.PollOnce(ctx)
		}
	}
}

// PollOnce queries every registered device once. Each device gets its own
// short call timeout; one unreachable device never stalls the others.
func (p *Poller) PollOnce(ctx context.Context) {
	names := p.registry.Names()

	worker := concurrency.NewBoundedWorker(constants.PollWorkers, func(ctx context.Context, name string) error {
		p.pollDevice(ctx, name)
		return nil
	})
	worker.Run(ctx, names)
}

func (p *Poller) pollDevice(ctx context.Context, name string) {
	record, ok := p.registry.Get(name)
	if !ok {
		// evicted between snapshot and poll
		return
	}

	handle := record.Handle
	if handle == nil {
		// cache-loaded or gone-unreachable record: one re-resolution attempt
		// against the last-known address, then state next cycle
		if record.Address == "" {
			return
		}
		resolved, err := p.resolver.ResolveAny(record.Address)
		if err != nil {
			p.logger.Debug("Device re-resolution failed", "name", name, "address", record.Address)
			return
		}
		p.registry.AttachHandle(name, resolved, p.now())
		handle = resolved
	}

	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	state, err := handle.GetState(callCtx, true)
	if err != nil {
		// transient: retried next cycle
		p.logger.Debug("Device state query failed", "name", name, "err", err)
		return
	}
	p.registry.UpdateState(name, state, p.now())
}
