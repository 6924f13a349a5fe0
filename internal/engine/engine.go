// Package engine wires the background loops together and exposes the
// operations a front end (CLI, API, UI) would call. Everything here delegates
// to a collaborator; the engine owns lifecycle, not behaviour.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/wheelibin/wemops/internal/constants"
	"github.com/wheelibin/wemops/internal/models"
	"github.com/wheelibin/wemops/internal/poller"
	"github.com/wheelibin/wemops/internal/registry"
	"github.com/wheelibin/wemops/internal/scan"
	"github.com/wheelibin/wemops/internal/schedule"
	"github.com/wheelibin/wemops/internal/solar"
)

type ruleStore interface {
	Load() ([]models.Rule, error)
	Add(rule models.Rule) (models.Rule, error)
	Delete(id int64) error
}

type Engine struct {
	logger    *log.Logger
	registry  *registry.Registry
	scanner   *scan.Scanner
	poller    *poller.Poller
	scheduler *schedule.Scheduler
	solar     *solar.Service
	rules     ruleStore

	scanInterval time.Duration

	wg sync.WaitGroup
}

func New(
	logger *log.Logger,
	reg *registry.Registry,
	scanner *scan.Scanner,
	poller *poller.Poller,
	scheduler *schedule.Scheduler,
	solarService *solar.Service,
	rules ruleStore,
	scanInterval time.Duration,
) *Engine {
	return &Engine{
		logger:       logger,
		registry:     reg,
		scanner:      scanner,
		poller:       poller,
		scheduler:    scheduler,
		solar:        solarService,
		rules:        rules,
		scanInterval: scanInterval,
	}
}

// Run starts the scan, poll and scheduler loops and blocks until the context
// is cancelled and all loops have drained.
func (e *Engine) Run(ctx context.Context) {
	e.logger.Info("Engine starting")

	e.wg.Add(3)
	go func() {
		defer e.wg.Done()
		e.scanner.Run(ctx, e.scanInterval)
	}()
	go func() {
		defer e.wg.Done()
		e.poller.Run(ctx)
	}()
	go func() {
		defer e.wg.Done()
		e.scheduler.Run(ctx)
	}()

	<-ctx.Done()
	e.wg.Wait()
	e.logger.Info("Engine stopped")
}

// Devices returns a snapshot of the registry.
func (e *Engine) Devices() []models.DeviceRecord {
	return e.registry.Snapshot()
}

// ForceScan runs one scan cycle now, ahead of the loop's next tick. Returns
// scan.ErrScanInProgress if one is already running.
func (e *Engine) ForceScan(ctx context.Context) error {
	e.logger.Info("Forced scan requested")
	return e.scanner.RunCycle(ctx)
}

func (e *Engine) ScanStatus() string {
	return e.scanner.Status()
}

func (e *Engine) Rules() ([]models.Rule, error) {
	return e.rules.Load()
}

func (e *Engine) AddRule(rule models.Rule) (models.Rule, error) {
	return e.rules.Add(rule)
}

func (e *Engine) DeleteRule(id int64) error {
	return e.rules.Delete(id)
}

func (e *Engine) SolarTimes(ctx context.Context) (models.SolarTimes, bool) {
	return e.solar.Times(ctx)
}

// DeviceAction runs an on/off/toggle against a device by name, then
// refreshes its registry state so callers see the result immediately instead
// of after the next poll.
func (e *Engine) DeviceAction(ctx context.Context, name string, action models.Action) error {
	handle, ok := e.registry.Handle(name)
	if !ok {
		return fmt.Errorf("device %q is not registered", name)
	}

	callCtx, cancel := context.WithTimeout(ctx, constants.ControlTimeout)
	defer cancel()

	var err error
	switch action {
	case models.ActionOn:
		err = handle.TurnOn(callCtx)
	case models.ActionOff:
		err = handle.TurnOff(callCtx)
	case models.ActionToggle:
		err = handle.Toggle(callCtx)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	if err != nil {
		return err
	}

	e.refreshState(ctx, name, handle)
	return nil
}

// SetBrightness sets a dimmer's level (0-100). Switches reject this.
func (e *Engine) SetBrightness(ctx context.Context, name string, level int) error {
	handle, ok := e.registry.Handle(name)
	if !ok {
		return fmt.Errorf("device %q is not registered", name)
	}

	callCtx, cancel := context.WithTimeout(ctx, constants.ControlTimeout)
	defer cancel()

	if err := handle.SetBrightness(callCtx, level); err != nil {
		return err
	}
	e.refreshState(ctx, name, handle)
	return nil
}

// RenameDevice changes a device's friendly name on the device itself. The
// registry picks the new name up on the next scan; the old record ages out.
func (e *Engine) RenameDevice(ctx context.Context, name, newName string) error {
	handle, ok := e.registry.Handle(name)
	if !ok {
		return fmt.Errorf("device %q is not registered", name)
	}

	callCtx, cancel := context.WithTimeout(ctx, constants.ControlTimeout)
	defer cancel()
	return handle.Rename(callCtx, newName)
}

func (e *Engine) refreshState(ctx context.Context, name string, handle models.DeviceHandle) {
	callCtx, cancel := context.WithTimeout(ctx, constants.ControlTimeout)
	defer cancel()

	state, err := handle.GetState(callCtx, true)
	if err != nil {
		// next poll cycle catches it up
		e.logger.Debug("State refresh after action failed", "name", name, "err", err)
		return
	}
	e.registry.UpdateState(name, state, time.Now())
}
