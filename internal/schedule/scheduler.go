// Package schedule evaluates automation rules and fires each rule's action
// on its device exactly once per calendar day.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/wheelibin/wemops/internal/constants"
	"github.com/wheelibin/wemops/internal/models"
)

type ruleStore interface {
	Load() ([]models.Rule, error)
	MarkRun(id int64, date string) error
}

type deviceResolver interface {
	Handle(name string) (models.DeviceHandle, bool)
}

type solarService interface {
	Times(ctx context.Context) (models.SolarTimes, bool)
}

type Scheduler struct {
	logger   *log.Logger
	rules    ruleStore
	registry deviceResolver
	solar    solarService

	interval      time.Duration
	actionTimeout time.Duration
}

func NewScheduler(logger *log.Logger, rules ruleStore, registry deviceResolver, solar solarService, interval time.Duration) *Scheduler {
	return &Scheduler{
		logger:        logger,
		rules:         rules,
		registry:      registry,
		solar:         solar,
		interval:      interval,
		actionTimeout: constants.ControlTimeout,
	}
}

// Run is the scheduler loop. Minute-granularity matching means a rule fires
// at most once per matching minute per day; a cycle slower than a minute
// could skip one, an accepted limit of polling-based scheduling.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Scheduler starting", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler: stop signal received")
			return
		case t := <-ticker.C:
			s.RunCycle(ctx, t)
		}
	}
}

// RunCycle evaluates every rule against one observation of the clock.
func (s *Scheduler) RunCycle(ctx context.Context, now time.Time) {
	rules, err := s.rules.Load()
	if err != nil {
		s.logger.Error("Error loading rules", "err", err)
		return
	}
	if len(rules) == 0 {
		return
	}

	today := now.Format(models.DateFormat)
	weekday := now.Weekday()
	clock := now.Format(models.ClockFormat)

	// only consult the solar service when a rule actually needs it
	var solarTimes *models.SolarTimes
	needsSolar := lo.SomeBy(rules, func(r models.Rule) bool {
		return r.TriggerKind == models.TriggerSunrise || r.TriggerKind == models.TriggerSunset
	})
	if needsSolar {
		if times, ok := s.solar.Times(ctx); ok {
			solarTimes = &times
		}
	}

	for _, rule := range rules {
		if ctx.Err() != nil {
			return
		}
		// empty ActiveDays means "never fires", not "fires daily"
		if !lo.Contains(rule.ActiveDays, weekday) {
			continue
		}

		trigger, ok := TriggerTime(rule, solarTimes, now)
		if !ok {
			// solar rule with no solar times yet: retried next cycle
			continue
		}
		if trigger != clock || rule.LastRunDate == today {
			continue
		}

		s.fire(ctx, rule, today)
	}
}

// fire resolves the target device by name at fire time - not at
// rule-creation time - so a re-discovered device with a fresh handle still
// responds. A rule whose device is absent is a no-op and stays eligible for
// today; a present device marks the rule run even if the action errs.
func (s *Scheduler) fire(ctx context.Context, rule models.Rule, today string) {
	handle, ok := s.registry.Handle(rule.Device)
	if !ok {
		s.logger.Warn("Rule device not registered, will retry", "rule", rule.ID, "device", rule.Device)
		return
	}

	s.logger.Info("Executing rule", "rule", rule.ID, "device", rule.Device, "action", rule.Action)

	actionCtx, cancel := context.WithTimeout(ctx, s.actionTimeout)
	if err := invoke(actionCtx, handle, rule.Action); err != nil {
		s.logger.Error("Rule action failed", "rule", rule.ID, "device", rule.Device, "err", err)
	}
	cancel()

	if err := s.rules.MarkRun(rule.ID, today); err != nil {
		s.logger.Error("Error persisting rule run marker", "rule", rule.ID, "err", err)
	}
}

func invoke(ctx context.Context, handle models.DeviceHandle, action models.Action) error {
	switch action {
	case models.ActionOn:
		return handle.TurnOn(ctx)
	case models.ActionOff:
		return handle.TurnOff(ctx)
	case models.ActionToggle:
		return handle.Toggle(ctx)
	}
	return fmt.Errorf("unknown action %q", action)
}
