package scan

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/wheelibin/wemops/internal/models"
	"github.com/wheelibin/wemops/internal/registry"
)

// Merger folds a scan pass's findings into the registry and evicts records
// the pass did not refresh within the staleness window.
type Merger struct {
	logger   *log.Logger
	registry *registry.Registry
	window   time.Duration

	now func() time.Time
}

func NewMerger(logger *log.Logger, reg *registry.Registry, window time.Duration) *Merger {
	return &Merger{
		logger:   logger,
		registry: reg,
		window:   window,
		now:      time.Now,
	}
}

// Merge upserts every found handle, then evicts. The eviction cutoff is
// computed after all upserts complete: a device re-confirmed during a slow
// scan must never be evicted by a cutoff computed before that scan began.
func (m *Merger) Merge(found []models.DeviceHandle) {
	for _, handle := range found {
		m.registry.Upsert(handle, m.now())
	}

	cutoff := m.now().Add(-m.window)
	evicted := m.registry.EvictStale(cutoff)
	for _, name := range evicted {
		m.logger.Info("Evicted stale device", "name", name, "window", m.window)
	}
}
