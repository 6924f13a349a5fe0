package scan

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/wheelibin/wemops/internal/models"
	"github.com/wheelibin/wemops/internal/registry"
)

// ErrScanInProgress is returned when a scan cycle is requested while one is
// already running.
var ErrScanInProgress = errors.New("scan already in progress")

// DiscoveryProvider is the one-shot multicast discovery collaborator.
type DiscoveryProvider interface {
	Discover(ctx context.Context) ([]models.DeviceHandle, error)
}

type settingsStore interface {
	Subnets() ([]string, error)
}

type deviceCache interface {
	SaveSnapshot(records []models.DeviceRecord) error
}

const (
	StatusIdle     = "idle"
	StatusScanning = "scanning"
	StatusError    = "error"
)

// Scanner runs the periodic scan cycle: multicast discovery plus subnet
// probe, merged into the registry in one pass, then a cache snapshot.
type Scanner struct {
	logger    *log.Logger
	discovery DiscoveryProvider
	prober    *Prober
	merger    *Merger
	registry  *registry.Registry
	settings  settingsStore
	cache     deviceCache

	mu       sync.Mutex
	scanning bool
	status   string
}

func NewScanner(
	logger *log.Logger,
	discovery DiscoveryProvider,
	prober *Prober,
	merger *Merger,
	reg *registry.Registry,
	settings settingsStore,
	cache deviceCache,
) *Scanner {
	return &Scanner{
		logger:    logger,
		discovery: discovery,
		prober:    prober,
		merger:    merger,
		registry:  reg,
		settings:  settings,
		cache:     cache,
		status:    StatusIdle,
	}
}

func (s *Scanner) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// RunCycle performs one full scan pass. At most one pass runs at a time;
// concurrent requests get ErrScanInProgress.
func (s *Scanner) RunCycle(ctx context.Context) error {
	s.mu.Lock()
	if s.scanning {
		s.mu.Unlock()
		return ErrScanInProgress
	}
	s.scanning = true
	s.status = StatusScanning
	s.mu.Unlock()

	// degraded means the cycle completed but some part of it failed; the
	// status reflects it until the next cycle overwrites it
	degraded := false

	defer func() {
		s.mu.Lock()
		s.scanning = false
		if degraded {
			s.status = StatusError
		} else {
			s.status = StatusIdle
		}
		s.mu.Unlock()
	}()

	found := []models.DeviceHandle{}

	discovered, err := s.discovery.Discover(ctx)
	if err != nil {
		// transient, the subnet probe below can still find everything
		s.logger.Error("Multicast discovery failed", "err", err)
		degraded = true
	}
	found = append(found, discovered...)

	subnets, err := s.settings.Subnets()
	if err != nil {
		s.logger.Error("Error reading subnets from settings", "err", err)
		degraded = true
	}
	if len(subnets) > 0 {
		found = append(found, s.prober.Probe(ctx, subnets)...)
	}

	// one merge pass over both sources, eviction cutoff computed after it
	s.merger.Merge(found)

	if err := s.cache.SaveSnapshot(s.registry.Snapshot()); err != nil {
		s.logger.Error("Error persisting device cache", "err", err)
		degraded = true
	}

	s.logger.Info("Scan complete", "found", len(found), "registered", s.registry.Len())
	return nil
}

// Run is the scan loop. The first cycle starts immediately.
func (s *Scanner) Run(ctx context.Context, interval time.Duration) {
	s.logger.Info("Scanner starting", "interval", interval)

	if err := s.RunCycle(ctx); err != nil && !errors.Is(err, ErrScanInProgress) {
		s.logger.Error("Scan cycle failed", "err", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scanner: stop signal received")
			return
		case <-ticker.C:
			if err := s.RunCycle(ctx); err != nil && !errors.Is(err, ErrScanInProgress) {
				s.logger.Error("Scan cycle failed", "err", err)
			}
		}
	}
}
