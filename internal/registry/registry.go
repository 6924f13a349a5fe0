// Package registry holds the in-memory device registry, the single source of
// truth for what exists on the network right now. It is the only mutable
// state shared between the scan, poll and scheduler loops, so every
// multi-field update happens under one lock and enumerating callers get
// snapshots, never live references.
package registry

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/wheelibin/wemops/internal/models"
)

type Registry struct {
	logger *log.Logger

	mu      sync.RWMutex
	records map[string]*models.DeviceRecord
}

func New(logger *log.Logger) *Registry {
	return &Registry{
		logger:  logger,
		records: map[string]*models.DeviceRecord{},
	}
}

// Load seeds the registry from the persisted cache at startup. Cached records
// carry no handle until the poller re-resolves them.
func (r *Registry) Load(records []models.DeviceRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range records {
		record := record
		record.Handle = nil
		r.records[record.Name] = &record
	}
	r.logger.Info("Registry loaded from device cache", "devices", len(records))
}

// Upsert merges a freshly resolved handle into the registry. A new device is
// created with state 0; an existing record gets its identity fields and
// handle replaced and lastSeen refreshed, but keeps its state - the poller
// owns state, and a scan must never overwrite a more recently polled value.
func (r *Registry) Upsert(handle models.DeviceHandle, now time.Time) {
	identity := handle.Identity()

	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.records[identity.Name]
	if !exists {
		r.records[identity.Name] = &models.DeviceRecord{
			Name:     identity.Name,
			Address:  handle.Address(),
			MAC:      identity.MAC,
			Serial:   identity.Serial,
			Kind:     identity.Kind,
			State:    0,
			LastSeen: now,
			Handle:   handle,
		}
		r.logger.Info("Registered new device", "name", identity.Name, "address", handle.Address(), "kind", identity.Kind)
		return
	}

	record.Address = handle.Address()
	record.MAC = identity.MAC
	record.Serial = identity.Serial
	record.Kind = identity.Kind
	record.Handle = handle
	record.LastSeen = now
}

// UpdateState records a freshly polled state. Returns false if the device is
// no longer registered.
func (r *Registry) UpdateState(name string, state int, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.records[name]
	if !exists {
		return false
	}
	record.State = state
	record.LastSeen = now
	return true
}

// AttachHandle installs a re-resolved handle on a record that lost (or never
// had) one. Identity fields are refreshed from the handle too, since the
// re-resolution read a live description.
func (r *Registry) AttachHandle(name string, handle models.DeviceHandle, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.records[name]
	if !exists {
		return false
	}
	identity := handle.Identity()
	record.Address = handle.Address()
	record.MAC = identity.MAC
	record.Serial = identity.Serial
	record.Kind = identity.Kind
	record.Handle = handle
	record.LastSeen = now
	return true
}

// Get returns a copy of one record.
func (r *Registry) Get(name string) (models.DeviceRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.records[name]
	if !exists {
		return models.DeviceRecord{}, false
	}
	return *record, true
}

// Handle returns the live handle for a device, if it has one.
func (r *Registry) Handle(name string) (models.DeviceHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.records[name]
	if !exists || record.Handle == nil {
		return nil, false
	}
	return record.Handle, true
}

// Names returns a snapshot of the current key set, so loops never iterate a
// concurrently mutated map.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.records)
}

// Snapshot returns copies of all records.
func (r *Registry) Snapshot() []models.DeviceRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Map(lo.Values(r.records), func(record *models.DeviceRecord, _ int) models.DeviceRecord {
		return *record
	})
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// EvictStale removes every record whose lastSeen is strictly before the
// cutoff and returns the evicted names. A record exactly at the cutoff is
// retained. Only the merger calls this; the poller never deletes.
func (r *Registry) EvictStale(cutoff time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := []string{}
	for name, record := range r.records {
		if record.LastSeen.Before(cutoff) {
			delete(r.records, name)
			evicted = append(evicted, name)
		}
	}
	return evicted
}
