package models

import (
	"context"
	"time"
)

const (
	// DateFormat is the day marker format used for rule idempotence and
	// the solar cache key.
	DateFormat = "2006-01-02"
	// ClockFormat is the minute-granularity wall clock format used for
	// trigger matching.
	ClockFormat = "15:04"
)

type DeviceKind string

const (
	KindSwitch DeviceKind = "switch"
	KindDimmer DeviceKind = "dimmer"
)

type Action string

const (
	ActionOn     Action = "on"
	ActionOff    Action = "off"
	ActionToggle Action = "toggle"
)

type TriggerKind string

const (
	TriggerFixed   TriggerKind = "fixed"
	TriggerSunrise TriggerKind = "sunrise"
	TriggerSunset  TriggerKind = "sunset"
)

// Identity is the device description read from a device's setup endpoint.
type Identity struct {
	Name     string
	MAC      string
	Serial   string
	Firmware string
	Kind     DeviceKind
}

// DeviceHandle is an opaque control reference to one physical device.
// Handles are immutable with respect to address; when a device moves, a new
// handle is resolved and the old one is superseded, never mutated.
// All RPCs are best-effort network calls that may fail.
type DeviceHandle interface {
	Address() string
	Port() int
	Identity() Identity

	GetState(ctx context.Context, forceRefresh bool) (int, error)
	TurnOn(ctx context.Context) error
	TurnOff(ctx context.Context) error
	Toggle(ctx context.Context) error
	// SetBrightness is only supported by dimmers and errors on switches.
	SetBrightness(ctx context.Context, level int) error
	Rename(ctx context.Context, name string) error
	ResetToFactory(ctx context.Context, code string) error
}

// DeviceRecord is one registry entry. The registry owns these; callers only
// ever see copies.
type DeviceRecord struct {
	Name     string
	Address  string
	MAC      string
	Serial   string
	Kind     DeviceKind
	State    int
	LastSeen time.Time

	// Handle is nil for records reloaded from the persisted cache until the
	// poller re-resolves the device.
	Handle DeviceHandle
}

// Rule is one automation rule. The schedule store owns these; the scheduler
// mutates only LastRunDate.
type Rule struct {
	// ID is the creation timestamp (unix seconds), unique within the store.
	ID     int64
	Device string
	Action Action

	TriggerKind TriggerKind
	// Value is "HH:MM" for fixed triggers, a minute count for solar ones.
	Value      string
	OffsetSign int

	// ActiveDays empty means the rule never fires, not that it fires daily.
	ActiveDays []time.Weekday

	// LastRunDate is the idempotence marker (DateFormat), empty if the rule
	// has never fired.
	LastRunDate string
}

// SolarTimes is today's local sunrise/sunset, recomputed only when the date
// rolls over.
type SolarTimes struct {
	Date    string
	Sunrise string
	Sunset  string
}
