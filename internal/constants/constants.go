package constants

import "time"

// loop intervals
const ScanInterval = 5 * time.Minute
const PollInterval = 2 * time.Second
const SchedulerInterval = 30 * time.Second

// a registry record not refreshed by a scan within this window is evicted
const StalenessWindow = 15 * time.Minute

// network timeouts, all explicit - nothing in the engine dials unbounded
const ProbeTimeout = 500 * time.Millisecond
const DescriptionTimeout = 2 * time.Second
const ControlTimeout = 3 * time.Second
const GeolocateTimeout = 2 * time.Second
const SolarFetchTimeout = 5 * time.Second
const DiscoveryWindow = 3 * time.Second

// max in-flight reachability checks during a subnet probe
const ProbeWorkers = 100

// max in-flight device state queries during a poll cycle
const PollWorkers = 8
