package schedule

import (
	"strconv"
	"strings"
	"time"

	"github.com/wheelibin/wemops/internal/models"
)

// TriggerTime computes a rule's HH:MM trigger for the day containing
// baseDate. ok=false means the rule has no trigger this cycle: a solar rule
// without solar times (retry next cycle) or an unparseable value (skip).
//
// Solar offsets are applied on a full date-time and the clock re-extracted,
// so an offset crossing midnight wraps correctly - raw minute-of-day
// subtraction would go negative for sunrise 00:10 minus 30 minutes.
func TriggerTime(rule models.Rule, solar *models.SolarTimes, baseDate time.Time) (string, bool) {
	switch rule.TriggerKind {
	case models.TriggerFixed:
		parsed, err := parseClock(rule.Value)
		if err != nil {
			return "", false
		}
		// re-format rather than echoing the value: "8:00" parses fine but
		// would never string-match the zero-padded clock
		return parsed.Format(models.ClockFormat), true

	case models.TriggerSunrise, models.TriggerSunset:
		if solar == nil {
			return "", false
		}
		base := solar.Sunrise
		if rule.TriggerKind == models.TriggerSunset {
			base = solar.Sunset
		}
		baseTime, err := timeOnDate(base, baseDate)
		if err != nil {
			return "", false
		}
		minutes, err := strconv.Atoi(strings.TrimSpace(rule.Value))
		if err != nil {
			return "", false
		}
		trigger := baseTime.Add(time.Duration(rule.OffsetSign*minutes) * time.Minute)
		return trigger.Format(models.ClockFormat), true
	}

	return "", false
}

// timeOnDate builds a full timestamp from an "HH:MM" string and a base date,
// in the base date's location.
func timeOnDate(clock string, baseDate time.Time) (time.Time, error) {
	parsed, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(
		baseDate.Year(), baseDate.Month(), baseDate.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0,
		baseDate.Location(),
	), nil
}

func parseClock(clock string) (time.Time, error) {
	return time.Parse(models.ClockFormat, strings.TrimSpace(clock))
}
