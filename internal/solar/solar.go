// Package solar computes today's local sunrise and sunset for the configured
// location, at most once per calendar day.
package solar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nathan-osman/go-sunrise"
	"github.com/wheelibin/wemops/internal/constants"
	"github.com/wheelibin/wemops/internal/models"
)

const (
	defaultGeolocateURL = "https://ipinfo.io/json"
	defaultSolarURL     = "https://api.sunrise-sunset.org/json"
)

type settingsStore interface {
	Coordinates() (lat float64, lng float64, ok bool, err error)
	SaveCoordinates(lat float64, lng float64) error
}

// Service caches a single SolarTimes value keyed by local date. Times never
// returns an error: on any failure the previous cached value is served if
// present, so the scheduler degrades gracefully instead of failing.
type Service struct {
	logger   *log.Logger
	settings settingsStore

	client       *http.Client
	geolocateURL string
	solarURL     string
	now          func() time.Time

	mu         sync.Mutex
	cached     models.SolarTimes
	haveCached bool
}

func New(logger *log.Logger, settings settingsStore) *Service {
	return &Service{
		logger:       logger,
		settings:     settings,
		client:       &http.Client{Timeout: constants.SolarFetchTimeout},
		geolocateURL: defaultGeolocateURL,
		solarURL:     defaultSolarURL,
		now:          time.Now,
	}
}

// Times returns today's solar times, or ok=false when none can be computed.
func (s *Service) Times(ctx context.Context) (models.SolarTimes, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now().Format(models.DateFormat)
	if s.haveCached && s.cached.Date == today {
		return s.cached, true
	}

	lat, lng, ok := s.coordinates(ctx)
	if !ok {
		// yesterday's value beats nothing
		return s.cached, s.haveCached
	}

	times, err := s.fetch(ctx, lat, lng, today)
	if err != nil {
		s.logger.Warn("Solar fetch failed, computing locally", "err", err)
		times = s.computeLocal(lat, lng, today)
	}

	s.cached = times
	s.haveCached = true
	s.logger.Info("Calculated local sunrise and sunset", "sunrise", times.Sunrise, "sunset", times.Sunset)
	return s.cached, true
}

// coordinates resolves lat/lng from the settings store, falling back to a
// one-shot geolocation lookup whose result is persisted so it is never
// repeated.
func (s *Service) coordinates(ctx context.Context) (float64, float64, bool) {
	lat, lng, ok, err := s.settings.Coordinates()
	if err != nil {
		s.logger.Error("Error reading coordinates from settings", "err", err)
		return 0, 0, false
	}
	if ok {
		return lat, lng, true
	}

	lat, lng, err = s.geolocate(ctx)
	if err != nil {
		s.logger.Warn("Geolocation lookup failed", "err", err)
		return 0, 0, false
	}
	if err := s.settings.SaveCoordinates(lat, lng); err != nil {
		// lookup gets repeated next time, still usable today
		s.logger.Error("Error persisting coordinates", "err", err)
	}
	return lat, lng, true
}

type geolocateResponse struct {
	Loc string `json:"loc"`
}

func (s *Service) geolocate(ctx context.Context) (float64, float64, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.GeolocateTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.geolocateURL, nil)
	if err != nil {
		return 0, 0, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("error calling geolocation service: %w", err)
	}
	defer resp.Body.Close()

	parsed := geolocateResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, 0, fmt.Errorf("error parsing geolocation response: %w", err)
	}

	parts := strings.Split(parsed.Loc, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unexpected geolocation loc %q", parsed.Loc)
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLat != nil || errLng != nil {
		return 0, 0, fmt.Errorf("unparseable geolocation loc %q", parsed.Loc)
	}
	return lat, lng, nil
}

type solarResponse struct {
	Results struct {
		Sunrise string `json:"sunrise"`
		Sunset  string `json:"sunset"`
	} `json:"results"`
	Status string `json:"status"`
}

// fetch reads today's UTC sunrise/sunset from the solar API and converts to
// local HH:MM.
func (s *Service) fetch(ctx context.Context, lat, lng float64, today string) (models.SolarTimes, error) {
	url := fmt.Sprintf("%s?lat=%f&lng=%f&formatted=0", s.solarURL, lat, lng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.SolarTimes{}, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return models.SolarTimes{}, fmt.Errorf("error calling solar service: %w", err)
	}
	defer resp.Body.Close()

	parsed := solarResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return models.SolarTimes{}, fmt.Errorf("error parsing solar response: %w", err)
	}
	if parsed.Status != "OK" {
		return models.SolarTimes{}, fmt.Errorf("solar service returned status %q", parsed.Status)
	}

	location := s.now().Location()
	sunriseLocal, err := toLocalClock(parsed.Results.Sunrise, location)
	if err != nil {
		return models.SolarTimes{}, err
	}
	sunsetLocal, err := toLocalClock(parsed.Results.Sunset, location)
	if err != nil {
		return models.SolarTimes{}, err
	}

	return models.SolarTimes{Date: today, Sunrise: sunriseLocal, Sunset: sunsetLocal}, nil
}

func toLocalClock(isoUTC string, location *time.Location) (string, error) {
	parsed, err := time.Parse(time.RFC3339, isoUTC)
	if err != nil {
		return "", fmt.Errorf("unparseable solar timestamp %q: %w", isoUTC, err)
	}
	return parsed.In(location).Format(models.ClockFormat), nil
}

// computeLocal is the offline fallback: the same astronomical calculation,
// no network involved.
func (s *Service) computeLocal(lat, lng float64, today string) models.SolarTimes {
	now := s.now()
	rise, set := sunrise.SunriseSunset(lat, lng, now.Year(), now.Month(), now.Day())
	return models.SolarTimes{
		Date:    today,
		Sunrise: rise.In(now.Location()).Format(models.ClockFormat),
		Sunset:  set.In(now.Location()).Format(models.ClockFormat),
	}
}
