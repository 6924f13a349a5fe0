package repos

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
)

const initSettingSchema = `
  CREATE TABLE IF NOT EXISTS setting (
    key   TEXT PRIMARY KEY,
    value TEXT
  );
`

const (
	settingLatitude  = "latitude"
	settingLongitude = "longitude"
	settingSubnets   = "subnets"
)

// SettingsRepo is a small key-value store for values discovered at runtime
// (geolocated coordinates) or seeded from config (subnets to scan).
type SettingsRepo struct {
	logger *log.Logger
	db     *sql.DB
}

func NewSettingsRepo(logger *log.Logger, db *sql.DB) (*SettingsRepo, error) {
	if _, err := db.Exec(initSettingSchema); err != nil {
		return nil, fmt.Errorf("Error initialising settings schema: %w", err)
	}
	return &SettingsRepo{logger: logger, db: db}, nil
}

func (r *SettingsRepo) Get(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM setting WHERE key = $1", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("Error reading setting (%s): %w", key, err)
	}
	return value, true, nil
}

func (r *SettingsRepo) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO setting (key, value) VALUES ($1, $2)
     ON CONFLICT (key) DO UPDATE SET value = $2;`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("Error writing setting (%s): %w", key, err)
	}
	return nil
}

// Coordinates returns the stored location. ok=false means no location has
// been stored yet and the caller should geolocate.
func (r *SettingsRepo) Coordinates() (float64, float64, bool, error) {
	latRaw, haveLat, err := r.Get(settingLatitude)
	if err != nil {
		return 0, 0, false, err
	}
	lngRaw, haveLng, err := r.Get(settingLongitude)
	if err != nil {
		return 0, 0, false, err
	}
	if !haveLat || !haveLng {
		return 0, 0, false, nil
	}

	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("Error parsing stored latitude (%s): %w", latRaw, err)
	}
	lng, err := strconv.ParseFloat(lngRaw, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("Error parsing stored longitude (%s): %w", lngRaw, err)
	}
	return lat, lng, true, nil
}

func (r *SettingsRepo) SaveCoordinates(lat, lng float64) error {
	if err := r.Set(settingLatitude, strconv.FormatFloat(lat, 'f', -1, 64)); err != nil {
		return err
	}
	return r.Set(settingLongitude, strconv.FormatFloat(lng, 'f', -1, 64))
}

// Subnets returns the CIDR ranges to scan, stored as a csv.
func (r *SettingsRepo) Subnets() ([]string, error) {
	raw, ok, err := r.Get(settingSubnets)
	if err != nil {
		return nil, err
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	parts := lo.Map(strings.Split(raw, ","), func(s string, _ int) string { return strings.TrimSpace(s) })
	return lo.Filter(parts, func(s string, _ int) bool { return s != "" }), nil
}

func (r *SettingsRepo) SetSubnets(subnets []string) error {
	return r.Set(settingSubnets, strings.Join(subnets, ","))
}
