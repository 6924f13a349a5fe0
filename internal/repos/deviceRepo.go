package repos

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/wheelibin/wemops/internal/models"
)

const initDeviceSchema = `
  CREATE TABLE IF NOT EXISTS device (
    name      TEXT PRIMARY KEY,
    address   TEXT,
    mac       TEXT,
    serial    TEXT,
    kind      TEXT,
    state     INTEGER,
    last_seen TIMESTAMP
  );
`

// DeviceRepo is the persisted device cache. It lets a restarted daemon show
// known devices immediately; handles are re-resolved by the poller.
type DeviceRepo struct {
	logger *log.Logger
	db     *sql.DB
}

func NewDeviceRepo(logger *log.Logger, db *sql.DB) (*DeviceRepo, error) {
	if _, err := db.Exec(initDeviceSchema); err != nil {
		return nil, fmt.Errorf("Error initialising device schema: %w", err)
	}
	return &DeviceRepo{logger: logger, db: db}, nil
}

// SaveSnapshot rewrites the cache from a registry snapshot.
func (r *DeviceRepo) SaveSnapshot(records []models.DeviceRecord) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("Error saving device cache: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM device"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("Error saving device cache: %w", err)
	}
	for _, record := range records {
		_, err := tx.Exec(
			`INSERT INTO device (name, address, mac, serial, kind, state, last_seen)
     VALUES ($1, $2, $3, $4, $5, $6, $7);`,
			record.Name,
			record.Address,
			record.MAC,
			record.Serial,
			string(record.Kind),
			record.State,
			record.LastSeen,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("Error caching device (%s): %w", record.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Error saving device cache: %w", err)
	}
	return nil
}

// Load reads the cached records. Corrupt rows are logged and skipped.
func (r *DeviceRepo) Load() ([]models.DeviceRecord, error) {
	rows, err := r.db.Query("SELECT name, address, mac, serial, kind, state, last_seen FROM device")
	if err != nil {
		return nil, fmt.Errorf("Error reading device cache: %w", err)
	}
	defer rows.Close()

	records := []models.DeviceRecord{}
	for rows.Next() {
		var (
			record   models.DeviceRecord
			kind     string
			lastSeen time.Time
		)
		if err := rows.Scan(&record.Name, &record.Address, &record.MAC, &record.Serial, &kind, &record.State, &lastSeen); err != nil {
			r.logger.Error("Skipping corrupt device cache row", "err", err)
			continue
		}
		record.Kind = models.DeviceKind(kind)
		record.LastSeen = lastSeen
		records = append(records, record)
	}
	return records, nil
}
