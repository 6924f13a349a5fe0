package repos

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/wheelibin/wemops/internal/models"
)

const initRuleSchema = `
  CREATE TABLE IF NOT EXISTS rule (
    id           INTEGER PRIMARY KEY,
    position     INTEGER,
    device       TEXT,
    action       TEXT,
    trigger_kind TEXT,
    value        TEXT,
    offset_sign  INTEGER,
    days         TEXT,
    last_run     TEXT
  );
`

// RuleRepo is the schedule store: an ordered rule list, reloaded before every
// mutation so concurrent external edits survive, rewritten on every mutation.
// The in-memory list stays authoritative for the running process when the
// disk write fails: the change is kept, the reload is suppressed and the
// write retried on the next access, so a failed persist can never undo a run
// marker mid-day. Unsaved changes are lost on restart.
type RuleRepo struct {
	logger *log.Logger
	db     *sql.DB

	mu    sync.Mutex
	rules []models.Rule
	dirty bool
}

func NewRuleRepo(logger *log.Logger, db *sql.DB) (*RuleRepo, error) {
	if _, err := db.Exec(initRuleSchema); err != nil {
		return nil, fmt.Errorf("Error initialising rule schema: %w", err)
	}

	r := &RuleRepo{logger: logger, db: db}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Load returns a copy of the current rule list, refreshed from disk. If the
// refresh fails the in-memory list is served.
func (r *RuleRepo) Load() ([]models.Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refresh()
	return r.copyRules(), nil
}

// Add appends a rule and persists the list. The assigned ID is the creation
// timestamp, bumped past any collision so IDs stay unique.
func (r *RuleRepo) Add(rule models.Rule) (models.Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refresh()

	if rule.ID == 0 {
		rule.ID = time.Now().Unix()
	}
	for r.hasID(rule.ID) {
		rule.ID++
	}
	rule.LastRunDate = ""

	r.rules = append(r.rules, rule)
	r.persist()
	return rule, nil
}

// Delete removes a rule by id. Deleting an unknown id is not an error.
func (r *RuleRepo) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refresh()

	r.rules = lo.Filter(r.rules, func(rule models.Rule, _ int) bool { return rule.ID != id })
	r.persist()
	return nil
}

// MarkRun sets a rule's idempotence marker and persists immediately, so a
// same-day restart cannot re-fire it.
func (r *RuleRepo) MarkRun(id int64, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := false
	for i := range r.rules {
		if r.rules[i].ID == id {
			r.rules[i].LastRunDate = date
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("Error marking rule (%d) as run: unknown rule", id)
	}
	r.persist()
	return nil
}

// refresh syncs memory with disk. While an unsaved change is pending the
// persist is retried and the reload skipped, so the pending change is never
// overwritten by stale disk state. Caller holds the lock.
func (r *RuleRepo) refresh() {
	if r.dirty {
		r.persist()
		return
	}
	if err := r.reload(); err != nil {
		r.logger.Error("Error reloading rules, serving in-memory list", "err", err)
	}
}

// reload replaces the in-memory list from disk. Corrupt rows are logged and
// skipped; the rest of the list survives. Caller holds the lock.
func (r *RuleRepo) reload() error {
	rows, err := r.db.Query("SELECT id, device, action, trigger_kind, value, offset_sign, days, last_run FROM rule ORDER BY position")
	if err != nil {
		return fmt.Errorf("Error reading rules: %w", err)
	}
	defer rows.Close()

	rules := []models.Rule{}
	for rows.Next() {
		var (
			rule models.Rule
			days string
		)
		if err := rows.Scan(&rule.ID, &rule.Device, &rule.Action, &rule.TriggerKind, &rule.Value, &rule.OffsetSign, &days, &rule.LastRunDate); err != nil {
			r.logger.Error("Skipping corrupt rule row", "err", err)
			continue
		}
		rule.ActiveDays = daysFromString(days)
		rules = append(rules, rule)
	}

	r.rules = rules
	return nil
}

// persist rewrites the whole list. Failure is logged only: the in-memory
// list remains authoritative and the dirty flag keeps the write pending
// until a later attempt succeeds. Caller holds the lock.
func (r *RuleRepo) persist() {
	tx, err := r.db.Begin()
	if err != nil {
		r.logger.Error("Error persisting rules", "err", err)
		r.dirty = true
		return
	}
	if _, err := tx.Exec("DELETE FROM rule"); err != nil {
		r.logger.Error("Error persisting rules", "err", err)
		_ = tx.Rollback()
		r.dirty = true
		return
	}
	for position, rule := range r.rules {
		_, err := tx.Exec(
			`INSERT INTO rule
      (id, position, device, action, trigger_kind, value, offset_sign, days, last_run)
     VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
			rule.ID,
			position,
			rule.Device,
			string(rule.Action),
			string(rule.TriggerKind),
			rule.Value,
			rule.OffsetSign,
			daysToString(rule.ActiveDays),
			rule.LastRunDate,
		)
		if err != nil {
			r.logger.Error("Error persisting rule", "rule", rule.ID, "err", err)
			_ = tx.Rollback()
			r.dirty = true
			return
		}
	}
	if err := tx.Commit(); err != nil {
		r.logger.Error("Error persisting rules", "err", err)
		r.dirty = true
		return
	}
	r.dirty = false
}

func (r *RuleRepo) hasID(id int64) bool {
	return lo.SomeBy(r.rules, func(rule models.Rule) bool { return rule.ID == id })
}

func (r *RuleRepo) copyRules() []models.Rule {
	out := make([]models.Rule, len(r.rules))
	copy(out, r.rules)
	for i := range out {
		out[i].ActiveDays = append([]time.Weekday(nil), r.rules[i].ActiveDays...)
	}
	return out
}

// days are stored as a csv of time.Weekday ints, e.g. "1,2,3,4,5"
func daysToString(days []time.Weekday) string {
	parts := lo.Map(days, func(d time.Weekday, _ int) string { return strconv.Itoa(int(d)) })
	return strings.Join(parts, ",")
}

func daysFromString(csv string) []time.Weekday {
	if csv == "" {
		return []time.Weekday{}
	}
	days := []time.Weekday{}
	for _, part := range strings.Split(csv, ",") {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || value < 0 || value > 6 {
			continue
		}
		days = append(days, time.Weekday(value))
	}
	return days
}
