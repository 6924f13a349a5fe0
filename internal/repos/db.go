// Package repos is the sqlite persistence layer: the rule store, the device
// cache and the settings store. The file format is an implementation detail;
// consumers see ordered lists and key-value pairs.
package repos

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens (creating if needed) the wemops database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("Error opening database %s: %w", path, err)
	}
	return db, nil
}
