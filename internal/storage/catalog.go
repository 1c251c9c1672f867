package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	model TEXT NOT NULL,
	integrator TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	metadata TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_runs_model ON runs(model);
`

// catalog indexes run metadata in SQLite so listing does not walk every
// run directory.
type catalog struct {
	db *sql.DB
}

func openCatalog(path string) (*catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open catalog: %w", err)
	}
	if _, err := db.Exec(catalogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: create catalog: %w", err)
	}
	return &catalog{db: db}, nil
}

func (c *catalog) Close() error { return c.db.Close() }

func (c *catalog) Put(meta *RunMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO runs (id, kind, model, integrator, created_at, metadata) VALUES (?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Kind, meta.Model, meta.Integrator, meta.Timestamp.UnixNano(), string(data))
	return err
}

func (c *catalog) Reset() error {
	_, err := c.db.Exec(`DELETE FROM runs`)
	return err
}

func (c *catalog) List() ([]RunMetadata, error) {
	rows, err := c.db.Query(`SELECT metadata FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var meta RunMetadata
		if err := json.Unmarshal([]byte(data), &meta); err != nil {
			return nil, fmt.Errorf("storage: catalog entry: %w", err)
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}
