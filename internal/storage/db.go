package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"menuboard/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS snapshots (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  format TEXT NOT NULL,
  hash TEXT NOT NULL,
  rawRef TEXT NOT NULL,
  size INTEGER NOT NULL,
  fetchedAt TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_snapshots_provider ON snapshots(provider, id);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  generation INTEGER NOT NULL,
  provider TEXT NOT NULL,
  outcome TEXT NOT NULL,
  message TEXT,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS feed_cache (
  key TEXT PRIMARY KEY,
  itemsJson TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) InsertSnapshot(s internal.SnapshotRow) (internal.SnapshotRow, error) {
	res, err := d.conn.Exec(`
INSERT INTO snapshots (provider, format, hash, rawRef, size, fetchedAt)
VALUES (?, ?, ?, ?, ?, ?)
`, s.Provider, s.Format, s.Hash, s.RawRef, s.Size, s.FetchedAt)
	if err != nil {
		return internal.SnapshotRow{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return internal.SnapshotRow{}, err
	}
	s.ID = int(id)
	return s, nil
}

// LatestSnapshot returns the newest snapshot for provider, or nil.
func (d *DB) LatestSnapshot(provider string) (*internal.SnapshotRow, error) {
	var row internal.SnapshotRow
	err := d.conn.QueryRow(`
SELECT id, provider, format, hash, rawRef, size, fetchedAt
FROM snapshots WHERE provider = ? ORDER BY id DESC LIMIT 1
`, provider).Scan(&row.ID, &row.Provider, &row.Format, &row.Hash, &row.RawRef, &row.Size, &row.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) InsertRun(run internal.RunRecord) error {
	timingsJSON, _ := json.Marshal(run.Timings)
	countsJSON, _ := json.Marshal(run.Counts)
	_, err := d.conn.Exec(`
INSERT INTO runs (traceId, generation, provider, outcome, message, timingsJson, countsJson)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, run.TraceID, int64(run.Generation), run.Provider, run.Outcome, run.Message, string(timingsJSON), string(countsJSON))
	return err
}

// RecentRuns lists the newest runs first.
func (d *DB) RecentRuns(limit int) ([]internal.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.Query(`
SELECT traceId, generation, provider, outcome, COALESCE(message, ''), timingsJson, countsJson
FROM runs ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRecord
	for rows.Next() {
		var (
			run                     internal.RunRecord
			gen                     int64
			timingsJSON, countsJSON string
		)
		if err := rows.Scan(&run.TraceID, &gen, &run.Provider, &run.Outcome, &run.Message, &timingsJSON, &countsJSON); err != nil {
			return nil, err
		}
		run.Generation = uint64(gen)
		_ = json.Unmarshal([]byte(timingsJSON), &run.Timings)
		_ = json.Unmarshal([]byte(countsJSON), &run.Counts)
		out = append(out, run)
	}
	return out, rows.Err()
}

const promotionsKey = "promotions"

// SavePromotions replaces the last-known-good promotion set.
func (d *DB) SavePromotions(items []internal.Item) error {
	blob, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode promotions: %w", err)
	}
	_, err = d.conn.Exec(`
INSERT INTO feed_cache (key, itemsJson) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET itemsJson = excluded.itemsJson, updatedAt = CURRENT_TIMESTAMP
`, promotionsKey, string(blob))
	return err
}

// LoadPromotions returns the cached promotion set, nil when nothing was saved.
func (d *DB) LoadPromotions() ([]internal.Item, error) {
	var blob string
	err := d.conn.QueryRow(`SELECT itemsJson FROM feed_cache WHERE key = ?`, promotionsKey).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var items []internal.Item
	if err := json.Unmarshal([]byte(blob), &items); err != nil {
		return nil, fmt.Errorf("decode cached promotions: %w", err)
	}
	return items, nil
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
