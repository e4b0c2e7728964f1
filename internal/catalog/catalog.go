// Package catalog persists the set of recordings the application has
// opened, so reopening a known file restores its channel count and
// sampling rate without re-running inference.
package catalog

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one known recording.
type Entry struct {
	Path         string
	NumChannels  int
	SamplingRate float64
	NumSamples   int64
	LastOpened   time.Time
}

// Catalog is a SQLite-backed store of known recordings.
type Catalog struct {
	db *sql.DB
}

// Open opens (or creates) the catalog database at path. Use ":memory:"
// for an ephemeral catalog.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping catalog: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS recordings (
			path TEXT PRIMARY KEY,
			num_channels INTEGER NOT NULL,
			sampling_rate REAL NOT NULL,
			num_samples INTEGER NOT NULL,
			last_opened REAL NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Catalog{db: db}, nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Remember inserts or refreshes a recording entry.
func (c *Catalog) Remember(e Entry) error {
	if e.LastOpened.IsZero() {
		e.LastOpened = time.Now()
	}
	_, err := c.db.Exec(`
		INSERT INTO recordings (path, num_channels, sampling_rate, num_samples, last_opened)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			num_channels = excluded.num_channels,
			sampling_rate = excluded.sampling_rate,
			num_samples = excluded.num_samples,
			last_opened = excluded.last_opened
	`, e.Path, e.NumChannels, e.SamplingRate, e.NumSamples, unix(e.LastOpened))
	if err != nil {
		return fmt.Errorf("remember %s: %w", e.Path, err)
	}
	return nil
}

// Lookup returns the entry for a path, or nil when the recording is
// unknown.
func (c *Catalog) Lookup(path string) (*Entry, error) {
	row := c.db.QueryRow(`
		SELECT path, num_channels, sampling_rate, num_samples, last_opened
		FROM recordings
		WHERE path = ?
	`, path)

	var (
		e          Entry
		lastOpened float64
	)
	if err := row.Scan(&e.Path, &e.NumChannels, &e.SamplingRate, &e.NumSamples, &lastOpened); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan recording: %w", err)
	}
	e.LastOpened = timeFromUnix(lastOpened)
	return &e, nil
}

// Recent returns up to limit entries, most recently opened first.
func (c *Catalog) Recent(limit int) ([]Entry, error) {
	rows, err := c.db.Query(`
		SELECT path, num_channels, sampling_rate, num_samples, last_opened
		FROM recordings
		ORDER BY last_opened DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recordings: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			lastOpened float64
		)
		if err := rows.Scan(&e.Path, &e.NumChannels, &e.SamplingRate, &e.NumSamples, &lastOpened); err != nil {
			return nil, fmt.Errorf("scan recording: %w", err)
		}
		e.LastOpened = timeFromUnix(lastOpened)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Forget removes a recording entry, for files that no longer exist.
func (c *Catalog) Forget(path string) error {
	_, err := c.db.Exec(`DELETE FROM recordings WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("forget %s: %w", path, err)
	}
	return nil
}

func unix(t time.Time) float64 {
	return float64(t.UnixMilli()) / 1000.0
}

func timeFromUnix(sec float64) time.Time {
	return time.UnixMilli(int64(math.Round(sec * 1000))).UTC()
}
