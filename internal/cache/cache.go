// Package cache stores fetched payloads with their write time. The SQLite
// backend is the default; Redis and an in-process LRU are alternatives.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLite is a Store backed by a local database file.
type SQLite struct {
	readDB  *sql.DB
	writeDB *sql.DB
	opts    options
}

// OpenSQLite opens (creating if needed) the database at dbPath.
func OpenSQLite(dbPath string, opts ...Option) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating cache dir")
	}

	writeDB, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(err, "opening write db")
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, errors.Wrap(err, "opening read db")
	}

	c := &SQLite{readDB: readDB, writeDB: writeDB, opts: buildOptions(opts)}
	if err := c.init(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *SQLite) init() error {
	_, err := c.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS entries (
			key       TEXT PRIMARY KEY,
			data      TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			version   INTEGER NOT NULL
		);
	`)
	if err != nil {
		return errors.Wrap(err, "initializing schema")
	}
	return nil
}

func (c *SQLite) Close() error {
	var errs []error
	if c.readDB != nil {
		errs = append(errs, c.readDB.Close())
	}
	if c.writeDB != nil {
		errs = append(errs, c.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

func (c *SQLite) Read(ctx context.Context, key string) (Entry, bool) {
	e := Entry{Key: key}
	var data string
	err := c.readDB.QueryRowContext(ctx,
		"SELECT data, timestamp, version FROM entries WHERE key = ?", key,
	).Scan(&data, &e.Timestamp, &e.Version)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.opts.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return Entry{}, false
	}
	e.Data = json.RawMessage(data)
	if !c.opts.accept(e) {
		return Entry{}, false
	}
	return e, true
}

// Write stores data under key. The stored timestamp never moves backwards.
func (c *SQLite) Write(ctx context.Context, key string, data json.RawMessage) error {
	if !json.Valid(data) {
		return errors.Errorf("refusing to cache invalid JSON under %q", key)
	}
	_, err := c.writeDB.ExecContext(ctx, `
		INSERT INTO entries (key, data, timestamp, version) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			version = excluded.version,
			timestamp = MAX(entries.timestamp, excluded.timestamp)
	`, key, string(data), c.opts.now().UnixMilli(), c.opts.version)
	if err != nil {
		return errors.Wrapf(err, "writing cache entry %s", key)
	}
	return nil
}

func (c *SQLite) List(ctx context.Context) ([]Info, error) {
	rows, err := c.readDB.QueryContext(ctx,
		"SELECT key, timestamp, version, length(data) FROM entries ORDER BY key")
	if err != nil {
		return nil, errors.Wrap(err, "listing cache entries")
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		var i Info
		if err := rows.Scan(&i.Key, &i.Timestamp, &i.Version, &i.Size); err != nil {
			return nil, errors.Wrap(err, "scanning cache entry")
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (c *SQLite) Delete(ctx context.Context, key string) error {
	if _, err := c.writeDB.ExecContext(ctx, "DELETE FROM entries WHERE key = ?", key); err != nil {
		return errors.Wrapf(err, "deleting cache entry %s", key)
	}
	return nil
}
