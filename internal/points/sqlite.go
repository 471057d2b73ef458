package points

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	_ "modernc.org/sqlite" // pure Go driver
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS points (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	lat        REAL NOT NULL,
	lon        REAL NOT NULL,
	type       TEXT NOT NULL,
	created_at INTEGER NOT NULL
);`

// SQLiteStore implements Store on an SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and applies the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Could not enable WAL mode")
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// List returns saved points in insertion order.
func (s *SQLiteStore) List(ctx context.Context) ([]SavedPoint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, lat, lon, type, created_at FROM points ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]SavedPoint, 0)
	for rows.Next() {
		var p SavedPoint
		var format string
		var created int64
		if err := rows.Scan(&p.ID, &p.Latitude, &p.Longitude, &format, &created); err != nil {
			return nil, err
		}
		p.SourceFormat = Format(format)
		p.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, p)
	}

	return out, rows.Err()
}

// Add inserts a point.
func (s *SQLiteStore) Add(ctx context.Context, p SavedPoint) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO points(id, lat, lon, type, created_at) VALUES(?,?,?,?,?)
		ON CONFLICT(id) DO NOTHING`,
		p.ID, p.Latitude, p.Longitude, string(p.SourceFormat), p.CreatedAt.UnixMilli())
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", p.ID, ErrDuplicate)
	}
	return nil
}

// Clear deletes every point.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM points`)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
