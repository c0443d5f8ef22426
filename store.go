package gallery

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database that remembers probed image dimensions.
// Everything in it can be rebuilt from the image folder.
type Store struct {
	db *sql.DB
}

// Dimensions is one cached probe result.
type Dimensions struct {
	File     string
	Size     int64
	ModTime  time.Time
	Width    int
	Height   int
	ProbedAt time.Time
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the loader write while handlers read; synchronous=NORMAL is
	// safe with WAL.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS dimensions (
    file TEXT PRIMARY KEY,
    size INTEGER NOT NULL,
    mod_time INTEGER NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL
);
`)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(`ALTER TABLE dimensions ADD COLUMN probed_at INTEGER NOT NULL DEFAULT 0;`); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate column") {
			return nil
		}
		return err
	}
	return nil
}

// LookupDimensions returns the cached size of file when its size and
// modification time still match.
func (s *Store) LookupDimensions(file string, size int64, modTime time.Time) (int, int, bool) {
	var w, h int
	err := s.db.QueryRow(`SELECT width, height FROM dimensions WHERE file = ? AND size = ? AND mod_time = ?`,
		file, size, modTime.UnixNano()).Scan(&w, &h)
	if err != nil {
		return 0, 0, false
	}
	return w, h, true
}

// SaveDimensions upserts the probed size of file.
func (s *Store) SaveDimensions(file string, size int64, modTime time.Time, width, height int) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO dimensions (file, size, mod_time, width, height, probed_at) VALUES (?, ?, ?, ?, ?, ?)`,
		file, size, modTime.UnixNano(), width, height, time.Now().Unix())
	return err
}

// GetDimensions returns the cache entry for file regardless of staleness.
func (s *Store) GetDimensions(file string) (Dimensions, error) {
	d := Dimensions{File: file}
	var mod, probed int64
	err := s.db.QueryRow(`SELECT size, mod_time, width, height, probed_at FROM dimensions WHERE file = ?`, file).
		Scan(&d.Size, &mod, &d.Width, &d.Height, &probed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Dimensions{}, ErrNotFound
		}
		return Dimensions{}, err
	}
	d.ModTime = time.Unix(0, mod)
	d.ProbedAt = time.Unix(probed, 0)
	return d, nil
}

// ListDimensions returns every cache entry ordered by file name.
func (s *Store) ListDimensions() ([]Dimensions, error) {
	rows, err := s.db.Query(`SELECT file, size, mod_time, width, height, probed_at FROM dimensions ORDER BY file ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Dimensions
	for rows.Next() {
		var d Dimensions
		var mod, probed int64
		if err := rows.Scan(&d.File, &d.Size, &mod, &d.Width, &d.Height, &probed); err != nil {
			return nil, err
		}
		d.ModTime = time.Unix(0, mod)
		d.ProbedAt = time.Unix(probed, 0)
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteDimensions removes the cache entry for file.
func (s *Store) DeleteDimensions(file string) error {
	_, err := s.db.Exec(`DELETE FROM dimensions WHERE file = ?`, file)
	return err
}

// Prune drops entries for files that are not in keep and returns how many
// rows were removed.
func (s *Store) Prune(keep []string) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`CREATE TEMP TABLE IF NOT EXISTS keep_files (file TEXT PRIMARY KEY)`); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(`DELETE FROM keep_files`); err != nil {
		return 0, err
	}
	for _, f := range keep {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO keep_files (file) VALUES (?)`, f); err != nil {
			return 0, err
		}
	}
	res, err := tx.Exec(`DELETE FROM dimensions WHERE file NOT IN (SELECT file FROM keep_files)`)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}
