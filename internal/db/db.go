package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/marcus/jobdesk/internal/config"
)

const (
	fileName = "jobdesk.db"
	driver   = "sqlite" // modernc.org/sqlite
)

// ErrNotFound is wrapped by every lookup, update or delete that matches no
// row.
var ErrNotFound = errors.New("record not found")

// pragmas apply to the single pooled connection.
var pragmas = []struct {
	stmt     string
	required bool
}{
	{"PRAGMA journal_mode=WAL", true},
	{"PRAGMA busy_timeout=5000", true}, // a running `jobdesk serve` may hold the write lock
	{"PRAGMA synchronous=NORMAL", false},
	{"PRAGMA foreign_keys=ON", false},
}

// DB is the SQLite-backed record store for one project directory.
type DB struct {
	conn    *sql.DB
	baseDir string
}

// Path is where the store lives under baseDir.
func Path(baseDir string) string {
	return filepath.Join(baseDir, config.DirName, fileName)
}

// Open opens the store created by Initialize, migrating it if needed.
func Open(baseDir string) (*DB, error) {
	if _, err := os.Stat(Path(baseDir)); errors.Is(err, os.ErrNotExist) {
		return nil, errors.New("database not found: run 'jobdesk init' first")
	}
	return open(driver, baseDir)
}

// Initialize creates the state directory and an empty store if missing.
func Initialize(baseDir string) (*DB, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, config.DirName), 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", config.DirName, err)
	}
	return open(driver, baseDir)
}

func open(driverName, baseDir string) (*DB, error) {
	conn, err := sql.Open(driverName, Path(baseDir))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one writer, and the pragmas are per connection
	conn.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := conn.Exec(p.stmt); err != nil && p.required {
			conn.Close()
			return nil, fmt.Errorf("%s: %w", p.stmt, err)
		}
	}

	db := &DB{conn: conn, baseDir: baseDir}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) BaseDir() string {
	return db.baseDir
}

// migrate creates the schema when PRAGMA user_version is behind
// schemaVersion.
func (db *DB) migrate() error {
	var version int
	if err := db.conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version=%d", schemaVersion)); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}
	return tx.Commit()
}
