// Package state owns the resonance SQLite database.
package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// pragmas are set on every pooled connection through the DSN.
const pragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// Manager holds the open database.
type Manager struct {
	db *sql.DB
}

// Open opens $XDG_DATA_HOME/resonance/resonance.db.
func Open() (*Manager, error) {
	path, err := xdg.DataFile(filepath.Join("resonance", "resonance.db"))
	if err != nil {
		return nil, fmt.Errorf("locate database: %w", err)
	}
	return OpenPath(path)
}

// OpenPath opens or creates the database at path and migrates it.
func OpenPath(path string) (*Manager, error) {
	dsn := "file:" + path + pragmas
	if path == MemoryPath {
		// WAL does not apply to memory databases.
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if path == MemoryPath {
		// Every connection to :memory: would see its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Manager{db: db}, nil
}

func (m *Manager) DB() *sql.DB { return m.db }

func (m *Manager) Close() error { return m.db.Close() }

// SchemaVersion returns the number of migrations applied.
func (m *Manager) SchemaVersion() (int, error) {
	return schemaVersion(m.db)
}
